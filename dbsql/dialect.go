/*
* Copyright 2022-2026 Thorsten A. Knieling
*
* Licensed under the Apache License, Version 2.0 (the "License");
* you may not use this file except in compliance with the License.
* You may obtain a copy of the License at
*
*    http://www.apache.org/licenses/LICENSE-2.0
*
 */

package dbsql

import (
	"fmt"
	"strconv"

	"github.com/tknie/codasyl/common"
)

// Dialect SQL dialect of the target database
type Dialect byte

const (
	SQLServer Dialect = iota
	Oracle
	DB2
	Postgres
	MySQL
	SQLite
)

var dialectNames = []string{"SqlServer", "Oracle", "DB2", "Postgres", "MySQL", "SQLite"}

func (d Dialect) String() string {
	return dialectNames[d]
}

// IdentityMode how the generated id of an inserted row is retrieved
type IdentityMode byte

const (
	// IdentityQuery the insert statement returns the id as result row
	IdentityQuery IdentityMode = iota
	// IdentityOutParam the id is returned into an output parameter
	IdentityOutParam
	// IdentityFollowUp the id is queried by a second statement
	IdentityFollowUp
	// IdentityLastInsertID the driver reports the id in the result
	IdentityLastInsertID
)

// DialectOf dialect used for the database reference type. SQL Server is
// the default.
func DialectOf(t common.ReferenceType) Dialect {
	switch t {
	case common.OracleType:
		return Oracle
	case common.DB2Type:
		return DB2
	case common.PostgresType:
		return Postgres
	case common.MysqlType:
		return MySQL
	case common.SQLiteType:
		return SQLite
	}
	return SQLServer
}

// Placeholder parameter marker of the n-th parameter, starting with 1
func (d Dialect) Placeholder(n int) string {
	switch d {
	case SQLServer:
		return "@p" + strconv.Itoa(n)
	case Oracle:
		return ":" + strconv.Itoa(n)
	case Postgres:
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Identity identity retrieval of the dialect
func (d Dialect) Identity() IdentityMode {
	switch d {
	case SQLServer, Postgres, SQLite:
		return IdentityQuery
	case Oracle:
		return IdentityOutParam
	case DB2:
		return IdentityFollowUp
	}
	return IdentityLastInsertID
}

// IdentityFollowUp statement returning the id of the last insert
func (d Dialect) IdentityFollowUp() string {
	if d == DB2 {
		return "SELECT IDENTITY_VAL_LOCAL() FROM SYSIBM.SYSDUMMY1"
	}
	return ""
}

// recursiveKeyword recursive common table expressions need the RECURSIVE
// keyword
func (d Dialect) recursiveKeyword() bool {
	switch d {
	case Postgres, MySQL, SQLite:
		return true
	}
	return false
}

// Savepoints a failed statement aborts the transaction unless it runs
// inside a savepoint
func (d Dialect) Savepoints() bool {
	return d == Postgres
}

// LockHint row lock hint of the dialect. Locking is delegated to the
// transaction isolation of the database, the hint is always empty.
func (d Dialect) LockHint(lock string) string {
	return ""
}

func (d Dialect) limitPrefix(limit int) string {
	if d == SQLServer && limit > 0 {
		return fmt.Sprintf("TOP(%d) ", limit)
	}
	return ""
}

func (d Dialect) limitSuffix(limit int) string {
	if limit <= 0 {
		return ""
	}
	switch d {
	case SQLServer:
		return ""
	case Oracle, DB2:
		return fmt.Sprintf(" FETCH FIRST %d ROWS ONLY", limit)
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}
