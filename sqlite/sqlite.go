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

package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/tknie/codasyl/common"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DriverName database/sql driver name of the pure Go SQLite driver
const DriverName = "sqlite"

const memory = ":memory:"

func init() {
	common.RegisterClassifier(common.SQLiteType, Classify)
}

// URL data source of the reference, an empty database is in memory
func URL(reference *common.Reference, password string) string {
	if reference.Database == "" {
		return memory
	}
	return reference.Database
}

// Open open SQLite database. In memory databases are bound to a single
// connection, otherwise every connection would see its own database.
func Open(reference *common.Reference, password string) (*sql.DB, error) {
	source := URL(reference, password)
	log.Log.Debugf("Open SQLite database %s", source)
	db, err := sql.Open(DriverName, source)
	if err != nil {
		return nil, errorrepo.NewError("DB000004", source, err)
	}
	if strings.Contains(source, memory) || strings.Contains(source, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Classify map SQLite result codes to error classes
func Classify(err error) (common.ErrorClass, bool) {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return common.ClassOther, false
	}
	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return common.ClassUniqueViolation, true
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_INTERRUPT:
		return common.ClassTimeout, true
	}
	return common.ClassOther, true
}
