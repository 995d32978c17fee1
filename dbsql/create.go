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
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/tknie/codasyl/common"
	"github.com/tknie/codasyl/schema"
	"github.com/tknie/log"
)

// CreateTables DDL statements creating all record and junction tables of
// the schema including foreign key, pointer and unique key definitions
func CreateTables(s *schema.Schema, d Dialect) []string {
	log.Log.Debugf("Create SQL tables of %s for %s", s.Name, d)
	statements := make([]string, 0)
	indexes := make([]string, 0)
	for _, r := range s.RecordList {
		var buffer bytes.Buffer
		buffer.WriteString("CREATE TABLE " + r.Table + " (")
		buffer.WriteString(r.IDColumn + " " + identityColumn(d))
		for _, c := range r.Columns {
			buffer.WriteString(", " + c.Name + " " + columnType(d, c))
		}
		for _, st := range s.MemberSets(r) {
			if st.HasForeignKey() {
				buffer.WriteString(", " + st.ForeignKey + " " + integerType(d))
			}
			if st.IsLinked() {
				buffer.WriteString(", " + st.NextColumn + " " + integerType(d))
				buffer.WriteString(", " + st.PriorColumn + " " + integerType(d))
			}
		}
		buffer.WriteString(")")
		statements = append(statements, buffer.String())
		if r.UniqueKeys && len(r.Keys) > 0 {
			indexes = append(indexes, createIndex(true, r.Table, "UK", r.Keys))
		}
	}
	for _, st := range s.SetList {
		switch {
		case st.IsMultiMember():
			j := st.Junction
			statements = append(statements, "CREATE TABLE "+j.Table+" ("+
				j.IDColumn+" "+identityColumn(d)+", "+
				j.OwnerColumn+" "+integerType(d)+" NOT NULL, "+
				j.MemberColumn+" "+integerType(d)+" NOT NULL, "+
				j.TypeColumn+" "+columnType(d, &schema.Column{Type: common.Alpha, Length: 32})+" NOT NULL)")
			indexes = append(indexes, createIndex(true, j.Table, "UK", []string{j.MemberColumn, j.TypeColumn}))
		case st.Duplicates == schema.DupNotAllowed && len(st.SortKeys) > 0:
			member, _ := s.Record(st.Members[0])
			columns := make([]string, 0)
			if st.HasForeignKey() {
				columns = append(columns, st.ForeignKey)
			}
			for _, k := range st.SortKeys {
				columns = append(columns, k.Column)
			}
			indexes = append(indexes, createIndex(true, member.Table, st.Name, columns))
		case st.HasForeignKey():
			member, _ := s.Record(st.Members[0])
			indexes = append(indexes, createIndex(false, member.Table, st.Name, []string{st.ForeignKey}))
		}
	}
	return append(statements, indexes...)
}

func createIndex(unique bool, table, suffix string, columns []string) string {
	kind := "INDEX"
	if unique {
		kind = "UNIQUE INDEX"
	}
	name := strings.ToUpper(table + "_" + suffix)
	if len(name) > 30 {
		name = name[:30]
	}
	return fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, name, table, strings.Join(columns, ", "))
}

// DropTables DDL statements dropping all tables of the schema
func DropTables(s *schema.Schema) []string {
	statements := make([]string, 0)
	for _, st := range s.SetList {
		if st.IsMultiMember() {
			statements = append(statements, "DROP TABLE "+st.Junction.Table)
		}
	}
	for i := len(s.RecordList) - 1; i >= 0; i-- {
		statements = append(statements, "DROP TABLE "+s.RecordList[i].Table)
	}
	return statements
}

// BatchSQL execute DDL statements through the supervisor transaction
func BatchSQL(ctx context.Context, supervisor *Supervisor, statements []string) error {
	for _, batch := range statements {
		log.Log.Debugf("Batch SQL: %s", batch)
		_, err := supervisor.ExecText(ctx, batch)
		if err != nil {
			return err
		}
	}
	return nil
}

func identityColumn(d Dialect) string {
	switch d {
	case SQLServer:
		return "BIGINT IDENTITY(1,1) PRIMARY KEY"
	case Oracle:
		return "NUMBER(19) GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	case DB2:
		return "BIGINT NOT NULL GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	case Postgres:
		return "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	case MySQL:
		return "BIGINT AUTO_INCREMENT PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func integerType(d Dialect) string {
	switch d {
	case Oracle:
		return "NUMBER(19)"
	case SQLite:
		return "INTEGER"
	}
	return "BIGINT"
}

// columnType dialect specific SQL type of the column
func columnType(d Dialect, c *schema.Column) string {
	length := c.Length
	switch c.Type {
	case common.Alpha:
		if length <= 0 {
			length = 255
		}
		if d == Oracle {
			return fmt.Sprintf("VARCHAR2(%d)", length)
		}
		return c.Type.SqlType(length)
	case common.Text:
		switch d {
		case SQLServer:
			return "NVARCHAR(MAX)"
		case Oracle, DB2:
			return "CLOB"
		}
		return c.Type.SqlType()
	case common.Integer:
		return integerType(d)
	case common.Decimal:
		if length <= 0 {
			length = 18
		}
		if d == Oracle {
			return fmt.Sprintf("NUMBER(%d,%d)", length, c.Digits)
		}
		return c.Type.SqlType(length, c.Digits)
	case common.Timestamp:
		switch d {
		case SQLServer:
			return "DATETIME2"
		case MySQL:
			return "DATETIME"
		}
		return c.Type.SqlType()
	case common.Bytes:
		switch d {
		case SQLServer:
			if length <= 0 {
				return "VARBINARY(MAX)"
			}
			return fmt.Sprintf("VARBINARY(%d)", length)
		case Postgres:
			return "BYTEA"
		}
		return "BLOB"
	}
	return c.Type.SqlType()
}
