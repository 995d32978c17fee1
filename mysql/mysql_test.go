//go:build !codasyl_nomysql
// +build !codasyl_nomysql

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

package mysql

import (
	"fmt"
	"os"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/tknie/codasyl/common"
)

func TestMysqlURL(t *testing.T) {
	ref, passwd, err := common.NewReference("admin:secret@tcp(localhost:3306)/empschm")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, common.MysqlType, ref.Driver)
	config := Config(ref, passwd)
	assert.Equal(t, "localhost:3306", config.Addr)
	assert.Equal(t, "empschm", config.DBName)
	assert.True(t, config.ParseTime)
	assert.Contains(t, URL(ref, passwd), "admin:secret@tcp(localhost:3306)/empschm")
}

func TestMysqlClassify(t *testing.T) {
	dup := fmt.Errorf("store: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	assert.Equal(t, common.ClassUniqueViolation, common.Classify(common.MysqlType, dup))
	assert.Equal(t, common.ClassTimeout, common.Classify(common.MysqlType, &mysql.MySQLError{Number: 3024}))
	assert.Equal(t, common.ClassConnectionLost, common.Classify(common.MysqlType, mysql.ErrInvalidConn))
	assert.Equal(t, common.ClassOther, common.Classify(common.MysqlType, &mysql.MySQLError{Number: 1146}))
}

func TestMysqlOpen(t *testing.T) {
	url := os.Getenv("MYSQL_URL")
	if url == "" {
		t.Skip("MYSQL_URL not set")
	}
	ref, passwd, err := common.NewReference(url)
	if !assert.NoError(t, err) {
		return
	}
	db, err := Open(ref, passwd)
	if !assert.NoError(t, err) {
		return
	}
	defer db.Close()
	assert.NoError(t, db.Ping())
}
