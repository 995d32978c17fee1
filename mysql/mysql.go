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
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/tknie/codasyl/common"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
)

// DriverName database/sql driver name of MySQL
const DriverName = "mysql"

const (
	duplicateEntry      = 1062
	lockWaitTimeout     = 1205
	maxExecutionTimeout = 3024
	serverGone          = 2006
	serverLost          = 2013
)

type logger struct{}

func (logger) Print(v ...any) {
	log.Log.Infof("MySQL %s", strings.TrimSpace(fmt.Sprintln(v...)))
}

func init() {
	common.RegisterClassifier(common.MysqlType, Classify)
	_ = mysql.SetLogger(logger{})
}

// Config driver configuration of the reference. Time values are parsed
// into time.Time.
func Config(reference *common.Reference, password string) *mysql.Config {
	config := mysql.NewConfig()
	config.User = reference.User
	config.Passwd = password
	config.Net = "tcp"
	config.Addr = fmt.Sprintf("%s:%d", reference.Host, reference.Port)
	config.DBName = reference.Database
	config.ParseTime = true
	for _, o := range reference.Options {
		kv := strings.SplitN(o, "=", 2)
		if len(kv) != 2 {
			continue
		}
		if config.Params == nil {
			config.Params = make(map[string]string)
		}
		config.Params[kv[0]] = kv[1]
	}
	return config
}

// URL data source name of the reference
func URL(reference *common.Reference, password string) string {
	return Config(reference, password).FormatDSN()
}

// Open open database handle using the MySQL connector
func Open(reference *common.Reference, password string) (*sql.DB, error) {
	connector, err := mysql.NewConnector(Config(reference, password))
	if err != nil {
		return nil, errorrepo.NewError("DB000004", reference.Host, err)
	}
	log.Log.Debugf("Open MySQL database %s:%d/%s", reference.Host, reference.Port, reference.Database)
	return sql.OpenDB(connector), nil
}

// Classify map MySQL errors to error classes
func Classify(err error) (common.ErrorClass, bool) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case duplicateEntry:
			return common.ClassUniqueViolation, true
		case lockWaitTimeout, maxExecutionTimeout:
			return common.ClassTimeout, true
		case serverGone, serverLost:
			return common.ClassConnectionLost, true
		}
		return common.ClassOther, true
	}
	if errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, driver.ErrBadConn) {
		return common.ClassConnectionLost, true
	}
	return common.ClassOther, false
}
