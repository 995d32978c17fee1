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

// Package db2 connects to DB2 through the go_ibm_db database/sql driver.
// The driver needs the IBM CLI libraries and is registered by the
// application importing it.
package db2

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/tknie/codasyl/common"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
)

// DriverName database/sql driver name of go_ibm_db
const DriverName = "go_ibm_db"

var sqlState = regexp.MustCompile(`SQLSTATE[=: ]+([0-9A-Z]{5})`)

func init() {
	common.RegisterClassifier(common.DB2Type, Classify)
}

// URL CLI connection string of the reference
func URL(reference *common.Reference, password string) string {
	dsn := fmt.Sprintf("HOSTNAME=%s;DATABASE=%s;PORT=%d;UID=%s;PWD=%s", reference.Host,
		reference.Database, reference.Port, reference.User, password)
	for _, o := range reference.Options {
		dsn += ";" + strings.ToUpper(o)
	}
	return dsn
}

// Open open database handle through the registered go_ibm_db driver
func Open(reference *common.Reference, password string) (*sql.DB, error) {
	log.Log.Debugf("Open DB2 database %s:%d/%s", reference.Host, reference.Port, reference.Database)
	db, err := sql.Open(DriverName, URL(reference, password))
	if err != nil {
		return nil, errorrepo.NewError("DB000004", reference.Host, err)
	}
	return db, nil
}

// Classify map the SQLSTATE reported in the CLI error text to error
// classes
func Classify(err error) (common.ErrorClass, bool) {
	match := sqlState.FindStringSubmatch(err.Error())
	if match == nil {
		return common.ClassOther, false
	}
	state := match[1]
	switch {
	case state == "23505":
		return common.ClassUniqueViolation, true
	case state == "57014", state == "40001":
		return common.ClassTimeout, true
	case strings.HasPrefix(state, "08"):
		return common.ClassConnectionLost, true
	}
	return common.ClassOther, true
}
