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

package sqlserver

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/tknie/codasyl/common"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
)

// DriverName database/sql driver name of SQL Server
const DriverName = "sqlserver"

const (
	uniqueConstraint = 2627
	uniqueIndex      = 2601
	lockTimeout      = 1222
	deadlock         = 1205
)

func init() {
	common.RegisterClassifier(common.SqlServerType, Classify)
}

// URL sqlserver connection URL of the reference
func URL(reference *common.Reference, password string) string {
	query := url.Values{}
	if reference.Database != "" {
		query.Add("database", reference.Database)
	}
	for _, o := range reference.Options {
		kv := strings.SplitN(o, "=", 2)
		if len(kv) == 2 {
			query.Add(kv[0], kv[1])
		}
	}
	u := &url.URL{Scheme: "sqlserver", Host: fmt.Sprintf("%s:%d", reference.Host, reference.Port),
		RawQuery: query.Encode()}
	if password != "" {
		u.User = url.UserPassword(reference.User, password)
	} else if reference.User != "" {
		u.User = url.User(reference.User)
	}
	return u.String()
}

// Open open database handle using the SQL Server connector
func Open(reference *common.Reference, password string) (*sql.DB, error) {
	connector, err := mssql.NewConnector(URL(reference, password))
	if err != nil {
		return nil, errorrepo.NewError("DB000004", reference.Host, err)
	}
	log.Log.Debugf("Open SQL Server database %s:%d/%s", reference.Host, reference.Port, reference.Database)
	return sql.OpenDB(connector), nil
}

// Classify map SQL Server error numbers and network failures to error
// classes. A deadlock victim is an ordinary failure of the statement.
func Classify(err error) (common.ErrorClass, bool) {
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		switch msErr.Number {
		case uniqueConstraint, uniqueIndex:
			return common.ClassUniqueViolation, true
		case lockTimeout:
			return common.ClassTimeout, true
		case deadlock:
			log.Log.Debugf("SQL Server deadlock victim: %s", msErr.Message)
		}
		return common.ClassOther, true
	}
	var msErrPtr *mssql.Error
	if errors.As(err, &msErrPtr) {
		return Classify(*msErrPtr)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return common.ClassConnectionLost, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return common.ClassTimeout, true
		}
		return common.ClassConnectionLost, true
	}
	return common.ClassOther, false
}
