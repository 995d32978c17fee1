//go:build !codasyl_nooracle
// +build !codasyl_nooracle

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

package oracle

import (
	"bytes"
	"database/sql"
	"text/template"

	"github.com/godror/godror"
	"github.com/tknie/codasyl/common"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
)

// DriverName database/sql driver name of godror
const DriverName = "godror"

const (
	uniqueConstraint = 1
	userCanceled     = 1013
	endOfChannel     = 3113
	notConnected     = 3114
	connectionClosed = 3135
	callTimeout      = 3156
)

const templateConnectString = `user="{{ .User}}" password="{{ .Password}}"` +
	` connectString="(DESCRIPTION =(ADDRESS_LIST =` +
	`(ADDRESS =(PROTOCOL = {{ .Protocol}})` +
	`(HOST = {{ .Host}})(PORT = {{ .Port}})))` +
	`(CONNECT_DATA=(SERVICE_NAME = {{ .ServiceName}}))"`

var connectTemplate = template.Must(template.New("oracle").Parse(templateConnectString))

type connectData struct {
	User        string
	Password    string
	Protocol    string
	Host        string
	Port        int
	ServiceName string
}

func init() {
	common.RegisterClassifier(common.OracleType, Classify)
}

// URL godror connect string of the reference
func URL(reference *common.Reference, password string) string {
	var buffer bytes.Buffer
	err := connectTemplate.Execute(&buffer, &connectData{User: reference.User, Password: password,
		Protocol: "TCP", Host: reference.Host, Port: reference.Port, ServiceName: reference.Database})
	if err != nil {
		log.Log.Errorf("Oracle connect string error: %v", err)
		return ""
	}
	return buffer.String()
}

// Open open database handle using godror
func Open(reference *common.Reference, password string) (*sql.DB, error) {
	log.Log.Debugf("Open Oracle database %s:%d/%s", reference.Host, reference.Port, reference.Database)
	db, err := sql.Open(DriverName, URL(reference, password))
	if err != nil {
		return nil, errorrepo.NewError("DB000004", reference.Host, err)
	}
	return db, nil
}

// Classify map ORA- error codes to error classes
func Classify(err error) (common.ErrorClass, bool) {
	oraErr, ok := godror.AsOraErr(err)
	if !ok {
		return common.ClassOther, false
	}
	switch oraErr.Code() {
	case uniqueConstraint:
		return common.ClassUniqueViolation, true
	case userCanceled, callTimeout:
		return common.ClassTimeout, true
	case endOfChannel, notConnected, connectionClosed:
		return common.ClassConnectionLost, true
	}
	return common.ClassOther, true
}
