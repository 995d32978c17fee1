//go:build !codasyl_nopostgres
// +build !codasyl_nopostgres

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

package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/tknie/codasyl/common"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
)

// DriverName database/sql driver name of pgx
const DriverName = "pgx"

const (
	uniqueViolation = "23505"
	queryCanceled   = "57014"
	lockTimeout     = "55P03"
)

func init() {
	common.RegisterClassifier(common.PostgresType, Classify)
}

// URL connection URL of the reference
func URL(reference *common.Reference, password string) string {
	user := reference.User
	if password != "" {
		user += ":" + password
	}
	return fmt.Sprintf("postgres://%s@%s:%d/%s%s", user,
		reference.Host, reference.Port, reference.Database, reference.OptionString())
}

// Open open database handle using the pgx connector. pgx trace output is
// routed to the log.
func Open(reference *common.Reference, password string) (*sql.DB, error) {
	config, err := pgx.ParseConfig(URL(reference, password))
	if err != nil {
		return nil, errorrepo.NewError("DB000004", reference.Host, err)
	}
	level := tracelog.LogLevelWarn
	if log.IsDebugLevel() {
		level = tracelog.LogLevelDebug
	}
	config.Tracer = &tracelog.TraceLog{Logger: NewLogger(), LogLevel: level}
	log.Log.Debugf("Open postgres database %s:%d/%s", reference.Host, reference.Port, reference.Database)
	return stdlib.OpenDB(*config), nil
}

// Classify map postgres errors to error classes
func Classify(err error) (common.ErrorClass, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolation:
			return common.ClassUniqueViolation, true
		case pgErr.Code == queryCanceled, pgErr.Code == lockTimeout:
			return common.ClassTimeout, true
		case strings.HasPrefix(pgErr.Code, "08"):
			return common.ClassConnectionLost, true
		}
		return common.ClassOther, true
	}
	if pgconn.Timeout(err) {
		return common.ClassTimeout, true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return common.ClassConnectionLost, true
	}
	return common.ClassOther, false
}
