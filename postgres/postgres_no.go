//go:build codasyl_nopostgres
// +build codasyl_nopostgres

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

	"github.com/tknie/codasyl/common"
	"github.com/tknie/errorrepo"
)

// DriverName database/sql driver name of pgx
const DriverName = "pgx"

// URL connection URL of the reference
func URL(reference *common.Reference, password string) string {
	return ""
}

// Open postgres support not compiled in
func Open(reference *common.Reference, password string) (*sql.DB, error) {
	return nil, errorrepo.NewError("DB065535")
}

// Classify postgres support not compiled in
func Classify(err error) (common.ErrorClass, bool) {
	return common.ClassOther, false
}
