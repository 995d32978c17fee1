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

// Package dal contains the record buffers the navigation engine reads
// rows into and writes rows from. Every buffer owns a row cache with a
// movable cursor.
package dal

import (
	"strings"

	"github.com/tknie/codasyl/common"
)

// Row column values of one row, column names upper case
type Row map[string]any

// Get column value, column name case insensitive
func (r Row) Get(column string) any {
	if v, ok := r[column]; ok {
		return v
	}
	return r[strings.ToUpper(column)]
}

// Has row contains the column
func (r Row) Has(column string) bool {
	if _, ok := r[column]; ok {
		return true
	}
	_, ok := r[strings.ToUpper(column)]
	return ok
}

// Clone copy of the row
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	n := make(Row, len(r))
	for k, v := range r {
		n[k] = v
	}
	return n
}

// Upper copy of the row with upper case column names and normalized values
func (r Row) Upper() Row {
	n := make(Row, len(r))
	for k, v := range r {
		n[strings.ToUpper(k)] = common.NormalizeValue(v)
	}
	return n
}
