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

package dal

import (
	"strings"

	"github.com/tknie/codasyl/schema"
)

// Record record buffer of one record type. The engine reads rows into
// the buffer with SetData and takes the values to store or modify out of
// Data.
type Record interface {
	Name() string
	Cache() *RowCache
	SetData(row Row) error
	Data() (Row, error)
}

// MapRecord generic record buffer keeping the column values in a map
type MapRecord struct {
	name   string
	cache  *RowCache
	values Row
}

// NewMapRecord new map based record buffer
func NewMapRecord(name string) *MapRecord {
	return &MapRecord{name: schema.Normalize(name), cache: NewRowCache(), values: make(Row)}
}

// Name record type name
func (m *MapRecord) Name() string {
	return m.name
}

// Cache row cache of the buffer
func (m *MapRecord) Cache() *RowCache {
	return m.cache
}

// SetData copy the row into the buffer
func (m *MapRecord) SetData(row Row) error {
	m.values = row.Upper()
	return nil
}

// Data copy of the buffer values
func (m *MapRecord) Data() (Row, error) {
	return m.values.Clone(), nil
}

// Set set column value
func (m *MapRecord) Set(column string, value any) *MapRecord {
	m.values[strings.ToUpper(column)] = value
	return m
}

// Get column value
func (m *MapRecord) Get(column string) any {
	return m.values.Get(column)
}

// Clear remove all column values
func (m *MapRecord) Clear() {
	m.values = make(Row)
}
