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

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestDataType(t *testing.T) {
	assert.Equal(t, "TEXT", Text.SqlType())
	assert.Equal(t, "VARCHAR(19)", Alpha.SqlType(19))
	assert.Equal(t, "INTEGER", Integer.SqlType())
	assert.Equal(t, "DATE", Date.SqlType())
	assert.Equal(t, "DECIMAL(10,2)", Decimal.SqlType(10, 2))
	assert.Equal(t, "BINARY(10)", Bytes.SqlType(10))
}

func TestDataTypeParse(t *testing.T) {
	dt, err := ParseDataType("Alpha")
	assert.NoError(t, err)
	assert.Equal(t, Alpha, dt)
	dt, err = ParseDataType("bigint")
	assert.NoError(t, err)
	assert.Equal(t, Integer, dt)
	_, err = ParseDataType("float128")
	assert.Error(t, err)

	var columns struct {
		Types []DataType `yaml:"types"`
	}
	err = yaml.Unmarshal([]byte("types: [alpha, timestamp, blob]"), &columns)
	assert.NoError(t, err)
	assert.Equal(t, []DataType{Alpha, Timestamp, Bytes}, columns.Types)
}
