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
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type DataType byte

const (
	None DataType = iota
	Alpha
	Text
	Integer
	Decimal
	Date
	Timestamp
	Bytes
)

var dataTypeNames = []string{"none", "alpha", "text", "integer", "decimal", "date", "timestamp", "bytes"}

var sqlTypes = []string{"", "VARCHAR(%d)", "TEXT", "INTEGER",
	"DECIMAL(%d,%d)", "DATE", "TIMESTAMP", "BINARY(%d)"}

func (dt DataType) String() string {
	return dataTypeNames[dt]
}

// SqlType generic SQL type, dialects may override it
func (dt DataType) SqlType(arg ...any) string {
	return fmt.Sprintf(sqlTypes[dt], arg...)
}

// ParseDataType parse data type name
func ParseDataType(name string) (DataType, error) {
	for i, n := range dataTypeNames {
		if strings.EqualFold(n, name) {
			return DataType(i), nil
		}
	}
	switch strings.ToLower(name) {
	case "string", "varchar", "char":
		return Alpha, nil
	case "int", "number", "bigint":
		return Integer, nil
	case "datetime":
		return Timestamp, nil
	case "binary", "blob":
		return Bytes, nil
	}
	return None, fmt.Errorf("unknown data type '%s'", name)
}

// UnmarshalYAML parse data type out of schema files
func (dt *DataType) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	t, err := ParseDataType(name)
	if err != nil {
		return err
	}
	*dt = t
	return nil
}
