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
	"encoding/json"
	"encoding/xml"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/tknie/codasyl/schema"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
	"gopkg.in/yaml.v3"
)

// TagName name to be used for tagging structure field. The tag value is
// `column[:option[:format]]`, option "ignore" skips the field, format
// YAML, JSON or XML stores a sub structure as text column.
const TagName = "codasyl"

var timeType = reflect.TypeOf(time.Time{})

type structField struct {
	column string
	index  []int
	format string
}

// StructRecord record buffer mapping columns to the fields of a Go
// structure
type StructRecord struct {
	name   string
	cache  *RowCache
	data   any
	fields []structField
}

// NewStructRecord record buffer working on the structure the pointer
// references
func NewStructRecord(name string, data any) (*StructRecord, error) {
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil, errorrepo.NewError("DB000206", fmt.Sprintf("%T", data))
	}
	sr := &StructRecord{name: schema.Normalize(name), cache: NewRowCache(), data: data}
	sr.generateFields(rv.Elem().Type(), nil)
	log.Log.Debugf("Struct record %s fields %d", sr.name, len(sr.fields))
	return sr, nil
}

// Name record type name
func (sr *StructRecord) Name() string {
	return sr.name
}

// Cache row cache of the buffer
func (sr *StructRecord) Cache() *RowCache {
	return sr.cache
}

// Value structure pointer the buffer works on
func (sr *StructRecord) Value() any {
	return sr.data
}

// Columns column names of all mapped fields
func (sr *StructRecord) Columns() []string {
	columns := make([]string, 0, len(sr.fields))
	for _, f := range sr.fields {
		columns = append(columns, f.column)
	}
	return columns
}

// generateFields examine all structure tags in the given structure and
// build the column list pointing to the field index path
func (sr *StructRecord) generateFields(rt reflect.Type, index []int) {
	for fi := 0; fi < rt.NumField(); fi++ {
		ct := rt.Field(fi)
		if !ct.IsExported() {
			continue
		}
		fieldIndex := append(append([]int{}, index...), fi)
		column := ct.Name
		format := ""
		tag := ct.Tag.Get(TagName)
		if tag != "" {
			s := strings.Split(tag, ":")
			if s[0] != "" {
				column = s[0]
			}
			if len(s) > 1 && s[1] == "ignore" {
				continue
			}
			if len(s) > 2 {
				format = strings.ToUpper(s[2])
			}
		}
		st := ct.Type
		if st.Kind() == reflect.Pointer {
			st = st.Elem()
		}
		if st.Kind() == reflect.Struct && st != timeType && format == "" {
			sr.generateFields(st, fieldIndex)
			continue
		}
		sr.fields = append(sr.fields, structField{column: strings.ToUpper(column),
			index: fieldIndex, format: format})
	}
}

// field resolve field by index path, allocating nil pointers if alloc is
// set. Returns an invalid value if a nil pointer is on the path.
func (sr *StructRecord) field(index []int, alloc bool) reflect.Value {
	v := reflect.ValueOf(sr.data).Elem()
	for i, x := range index {
		if i > 0 {
			if v.Kind() == reflect.Pointer {
				if v.IsNil() {
					if !alloc {
						return reflect.Value{}
					}
					v.Set(reflect.New(v.Type().Elem()))
				}
				v = v.Elem()
			}
		}
		v = v.Field(x)
	}
	return v
}

// SetData set structure fields out of the row
func (sr *StructRecord) SetData(row Row) error {
	for _, f := range sr.fields {
		if !row.Has(f.column) {
			continue
		}
		fv := sr.field(f.index, true)
		err := assignValue(fv, row.Get(f.column), f.format)
		if err != nil {
			return errorrepo.NewError("DB000207", f.column, err)
		}
	}
	return nil
}

// Data column values out of the structure fields
func (sr *StructRecord) Data() (Row, error) {
	row := make(Row, len(sr.fields))
	for _, f := range sr.fields {
		fv := sr.field(f.index, false)
		if !fv.IsValid() {
			row[f.column] = nil
			continue
		}
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				row[f.column] = nil
				continue
			}
			fv = fv.Elem()
		}
		if f.format != "" {
			s, err := marshalFormat(fv.Interface(), f.format)
			if err != nil {
				return nil, errorrepo.NewError("DB000207", f.column, err)
			}
			row[f.column] = s
			continue
		}
		row[f.column] = fv.Interface()
	}
	return row, nil
}

func marshalFormat(v any, format string) (string, error) {
	var out []byte
	var err error
	switch format {
	case "YAML":
		out, err = yaml.Marshal(v)
	case "XML":
		out, err = xml.Marshal(v)
	case "JSON":
		out, err = json.Marshal(v)
	default:
		return "", fmt.Errorf("unknown format %s", format)
	}
	return string(out), err
}

func unmarshalFormat(data []byte, v any, format string) error {
	switch format {
	case "YAML":
		return yaml.Unmarshal(data, v)
	case "XML":
		return xml.Unmarshal(data, v)
	case "JSON":
		return json.Unmarshal(data, v)
	}
	return fmt.Errorf("unknown format %s", format)
}

// assignValue set the field to the database value converting the
// driver types
func assignValue(fv reflect.Value, v any, format string) error {
	if v == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}
	if format != "" {
		var data []byte
		switch s := v.(type) {
		case string:
			data = []byte(s)
		case []byte:
			data = s
		default:
			return fmt.Errorf("format %s needs text, got %T", format, v)
		}
		return unmarshalFormat(data, fv.Addr().Interface(), format)
	}
	switch fv.Kind() {
	case reflect.String:
		switch s := v.(type) {
		case []byte:
			fv.SetString(string(s))
		default:
			fv.SetString(fmt.Sprintf("%v", v))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := toInt64(v)
		if err != nil {
			return err
		}
		fv.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := toInt64(v)
		if err != nil {
			return err
		}
		fv.SetUint(uint64(i))
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	case reflect.Bool:
		switch b := v.(type) {
		case bool:
			fv.SetBool(b)
		default:
			i, err := toInt64(v)
			if err != nil {
				return err
			}
			fv.SetBool(i != 0)
		}
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("slice type %s not supported", fv.Type())
		}
		switch b := v.(type) {
		case []byte:
			fv.SetBytes(append([]byte{}, b...))
		case string:
			fv.SetBytes([]byte(b))
		default:
			return fmt.Errorf("cannot convert %T to bytes", v)
		}
	case reflect.Struct:
		if fv.Type() != timeType {
			return fmt.Errorf("struct type %s not supported", fv.Type())
		}
		t, err := toTime(v)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(t))
	default:
		rv := reflect.ValueOf(v)
		if !rv.Type().ConvertibleTo(fv.Type()) {
			return fmt.Errorf("cannot convert %T to %s", v, fv.Type())
		}
		fv.Set(rv.Convert(fv.Type()))
	}
	return nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case float32:
		return int64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to integer", v)
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	i, err := toInt64(v)
	return float64(i), err
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02"}

func toTime(v any) (time.Time, error) {
	var s string
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case []byte:
		s = string(t)
	case string:
		s = t
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", v)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("time format of '%s' not known", s)
}
