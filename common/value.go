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
	"database/sql/driver"
	"fmt"
	"time"
)

// NormalizeValue unify driver value types so values read by different
// drivers can be compared. Integers become int64, byte slices strings.
func NormalizeValue(v any) any {
	if valuer, ok := v.(driver.Valuer); ok {
		dv, err := valuer.Value()
		if err != nil {
			return v
		}
		v = dv
	}
	switch n := v.(type) {
	case nil:
		return nil
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float32:
		return float64(n)
	case []byte:
		return string(n)
	case *string:
		if n == nil {
			return nil
		}
		return *n
	case *int64:
		if n == nil {
			return nil
		}
		return *n
	}
	return v
}

// IsNull value represents a SQL NULL
func IsNull(v any) bool {
	return NormalizeValue(v) == nil
}

// SameValue compare two column values independent of the driver type
func SameValue(a, b any) bool {
	na := NormalizeValue(a)
	nb := NormalizeValue(b)
	if na == nil || nb == nil {
		return na == nil && nb == nil
	}
	switch x := na.(type) {
	case int64:
		switch y := nb.(type) {
		case int64:
			return x == y
		case float64:
			return float64(x) == y
		case string:
			return fmt.Sprintf("%d", x) == y
		}
	case float64:
		switch y := nb.(type) {
		case int64:
			return x == float64(y)
		case float64:
			return x == y
		}
	case string:
		switch y := nb.(type) {
		case string:
			return x == y
		case int64:
			return x == fmt.Sprintf("%d", y)
		}
	case time.Time:
		if y, ok := nb.(time.Time); ok {
			return x.Equal(y)
		}
	case bool:
		if y, ok := nb.(bool); ok {
			return x == y
		}
	}
	return fmt.Sprintf("%v", na) == fmt.Sprintf("%v", nb)
}
