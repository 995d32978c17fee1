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

package dbsql

import (
	"database/sql"
	"strings"

	"github.com/tknie/codasyl/common"
	"github.com/tknie/log"
)

// ScanRows read all rows of the result set into column maps. Column names
// are upper case, values are normalized. The rows are closed afterwards.
func ScanRows(rows *sql.Rows) ([]map[string]any, error) {
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = strings.ToUpper(c)
	}
	result := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scan := make([]any, len(columns))
		for i := range values {
			scan[i] = &values[i]
		}
		if err = rows.Scan(scan...); err != nil {
			log.Log.Debugf("Scan error: %v", err)
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, n := range names {
			v := common.NormalizeValue(values[i])
			if s, ok := v.(string); ok && isNumericColumn(n) {
				v = parseNumeric(s)
			}
			row[n] = v
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// isNumericColumn internal columns always carrying integer values
func isNumericColumn(name string) bool {
	switch name {
	case "ID", RowNumberColumn, "JROW_ID", "JOWNER_ID", JunctionMemberKey, "LVL":
		return true
	}
	return strings.HasSuffix(name, "_ID") || strings.HasSuffix(name, "_FK") ||
		strings.HasSuffix(name, "_NEXT") || strings.HasSuffix(name, "_PRIOR")
}
