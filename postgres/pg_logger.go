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
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/tknie/log"
)

// Logger pgx trace logger writing to the log
type Logger struct {
}

// NewLogger new pgx trace logger
func NewLogger() *Logger {
	return &Logger{}
}

// Log write pgx trace entry, the data fields sorted by key
func (pl *Logger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buffer strings.Builder
	for _, k := range keys {
		buffer.WriteString(fmt.Sprintf(" %s=%v", k, data[k]))
	}
	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		log.Log.Debugf("PGX %s%s", msg, buffer.String())
	case tracelog.LogLevelInfo, tracelog.LogLevelWarn:
		log.Log.Infof("PGX %s%s", msg, buffer.String())
	default:
		log.Log.Errorf("PGX %s%s", msg, buffer.String())
	}
}
