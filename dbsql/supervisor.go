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
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/tknie/codasyl/common"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
)

const savepointName = "CODASYL_STMT"

// Supervisor single ambient connection and transaction of a run unit.
// Every statement runs inside the transaction, which is started lazily
// and ended by Commit, Rollback or Finish.
type Supervisor struct {
	db            *sql.DB
	driver        common.ReferenceType
	dialect       Dialect
	tx            *sql.Tx
	timeout       time.Duration
	LogStatements bool
	Name          string
	Transaction   bool
}

// NewSupervisor supervisor working on the database handle
func NewSupervisor(db *sql.DB, driver common.ReferenceType, timeout time.Duration) *Supervisor {
	if timeout <= 0 {
		timeout = common.DefaultCommandTimeout
	}
	return &Supervisor{db: db, driver: driver, dialect: DialectOf(driver), timeout: timeout}
}

// Dialect SQL dialect of the database
func (s *Supervisor) Dialect() Dialect {
	return s.dialect
}

// Driver database reference type
func (s *Supervisor) Driver() common.ReferenceType {
	return s.driver
}

// IsTransaction transaction is open
func (s *Supervisor) IsTransaction() bool {
	return s.Transaction
}

// StartTransaction start ambient transaction if not already running
func (s *Supervisor) StartTransaction(ctx context.Context) (*sql.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Log.Debugf("Begin of transaction fails: %v", err)
		return nil, errorrepo.NewError("DB000202", err)
	}
	log.Log.Debugf("%s start transaction", s.Name)
	s.tx = tx
	s.Transaction = true
	return tx, nil
}

// EndTransaction commit or roll back the ambient transaction
func (s *Supervisor) EndTransaction(commit bool) (err error) {
	if s.tx == nil {
		s.Transaction = false
		return nil
	}
	log.Log.Debugf("%s end transaction commit=%v", s.Name, commit)
	if commit {
		err = s.tx.Commit()
		if err != nil {
			err = errorrepo.NewError("DB000203", err)
		}
	} else {
		err = s.tx.Rollback()
		if err != nil {
			err = errorrepo.NewError("DB000204", err)
		}
	}
	s.tx = nil
	s.Transaction = false
	return
}

// Close roll back open work and release the database handle
func (s *Supervisor) Close() error {
	err := s.EndTransaction(false)
	if s.db != nil {
		cerr := s.db.Close()
		if err == nil {
			err = cerr
		}
		s.db = nil
	}
	return err
}

func (s *Supervisor) logStatement(stmt string, args []any) {
	if s.LogStatements {
		log.Log.Infof("%s SQL: %s %v", s.Name, stmt, args)
	} else if log.IsDebugLevel() {
		common.LogMultiLineString(true, stmt)
		log.Log.Debugf("Arguments: %v", args)
	}
}

// fail classify the driver error. Unique violations leave the transaction
// usable, every other error rolls it back.
func (s *Supervisor) fail(err error) error {
	class := common.Classify(s.driver, err)
	if class == common.ClassUniqueViolation {
		log.Log.Debugf("%s unique violation: %v", s.Name, err)
		return &common.ClassifiedError{Class: class, Err: err}
	}
	log.Log.Errorf("%s SQL error (%s), rollback: %v", s.Name, class, err)
	if rerr := s.EndTransaction(false); rerr != nil {
		log.Log.Errorf("Rollback error: %v", rerr)
	}
	return &common.ClassifiedError{Class: class, Err: err}
}

// Query run the select statement and read all rows into maps with upper
// case column names. Rows come back in logical forward order.
func (s *Supervisor) Query(ctx context.Context, stmt *Statement) ([]map[string]any, error) {
	defer common.TimeTrack(time.Now(), "Query "+stmt.Kind.String())
	tx, err := s.StartTransaction(ctx)
	if err != nil {
		return nil, err
	}
	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	s.logStatement(stmt.SQL, stmt.Args)
	rows, err := tx.QueryContext(qctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, s.fail(err)
	}
	result, err := ScanRows(rows)
	if err != nil {
		return nil, s.fail(err)
	}
	log.Log.Debugf("%s returned %d rows", stmt.Kind, len(result))
	return stmt.Arrange(result), nil
}

// Exec run update or delete statement returning the affected row count
func (s *Supervisor) Exec(ctx context.Context, stmt *Statement) (int64, error) {
	defer common.TimeTrack(time.Now(), "Exec "+stmt.Kind.String())
	var affected int64
	err := s.guarded(ctx, func(tx *sql.Tx, qctx context.Context) error {
		s.logStatement(stmt.SQL, stmt.Args)
		res, err := tx.ExecContext(qctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

// ExecText run plain SQL text without parameters
func (s *Supervisor) ExecText(ctx context.Context, text string) (int64, error) {
	return s.Exec(ctx, &Statement{Kind: UpdateRow, SQL: text})
}

// Insert run insert statement and return the generated id using the
// identity retrieval of the dialect
func (s *Supervisor) Insert(ctx context.Context, stmt *Statement) (any, error) {
	defer common.TimeTrack(time.Now(), "Insert")
	var id any
	err := s.guarded(ctx, func(tx *sql.Tx, qctx context.Context) error {
		s.logStatement(stmt.SQL, stmt.Args)
		switch stmt.Identity {
		case IdentityQuery:
			return tx.QueryRowContext(qctx, stmt.SQL, stmt.Args...).Scan(&id)
		case IdentityOutParam:
			_, err := tx.ExecContext(qctx, stmt.SQL, stmt.Args...)
			if err != nil {
				return err
			}
			id = *stmt.OutID
		case IdentityFollowUp:
			_, err := tx.ExecContext(qctx, stmt.SQL, stmt.Args...)
			if err != nil {
				return err
			}
			s.logStatement(stmt.FollowUp, nil)
			return tx.QueryRowContext(qctx, stmt.FollowUp).Scan(&id)
		default:
			res, err := tx.ExecContext(qctx, stmt.SQL, stmt.Args...)
			if err != nil {
				return err
			}
			id, err = res.LastInsertId()
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	id = common.NormalizeValue(id)
	if common.IsNull(id) {
		return nil, errorrepo.NewError("DB000208", stmt.SQL)
	}
	if s, ok := id.(string); ok {
		id = parseNumeric(s)
	}
	return id, nil
}

// guarded run a mutating statement. Dialects aborting the transaction on
// errors get a savepoint around the statement so that a unique violation
// can be reported without losing the transaction.
func (s *Supervisor) guarded(ctx context.Context, f func(tx *sql.Tx, qctx context.Context) error) error {
	tx, err := s.StartTransaction(ctx)
	if err != nil {
		return err
	}
	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	savepoint := s.dialect.Savepoints()
	if savepoint {
		if _, err = tx.ExecContext(qctx, "SAVEPOINT "+savepointName); err != nil {
			return s.fail(err)
		}
	}
	err = f(tx, qctx)
	if err != nil {
		if savepoint && common.Classify(s.driver, err) == common.ClassUniqueViolation {
			if _, rerr := tx.ExecContext(qctx, "ROLLBACK TO SAVEPOINT "+savepointName); rerr != nil {
				return s.fail(rerr)
			}
		}
		return s.fail(err)
	}
	if savepoint {
		if _, err = tx.ExecContext(qctx, "RELEASE SAVEPOINT "+savepointName); err != nil {
			return s.fail(err)
		}
	}
	return nil
}

// parseNumeric id or key value delivered as text. Values which are not
// plain digits or do not fit into int64 stay text.
func parseNumeric(s string) any {
	text := strings.TrimSpace(s)
	if text == "" {
		return s
	}
	for _, c := range text {
		if c < '0' || c > '9' {
			return s
		}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return s
	}
	return n
}
