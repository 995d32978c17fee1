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

// Package codasyl emulates the navigation of an IDMS network database on
// top of a relational database. A RunUnit owns the connection, the
// transaction and the currency of one conversation and offers the
// navigational verbs. Every verb returns the IDMS status of the request.
// Expected conditions like end of set are statuses, unexpected
// conditions are errors and roll back the transaction.
package codasyl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tknie/codasyl/common"
	"github.com/tknie/codasyl/currency"
	"github.com/tknie/codasyl/dal"
	"github.com/tknie/codasyl/dbsql"
	"github.com/tknie/codasyl/schema"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
)

// RunUnit one IDMS run unit. It must not be shared between goroutines.
type RunUnit struct {
	ID         uuid.UUID
	ctx        context.Context
	config     *common.Config
	schema     *schema.Schema
	supervisor *dbsql.Supervisor
	builder    *dbsql.Builder
	currency   *currency.DBCurrency
	registry   *dal.Registry
	records    map[string]dal.Record
	listCaches map[string]*dal.RowCache
	indexPos   map[string]currency.Keys
	status     common.Status
	expected   []common.Status
	owned      bool
	finished   bool
}

// NewRunUnit create run unit working on the database handle. The handle
// stays open when the run unit finishes.
func NewRunUnit(ctx context.Context, config *common.Config, s *schema.Schema, handle *sql.DB, driver common.ReferenceType) *RunUnit {
	if config == nil {
		config = common.DefaultConfig()
	}
	ru := &RunUnit{ID: uuid.New(), ctx: ctx, config: config.Copy(), schema: s,
		currency: currency.New(s), records: make(map[string]dal.Record),
		listCaches: make(map[string]*dal.RowCache), indexPos: make(map[string]currency.Keys)}
	ru.supervisor = dbsql.NewSupervisor(handle, driver, config.CommandTimeout)
	ru.supervisor.Name = "RunUnit " + ru.ID.String()
	ru.supervisor.LogStatements = config.LogStatements
	ru.builder = dbsql.NewBuilder(ru.supervisor.Dialect(), config.CachePageSize, config.LinkListMaxRows)
	log.Log.Debugf("New run unit %s on %s schema %s", ru.ID, driver, s.Name)
	return ru
}

// Bind open the configured connection and create a run unit on it. If no
// schema is given, the schema file named in the configuration is loaded.
func Bind(ctx context.Context, config *common.Config, s *schema.Schema, connectionKey string) (*RunUnit, error) {
	if config == nil {
		config = common.DefaultConfig()
	}
	if s == nil {
		var err error
		s, err = schema.Load(config.SchemaName)
		if err != nil {
			return nil, err
		}
	}
	url, err := config.Connection(connectionKey)
	if err != nil {
		return nil, err
	}
	ref, passwd, err := common.NewReference(url)
	if err != nil {
		return nil, errorrepo.NewError("DB000010", url)
	}
	handle, err := Open(ref, passwd)
	if err != nil {
		return nil, err
	}
	ru := NewRunUnit(ctx, config, s, handle, ref.Driver)
	ru.owned = true
	return ru, nil
}

// BindRegistered create a run unit on a registered database
func BindRegistered(ctx context.Context, config *common.Config, s *schema.Schema, id RegDbID) (*RunUnit, error) {
	handle, driver, err := Handle(id)
	if err != nil {
		return nil, err
	}
	return NewRunUnit(ctx, config, s, handle, driver), nil
}

// SetRegistry record buffer constructors used by Record
func (ru *RunUnit) SetRegistry(registry *dal.Registry) {
	ru.registry = registry
}

// Schema network schema of the run unit
func (ru *RunUnit) Schema() *schema.Schema {
	return ru.schema
}

// Currency currency of the run unit
func (ru *RunUnit) Currency() *currency.DBCurrency {
	return ru.currency
}

// Supervisor connection and transaction supervisor
func (ru *RunUnit) Supervisor() *dbsql.Supervisor {
	return ru.supervisor
}

// Status status of the last verb
func (ru *RunUnit) Status() common.Status {
	return ru.status
}

// Record record buffer of the working set. A new buffer is created by the
// registry, or a map buffer if no constructor is registered.
func (ru *RunUnit) Record(name string) dal.Record {
	n := schema.Normalize(name)
	if rec, ok := ru.records[n]; ok {
		return rec
	}
	rec := ru.registry.NewOrMap(n)
	ru.records[n] = rec
	return rec
}

// Expect declare the statuses the following verbs may return. Any other
// status except 0 is returned as error. Without arguments only success
// is accepted.
func (ru *RunUnit) Expect(statuses ...common.Status) *RunUnit {
	ru.expected = append([]common.Status{}, statuses...)
	return ru
}

// ExpectAny disable the status check
func (ru *RunUnit) ExpectAny() *RunUnit {
	ru.expected = nil
	return ru
}

// ResetListCurrency drop the position of the set
func (ru *RunUnit) ResetListCurrency(setName string) error {
	if err := ru.check(); err != nil {
		return err
	}
	lc, err := ru.currency.List(setName)
	if err != nil {
		return err
	}
	lc.Reset()
	delete(ru.listCaches, lc.Name)
	delete(ru.indexPos, lc.Name)
	scope := setScope(lc.Name)
	for _, rec := range ru.records {
		if rec.Cache().Scope == scope {
			rec.Cache().Clear()
		}
	}
	return nil
}

// CopyCurrency take over the complete currency of another run unit,
// used when a nested conversation continues the navigation
func (ru *RunUnit) CopyCurrency(other *RunUnit) {
	ru.currency.CopyFrom(other.currency)
	for k, v := range other.indexPos {
		ru.indexPos[k] = v.Clone()
	}
}

// Commit commit the ambient transaction
func (ru *RunUnit) Commit() error {
	if err := ru.check(); err != nil {
		return err
	}
	err := ru.supervisor.EndTransaction(true)
	if err != nil {
		ru.status = common.MakeStatus(common.VerbCommit, common.MinorInvalidRequest)
		return err
	}
	ru.status = common.StatusOK
	return nil
}

// Rollback roll back the ambient transaction and drop all currency
func (ru *RunUnit) Rollback() error {
	if err := ru.check(); err != nil {
		return err
	}
	err := ru.supervisor.EndTransaction(false)
	ru.resetCurrency()
	if err != nil {
		ru.status = common.MakeStatus(common.VerbRollback, common.MinorInvalidRequest)
		return err
	}
	ru.status = common.StatusOK
	return nil
}

// Finish commit the work and end the run unit. A handle opened by Bind is
// closed.
func (ru *RunUnit) Finish() error {
	if ru.finished {
		return nil
	}
	err := ru.supervisor.EndTransaction(true)
	if ru.owned {
		if cerr := ru.supervisor.Close(); err == nil {
			err = cerr
		}
	}
	ru.finished = true
	if err != nil {
		ru.status = common.MakeStatus(common.VerbFinish, common.MinorInvalidRequest)
		return err
	}
	ru.status = common.StatusOK
	log.Log.Debugf("Run unit %s finished", ru.ID)
	return nil
}

func (ru *RunUnit) resetCurrency() {
	ru.currency = currency.New(ru.schema)
	ru.listCaches = make(map[string]*dal.RowCache)
	ru.indexPos = make(map[string]currency.Keys)
	for _, rec := range ru.records {
		rec.Cache().Clear()
	}
}

func (ru *RunUnit) check() error {
	if ru.finished {
		return errorrepo.NewError("DB000209")
	}
	return nil
}

// use register the caller buffer in the working set
func (ru *RunUnit) use(rec dal.Record) (*schema.Record, error) {
	if err := ru.check(); err != nil {
		return nil, err
	}
	r, err := ru.schema.Record(rec.Name())
	if err != nil {
		return nil, err
	}
	ru.records[r.Name] = rec
	return r, nil
}

// member record and set definition, the record must be member of the set
func (ru *RunUnit) member(rec dal.Record, setName string) (*schema.Record, *schema.Set, error) {
	r, err := ru.use(rec)
	if err != nil {
		return nil, nil, err
	}
	_, s, role, err := ru.schema.Participation(r.Name, setName)
	if err != nil {
		return nil, nil, err
	}
	if role != schema.RoleMember {
		return nil, nil, errorrepo.NewError("DB000210", r.Name, s.Name)
	}
	return r, s, nil
}

// result record the status and apply the auto-status check
func (ru *RunUnit) result(verb, name string, st common.Status) (common.Status, error) {
	ru.status = st
	if !st.IsOK() {
		log.Log.Debugf("%s %s of %s status %s", ru.ID, verb, name, st)
	}
	err := st.Check(ru.expected)
	var se *common.StatusError
	if errors.As(err, &se) {
		se.Verb = verb
		se.Name = name
	}
	return st, err
}

// failed unexpected error of a verb. SQL errors already rolled back the
// transaction in the supervisor, the currencies of the rolled back work
// are dropped.
func (ru *RunUnit) failed(verb, name string, err error) (common.Status, error) {
	ru.status = common.StatusBadRequest
	var ce *common.ClassifiedError
	if errors.As(err, &ce) && ce.Class != common.ClassUniqueViolation && !ru.supervisor.IsTransaction() {
		log.Log.Debugf("%s %s of %s rolled back, reset currency", ru.ID, verb, name)
		ru.resetCurrency()
	}
	var oe *common.OperationError
	if errors.As(err, &oe) {
		return ru.status, err
	}
	return ru.status, common.NewOperationError(verb, name, err)
}

// isUnique error is a classified unique key violation
func isUnique(err error) bool {
	return common.ErrorClassOf(err) == common.ClassUniqueViolation
}

func (ru *RunUnit) query(op dbsql.OperationKind, req *dbsql.Request) ([]dal.Row, error) {
	stmt, err := ru.builder.BuildStatement(op, req)
	if err != nil {
		return nil, err
	}
	result, err := ru.supervisor.Query(ru.ctx, stmt)
	if err != nil {
		return nil, err
	}
	rows := make([]dal.Row, len(result))
	for i, m := range result {
		rows[i] = dal.Row(m)
	}
	return rows, nil
}

func (ru *RunUnit) exec(op dbsql.OperationKind, req *dbsql.Request) (int64, error) {
	stmt, err := ru.builder.BuildStatement(op, req)
	if err != nil {
		return 0, err
	}
	return ru.supervisor.Exec(ru.ctx, stmt)
}

func (ru *RunUnit) insert(op dbsql.OperationKind, req *dbsql.Request) (any, error) {
	stmt, err := ru.builder.BuildStatement(op, req)
	if err != nil {
		return nil, err
	}
	return ru.supervisor.Insert(ru.ctx, stmt)
}

// readByID read the row with the id, nil if it does not exist
func (ru *RunUnit) readByID(r *schema.Record, id any) (dal.Row, error) {
	if common.IsNull(id) {
		return nil, nil
	}
	rows, err := ru.query(dbsql.SelectByID, &dbsql.Request{Record: r, ID: id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// update update column values of the row
func (ru *RunUnit) update(r *schema.Record, id any, values map[string]any) error {
	_, err := ru.exec(dbsql.UpdateMembership, &dbsql.Request{Record: r, ID: id, Values: values})
	return err
}

// deliver copy the row into the caller buffer and make it current
func (ru *RunUnit) deliver(rec dal.Record, r *schema.Record, row dal.Row, p currency.Propagation) error {
	data := row.Clone()
	delete(data, currency.JunctionIDKey)
	delete(data, currency.JunctionOwnerKey)
	if err := rec.SetData(data); err != nil {
		return err
	}
	_, err := ru.currency.SetRecordCurrency(r.Name, row, p)
	return err
}

// junctionKeys junction position of a multi-member result row
func junctionKeys(row dal.Row) currency.Keys {
	if !row.Has(currency.JunctionIDKey) {
		return nil
	}
	return currency.Keys{currency.JunctionIDKey: common.NormalizeValue(row.Get(currency.JunctionIDKey)),
		currency.JunctionOwnerKey: common.NormalizeValue(row.Get(currency.JunctionOwnerKey))}
}

// via propagation to all sets of a row reached through the set
func via(s *schema.Set, row dal.Row) currency.Propagation {
	p := currency.Propagation{Set: currency.AllSets}
	if s != nil && s.IsMultiMember() {
		p.Via = s.Name
		p.Junction = junctionKeys(row)
	}
	return p
}

func setScope(setName string) string {
	return "SET:" + setName
}

// columnValues values of the buffer for the data columns of the record.
// Set managed columns are never taken from the buffer.
func (ru *RunUnit) columnValues(r *schema.Record, rec dal.Record) (map[string]any, error) {
	data, err := rec.Data()
	if err != nil {
		return nil, err
	}
	values := make(map[string]any)
	for c, v := range data {
		uc := strings.ToUpper(c)
		if r.IsManaged(uc) || !r.HasColumn(uc) {
			continue
		}
		values[uc] = v
	}
	if column := ru.timestampColumn(r); column != "" {
		values[column] = time.Now().UTC()
	}
	return values, nil
}

// timestampColumn date-time-stamp column of the record, if configured
func (ru *RunUnit) timestampColumn(r *schema.Record) string {
	template := ru.config.TimestampColumn
	if template == "" {
		return ""
	}
	column := template
	if strings.Contains(template, "%s") {
		column = fmt.Sprintf(template, r.Name)
	}
	column = strings.ToUpper(column)
	if !r.HasColumn(column) {
		return ""
	}
	return column
}

// markCached mark the erased row deleted in all cached rows
func (ru *RunUnit) markCached(r *schema.Record, id any) {
	for _, rec := range ru.records {
		if rec.Name() == r.Name {
			rec.Cache().MarkDeleted(r.IDColumn, id)
		}
	}
	for _, cache := range ru.listCaches {
		cache.MarkDeletedWhere(func(row dal.Row) bool {
			return common.SameValue(row.Get(dbsql.JunctionMemberKey), id) &&
				common.SameValue(row.Get(dbsql.JunctionTypeKey), r.Name)
		})
	}
}
