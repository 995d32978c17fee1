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
	"github.com/tknie/codasyl/currency"
	"github.com/tknie/codasyl/schema"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
	"golang.org/x/exp/slices"
)

// OperationKind kind of statement the builder generates
type OperationKind byte

const (
	SelectByKey OperationKind = iota
	SelectByID
	SelectInList
	SelectInListByRow
	SelectUsing
	SelectUsingNext
	SelectUsingPrior
	SelectInArea
	SelectJunction
	UpdateRow
	UpdateMembership
	DeleteRow
	DeleteJunction
	InsertRow
	InsertJunction
)

var operationNames = []string{"select-by-key", "select-by-id", "select-in-list",
	"select-in-list-by-row", "select-using", "select-using-next", "select-using-prior",
	"select-in-area", "select-junction", "update-row", "update-membership", "delete-row",
	"delete-junction", "insert-row", "insert-junction"}

func (op OperationKind) String() string {
	return operationNames[op]
}

const (
	// RowNumberColumn window row number column, removed from result rows
	RowNumberColumn = "NAV_RN"
	// JunctionMemberKey member id of a junction only result row
	JunctionMemberKey = "JMEMBER_ID"
	// JunctionTypeKey member type of a junction only result row
	JunctionTypeKey = "JMEMBER_TYPE"

	navTable  = "NAV"
	linkTable = "LinkList"
)

// Request input of the statement builder: record and set metadata, the
// set currency and the values of the operation
type Request struct {
	Record    *schema.Record
	Set       *schema.Set
	List      *currency.ListCurrency
	Direction common.Direction
	// OwnerID id of the set owner row
	OwnerID any
	// Start row the window starts after, or at if Inclusive is set
	Start     currency.Keys
	Inclusive bool
	// ByValue seek from the start key values instead of the stored row,
	// used when the start row no longer exists
	ByValue bool
	// Keys business key, using or sort key values
	Keys map[string]any
	// ID row id of by-id, update and delete requests
	ID any
	// Values column values of insert and update requests
	Values    map[string]any
	RowNumber int
	Limit     int
}

// Statement generated SQL statement ready for the supervisor
type Statement struct {
	Kind     OperationKind
	SQL      string
	Args     []any
	Query    bool
	Identity IdentityMode
	FollowUp string
	OutID    *int64
	// Reverse rows are read in reverse logical order
	Reverse bool
	// Strip internal columns removed from the result rows
	Strip []string
}

// Arrange bring result rows into logical forward order and remove
// internal columns
func (stmt *Statement) Arrange(rows []map[string]any) []map[string]any {
	if len(stmt.Strip) > 0 {
		for _, row := range rows {
			for _, c := range stmt.Strip {
				delete(row, c)
			}
		}
	}
	if stmt.Reverse {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	return rows
}

// Builder statement builder for one dialect
type Builder struct {
	Dialect         Dialect
	PageSize        int
	LinkListMaxRows int
}

// NewBuilder new statement builder
func NewBuilder(dialect Dialect, pageSize, linkListMaxRows int) *Builder {
	if pageSize <= 0 {
		pageSize = common.DefaultCachePageSize
	}
	if linkListMaxRows <= 0 {
		linkListMaxRows = common.DefaultLinkListMaxRows
	}
	return &Builder{Dialect: dialect, PageSize: pageSize, LinkListMaxRows: linkListMaxRows}
}

// BuildStatement generate the dialect specific SQL text and parameters of
// the operation
func (b *Builder) BuildStatement(op OperationKind, req *Request) (*Statement, error) {
	stmt := &Statement{Kind: op}
	var node StatementNode
	var err error
	switch op {
	case SelectByKey:
		node, err = b.selectByKey(req)
	case SelectByID:
		node = &Select{Columns: []Expr{AllOf{"t"}}, From: Table{req.Record.Source(), "t"},
			Where: Eq(C("t", req.Record.IDColumn), P(req.ID))}
	case SelectInList:
		node, err = b.selectInList(req, stmt)
	case SelectInListByRow:
		node, err = b.selectByRow(req, stmt)
	case SelectUsing, SelectUsingNext, SelectUsingPrior:
		node, err = b.selectUsing(op, req, stmt)
	case SelectInArea:
		node = b.selectInArea(req, stmt)
	case SelectJunction:
		node, err = b.selectJunction(req)
	case UpdateRow, UpdateMembership:
		node, err = b.update(req)
	case DeleteRow:
		node = &Delete{Table: req.Record.Table, Where: Eq(C("", req.Record.IDColumn), P(req.ID))}
	case DeleteJunction:
		node, err = b.deleteJunction(req)
	case InsertRow:
		node = b.insert(req.Record.Table, req.Record.IDColumn, req.Values)
	case InsertJunction:
		node, err = b.insertJunction(req)
	default:
		err = errorrepo.NewError("DB000201", op.String(), "")
	}
	if err != nil {
		return nil, err
	}
	switch op {
	case InsertRow, InsertJunction:
		stmt.Identity = b.Dialect.Identity()
		stmt.Query = stmt.Identity == IdentityQuery
		stmt.FollowUp = b.Dialect.IdentityFollowUp()
	case UpdateRow, UpdateMembership, DeleteRow, DeleteJunction:
	default:
		stmt.Query = true
	}
	stmt.SQL, stmt.Args = Render(b.Dialect, node)
	if stmt.Identity == IdentityOutParam && len(stmt.Args) > 0 {
		id := new(int64)
		stmt.Args[len(stmt.Args)-1] = sql.Out{Dest: id}
		stmt.OutID = id
	}
	if log.IsDebugLevel() {
		log.Log.Debugf("Build %s: %s %v", op, stmt.SQL, stmt.Args)
	}
	return stmt, nil
}

func (b *Builder) limit(req *Request) int {
	if req.Limit > 0 {
		return req.Limit
	}
	return b.PageSize
}

func setName(req *Request) string {
	if req.Set == nil {
		return ""
	}
	return req.Set.Name
}

func (b *Builder) selectByKey(req *Request) (StatementNode, error) {
	rec := req.Record
	if len(rec.Keys) == 0 {
		return nil, errorrepo.NewError("DB000201", SelectByKey.String(), rec.Name)
	}
	where := And{}
	for _, k := range rec.Keys {
		where = append(where, Eq(C("t", k), P(valueOf(req.Keys, k))))
	}
	if start := req.Start.Get(rec.IDColumn); !common.IsNull(start) {
		where = append(where, Cmp{Left: C("t", rec.IDColumn), Op: ">", Right: P(start)})
	}
	return &Select{Columns: []Expr{AllOf{"t"}}, From: Table{rec.Source(), "t"}, Where: where,
		OrderBy: []Order{{Expr: C("t", rec.IDColumn)}}, Limit: b.limit(req)}, nil
}

func (b *Builder) selectJunction(req *Request) (StatementNode, error) {
	if req.Set == nil || !req.Set.IsMultiMember() {
		return nil, errorrepo.NewError("DB000201", SelectJunction.String(), setName(req))
	}
	j := req.Set.Junction
	where := And{Eq(C("j", j.MemberColumn), P(req.ID)), Eq(C("j", j.TypeColumn), P(req.Record.Name))}
	if req.OwnerID != nil {
		where = append(where, Eq(C("j", j.OwnerColumn), P(req.OwnerID)))
	}
	return &Select{Columns: []Expr{As{C("j", j.IDColumn), currency.JunctionIDKey},
		As{C("j", j.OwnerColumn), currency.JunctionOwnerKey}},
		From: Table{j.Table, "j"}, Where: where,
		OrderBy: []Order{{Expr: C("j", j.IDColumn)}}, Limit: 1}, nil
}

func sortedColumns(values map[string]any) []string {
	columns := make([]string, 0, len(values))
	for c := range values {
		columns = append(columns, strings.ToUpper(c))
	}
	slices.Sort(columns)
	return columns
}

func (b *Builder) update(req *Request) (StatementNode, error) {
	if len(req.Values) == 0 {
		return nil, errorrepo.NewError("DB000201", UpdateRow.String(), req.Record.Name)
	}
	u := &Update{Table: req.Record.Table, Where: Eq(C("", req.Record.IDColumn), P(req.ID))}
	for _, c := range sortedColumns(req.Values) {
		u.Set = append(u.Set, Assign{Column: c, Value: P(valueOf(req.Values, c))})
	}
	return u, nil
}

func (b *Builder) insert(table, idColumn string, values map[string]any) StatementNode {
	i := &Insert{Table: table, Returning: idColumn}
	for _, c := range sortedColumns(values) {
		if strings.EqualFold(c, idColumn) {
			continue
		}
		i.Columns = append(i.Columns, c)
		i.Values = append(i.Values, P(valueOf(values, c)))
	}
	return i
}

func (b *Builder) insertJunction(req *Request) (StatementNode, error) {
	if req.Set == nil || !req.Set.IsMultiMember() {
		return nil, errorrepo.NewError("DB000201", InsertJunction.String(), setName(req))
	}
	j := req.Set.Junction
	return &Insert{Table: j.Table, Columns: []string{j.OwnerColumn, j.MemberColumn, j.TypeColumn},
		Values:    []Expr{P(req.OwnerID), P(req.ID), P(req.Record.Name)},
		Returning: j.IDColumn}, nil
}

func (b *Builder) deleteJunction(req *Request) (StatementNode, error) {
	if req.Set == nil || !req.Set.IsMultiMember() {
		return nil, errorrepo.NewError("DB000201", DeleteJunction.String(), setName(req))
	}
	j := req.Set.Junction
	where := And{}
	if req.Record != nil {
		where = append(where, Eq(C("", j.MemberColumn), P(req.ID)), Eq(C("", j.TypeColumn), P(req.Record.Name)))
	}
	if req.OwnerID != nil {
		where = append(where, Eq(C("", j.OwnerColumn), P(req.OwnerID)))
	}
	if Empty(where) {
		return nil, errorrepo.NewError("DB000201", DeleteJunction.String(), setName(req))
	}
	return &Delete{Table: j.Table, Where: where}, nil
}

// valueOf map value, key case insensitive
func valueOf(values map[string]any, key string) any {
	if v, ok := values[key]; ok {
		return v
	}
	if v, ok := values[strings.ToUpper(key)]; ok {
		return v
	}
	for k, v := range values {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}
