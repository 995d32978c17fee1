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
	"fmt"
	"strconv"

	"github.com/tknie/codasyl/common"
	"github.com/tknie/codasyl/currency"
	"github.com/tknie/codasyl/schema"
	"github.com/tknie/errorrepo"
)

// SetOrder logical forward ordering of the member rows of a set. The
// member id is the final tie break. FIRST sets deliver the newest member
// first and invert the ordering of LAST sets.
func SetOrder(set *schema.Set, rec *schema.Record) []schema.SortKey {
	keys := make([]schema.SortKey, 0, len(set.SortKeys)+1)
	switch set.Order {
	case schema.OrderSorted, schema.OrderSystemIndex:
		keys = append(keys, set.SortKeys...)
		keys = append(keys, schema.SortKey{Column: rec.IDColumn, Descending: set.Duplicates == schema.DupFirst})
	case schema.OrderFirst:
		if set.OrderColumn != "" {
			keys = append(keys, schema.SortKey{Column: set.OrderColumn, Descending: true})
		}
		keys = append(keys, schema.SortKey{Column: rec.IDColumn, Descending: true})
	default:
		if set.OrderColumn != "" {
			keys = append(keys, schema.SortKey{Column: set.OrderColumn})
		}
		keys = append(keys, schema.SortKey{Column: rec.IDColumn})
	}
	return keys
}

func orders(qualifier string, keys []schema.SortKey, backward bool) []Order {
	o := make([]Order, 0, len(keys))
	for _, k := range keys {
		o = append(o, Order{Expr: C(qualifier, k.Column), Desc: k.Descending != backward})
	}
	return o
}

// seek lexicographic predicate selecting the rows behind the start values
// in read direction
func seek(qualifier string, keys []schema.SortKey, values []Expr, backward, inclusive bool) Expr {
	or := Or{}
	for i := range keys {
		and := And{}
		for j := 0; j < i; j++ {
			and = append(and, Eq(C(qualifier, keys[j].Column), values[j]))
		}
		op := ">"
		if keys[i].Descending != backward {
			op = "<"
		}
		if inclusive && i == len(keys)-1 {
			op += "="
		}
		and = append(and, Cmp{Left: C(qualifier, keys[i].Column), Op: op, Right: values[i]})
		or = append(or, and)
	}
	return or
}

func paramValues(keys []schema.SortKey, start currency.Keys) []Expr {
	values := make([]Expr, len(keys))
	for i, k := range keys {
		values[i] = P(start.Get(k.Column))
	}
	return values
}

// setFilter restrict the member rows to the owner occurrence
func setFilter(qualifier string, req *Request) Expr {
	if req.Set == nil || !req.Set.HasForeignKey() {
		return nil
	}
	return Eq(C(qualifier, req.Set.ForeignKey), P(req.OwnerID))
}

func boundary(d common.Direction) bool {
	return d == common.First || d == common.Last
}

func (b *Builder) selectInList(req *Request, stmt *Statement) (StatementNode, error) {
	if req.Set == nil {
		return nil, errorrepo.NewError("DB000201", SelectInList.String(), "")
	}
	if req.Direction == common.Current {
		return nil, errorrepo.NewError("DB000201", SelectInList.String()+" CURRENT", req.Set.Name)
	}
	switch {
	case req.Set.IsMultiMember():
		return b.junctionList(req, stmt), nil
	case req.Set.IsLinked():
		return b.linkList(req, stmt), nil
	}
	rec := req.Record
	keys := SetOrder(req.Set, rec)
	backward := req.Direction.Backward()
	stmt.Reverse = backward
	base := setFilter("t", req)
	startID := req.Start.Get(rec.IDColumn)
	limit := b.limit(req)
	switch {
	case boundary(req.Direction) || req.Start == nil || common.IsNull(startID):
		return &Select{Columns: []Expr{AllOf{"t"}}, From: Table{rec.Source(), "t"}, Where: base,
			OrderBy: orders("t", keys, backward), Limit: limit}, nil
	case req.Inclusive || req.ByValue:
		return &Select{Columns: []Expr{AllOf{"t"}}, From: Table{rec.Source(), "t"},
			Where:   And{base, seek("t", keys, paramValues(keys, req.Start), backward, req.Inclusive)},
			OrderBy: orders("t", keys, backward), Limit: limit}, nil
	case rec.Large:
		lookup := &Select{From: Table{rec.Source(), "s"}, Where: Eq(C("s", rec.IDColumn), P(startID))}
		values := make([]Expr, len(keys))
		for i, k := range keys {
			alias := "K" + strconv.Itoa(i)
			lookup.Columns = append(lookup.Columns, As{C("s", k.Column), alias})
			values[i] = C("k", alias)
		}
		return &Select{Columns: []Expr{AllOf{"t"}}, From: Table{rec.Source(), "t"},
			Joins:   []Join{{Kind: "CROSS JOIN", Source: Derived{Select: lookup, Alias: "k"}}},
			Where:   And{base, seek("t", keys, values, backward, false)},
			OrderBy: orders("t", keys, backward), Limit: limit}, nil
	}
	stmt.Strip = []string{RowNumberColumn}
	body := &Select{Columns: []Expr{AllOf{"t"}, As{RowNumber{OrderBy: orders("t", keys, false)}, RowNumberColumn}},
		From: Table{rec.Source(), "t"}, Where: base}
	op := ">"
	if backward {
		op = "<"
	}
	position := &Select{Columns: []Expr{C("s", RowNumberColumn)}, From: Table{navTable, "s"},
		Where: Eq(C("s", rec.IDColumn), P(startID))}
	return &Select{With: []*CTE{{Name: navTable, Body: body}}, Columns: []Expr{AllOf{"n"}},
		From:    Table{navTable, "n"},
		Where:   Cmp{Left: C("n", RowNumberColumn), Op: op, Right: SubSelect{position}},
		OrderBy: []Order{{Expr: C("n", RowNumberColumn), Desc: backward}}, Limit: limit}, nil
}

// linkCTE recursive walk along the pointer chain of a linked list,
// anchored at the start row or at the head (tail if backward)
func (b *Builder) linkCTE(req *Request, backward bool, anchorID any) *CTE {
	rec, set := req.Record, req.Set
	pointer, end := set.NextColumn, set.PriorColumn
	if backward {
		pointer, end = set.PriorColumn, set.NextColumn
	}
	var anchorWhere Expr
	if common.IsNull(anchorID) {
		anchorWhere = And{Eq(C("a", set.ForeignKey), P(req.OwnerID)), IsNull{Expr: C("a", end)}}
	} else {
		anchorWhere = Eq(C("a", rec.IDColumn), P(anchorID))
	}
	anchor := &Select{Columns: []Expr{C("a", rec.IDColumn), C("a", pointer), Lit("0")},
		From: Table{rec.Table, "a"}, Where: anchorWhere}
	step := &Select{Columns: []Expr{C("c", rec.IDColumn), C("c", pointer), Plus{C("l", "LVL"), Lit("1")}},
		From:  Table{rec.Table, "c"},
		Joins: []Join{{Kind: "JOIN", Source: Table{linkTable, "l"}, On: Eq(C("c", rec.IDColumn), C("l", "NXT"))}},
		Where: Cmp{Left: C("l", "LVL"), Op: "<", Right: Lit(strconv.Itoa(b.LinkListMaxRows))}}
	return &CTE{Name: linkTable, Columns: []string{"ID", "NXT", "LVL"}, Body: anchor, Recursive: step}
}

func (b *Builder) linkList(req *Request, stmt *Statement) StatementNode {
	rec := req.Record
	backward := req.Direction.Backward()
	stmt.Reverse = backward
	var anchorID any
	var where Expr
	if !boundary(req.Direction) {
		anchorID = req.Start.Get(rec.IDColumn)
		if !common.IsNull(anchorID) && !req.Inclusive {
			where = Cmp{Left: C("l", "LVL"), Op: ">", Right: Lit("0")}
		}
	}
	return &Select{With: []*CTE{b.linkCTE(req, backward, anchorID)}, Columns: []Expr{AllOf{"t"}},
		From:    Table{rec.Source(), "t"},
		Joins:   []Join{{Kind: "JOIN", Source: Table{linkTable, "l"}, On: Eq(C("t", rec.IDColumn), C("l", "ID"))}},
		Where:   where,
		OrderBy: []Order{{Expr: C("l", "LVL")}}, Limit: b.limit(req)}
}

// junctionColumns result columns of a multi-member query. Without member
// record only the junction columns are returned.
func junctionColumns(req *Request, qualifier string) []Expr {
	j := req.Set.Junction
	if req.Record == nil {
		return []Expr{As{C(qualifier, j.IDColumn), currency.JunctionIDKey},
			As{C(qualifier, j.OwnerColumn), currency.JunctionOwnerKey},
			As{C(qualifier, j.MemberColumn), JunctionMemberKey},
			As{C(qualifier, j.TypeColumn), JunctionTypeKey}}
	}
	return []Expr{AllOf{"m"}, As{C(qualifier, j.IDColumn), currency.JunctionIDKey},
		As{C(qualifier, j.OwnerColumn), currency.JunctionOwnerKey}}
}

func junctionFilter(req *Request, qualifier string) And {
	j := req.Set.Junction
	where := And{Eq(C(qualifier, j.OwnerColumn), P(req.OwnerID))}
	if req.Record != nil {
		where = append(where, Eq(C(qualifier, j.TypeColumn), P(req.Record.Name)))
	}
	return where
}

func junctionJoin(req *Request, qualifier string) []Join {
	if req.Record == nil {
		return nil
	}
	j := req.Set.Junction
	return []Join{{Kind: "JOIN", Source: Table{req.Record.Source(), "m"},
		On: Eq(C("m", req.Record.IDColumn), C(qualifier, j.MemberColumn))}}
}

func (b *Builder) junctionList(req *Request, stmt *Statement) StatementNode {
	j := req.Set.Junction
	backward := req.Direction.Backward()
	stmt.Reverse = backward
	desc := (req.Set.Order == schema.OrderFirst) != backward
	where := junctionFilter(req, "j")
	if !boundary(req.Direction) {
		start := req.Start.Get(currency.JunctionIDKey)
		if !common.IsNull(start) {
			op := ">"
			if desc {
				op = "<"
			}
			if req.Inclusive {
				op += "="
			}
			where = append(where, Cmp{Left: C("j", j.IDColumn), Op: op, Right: P(start)})
		}
	}
	return &Select{Columns: junctionColumns(req, "j"), From: Table{j.Table, "j"},
		Joins: junctionJoin(req, "j"), Where: where,
		OrderBy: []Order{{Expr: C("j", j.IDColumn), Desc: desc}}, Limit: b.limit(req)}
}

func (b *Builder) selectByRow(req *Request, stmt *Statement) (StatementNode, error) {
	if req.Set == nil || req.RowNumber == 0 {
		return nil, errorrepo.NewError("DB000201", SelectInListByRow.String(), setName(req))
	}
	n := req.RowNumber
	backward := n < 0
	if backward {
		n = -n
	}
	switch {
	case req.Set.IsLinked():
		rec := req.Record
		return &Select{With: []*CTE{b.linkCTE(req, backward, nil)}, Columns: []Expr{AllOf{"t"}},
			From:  Table{rec.Source(), "t"},
			Joins: []Join{{Kind: "JOIN", Source: Table{linkTable, "l"}, On: Eq(C("t", rec.IDColumn), C("l", "ID"))}},
			Where: Eq(C("l", "LVL"), Lit(strconv.Itoa(n-1)))}, nil
	case req.Set.IsMultiMember():
		j := req.Set.Junction
		desc := (req.Set.Order == schema.OrderFirst) != backward
		body := &Select{Columns: []Expr{AllOf{"j"},
			As{RowNumber{OrderBy: []Order{{Expr: C("j", j.IDColumn), Desc: desc}}}, RowNumberColumn}},
			From: Table{j.Table, "j"}, Where: junctionFilter(req, "j")}
		return &Select{With: []*CTE{{Name: navTable, Body: body}}, Columns: junctionColumns(req, "n"),
			From: Table{navTable, "n"}, Joins: junctionJoin(req, "n"),
			Where: Eq(C("n", RowNumberColumn), P(n))}, nil
	}
	rec := req.Record
	stmt.Strip = []string{RowNumberColumn}
	keys := SetOrder(req.Set, rec)
	body := &Select{Columns: []Expr{AllOf{"t"}, As{RowNumber{OrderBy: orders("t", keys, backward)}, RowNumberColumn}},
		From: Table{rec.Source(), "t"}, Where: setFilter("t", req)}
	return &Select{With: []*CTE{{Name: navTable, Body: body}}, Columns: []Expr{AllOf{"n"}},
		From: Table{navTable, "n"}, Where: Eq(C("n", RowNumberColumn), P(n))}, nil
}

// usingKeys leading sort keys of the set a value is given for
func usingKeys(set *schema.Set, values map[string]any) ([]schema.SortKey, []Expr) {
	keys := make([]schema.SortKey, 0)
	params := make([]Expr, 0)
	for _, k := range set.SortKeys {
		v := valueOf(values, k.Column)
		if v == nil {
			break
		}
		keys = append(keys, k)
		params = append(params, P(v))
	}
	return keys, params
}

func (b *Builder) selectUsing(op OperationKind, req *Request, stmt *Statement) (StatementNode, error) {
	set := req.Set
	if set == nil || (set.Order != schema.OrderSorted && set.Order != schema.OrderSystemIndex) {
		return nil, errorrepo.NewError("DB000201", op.String(), setName(req))
	}
	rec := req.Record
	keys, values := usingKeys(set, req.Keys)
	if len(keys) == 0 {
		return nil, errorrepo.NewError("DB000201", op.String(), fmt.Sprintf("%s without sort key", set.Name))
	}
	order := SetOrder(set, rec)
	base := setFilter("t", req)
	sel := &Select{Columns: []Expr{AllOf{"t"}}, From: Table{rec.Source(), "t"}}
	switch op {
	case SelectUsing:
		where := And{base}
		for i, k := range keys {
			where = append(where, Eq(C("t", k.Column), values[i]))
		}
		sel.Where = where
		sel.OrderBy = orders("t", order, false)
		sel.Limit = b.limit(req)
	case SelectUsingNext:
		sel.Where = And{base, seek("t", keys, values, false, false)}
		sel.OrderBy = orders("t", order, false)
		sel.Limit = 1
	case SelectUsingPrior:
		sel.Where = And{base, seek("t", keys, values, true, false)}
		sel.OrderBy = orders("t", order, true)
		sel.Limit = 1
		stmt.Reverse = true
	}
	return sel, nil
}

// selectInArea area sweep over all rows of the record ordered by id
func (b *Builder) selectInArea(req *Request, stmt *Statement) StatementNode {
	rec := req.Record
	keys := []schema.SortKey{{Column: rec.IDColumn}}
	backward := req.Direction.Backward()
	stmt.Reverse = backward
	sel := &Select{Columns: []Expr{AllOf{"t"}}, From: Table{rec.Source(), "t"},
		OrderBy: orders("t", keys, backward), Limit: b.limit(req)}
	startID := req.Start.Get(rec.IDColumn)
	if !boundary(req.Direction) && !common.IsNull(startID) {
		sel.Where = seek("t", keys, []Expr{P(startID)}, backward, req.Inclusive)
	}
	return sel
}
