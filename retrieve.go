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

package codasyl

import (
	"github.com/tknie/codasyl/common"
	"github.com/tknie/codasyl/currency"
	"github.com/tknie/codasyl/dal"
	"github.com/tknie/codasyl/dbsql"
	"github.com/tknie/codasyl/schema"
	"github.com/tknie/log"
)

const (
	keyScope = "KEY"
	idScope  = "ID"
)

// GetByKey obtain the first row with the business key values of the
// buffer. Status 302 reports a null key, 326 no matching row.
func (ru *RunUnit) GetByKey(rec dal.Record) (common.Status, error) {
	const verb = "GetByKey"
	r, err := ru.use(rec)
	if err != nil {
		return ru.failed(verb, rec.Name(), err)
	}
	data, err := rec.Data()
	if err != nil {
		return ru.failed(verb, r.Name, err)
	}
	keys := make(map[string]any, len(r.Keys))
	for _, k := range r.Keys {
		v := data.Get(k)
		if common.IsNull(v) {
			return ru.result(verb, r.Name, common.StatusNullKey)
		}
		keys[k] = v
	}
	rows, err := ru.query(dbsql.SelectByKey, &dbsql.Request{Record: r, Keys: keys})
	if err != nil {
		return ru.failed(verb, r.Name, err)
	}
	if len(rows) == 0 {
		rec.Cache().Clear()
		_ = ru.currency.ResetRecord(r.Name, currency.NoRow)
		return ru.result(verb, r.Name, common.StatusNotFound)
	}
	rec.Cache().Load(keyScope, nil, rows, 0)
	if err = ru.deliver(rec, r, rows[0], via(nil, rows[0])); err != nil {
		return ru.failed(verb, r.Name, err)
	}
	return ru.result(verb, r.Name, common.StatusOK)
}

// GetDuplicate obtain the next row with the same business key as the
// current row of the record type
func (ru *RunUnit) GetDuplicate(rec dal.Record) (common.Status, error) {
	const verb = "GetDuplicate"
	r, err := ru.use(rec)
	if err != nil {
		return ru.failed(verb, rec.Name(), err)
	}
	rc, _ := ru.currency.Record(r.Name)
	if !rc.HasRow() {
		return ru.result(verb, r.Name, common.StatusNoCurrency)
	}
	cache := rec.Cache()
	if cache.Matches(keyScope, nil) && common.SameValue(cache.Current().Get(r.IDColumn), rc.ID()) {
		if i := cache.Advance(cache.Index, 1); i >= 0 {
			cache.Index = i
			if err = ru.deliver(rec, r, cache.Current(), via(nil, nil)); err != nil {
				return ru.failed(verb, r.Name, err)
			}
			return ru.result(verb, r.Name, common.StatusOK)
		}
	}
	keys := make(map[string]any, len(r.Keys))
	for _, k := range r.Keys {
		keys[k] = rc.Keys.Get(k)
	}
	rows, err := ru.query(dbsql.SelectByKey, &dbsql.Request{Record: r, Keys: keys, Start: rc.Keys})
	if err != nil {
		return ru.failed(verb, r.Name, err)
	}
	if len(rows) == 0 {
		return ru.result(verb, r.Name, common.StatusNotFound)
	}
	cache.Load(keyScope, nil, rows, 0)
	if err = ru.deliver(rec, r, rows[0], via(nil, nil)); err != nil {
		return ru.failed(verb, r.Name, err)
	}
	return ru.result(verb, r.Name, common.StatusOK)
}

// GetByIdCol obtain the row by its id column value
func (ru *RunUnit) GetByIdCol(rec dal.Record, id any) (common.Status, error) {
	const verb = "GetByIdCol"
	r, err := ru.use(rec)
	if err != nil {
		return ru.failed(verb, rec.Name(), err)
	}
	row, err := ru.readByID(r, id)
	if err != nil {
		return ru.failed(verb, r.Name, err)
	}
	if row == nil {
		rec.Cache().Clear()
		_ = ru.currency.ResetRecord(r.Name, currency.NoRow)
		return ru.result(verb, r.Name, common.StatusNotFound)
	}
	rec.Cache().Load(idScope, nil, []dal.Row{row}, 0)
	if err = ru.deliver(rec, r, row, via(nil, nil)); err != nil {
		return ru.failed(verb, r.Name, err)
	}
	return ru.result(verb, r.Name, common.StatusOK)
}

// GetCurrent re-read the current row of the record type. Sets positioned
// on another owner keep their position.
func (ru *RunUnit) GetCurrent(rec dal.Record) (common.Status, error) {
	const verb = "GetCurrent"
	r, err := ru.use(rec)
	if err != nil {
		return ru.failed(verb, rec.Name(), err)
	}
	rc, _ := ru.currency.Record(r.Name)
	if !rc.HasRow() {
		return ru.result(verb, r.Name, common.StatusNoCurrency)
	}
	row, err := ru.readByID(r, rc.ID())
	if err != nil {
		return ru.failed(verb, r.Name, err)
	}
	if row == nil {
		return ru.result(verb, r.Name, common.StatusNotFound)
	}
	rec.Cache().Replace(r.IDColumn, row)
	if err = ru.deliver(rec, r, row, currency.Propagation{GetLatest: true}); err != nil {
		return ru.failed(verb, r.Name, err)
	}
	return ru.result(verb, r.Name, common.StatusOK)
}

// GetOwner obtain the owner of the current occurrence of the set
func (ru *RunUnit) GetOwner(rec dal.Record, setName string) (common.Status, error) {
	const verb = "GetOwner"
	r, err := ru.use(rec)
	if err != nil {
		return ru.failed(verb, rec.Name(), err)
	}
	_, s, role, err := ru.schema.Participation(r.Name, setName)
	if err != nil {
		return ru.failed(verb, setName, err)
	}
	if role != schema.RoleOwner {
		return ru.result(verb, s.Name, common.StatusBadRequest)
	}
	lc, _ := ru.currency.List(s.Name)
	ownerID := lc.OwnerID(ru.currency)
	if common.IsNull(ownerID) {
		return ru.result(verb, s.Name, common.StatusNoCurrency)
	}
	row, err := ru.readByID(r, ownerID)
	if err != nil {
		return ru.failed(verb, s.Name, err)
	}
	if row == nil {
		return ru.result(verb, s.Name, common.StatusNotFound)
	}
	rec.Cache().Load(idScope, nil, []dal.Row{row}, 0)
	if err = ru.deliver(rec, r, row, via(nil, nil)); err != nil {
		return ru.failed(verb, s.Name, err)
	}
	return ru.result(verb, s.Name, common.StatusOK)
}

// GetUsing obtain the first member of a sorted set or index with the
// given sort key values. On a miss the status is 326 and the neighbors
// of the missing key are remembered, so that NEXT and PRIOR continue at
// the position the key would have.
func (ru *RunUnit) GetUsing(rec dal.Record, setName string, using map[string]any) (common.Status, error) {
	const verb = "GetUsing"
	r, s, err := ru.member(rec, setName)
	if err != nil {
		return ru.failed(verb, setName, err)
	}
	lc, _ := ru.currency.List(s.Name)
	ownerID := lc.OwnerID(ru.currency)
	if !s.IsSystemOwned() && common.IsNull(ownerID) {
		return ru.result(verb, s.Name, common.StatusNoCurrency)
	}
	req := &dbsql.Request{Record: r, Set: s, List: lc, OwnerID: ownerID, Keys: using}
	rows, err := ru.query(dbsql.SelectUsing, req)
	if err != nil {
		return ru.failed(verb, s.Name, err)
	}
	if len(rows) > 0 {
		rec.Cache().Load(setScope(s.Name), ownerID, rows, 0)
		if err = ru.deliver(rec, r, rows[0], via(s, rows[0])); err != nil {
			return ru.failed(verb, s.Name, err)
		}
		return ru.result(verb, s.Name, common.StatusOK)
	}
	next, err := ru.usingPointer(dbsql.SelectUsingNext, r, req)
	if err != nil {
		return ru.failed(verb, s.Name, err)
	}
	prior, err := ru.usingPointer(dbsql.SelectUsingPrior, r, req)
	if err != nil {
		return ru.failed(verb, s.Name, err)
	}
	lc.Next = next
	lc.Prior = prior
	lc.Action = currency.MissOnUsing
	if lc.Position == currency.OnNone {
		lc.Position = currency.OnOwnerRow
	}
	rec.Cache().Clear()
	log.Log.Debugf("Miss on using %v in %s, next=%v prior=%v", using, s.Name, next, prior)
	return ru.result(verb, s.Name, common.StatusNotFound)
}

func (ru *RunUnit) usingPointer(op dbsql.OperationKind, r *schema.Record, req *dbsql.Request) (*currency.Pointer, error) {
	rows, err := ru.query(op, req)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &currency.Pointer{Record: r.Name, End: true}, nil
	}
	return &currency.Pointer{Record: r.Name, Keys: currency.ExtractKeys(rows[0], r.KeyColumns())}, nil
}

// GetInArea sweep all rows of the record type in id order. NEXT and
// PRIOR continue from the current row of the record type. With area
// sweep reverse configured the sweep runs backwards.
func (ru *RunUnit) GetInArea(rec dal.Record, dir common.Direction) (common.Status, error) {
	const verb = "GetInArea"
	r, err := ru.use(rec)
	if err != nil {
		return ru.failed(verb, rec.Name(), err)
	}
	if ru.config.AreaSweepReverse {
		dir = dir.Reverse()
	}
	rc, _ := ru.currency.Record(r.Name)
	if dir == common.Current {
		return ru.GetCurrent(rec)
	}
	if (dir == common.Next || dir == common.Prior) && common.IsNull(rc.ID()) {
		if dir == common.Next {
			dir = common.First
		} else {
			dir = common.Last
		}
	}
	scope := "AREA:" + r.Area
	cache := rec.Cache()
	if dir == common.Next || dir == common.Prior {
		if cache.Matches(scope, nil) && common.SameValue(cache.Current().Get(r.IDColumn), rc.ID()) {
			if i := cache.Advance(cache.Index, dir.Step()); i >= 0 {
				cache.Index = i
				if err = ru.deliver(rec, r, cache.Current(), via(nil, nil)); err != nil {
					return ru.failed(verb, r.Name, err)
				}
				return ru.result(verb, r.Name, common.StatusOK)
			}
		}
	}
	req := &dbsql.Request{Record: r, Direction: dir}
	if dir == common.Next || dir == common.Prior {
		req.Start = rc.Keys
	}
	rows, err := ru.query(dbsql.SelectInArea, req)
	if err != nil {
		return ru.failed(verb, r.Name, err)
	}
	if len(rows) == 0 {
		cache.Clear()
		return ru.result(verb, r.Name, common.StatusEndOfSet)
	}
	index := 0
	if dir.Backward() {
		index = len(rows) - 1
	}
	cache.Load(scope, nil, rows, index)
	if err = ru.deliver(rec, r, rows[index], via(nil, nil)); err != nil {
		return ru.failed(verb, r.Name, err)
	}
	return ru.result(verb, r.Name, common.StatusOK)
}

// ReturnKey navigate a sorted set or index and return the sort keys and
// id of the member without reading it into a buffer. Record currency is
// not changed. Status 1707 reports the end of the index.
func (ru *RunUnit) ReturnKey(setName string, dir common.Direction) (dal.Row, common.Status, error) {
	const verb = "ReturnKey"
	r, s, lc, st, err := ru.indexTarget(verb, setName)
	if r == nil {
		return nil, st, err
	}
	req := &dbsql.Request{Record: r, Set: s, List: lc, OwnerID: lc.OwnerID(ru.currency),
		Direction: dir, Limit: 1}
	position, positioned := ru.indexPos[s.Name]
	switch dir {
	case common.Next, common.Prior:
		if !positioned {
			req.Direction = common.First
			if dir == common.Prior {
				req.Direction = common.Last
			}
		}
		req.Start = position
	case common.Current:
		if !positioned {
			st, err := ru.result(verb, s.Name, common.StatusIndexNotFound)
			return nil, st, err
		}
		st, err := ru.result(verb, s.Name, common.StatusOK)
		return dal.Row(position.Clone()), st, err
	default:
	}
	rows, err := ru.query(dbsql.SelectInList, req)
	if err != nil {
		st, err := ru.failed(verb, s.Name, err)
		return nil, st, err
	}
	if len(rows) == 0 {
		delete(ru.indexPos, s.Name)
		st, err := ru.result(verb, s.Name, common.StatusIndexEnd)
		return nil, st, err
	}
	return ru.returned(verb, r, s, rows[0])
}

// ReturnUsing position the index on the first member with the sort key
// values and return its keys. Status 1726 reports a miss.
func (ru *RunUnit) ReturnUsing(setName string, using map[string]any) (dal.Row, common.Status, error) {
	const verb = "ReturnUsing"
	r, s, lc, st, err := ru.indexTarget(verb, setName)
	if r == nil {
		return nil, st, err
	}
	rows, err := ru.query(dbsql.SelectUsing, &dbsql.Request{Record: r, Set: s, List: lc,
		OwnerID: lc.OwnerID(ru.currency), Keys: using, Limit: 1})
	if err != nil {
		st, err := ru.failed(verb, s.Name, err)
		return nil, st, err
	}
	if len(rows) == 0 {
		st, err := ru.result(verb, s.Name, common.StatusIndexNotFound)
		return nil, st, err
	}
	return ru.returned(verb, r, s, rows[0])
}

func (ru *RunUnit) indexTarget(verb, setName string) (*schema.Record, *schema.Set, *currency.ListCurrency, common.Status, error) {
	if err := ru.check(); err != nil {
		return nil, nil, nil, common.StatusBadRequest, err
	}
	s, err := ru.schema.Set(setName)
	if err != nil {
		st, err := ru.failed(verb, setName, err)
		return nil, nil, nil, st, err
	}
	if s.Order != schema.OrderSorted && s.Order != schema.OrderSystemIndex {
		st, err := ru.result(verb, s.Name, common.StatusBadRequest)
		return nil, nil, nil, st, err
	}
	r, err := ru.schema.Record(s.Members[0])
	if err != nil {
		st, err := ru.failed(verb, setName, err)
		return nil, nil, nil, st, err
	}
	lc, _ := ru.currency.List(s.Name)
	if !s.IsSystemOwned() && common.IsNull(lc.OwnerID(ru.currency)) {
		st, err := ru.result(verb, s.Name, common.StatusNoCurrency)
		return nil, nil, nil, st, err
	}
	return r, s, lc, common.StatusOK, nil
}

// returned keep the index position and return the key columns
func (ru *RunUnit) returned(verb string, r *schema.Record, s *schema.Set, row dal.Row) (dal.Row, common.Status, error) {
	columns := []string{r.IDColumn}
	for _, k := range s.SortKeys {
		columns = append(columns, k.Column)
	}
	keys := currency.ExtractKeys(row, columns)
	ru.indexPos[s.Name] = keys
	st, err := ru.result(verb, s.Name, common.StatusOK)
	return dal.Row(keys.Clone()), st, err
}
