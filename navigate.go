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
	"fmt"

	"github.com/tknie/codasyl/common"
	"github.com/tknie/codasyl/currency"
	"github.com/tknie/codasyl/dal"
	"github.com/tknie/codasyl/dbsql"
	"github.com/tknie/codasyl/schema"
	"github.com/tknie/log"
)

// GetInList obtain the first, next, prior, last or current member of the
// record type within the set. Status 307 reports the end of the set, the
// set is positioned on its owner afterwards.
func (ru *RunUnit) GetInList(rec dal.Record, setName string, dir common.Direction) (common.Status, error) {
	const verb = "GetInList"
	r, s, err := ru.member(rec, setName)
	if err != nil {
		return ru.failed(verb, setName, err)
	}
	_, st, err := ru.navigate(verb, rec, r, s, dir)
	return st, err
}

// GetMemberInList obtain the next member of any record type within a
// multi-member set. The row is delivered into the working set buffer of
// its record type, which is returned.
func (ru *RunUnit) GetMemberInList(setName string, dir common.Direction) (dal.Record, common.Status, error) {
	const verb = "GetMemberInList"
	if err := ru.check(); err != nil {
		return nil, common.StatusBadRequest, err
	}
	s, err := ru.schema.Set(setName)
	if err != nil {
		st, err := ru.failed(verb, setName, err)
		return nil, st, err
	}
	if !s.IsMultiMember() {
		r, err := ru.schema.Record(s.Members[0])
		if err != nil {
			st, err := ru.failed(verb, setName, err)
			return nil, st, err
		}
		rec := ru.Record(r.Name)
		return ru.navigate(verb, rec, r, s, dir)
	}
	return ru.navigate(verb, nil, nil, s, dir)
}

// cacheOf row cache used to navigate the set. Navigation over all member
// types of a set keeps its own cache.
func (ru *RunUnit) cacheOf(rec dal.Record, s *schema.Set) *dal.RowCache {
	if rec != nil {
		return rec.Cache()
	}
	cache, ok := ru.listCaches[s.Name]
	if !ok {
		cache = dal.NewRowCache()
		ru.listCaches[s.Name] = cache
	}
	return cache
}

func (ru *RunUnit) navigate(verb string, rec dal.Record, r *schema.Record, s *schema.Set, dir common.Direction) (dal.Record, common.Status, error) {
	lc, err := ru.currency.List(s.Name)
	if err != nil {
		st, err := ru.failed(verb, s.Name, err)
		return nil, st, err
	}
	if ru.config.AreaSweepReverse {
		dir = dir.Reverse()
	}
	ownerID := lc.OwnerID(ru.currency)
	if !s.IsSystemOwned() && (common.IsNull(ownerID) || lc.Position == currency.OnNone) {
		st, err := ru.result(verb, s.Name, common.StatusNoCurrency)
		return nil, st, err
	}
	if dir == common.Current {
		return ru.currentInList(verb, rec, r, s, lc)
	}
	cache := ru.cacheOf(rec, s)
	req := &dbsql.Request{Record: r, Set: s, List: lc, Direction: dir, OwnerID: ownerID}

	if (dir == common.Next || dir == common.Prior) && lc.HasStash() {
		p := lc.Next
		if dir == common.Prior {
			p = lc.Prior
		}
		lc.ClearStash()
		if p != nil {
			if p.End {
				return ru.endOfSet(verb, s, lc, cache)
			}
			log.Log.Debugf("%s continue %s from stashed %s %v", verb, s.Name, p.Record, p.Keys)
			req.Start = p.Keys
			req.Inclusive = true
			rows, err := ru.query(dbsql.SelectInList, req)
			if err != nil {
				st, err := ru.failed(verb, s.Name, err)
				return nil, st, err
			}
			return ru.arrive(verb, rec, r, s, lc, cache, rows, dir)
		}
	}
	if lc.Position != currency.OnMemberRow {
		switch dir {
		case common.Next:
			dir = common.First
		case common.Prior:
			dir = common.Last
		default:
		}
		req.Direction = dir
	}
	if dir == common.First || dir == common.Last {
		cache.Clear()
	} else {
		if cache.Matches(setScope(s.Name), ownerID) && onCachedRow(cache, r, s, lc) {
			if i := cache.Advance(cache.Index, dir.Step()); i >= 0 {
				cache.Index = i
				return ru.deliverListRow(verb, rec, r, s, cache.Current())
			}
		}
		req.Start = lc.Member
		req.ByValue = lc.Action == currency.DeletedRow
	}
	rows, err := ru.query(dbsql.SelectInList, req)
	if err != nil {
		st, err := ru.failed(verb, s.Name, err)
		return nil, st, err
	}
	return ru.arrive(verb, rec, r, s, lc, cache, rows, dir)
}

// onCachedRow the cache cursor stands on the set position
func onCachedRow(cache *dal.RowCache, r *schema.Record, s *schema.Set, lc *currency.ListCurrency) bool {
	row := cache.Current()
	if row == nil || lc.Position != currency.OnMemberRow {
		return false
	}
	if s.IsMultiMember() {
		key := row.Get(currency.JunctionIDKey)
		return !common.IsNull(key) && common.SameValue(key, lc.Member.Get(currency.JunctionIDKey))
	}
	return lc.MemberType == r.Name && common.SameValue(row.Get(r.IDColumn), lc.Member.Get(r.IDColumn))
}

// arrive load the query result into the cache and deliver the row in
// read direction
func (ru *RunUnit) arrive(verb string, rec dal.Record, r *schema.Record, s *schema.Set, lc *currency.ListCurrency,
	cache *dal.RowCache, rows []dal.Row, dir common.Direction) (dal.Record, common.Status, error) {
	if len(rows) == 0 {
		return ru.endOfSet(verb, s, lc, cache)
	}
	index := 0
	if dir.Backward() {
		index = len(rows) - 1
	}
	cache.Load(setScope(s.Name), lc.OwnerID(ru.currency), rows, index)
	return ru.deliverListRow(verb, rec, r, s, rows[index])
}

// endOfSet no further member: the set and the run unit return to the owner
func (ru *RunUnit) endOfSet(verb string, s *schema.Set, lc *currency.ListCurrency, cache *dal.RowCache) (dal.Record, common.Status, error) {
	lc.OnOwner(currency.NoRow)
	lc.ClearStash()
	if !s.IsSystemOwned() {
		ru.currency.SetCurrentOfRunUnit(s.Owner, lc.OwnerID(ru.currency))
	}
	cache.Clear()
	st, err := ru.result(verb, s.Name, common.StatusEndOfSet)
	return nil, st, err
}

// deliverListRow deliver a member row reached through the set. Junction
// only rows are completed by reading the member row.
func (ru *RunUnit) deliverListRow(verb string, rec dal.Record, r *schema.Record, s *schema.Set, row dal.Row) (dal.Record, common.Status, error) {
	if r == nil {
		memberType := fmt.Sprintf("%v", row.Get(dbsql.JunctionTypeKey))
		mr, err := ru.schema.Record(memberType)
		if err != nil {
			st, err := ru.failed(verb, s.Name, err)
			return nil, st, err
		}
		full, err := ru.readByID(mr, row.Get(dbsql.JunctionMemberKey))
		if err != nil {
			st, err := ru.failed(verb, s.Name, err)
			return nil, st, err
		}
		if full == nil {
			log.Log.Errorf("Junction row %v of %s references missing %s", row.Get(currency.JunctionIDKey), s.Name, mr.Name)
			st, err := ru.result(verb, s.Name, common.StatusNotFound)
			return nil, st, err
		}
		full[currency.JunctionIDKey] = row.Get(currency.JunctionIDKey)
		full[currency.JunctionOwnerKey] = row.Get(currency.JunctionOwnerKey)
		row = full
		r = mr
		rec = ru.Record(mr.Name)
	}
	if err := ru.deliver(rec, r, row, via(s, row)); err != nil {
		st, err := ru.failed(verb, s.Name, err)
		return nil, st, err
	}
	st, err := ru.result(verb, s.Name, common.StatusOK)
	return rec, st, err
}

// currentInList re-read the current member of the set
func (ru *RunUnit) currentInList(verb string, rec dal.Record, r *schema.Record, s *schema.Set, lc *currency.ListCurrency) (dal.Record, common.Status, error) {
	if lc.Position != currency.OnMemberRow || (r != nil && lc.MemberType != r.Name) {
		st, err := ru.result(verb, s.Name, common.StatusNoCurrency)
		return nil, st, err
	}
	mr, err := ru.schema.Record(lc.MemberType)
	if err != nil {
		st, err := ru.failed(verb, s.Name, err)
		return nil, st, err
	}
	row, err := ru.readByID(mr, lc.Member.Get(mr.IDColumn))
	if err != nil {
		st, err := ru.failed(verb, s.Name, err)
		return nil, st, err
	}
	if row == nil {
		st, err := ru.result(verb, s.Name, common.StatusNotFound)
		return nil, st, err
	}
	if s.IsMultiMember() {
		row[currency.JunctionIDKey] = lc.Member.Get(currency.JunctionIDKey)
		row[currency.JunctionOwnerKey] = lc.OwnerID(ru.currency)
	}
	if rec == nil {
		rec = ru.Record(mr.Name)
	}
	if err := ru.deliver(rec, mr, row, via(s, row)); err != nil {
		st, err := ru.failed(verb, s.Name, err)
		return nil, st, err
	}
	st, err := ru.result(verb, s.Name, common.StatusOK)
	return rec, st, err
}

// GetInListByRow obtain the n-th member of the set, counted from the last
// member if n is negative
func (ru *RunUnit) GetInListByRow(rec dal.Record, setName string, n int) (common.Status, error) {
	const verb = "GetInListByRow"
	r, s, err := ru.member(rec, setName)
	if err != nil {
		return ru.failed(verb, setName, err)
	}
	lc, _ := ru.currency.List(s.Name)
	ownerID := lc.OwnerID(ru.currency)
	if !s.IsSystemOwned() && common.IsNull(ownerID) {
		return ru.result(verb, s.Name, common.StatusNoCurrency)
	}
	if n == 0 {
		return ru.result(verb, s.Name, common.StatusBadRequest)
	}
	rows, err := ru.query(dbsql.SelectInListByRow, &dbsql.Request{Record: r, Set: s, List: lc,
		OwnerID: ownerID, RowNumber: n})
	if err != nil {
		return ru.failed(verb, s.Name, err)
	}
	if len(rows) == 0 {
		return ru.result(verb, s.Name, common.StatusEndOfSet)
	}
	rec.Cache().Load(setScope(s.Name), ownerID, rows[:1], 0)
	_, st, err := ru.deliverListRow(verb, rec, r, s, rows[0])
	return st, err
}

// IsInList check if the current row of the record type is connected to
// the set. Status 0 means member, 1601 not a member. The status is never
// escalated by the auto-status check.
func (ru *RunUnit) IsInList(rec dal.Record, setName string) (common.Status, error) {
	const verb = "IsInList"
	r, s, err := ru.member(rec, setName)
	if err != nil {
		return ru.failed(verb, setName, err)
	}
	rc, _ := ru.currency.Record(r.Name)
	if !rc.HasRow() {
		return ru.ifResult(verb, s.Name, common.StatusIfNoCurrency)
	}
	member := true
	switch {
	case s.IsMultiMember():
		rows, err := ru.query(dbsql.SelectJunction, &dbsql.Request{Record: r, Set: s, ID: rc.ID()})
		if err != nil {
			return ru.failed(verb, s.Name, err)
		}
		member = len(rows) > 0
	case s.HasForeignKey():
		member = !common.IsNull(rc.Keys.Get(s.ForeignKey))
	default:
	}
	if member {
		return ru.ifResult(verb, s.Name, common.StatusOK)
	}
	return ru.ifResult(verb, s.Name, common.StatusNotMember)
}

// IsListEmpty check if the current occurrence of the set has no member.
// Status 0 means empty, 1601 not empty.
func (ru *RunUnit) IsListEmpty(setName string) (common.Status, error) {
	const verb = "IsListEmpty"
	if err := ru.check(); err != nil {
		return common.StatusBadRequest, err
	}
	s, err := ru.schema.Set(setName)
	if err != nil {
		return ru.failed(verb, setName, err)
	}
	lc, _ := ru.currency.List(s.Name)
	ownerID := lc.OwnerID(ru.currency)
	if !s.IsSystemOwned() && common.IsNull(ownerID) {
		return ru.ifResult(verb, s.Name, common.StatusIfNoCurrency)
	}
	found, err := ru.hasMembers(s, ownerID)
	if err != nil {
		return ru.failed(verb, s.Name, err)
	}
	if found {
		return ru.ifResult(verb, s.Name, common.StatusNotMember)
	}
	return ru.ifResult(verb, s.Name, common.StatusOK)
}

// ifResult result of a boolean check, 1601 is an answer and not an error
func (ru *RunUnit) ifResult(verb, name string, st common.Status) (common.Status, error) {
	if st == common.StatusNotMember {
		ru.status = st
		return st, nil
	}
	return ru.result(verb, name, st)
}

// hasMembers the set occurrence of the owner has at least one member
func (ru *RunUnit) hasMembers(s *schema.Set, ownerID any) (bool, error) {
	req := &dbsql.Request{Set: s, Direction: common.First, OwnerID: ownerID, Limit: 1}
	if !s.IsMultiMember() {
		r, err := ru.schema.Record(s.Members[0])
		if err != nil {
			return false, err
		}
		req.Record = r
	}
	rows, err := ru.query(dbsql.SelectInList, req)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// stashNeighbors remember the neighbors of the row in the set before it
// leaves the set, so that NEXT and PRIOR continue from its position
func (ru *RunUnit) stashNeighbors(lc *currency.ListCurrency, r *schema.Record, s *schema.Set, row dal.Row) error {
	ownerID := lc.OwnerID(ru.currency)
	if s.IsLinked() {
		lc.Next = ru.linkPointer(r, row.Get(s.NextColumn))
		lc.Prior = ru.linkPointer(r, row.Get(s.PriorColumn))
		return nil
	}
	start := currency.ExtractKeys(row, r.KeyColumns())
	req := &dbsql.Request{Record: r, Set: s, List: lc, OwnerID: ownerID, Start: start, Limit: 1}
	if s.IsMultiMember() {
		start[currency.JunctionIDKey] = lc.Member.Get(currency.JunctionIDKey)
		req.Record = nil
	}
	for _, dir := range []common.Direction{common.Next, common.Prior} {
		req.Direction = dir
		rows, err := ru.query(dbsql.SelectInList, req)
		if err != nil {
			return err
		}
		p := &currency.Pointer{Record: r.Name, End: len(rows) == 0}
		if len(rows) > 0 {
			if s.IsMultiMember() {
				p.Record = fmt.Sprintf("%v", rows[0].Get(dbsql.JunctionTypeKey))
				p.Keys = currency.Keys{currency.JunctionIDKey: common.NormalizeValue(rows[0].Get(currency.JunctionIDKey))}
			} else {
				p.Keys = currency.ExtractKeys(rows[0], r.KeyColumns())
			}
		}
		if dir == common.Next {
			lc.Next = p
		} else {
			lc.Prior = p
		}
	}
	log.Log.Debugf("Stashed neighbors in %s: next=%v prior=%v", s.Name, lc.Next, lc.Prior)
	return nil
}

func (ru *RunUnit) linkPointer(r *schema.Record, id any) *currency.Pointer {
	if common.IsNull(id) {
		return &currency.Pointer{Record: r.Name, End: true}
	}
	return &currency.Pointer{Record: r.Name, Keys: currency.Keys{r.IDColumn: common.NormalizeValue(id)}}
}
