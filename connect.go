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

// IncludeInList connect the current row of the record type to the
// current occurrence of the set. Linked lists get the row behind the
// current member, or at the end if the set is not on a member. Status
// 706 reports missing currency, 716 an already connected row and 705 a
// duplicate sort key.
func (ru *RunUnit) IncludeInList(rec dal.Record, setName string) (common.Status, error) {
	const verb = "IncludeInList"
	r, s, err := ru.member(rec, setName)
	if err != nil {
		return ru.failed(verb, setName, err)
	}
	rc, _ := ru.currency.Record(r.Name)
	lc, _ := ru.currency.List(s.Name)
	ownerID := lc.OwnerID(ru.currency)
	if !rc.HasRow() || s.IsSystemOwned() || common.IsNull(ownerID) {
		if s.IsSystemOwned() && rc.HasRow() {
			return ru.result(verb, s.Name, common.StatusConnected)
		}
		return ru.result(verb, s.Name, common.StatusConnectNoCurrency)
	}
	id := rc.ID()
	row, err := ru.readByID(r, id)
	if err != nil {
		return ru.failed(verb, s.Name, err)
	}
	if row == nil {
		return ru.result(verb, s.Name, common.StatusConnectNoCurrency)
	}
	connected, err := ru.connected(r, s, row, ownerID)
	if err != nil {
		return ru.failed(verb, s.Name, err)
	}
	if connected {
		return ru.result(verb, s.Name, common.StatusConnected)
	}
	var junction currency.Keys
	switch {
	case s.IsMultiMember():
		var jid any
		jid, err = ru.insert(dbsql.InsertJunction, &dbsql.Request{Record: r, Set: s, ID: id, OwnerID: ownerID})
		junction = currency.Keys{currency.JunctionIDKey: jid, currency.JunctionOwnerKey: ownerID}
	case s.IsLinked():
		err = ru.link(r, s, id, ownerID, ru.insertPosition(lc, r))
	default:
		check := row.Clone()
		check[s.ForeignKey] = ownerID
		var dup bool
		dup, err = ru.duplicate(r, id, check)
		if err == nil && dup {
			return ru.result(verb, s.Name, common.StatusConnectDup)
		}
		if err == nil {
			err = ru.update(r, id, map[string]any{s.ForeignKey: ownerID})
		}
	}
	if err != nil {
		if isUnique(err) {
			return ru.result(verb, s.Name, common.StatusConnectDup)
		}
		return ru.failed(verb, s.Name, err)
	}
	row, err = ru.readByID(r, id)
	if err != nil {
		return ru.failed(verb, s.Name, err)
	}
	if junction != nil {
		row[currency.JunctionIDKey] = junction.Get(currency.JunctionIDKey)
		row[currency.JunctionOwnerKey] = ownerID
	}
	rec.Cache().Replace(r.IDColumn, row)
	if err = ru.deliver(rec, r, row, currency.Propagation{Set: s.Name, Via: s.Name, Junction: junction}); err != nil {
		return ru.failed(verb, s.Name, err)
	}
	log.Log.Debugf("Connected %s %v to %s owner %v", r.Name, id, s.Name, ownerID)
	return ru.result(verb, s.Name, common.StatusOK)
}

// ExcludeFromList disconnect the current row of the record type from the
// set. Status 1106 reports a row that is not connected, 1108 a mandatory
// set. Neither rolls back the transaction.
func (ru *RunUnit) ExcludeFromList(rec dal.Record, setName string) (common.Status, error) {
	const verb = "ExcludeFromList"
	r, s, err := ru.member(rec, setName)
	if err != nil {
		return ru.failed(verb, setName, err)
	}
	if s.Mandatory || s.IsSystemOwned() {
		return ru.result(verb, s.Name, common.StatusMandatory)
	}
	rc, _ := ru.currency.Record(r.Name)
	if !rc.HasRow() {
		return ru.result(verb, s.Name, common.StatusNotConnected)
	}
	id := rc.ID()
	row, err := ru.readByID(r, id)
	if err != nil {
		return ru.failed(verb, s.Name, err)
	}
	if row == nil {
		return ru.result(verb, s.Name, common.StatusNotConnected)
	}
	lc, _ := ru.currency.List(s.Name)
	ownerID := lc.OwnerID(ru.currency)
	connected, err := ru.connected(r, s, row, ownerID)
	if err != nil {
		return ru.failed(verb, s.Name, err)
	}
	if !connected {
		return ru.result(verb, s.Name, common.StatusNotConnected)
	}
	if err = ru.disconnect(r, s, row, ownerID); err != nil {
		return ru.failed(verb, s.Name, err)
	}
	row, err = ru.readByID(r, id)
	if err != nil {
		return ru.failed(verb, s.Name, err)
	}
	if row != nil {
		rc.Keys = currency.ExtractKeys(row, r.KeyColumns())
		if err = rec.SetData(row); err != nil {
			return ru.failed(verb, s.Name, err)
		}
		rec.Cache().Replace(r.IDColumn, row)
	}
	return ru.result(verb, s.Name, common.StatusOK)
}

// connected row is connected to an occurrence of the set. Multi-member
// sets only check the occurrence of ownerID unless it is null.
func (ru *RunUnit) connected(r *schema.Record, s *schema.Set, row dal.Row, ownerID any) (bool, error) {
	switch {
	case s.IsSystemOwned():
		return true, nil
	case s.IsMultiMember():
		req := &dbsql.Request{Record: r, Set: s, ID: row.Get(r.IDColumn)}
		if !common.IsNull(ownerID) {
			req.OwnerID = ownerID
		}
		rows, err := ru.query(dbsql.SelectJunction, req)
		if err != nil {
			return false, err
		}
		return len(rows) > 0, nil
	}
	return !common.IsNull(row.Get(s.ForeignKey)), nil
}

// disconnect remove the row from the set. A set positioned on the row
// remembers the neighbors and marks its member deleted. Junction rows of
// multi-member sets are removed for the occurrence of ownerID only.
func (ru *RunUnit) disconnect(r *schema.Record, s *schema.Set, row dal.Row, ownerID any) error {
	id := row.Get(r.IDColumn)
	lc, _ := ru.currency.List(s.Name)
	positioned := positionedOn(ru.currency, lc, r, id)
	if positioned {
		if err := ru.stashNeighbors(lc, r, s, row); err != nil {
			return err
		}
	}
	var err error
	switch {
	case s.IsMultiMember():
		req := &dbsql.Request{Record: r, Set: s, ID: id}
		if !common.IsNull(ownerID) {
			req.OwnerID = ownerID
		}
		_, err = ru.exec(dbsql.DeleteJunction, req)
	case s.IsLinked():
		err = ru.unlink(r, s, row)
	default:
		err = ru.update(r, id, map[string]any{s.ForeignKey: nil})
	}
	if err != nil {
		return err
	}
	if positioned {
		lc.Action = currency.DeletedRow
	}
	scope := setScope(s.Name)
	for _, rec := range ru.records {
		if rec.Name() == r.Name && rec.Cache().Scope == scope {
			rec.Cache().MarkDeleted(r.IDColumn, id)
		}
	}
	if cache, ok := ru.listCaches[s.Name]; ok {
		cache.MarkDeletedWhere(func(cached dal.Row) bool {
			return common.SameValue(cached.Get(dbsql.JunctionMemberKey), id) &&
				common.SameValue(cached.Get(dbsql.JunctionTypeKey), r.Name)
		})
	}
	rc, _ := ru.currency.Record(r.Name)
	if common.SameValue(rc.ID(), id) && s.HasForeignKey() {
		rc.Keys[s.ForeignKey] = nil
		if s.IsLinked() {
			rc.Keys[s.NextColumn] = nil
			rc.Keys[s.PriorColumn] = nil
		}
	}
	log.Log.Debugf("Disconnected %s %v from %s", r.Name, id, s.Name)
	return nil
}

// positionedOn set currency stands on the row
func positionedOn(db *currency.DBCurrency, lc *currency.ListCurrency, r *schema.Record, id any) bool {
	return lc.Position == currency.OnMemberRow && lc.MemberType == r.Name &&
		common.SameValue(lc.MemberID(db), id)
}

// link chain the row into the linked list behind the member with id
// after. Without after the row becomes the last member.
func (ru *RunUnit) link(r *schema.Record, s *schema.Set, id, ownerID, after any) error {
	var next any
	if common.IsNull(after) {
		rows, err := ru.query(dbsql.SelectInList, &dbsql.Request{Record: r, Set: s, Direction: common.Last,
			OwnerID: ownerID, Limit: 1})
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			after = rows[0].Get(r.IDColumn)
		}
	} else {
		row, err := ru.readByID(r, after)
		if err != nil {
			return err
		}
		if row != nil {
			next = row.Get(s.NextColumn)
		}
	}
	log.Log.Debugf("Link %s %v into %s between %v and %v", r.Name, id, s.Name, after, next)
	err := ru.update(r, id, map[string]any{s.ForeignKey: ownerID, s.PriorColumn: after, s.NextColumn: next})
	if err != nil {
		return err
	}
	if !common.IsNull(after) {
		if err = ru.update(r, after, map[string]any{s.NextColumn: id}); err != nil {
			return err
		}
	}
	if !common.IsNull(next) {
		if err = ru.update(r, next, map[string]any{s.PriorColumn: id}); err != nil {
			return err
		}
	}
	return nil
}

// unlink take the row out of the pointer chain and clear its membership
func (ru *RunUnit) unlink(r *schema.Record, s *schema.Set, row dal.Row) error {
	id := row.Get(r.IDColumn)
	prior := row.Get(s.PriorColumn)
	next := row.Get(s.NextColumn)
	if !common.IsNull(prior) {
		if err := ru.update(r, prior, map[string]any{s.NextColumn: next}); err != nil {
			return err
		}
	}
	if !common.IsNull(next) {
		if err := ru.update(r, next, map[string]any{s.PriorColumn: prior}); err != nil {
			return err
		}
	}
	return ru.update(r, id, map[string]any{s.ForeignKey: nil, s.PriorColumn: nil, s.NextColumn: nil})
}
