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

// connection planned automatic connection of a new row, taken from the
// set currency before the insert
type connection struct {
	set     *schema.Set
	ownerID any
	after   any
}

// InsertRow store the buffer as new row. The row is connected to every
// automatic set whose owner is current. Status 1205 reports a duplicate
// key, 1206 a mandatory automatic set without current owner.
func (ru *RunUnit) InsertRow(rec dal.Record) (common.Status, error) {
	const verb = "InsertRow"
	r, err := ru.use(rec)
	if err != nil {
		return ru.failed(verb, rec.Name(), err)
	}
	values, err := ru.columnValues(r, rec)
	if err != nil {
		return ru.failed(verb, r.Name, err)
	}
	connections := make([]*connection, 0)
	for _, s := range ru.schema.MemberSets(r) {
		if s.IsSystemOwned() || s.Manual {
			continue
		}
		lc, _ := ru.currency.List(s.Name)
		ownerID := lc.OwnerID(ru.currency)
		if common.IsNull(ownerID) {
			if s.Mandatory {
				return ru.result(verb, s.Name, common.StatusStoreNoCurrency)
			}
			continue
		}
		if s.HasForeignKey() && !s.IsLinked() {
			values[s.ForeignKey] = ownerID
		}
		connections = append(connections, &connection{set: s, ownerID: ownerID, after: ru.insertPosition(lc, r)})
	}
	dup, err := ru.duplicate(r, nil, values)
	if err != nil {
		return ru.failed(verb, r.Name, err)
	}
	if dup {
		return ru.result(verb, r.Name, common.StatusStoreDup)
	}
	id, err := ru.insert(dbsql.InsertRow, &dbsql.Request{Record: r, Values: values})
	if err != nil {
		if isUnique(err) {
			return ru.result(verb, r.Name, common.StatusStoreDup)
		}
		return ru.failed(verb, r.Name, err)
	}
	log.Log.Debugf("Inserted %s id=%v", r.Name, id)
	var junction currency.Keys
	var viaSet *schema.Set
	for _, c := range connections {
		switch {
		case c.set.IsLinked():
			err = ru.link(r, c.set, id, c.ownerID, c.after)
		case c.set.IsMultiMember():
			var jid any
			jid, err = ru.insert(dbsql.InsertJunction, &dbsql.Request{Record: r, Set: c.set, ID: id, OwnerID: c.ownerID})
			if err == nil && viaSet == nil {
				viaSet = c.set
				junction = currency.Keys{currency.JunctionIDKey: jid, currency.JunctionOwnerKey: c.ownerID}
			}
		default:
		}
		if err != nil {
			if isUnique(err) {
				return ru.result(verb, c.set.Name, common.StatusStoreDup)
			}
			return ru.failed(verb, c.set.Name, err)
		}
	}
	row, err := ru.readByID(r, id)
	if err != nil {
		return ru.failed(verb, r.Name, err)
	}
	if row == nil {
		return ru.result(verb, r.Name, common.StatusNotFound)
	}
	rec.Cache().Load(idScope, nil, []dal.Row{row}, 0)
	p := currency.Propagation{Set: currency.AllSets}
	if viaSet != nil {
		p.Via = viaSet.Name
		p.Junction = junction
	}
	if err = ru.deliver(rec, r, row, p); err != nil {
		return ru.failed(verb, r.Name, err)
	}
	return ru.result(verb, r.Name, common.StatusOK)
}

// insertPosition linked list member the new row is linked behind. Nil
// appends the row at the end of the list.
func (ru *RunUnit) insertPosition(lc *currency.ListCurrency, r *schema.Record) any {
	if !lc.Set.IsLinked() || lc.Position != currency.OnMemberRow || lc.MemberType != r.Name {
		return nil
	}
	switch lc.Action {
	case currency.GoodRow:
		return lc.MemberID(ru.currency)
	case currency.DeletedRow:
		if lc.Prior != nil && !lc.Prior.End {
			return lc.Prior.Keys.Get(r.IDColumn)
		}
	default:
	}
	return nil
}

// ModifyRow update the current row of the record type with the buffer
// values. Status 806 reports that the row is not current of run unit,
// 805 a duplicate key.
func (ru *RunUnit) ModifyRow(rec dal.Record) (common.Status, error) {
	const verb = "ModifyRow"
	r, err := ru.use(rec)
	if err != nil {
		return ru.failed(verb, rec.Name(), err)
	}
	if !ru.currency.CheckRunUnit(r.Name) {
		return ru.result(verb, r.Name, common.StatusModifyNoCurrency)
	}
	rc, _ := ru.currency.Record(r.Name)
	id := rc.ID()
	values, err := ru.columnValues(r, rec)
	if err != nil {
		return ru.failed(verb, r.Name, err)
	}
	if len(values) == 0 {
		return ru.result(verb, r.Name, common.StatusOK)
	}
	check := make(map[string]any, len(values))
	for c, v := range values {
		check[c] = v
	}
	for _, s := range ru.schema.MemberSets(r) {
		if s.HasForeignKey() {
			check[s.ForeignKey] = rc.Keys.Get(s.ForeignKey)
		}
	}
	dup, err := ru.duplicate(r, id, check)
	if err != nil {
		return ru.failed(verb, r.Name, err)
	}
	if dup {
		return ru.result(verb, r.Name, common.StatusModifyDup)
	}
	_, err = ru.exec(dbsql.UpdateRow, &dbsql.Request{Record: r, ID: id, Values: values})
	if err != nil {
		if isUnique(err) {
			return ru.result(verb, r.Name, common.StatusModifyDup)
		}
		return ru.failed(verb, r.Name, err)
	}
	row, err := ru.readByID(r, id)
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

// duplicate another row than self has the unique business key or the
// sort key of a set not allowing duplicates. The values contain the
// foreign keys of the owned sets.
func (ru *RunUnit) duplicate(r *schema.Record, self any, values map[string]any) (bool, error) {
	other := func(rows []dal.Row) bool {
		for _, row := range rows {
			if self == nil || !common.SameValue(row.Get(r.IDColumn), self) {
				return true
			}
		}
		return false
	}
	if r.UniqueKeys && len(r.Keys) > 0 && hasAll(values, r.Keys) {
		rows, err := ru.query(dbsql.SelectByKey, &dbsql.Request{Record: r, Keys: values, Limit: 2})
		if err != nil {
			return false, err
		}
		if other(rows) {
			log.Log.Debugf("Duplicate business key of %s", r.Name)
			return true, nil
		}
	}
	for _, s := range ru.schema.MemberSets(r) {
		if s.Duplicates != schema.DupNotAllowed || len(s.SortKeys) == 0 {
			continue
		}
		columns := make([]string, 0, len(s.SortKeys))
		for _, k := range s.SortKeys {
			columns = append(columns, k.Column)
		}
		if !hasAll(values, columns) {
			continue
		}
		var ownerID any
		if s.HasForeignKey() {
			ownerID = values[s.ForeignKey]
			if common.IsNull(ownerID) {
				continue
			}
		}
		rows, err := ru.query(dbsql.SelectUsing, &dbsql.Request{Record: r, Set: s, OwnerID: ownerID,
			Keys: values, Limit: 2})
		if err != nil {
			return false, err
		}
		if other(rows) {
			log.Log.Debugf("Duplicate sort key of %s in %s", r.Name, s.Name)
			return true, nil
		}
	}
	return false, nil
}

func hasAll(values map[string]any, columns []string) bool {
	for _, c := range columns {
		if common.IsNull(dal.Row(values).Get(c)) {
			return false
		}
	}
	return true
}
