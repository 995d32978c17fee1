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
	"github.com/tknie/codasyl/dal"
	"github.com/tknie/codasyl/dbsql"
	"github.com/tknie/codasyl/schema"
	"github.com/tknie/log"
)

// Cascade erase policy for the members of sets owned by the erased row
type Cascade byte

const (
	// CascadeNone erase only rows owning no members
	CascadeNone Cascade = iota
	// CascadePermanent erase mandatory members, disconnect optional ones
	CascadePermanent
	// CascadeSelective erase mandatory members and optional members not
	// connected to another set, disconnect the others
	CascadeSelective
	// CascadeAll erase all members
	CascadeAll
)

var cascadeNames = []string{"None", "Permanent", "Selective", "All"}

func (c Cascade) String() string {
	return cascadeNames[c]
}

// memberRow member of a set occurrence found during erase
type memberRow struct {
	record *schema.Record
	row    dal.Row
}

// DeleteRow erase the current row of the record type, which must be
// current of run unit. Members of owned sets are handled by the cascade
// policy. Status 206 reports missing currency, 230 an owner of a non
// empty set erased with CascadeNone, nothing is changed then.
func (ru *RunUnit) DeleteRow(rec dal.Record, cascade Cascade) (common.Status, error) {
	const verb = "DeleteRow"
	r, err := ru.use(rec)
	if err != nil {
		return ru.failed(verb, rec.Name(), err)
	}
	if !ru.currency.CheckRunUnit(r.Name) {
		return ru.result(verb, r.Name, common.StatusEraseNoCurrency)
	}
	rc, _ := ru.currency.Record(r.Name)
	row, err := ru.readByID(r, rc.ID())
	if err != nil {
		return ru.failed(verb, r.Name, err)
	}
	if row == nil {
		return ru.result(verb, r.Name, common.StatusEraseNoCurrency)
	}
	if cascade == CascadeNone {
		for _, s := range ru.schema.OwnedSets(r) {
			found, err := ru.hasMembers(s, rc.ID())
			if err != nil {
				return ru.failed(verb, s.Name, err)
			}
			if found {
				return ru.result(verb, s.Name, common.StatusEraseNotEmpty)
			}
		}
	}
	log.Log.Debugf("Erase %s %v cascade %s", r.Name, rc.ID(), cascade)
	if err = ru.erase(r, row, cascade); err != nil {
		return ru.failed(verb, r.Name, err)
	}
	return ru.result(verb, r.Name, common.StatusOK)
}

// erase erase the row after handling the members of its owned sets and
// its own set memberships
func (ru *RunUnit) erase(r *schema.Record, row dal.Row, cascade Cascade) error {
	id := row.Get(r.IDColumn)
	for _, s := range ru.schema.OwnedSets(r) {
		for {
			members, err := ru.ownedMembers(s, id)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				break
			}
			for _, m := range members {
				// pointers of the page are stale after the first unlink
				m.row, err = ru.readByID(m.record, m.row.Get(m.record.IDColumn))
				if err != nil {
					return err
				}
				if m.row == nil {
					continue
				}
				eraseMember, err := ru.eraseMember(s, m, cascade)
				if err != nil {
					return err
				}
				if eraseMember {
					err = ru.erase(m.record, m.row, cascade)
				} else {
					err = ru.disconnect(m.record, s, m.row, id)
				}
				if err != nil {
					return err
				}
			}
		}
	}
	for _, s := range ru.schema.MemberSets(r) {
		lc, _ := ru.currency.List(s.Name)
		if positionedOn(ru.currency, lc, r, id) {
			if err := ru.stashNeighbors(lc, r, s, row); err != nil {
				return err
			}
		}
		var err error
		switch {
		case s.IsLinked():
			if !common.IsNull(row.Get(s.ForeignKey)) {
				err = ru.unlink(r, s, row)
			}
		case s.IsMultiMember():
			_, err = ru.exec(dbsql.DeleteJunction, &dbsql.Request{Record: r, Set: s, ID: id})
		default:
		}
		if err != nil {
			return err
		}
	}
	for _, s := range ru.schema.OwnedSets(r) {
		if s.IsMultiMember() {
			if _, err := ru.exec(dbsql.DeleteJunction, &dbsql.Request{Set: s, OwnerID: id}); err != nil {
				return err
			}
		}
	}
	if _, err := ru.exec(dbsql.DeleteRow, &dbsql.Request{Record: r, ID: id}); err != nil {
		return err
	}
	ru.currency.MarkDeleted(r.Name, id)
	ru.markCached(r, id)
	log.Log.Debugf("Erased %s %v", r.Name, id)
	return nil
}

// eraseMember the cascade policy erases the member, otherwise it is
// disconnected
func (ru *RunUnit) eraseMember(s *schema.Set, m *memberRow, cascade Cascade) (bool, error) {
	switch cascade {
	case CascadeAll:
		return true, nil
	case CascadePermanent:
		return s.Mandatory, nil
	case CascadeSelective:
		if s.Mandatory {
			return true, nil
		}
		elsewhere, err := ru.connectedElsewhere(m, s)
		return !elsewhere, err
	default:
	}
	return false, nil
}

// connectedElsewhere member is connected to another owned set
func (ru *RunUnit) connectedElsewhere(m *memberRow, except *schema.Set) (bool, error) {
	for _, s := range ru.schema.MemberSets(m.record) {
		if s.Name == except.Name || s.IsSystemOwned() {
			continue
		}
		connected, err := ru.connected(m.record, s, m.row, nil)
		if err != nil {
			return false, err
		}
		if connected {
			return true, nil
		}
	}
	return false, nil
}

// ownedMembers first page of members of the set occurrence
func (ru *RunUnit) ownedMembers(s *schema.Set, ownerID any) ([]*memberRow, error) {
	members := make([]*memberRow, 0)
	if !s.IsMultiMember() {
		r, err := ru.schema.Record(s.Members[0])
		if err != nil {
			return nil, err
		}
		rows, err := ru.query(dbsql.SelectInList, &dbsql.Request{Record: r, Set: s,
			Direction: common.First, OwnerID: ownerID})
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			members = append(members, &memberRow{record: r, row: row})
		}
		return members, nil
	}
	rows, err := ru.query(dbsql.SelectInList, &dbsql.Request{Set: s, Direction: common.First, OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	for _, j := range rows {
		r, err := ru.schema.Record(fmt.Sprintf("%v", j.Get(dbsql.JunctionTypeKey)))
		if err != nil {
			return nil, err
		}
		row, err := ru.readByID(r, j.Get(dbsql.JunctionMemberKey))
		if err != nil {
			return nil, err
		}
		if row == nil {
			log.Log.Errorf("Junction of %s references missing %s", s.Name, r.Name)
			continue
		}
		members = append(members, &memberRow{record: r, row: row})
	}
	if len(members) == 0 && len(rows) > 0 {
		if _, err := ru.exec(dbsql.DeleteJunction, &dbsql.Request{Set: s, OwnerID: ownerID}); err != nil {
			return nil, err
		}
	}
	return members, nil
}
