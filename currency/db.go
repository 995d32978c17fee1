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

package currency

import (
	"github.com/tknie/codasyl/common"
	"github.com/tknie/codasyl/schema"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
	"golang.org/x/exp/slices"
)

const (
	// JunctionIDKey member key carrying the junction row id of a
	// multi-member set position
	JunctionIDKey = "JROW_ID"
	// JunctionOwnerKey owner id of the junction row
	JunctionOwnerKey = "JOWNER_ID"
)

// AllSets propagate to every set the record participates in
const AllSets = ""

// Link adjacency entry of a record type
type Link struct {
	List int
	Role schema.Role
}

// Propagation controls which set currencies are updated after a row
// was reached
type Propagation struct {
	// Set name of the single set to update, AllSets for every set
	Set string
	// GetLatest leaves member sets untouched whose current owner differs
	// from the owner referenced by the row
	GetLatest bool
	// Via multi-member set the row was reached through
	Via string
	// Junction junction keys of the row in the Via set
	Junction Keys
}

// DBCurrency run unit currency
type DBCurrency struct {
	schema      *schema.Schema
	records     []*RecordCurrency
	lists       []*ListCurrency
	recordIndex map[string]int
	listIndex   map[string]int
	adjacency   [][]Link

	// current of run unit
	CurrentRecord string
	CurrentID     any
}

// New create the currency arena for all records and sets of the schema
func New(s *schema.Schema) *DBCurrency {
	db := &DBCurrency{schema: s, recordIndex: make(map[string]int),
		listIndex: make(map[string]int)}
	for _, r := range s.RecordList {
		rc := &RecordCurrency{Handle: len(db.records), Name: r.Name,
			IDColumn: r.IDColumn, Keys: make(Keys), Action: NoRow, Roles: r.Roles}
		db.recordIndex[r.Name] = rc.Handle
		db.records = append(db.records, rc)
		db.adjacency = append(db.adjacency, nil)
	}
	for _, st := range s.SetList {
		lc := &ListCurrency{Handle: len(db.lists), Name: st.Name, Set: st,
			Order: st.Order, ForeignKey: st.ForeignKey, SortKeys: st.SortColumns(),
			OwnerRecord: -1, Position: OnNone, Action: NoRow}
		if st.Owner != "" {
			lc.OwnerRecord = db.recordIndex[st.Owner]
			db.adjacency[lc.OwnerRecord] = append(db.adjacency[lc.OwnerRecord],
				Link{List: lc.Handle, Role: schema.RoleOwner})
		}
		for _, m := range st.Members {
			h := db.recordIndex[m]
			lc.MemberRecords = append(lc.MemberRecords, h)
			db.adjacency[h] = append(db.adjacency[h], Link{List: lc.Handle, Role: schema.RoleMember})
		}
		db.listIndex[st.Name] = lc.Handle
		db.lists = append(db.lists, lc)
	}
	return db
}

// Schema schema the currency is build for
func (db *DBCurrency) Schema() *schema.Schema {
	return db.schema
}

// Record record currency by name
func (db *DBCurrency) Record(name string) (*RecordCurrency, error) {
	if h, ok := db.recordIndex[schema.Normalize(name)]; ok {
		return db.records[h], nil
	}
	return nil, errorrepo.NewError("DB000101", name)
}

// List set currency by name
func (db *DBCurrency) List(name string) (*ListCurrency, error) {
	if h, ok := db.listIndex[schema.Normalize(name)]; ok {
		return db.lists[h], nil
	}
	return nil, errorrepo.NewError("DB000102", name)
}

// Links sets the record type participates in
func (db *DBCurrency) Links(recordName string) []Link {
	if h, ok := db.recordIndex[schema.Normalize(recordName)]; ok {
		return db.adjacency[h]
	}
	return nil
}

// OwnerCurrency record currency of the set owner type, nil if system owned
func (db *DBCurrency) OwnerCurrency(lc *ListCurrency) *RecordCurrency {
	if lc.OwnerRecord < 0 {
		return nil
	}
	return db.records[lc.OwnerRecord]
}

// SetCurrentOfRunUnit set current of run unit
func (db *DBCurrency) SetCurrentOfRunUnit(recordName string, id any) {
	db.CurrentRecord = recordName
	db.CurrentID = common.NormalizeValue(id)
}

// CheckRunUnit current of run unit is the current row of the record type
func (db *DBCurrency) CheckRunUnit(recordName string) bool {
	rc, err := db.Record(recordName)
	if err != nil || !rc.HasRow() {
		return false
	}
	return db.CurrentRecord == rc.Name && common.SameValue(db.CurrentID, rc.ID())
}

// SetRecordCurrency make the row current of its record type, of run unit
// and of the sets selected by the propagation
func (db *DBCurrency) SetRecordCurrency(recordName string, row map[string]any, p Propagation) (*RecordCurrency, error) {
	rc, err := db.Record(recordName)
	if err != nil {
		return nil, err
	}
	r, err := db.schema.Record(rc.Name)
	if err != nil {
		return nil, err
	}
	rc.Keys = ExtractKeys(row, r.KeyColumns())
	rc.Action = GoodRow
	db.SetCurrentOfRunUnit(rc.Name, rc.ID())

	targets := make([]Link, 0)
	for _, link := range db.adjacency[rc.Handle] {
		if p.Set == AllSets || db.lists[link.List].Name == schema.Normalize(p.Set) {
			targets = append(targets, link)
		}
	}
	protected := make([]int, 0, len(targets))
	for _, link := range targets {
		protected = append(protected, link.List)
	}
	for _, link := range targets {
		lc := db.lists[link.List]
		switch link.Role {
		case schema.RoleMember:
			db.propagateMember(rc, lc, p)
		case schema.RoleOwner:
			db.propagateOwner(rc, lc, protected)
		}
	}
	if log.IsDebugLevel() {
		log.Log.Debugf("Currency %s propagated to %d sets", rc, len(targets))
	}
	return rc, nil
}

func (db *DBCurrency) propagateMember(rc *RecordCurrency, lc *ListCurrency, p Propagation) {
	switch {
	case lc.Set.IsMultiMember():
		if p.Junction == nil || schema.Normalize(p.Via) != lc.Name {
			return
		}
		ownerID := p.Junction.Get(JunctionOwnerKey)
		if !common.IsNull(ownerID) && !common.SameValue(ownerID, lc.OwnerID(db)) {
			lc.Owner = Keys{db.records[lc.OwnerRecord].IDColumn: ownerID}
		}
		lc.Member = rc.Keys.Clone()
		lc.Member[JunctionIDKey] = common.NormalizeValue(p.Junction.Get(JunctionIDKey))
	case lc.Set.HasForeignKey():
		fk := rc.Keys.Get(lc.ForeignKey)
		if common.IsNull(fk) {
			lc.Member = nil
			lc.MemberType = ""
			lc.Position = OnNone
			lc.Action = NoRow
			lc.ClearStash()
			return
		}
		current := lc.OwnerID(db)
		if !common.SameValue(fk, current) {
			if p.GetLatest && current != nil {
				log.Log.Debugf("GetLatest keeps set %s on owner %v", lc.Name, current)
				return
			}
			lc.Owner = Keys{db.records[lc.OwnerRecord].IDColumn: fk}
		}
		lc.Member = rc.Keys.Clone()
	default:
		lc.Member = rc.Keys.Clone()
	}
	lc.MemberType = rc.Name
	lc.Position = OnMemberRow
	lc.Action = GoodRow
	lc.ClearStash()
}

func (db *DBCurrency) propagateOwner(rc *RecordCurrency, lc *ListCurrency, protected []int) {
	previous := lc.OwnerID(db)
	lc.Owner = rc.Keys.Clone()
	lc.OnOwner(GoodRow)
	lc.ClearStash()
	if previous != nil && !common.SameValue(previous, rc.ID()) {
		db.DropSubsequentListCurrencies(lc.Handle, protected)
	}
}

// DropSubsequentListCurrencies reset the set currencies depending on the
// member rows of the triggering set: every set owned by a member type of
// the trigger, and transitively the sets owned by their members. The
// traversal never resets the trigger or protected sets and does not
// continue past sets already without position.
func (db *DBCurrency) DropSubsequentListCurrencies(trigger int, protected []int) []string {
	visited := map[int]bool{trigger: true}
	for _, p := range protected {
		visited[p] = true
	}
	dropped := make([]string, 0)
	queue := append([]int{}, db.lists[trigger].MemberRecords...)
	seenRecords := make(map[int]bool)
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		if seenRecords[r] {
			continue
		}
		seenRecords[r] = true
		for _, link := range db.adjacency[r] {
			if link.Role != schema.RoleOwner || visited[link.List] {
				continue
			}
			visited[link.List] = true
			lc := db.lists[link.List]
			if lc.IsReset() {
				continue
			}
			lc.Reset()
			dropped = append(dropped, lc.Name)
			queue = append(queue, lc.MemberRecords...)
		}
	}
	if len(dropped) > 0 {
		log.Log.Debugf("Owner change in %s drops %v", db.lists[trigger].Name, dropped)
	}
	return dropped
}

// MarkDeleted mark the row as erased in the record currency and in all set
// currencies positioned on it. Sets owned by the row stay on the erased
// owner without member, so they read as empty.
func (db *DBCurrency) MarkDeleted(recordName string, id any) {
	rc, err := db.Record(recordName)
	if err != nil {
		return
	}
	if common.SameValue(rc.ID(), id) {
		rc.Action = DeletedRow
	}
	for _, link := range db.adjacency[rc.Handle] {
		lc := db.lists[link.List]
		switch link.Role {
		case schema.RoleMember:
			if lc.MemberType == rc.Name && common.SameValue(lc.Member.Get(rc.IDColumn), id) {
				lc.Action = DeletedRow
			}
		case schema.RoleOwner:
			if common.SameValue(lc.OwnerID(db), id) {
				lc.OnOwner(DeletedRow)
				lc.ClearStash()
			}
		}
	}
}

// ResetList reset the set currency
func (db *DBCurrency) ResetList(name string) error {
	lc, err := db.List(name)
	if err != nil {
		return err
	}
	lc.Reset()
	return nil
}

// ResetRecord reset the record currency
func (db *DBCurrency) ResetRecord(name string, action Action) error {
	rc, err := db.Record(name)
	if err != nil {
		return err
	}
	rc.Keys = make(Keys)
	rc.Action = action
	return nil
}

// CopyFrom copy all currency state of another run unit with the same schema
func (db *DBCurrency) CopyFrom(other *DBCurrency) {
	for _, orc := range other.records {
		if h, ok := db.recordIndex[orc.Name]; ok {
			rc := db.records[h]
			rc.Keys = orc.Keys.Clone()
			rc.Action = orc.Action
		}
	}
	for _, olc := range other.lists {
		if h, ok := db.listIndex[olc.Name]; ok {
			lc := db.lists[h]
			lc.Owner = olc.Owner.Clone()
			lc.Member = olc.Member.Clone()
			lc.MemberType = olc.MemberType
			lc.Position = olc.Position
			lc.Action = olc.Action
			lc.Next = clonePointer(olc.Next)
			lc.Prior = clonePointer(olc.Prior)
		}
	}
	db.CurrentRecord = other.CurrentRecord
	db.CurrentID = other.CurrentID
}

func clonePointer(p *Pointer) *Pointer {
	if p == nil {
		return nil
	}
	return &Pointer{Record: p.Record, Keys: p.Keys.Clone(), End: p.End}
}

// ListNames set names known to the currency, ordered by handle
func (db *DBCurrency) ListNames() []string {
	names := make([]string, 0, len(db.lists))
	for _, lc := range db.lists {
		names = append(names, lc.Name)
	}
	return names
}

// IsMemberType record type is declared member of the set
func (db *DBCurrency) IsMemberType(lc *ListCurrency, recordName string) bool {
	h, ok := db.recordIndex[schema.Normalize(recordName)]
	return ok && slices.Contains(lc.MemberRecords, h)
}
