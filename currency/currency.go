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

// Package currency keeps the run unit currency: the current row of every
// record type, the current position in every set and the current record
// of run unit. Record and set currencies live in an arena and reference
// each other by integer handles.
package currency

import (
	"fmt"
	"strings"

	"github.com/tknie/codasyl/common"
	"github.com/tknie/codasyl/schema"
)

// Action state of the last row reached through a currency
type Action byte

const (
	GoodRow Action = iota
	NoRow
	DeletedRow
	MissOnUsing
)

var actionNames = []string{"GoodRow", "NoRow", "DeletedRow", "MissOnUsing"}

func (a Action) String() string {
	return actionNames[a]
}

// Position position of a set currency
type Position byte

const (
	OnNone Position = iota
	OnOwnerRow
	OnMemberRow
)

var positionNames = []string{"OnNone", "OnOwnerRow", "OnMemberRow"}

func (p Position) String() string {
	return positionNames[p]
}

// Keys key column values of a row, column names upper case
type Keys map[string]any

// Clone shallow copy of the key values
func (k Keys) Clone() Keys {
	if k == nil {
		return nil
	}
	n := make(Keys, len(k))
	for c, v := range k {
		n[c] = v
	}
	return n
}

// Get key value, column name case insensitive
func (k Keys) Get(column string) any {
	if k == nil {
		return nil
	}
	if v, ok := k[column]; ok {
		return v
	}
	return k[strings.ToUpper(column)]
}

// ExtractKeys copy the given columns out of a row
func ExtractKeys(row map[string]any, columns []string) Keys {
	keys := make(Keys, len(columns))
	for _, c := range columns {
		uc := strings.ToUpper(c)
		if v, ok := row[uc]; ok {
			keys[uc] = common.NormalizeValue(v)
		} else if v, ok := row[c]; ok {
			keys[uc] = common.NormalizeValue(v)
		} else {
			keys[uc] = nil
		}
	}
	return keys
}

// RecordCurrency current row of one record type
type RecordCurrency struct {
	Handle   int
	Name     string
	IDColumn string
	Keys     Keys
	Action   Action
	Roles    map[string]schema.Role
}

// ID id value of the current row, nil if none
func (rc *RecordCurrency) ID() any {
	return rc.Keys.Get(rc.IDColumn)
}

// HasRow currency points to an existing row
func (rc *RecordCurrency) HasRow() bool {
	return rc.Action == GoodRow && !common.IsNull(rc.ID())
}

// Clone shallow copy used to snapshot state before propagation
func (rc *RecordCurrency) Clone() *RecordCurrency {
	c := *rc
	c.Keys = rc.Keys.Clone()
	return &c
}

func (rc *RecordCurrency) String() string {
	return fmt.Sprintf("%s[%v] %s", rc.Name, rc.ID(), rc.Action)
}

// Pointer stashed neighbor of a set position, used after a miss on
// using and after erase of the current member. End marks that no
// neighbor exists in that direction.
type Pointer struct {
	Record string
	Keys   Keys
	End    bool
}

// ListCurrency current position in one set
type ListCurrency struct {
	Handle     int
	Name       string
	Set        *schema.Set
	Order      schema.Order
	ForeignKey string
	SortKeys   []schema.SortKey

	// OwnerRecord arena handle of the owner record type, -1 if system owned
	OwnerRecord int
	// MemberRecords arena handles of the member record types
	MemberRecords []int

	Owner      Keys
	Member     Keys
	MemberType string
	Position   Position
	Action     Action

	Next  *Pointer
	Prior *Pointer
}

// OwnerID id of the current owner row, nil if unknown
func (lc *ListCurrency) OwnerID(db *DBCurrency) any {
	if lc.OwnerRecord < 0 || lc.Owner == nil {
		return nil
	}
	return lc.Owner.Get(db.records[lc.OwnerRecord].IDColumn)
}

// MemberID id of the current member row, nil if none
func (lc *ListCurrency) MemberID(db *DBCurrency) any {
	if lc.Position != OnMemberRow || lc.Member == nil {
		return nil
	}
	rc, ok := db.recordIndex[lc.MemberType]
	if !ok {
		return nil
	}
	return lc.Member.Get(db.records[rc].IDColumn)
}

// HasStash miss on using or erase neighbors are pending
func (lc *ListCurrency) HasStash() bool {
	return lc.Next != nil || lc.Prior != nil
}

// ClearStash drop the stashed neighbors
func (lc *ListCurrency) ClearStash() {
	lc.Next = nil
	lc.Prior = nil
}

// Reset set currency to no position
func (lc *ListCurrency) Reset() {
	lc.Owner = nil
	lc.Member = nil
	lc.MemberType = ""
	lc.Position = OnNone
	lc.Action = NoRow
	lc.ClearStash()
}

// IsReset set currency has no position
func (lc *ListCurrency) IsReset() bool {
	return lc.Position == OnNone && lc.Action == NoRow
}

// OnOwner position the set on its owner, member currency becomes irrelevant
func (lc *ListCurrency) OnOwner(action Action) {
	lc.Member = nil
	lc.MemberType = ""
	lc.Position = OnOwnerRow
	lc.Action = action
}

func (lc *ListCurrency) String() string {
	return fmt.Sprintf("%s %s/%s owner=%v member=%v", lc.Name, lc.Position, lc.Action, lc.Owner, lc.Member)
}
