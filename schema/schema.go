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

// Package schema contains the static record and set metadata of a
// network database. The metadata is loaded once and is read-only
// afterwards.
package schema

import (
	"fmt"
	"strings"

	"github.com/tknie/codasyl/common"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Order organisational order of a set
type Order byte

const (
	OrderSystemIndex Order = iota
	OrderSorted
	OrderFirst
	OrderLast
	OrderLinkedList
)

var orderNames = []string{"system-index", "sorted", "first", "last", "linked-list"}

func (o Order) String() string {
	return orderNames[o]
}

// UnmarshalYAML parse order name
func (o *Order) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	name = strings.ToLower(strings.ReplaceAll(name, "_", "-"))
	switch name {
	case "index", "system", "system-index":
		*o = OrderSystemIndex
		return nil
	case "next", "prior", "linked", "linked-list":
		*o = OrderLinkedList
		return nil
	}
	for i, n := range orderNames {
		if n == name {
			*o = Order(i)
			return nil
		}
	}
	return fmt.Errorf("unknown set order '%s'", name)
}

// DupPolicy duplicate handling of sorted sets
type DupPolicy byte

const (
	DupLast DupPolicy = iota
	DupFirst
	DupNotAllowed
)

var dupNames = []string{"last", "first", "not-allowed"}

func (d DupPolicy) String() string {
	return dupNames[d]
}

// UnmarshalYAML parse duplicate policy name
func (d *DupPolicy) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	name = strings.ToLower(strings.ReplaceAll(name, "_", "-"))
	for i, n := range dupNames {
		if n == name {
			*d = DupPolicy(i)
			return nil
		}
	}
	if name == "none" || name == "notallowed" {
		*d = DupNotAllowed
		return nil
	}
	return fmt.Errorf("unknown duplicate policy '%s'", name)
}

// Role role a record type plays in a set
type Role byte

const (
	RoleMember Role = iota
	RoleOwner
)

func (r Role) String() string {
	if r == RoleOwner {
		return "Owner"
	}
	return "Member"
}

// SortKey sort key column of a sorted or index set
type SortKey struct {
	Column     string `yaml:"column"`
	Descending bool   `yaml:"descending"`
}

// Junction wiring of a multi-member set. Each junction row connects one
// member of any declared member type to its owner.
type Junction struct {
	Table        string `yaml:"table"`
	IDColumn     string `yaml:"id"`
	OwnerColumn  string `yaml:"owner"`
	MemberColumn string `yaml:"member"`
	TypeColumn   string `yaml:"type"`
}

// Column data column of a record
type Column struct {
	Name   string          `yaml:"name"`
	Type   common.DataType `yaml:"type"`
	Length int             `yaml:"length"`
	Digits int             `yaml:"digits"`
}

// Record record type definition
type Record struct {
	Name       string    `yaml:"name"`
	Table      string    `yaml:"table"`
	View       string    `yaml:"view"`
	IDColumn   string    `yaml:"id"`
	Area       string    `yaml:"area"`
	Keys       []string  `yaml:"keys"`
	UniqueKeys bool      `yaml:"unique"`
	Large      bool      `yaml:"large"`
	Columns    []*Column `yaml:"columns"`

	Roles      map[string]Role `yaml:"-"`
	SetNames   []string        `yaml:"-"`
	keyColumns []string
	managed    []string
}

// Set set definition
type Set struct {
	Name        string    `yaml:"name"`
	Order       Order     `yaml:"order"`
	Owner       string    `yaml:"owner"`
	Member      string    `yaml:"member"`
	Members     []string  `yaml:"members"`
	ForeignKey  string    `yaml:"foreignKey"`
	SortKeys    []SortKey `yaml:"sortKeys"`
	Duplicates  DupPolicy `yaml:"duplicates"`
	Mandatory   bool      `yaml:"mandatory"`
	Manual      bool      `yaml:"manual"`
	Junction    *Junction `yaml:"junction"`
	NextColumn  string    `yaml:"next"`
	PriorColumn string    `yaml:"prior"`
	OrderColumn string    `yaml:"orderColumn"`
}

// Normalize normalize record or set name, hyphens become underscores
func Normalize(name string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
}

// Source table or view used to read the record
func (record *Record) Source() string {
	if record.View != "" {
		return record.View
	}
	return record.Table
}

// KeyColumns columns kept in the record currency: id, business key,
// foreign keys, link-list pointers and sort keys of all member sets
func (record *Record) KeyColumns() []string {
	return record.keyColumns
}

// IsManaged column maintained by set operations and not by the caller
func (record *Record) IsManaged(column string) bool {
	return strings.EqualFold(column, record.IDColumn) || slices.Contains(record.managed, strings.ToUpper(column))
}

// HasColumn record contains the data column
func (record *Record) HasColumn(name string) bool {
	for _, c := range record.Columns {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// ColumnNames data column names in declaration order
func (record *Record) ColumnNames() []string {
	names := make([]string, 0, len(record.Columns))
	for _, c := range record.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Role role of the record in the set, false if not participating
func (record *Record) Role(setName string) (Role, bool) {
	r, ok := record.Roles[Normalize(setName)]
	return r, ok
}

// IsSystemOwned set without owner record, like a system index
func (set *Set) IsSystemOwned() bool {
	return set.Owner == ""
}

// IsMultiMember set implemented by a junction table
func (set *Set) IsMultiMember() bool {
	return set.Junction != nil
}

// IsLinked set ordered by next/prior pointer columns
func (set *Set) IsLinked() bool {
	return set.Order == OrderLinkedList
}

// HasForeignKey member rows reference the owner by a foreign key column
func (set *Set) HasForeignKey() bool {
	return set.ForeignKey != ""
}

// HasMember record type is declared member of the set
func (set *Set) HasMember(recordName string) bool {
	return slices.Contains(set.Members, Normalize(recordName))
}

// SortColumns ordering columns of the set, the member id is appended by
// the statement builder as final tie break
func (set *Set) SortColumns() []SortKey {
	switch set.Order {
	case OrderSorted, OrderSystemIndex:
		return set.SortKeys
	case OrderFirst, OrderLast:
		if set.OrderColumn != "" {
			return []SortKey{{Column: set.OrderColumn}}
		}
	}
	return nil
}
