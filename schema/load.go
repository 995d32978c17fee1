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

package schema

import (
	"fmt"
	"os"
	"strings"

	"github.com/tknie/codasyl/common"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

const (
	defaultIDColumn     = "ID"
	defaultJunctionID   = "JID"
	defaultJunctionOwn  = "OWNER_ID"
	defaultJunctionMem  = "MEMBER_ID"
	defaultJunctionType = "MEMBER_TYPE"
)

// Schema complete network database definition
type Schema struct {
	Name       string    `yaml:"name"`
	RecordList []*Record `yaml:"records"`
	SetList    []*Set    `yaml:"sets"`

	records map[string]*Record
	sets    map[string]*Set
}

// Load read schema out of YAML file
func Load(fileName string) (*Schema, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errorrepo.NewError("DB000104", fileName, err)
	}
	return Parse(data)
}

// Parse parse YAML schema definition and validate it
func Parse(data []byte) (*Schema, error) {
	schema := &Schema{}
	err := yaml.Unmarshal(data, schema)
	if err != nil {
		return nil, errorrepo.NewError("DB000105", err)
	}
	err = schema.Init()
	if err != nil {
		return nil, err
	}
	return schema, nil
}

// Init normalize names, apply defaults, compute roles and validate.
// Schemas build in code must call Init before use.
func (schema *Schema) Init() error {
	schema.records = make(map[string]*Record)
	schema.sets = make(map[string]*Set)
	for _, r := range schema.RecordList {
		r.Name = Normalize(r.Name)
		if r.Name == "" {
			return errorrepo.NewError("DB000100", "record without name")
		}
		if _, ok := schema.records[r.Name]; ok {
			return errorrepo.NewError("DB000100", "duplicate record "+r.Name)
		}
		if r.Table == "" {
			r.Table = r.Name
		}
		if r.IDColumn == "" {
			r.IDColumn = defaultIDColumn
		}
		for _, c := range r.Columns {
			c.Name = strings.ToUpper(c.Name)
			if c.Type == common.None {
				c.Type = common.Alpha
			}
		}
		for i, k := range r.Keys {
			r.Keys[i] = strings.ToUpper(k)
		}
		r.Roles = make(map[string]Role)
		r.SetNames = nil
		r.managed = nil
		schema.records[r.Name] = r
	}
	for _, s := range schema.SetList {
		err := schema.initSet(s)
		if err != nil {
			return err
		}
	}
	for _, r := range schema.RecordList {
		schema.computeKeyColumns(r)
	}
	log.Log.Debugf("Schema %s initialized: %d records %d sets", schema.Name,
		len(schema.records), len(schema.sets))
	return nil
}

func (schema *Schema) initSet(s *Set) error {
	s.Name = Normalize(s.Name)
	if s.Name == "" {
		return errorrepo.NewError("DB000100", "set without name")
	}
	if _, ok := schema.sets[s.Name]; ok {
		return errorrepo.NewError("DB000100", "duplicate set "+s.Name)
	}
	s.Owner = Normalize(s.Owner)
	if s.Member != "" {
		s.Members = append([]string{s.Member}, s.Members...)
		s.Member = ""
	}
	for i, m := range s.Members {
		s.Members[i] = Normalize(m)
	}
	if len(s.Members) == 0 {
		return errorrepo.NewError("DB000100", fmt.Sprintf("set %s without member", s.Name))
	}
	if s.Owner != "" {
		if _, ok := schema.records[s.Owner]; !ok {
			return errorrepo.NewError("DB000101", s.Owner)
		}
	}
	for _, m := range s.Members {
		if _, ok := schema.records[m]; !ok {
			return errorrepo.NewError("DB000101", m)
		}
		if m == s.Owner {
			return errorrepo.NewError("DB000100", fmt.Sprintf("set %s: record %s cannot own itself", s.Name, m))
		}
	}
	switch {
	case s.IsSystemOwned():
		if s.Order != OrderSystemIndex && s.Order != OrderSorted {
			return errorrepo.NewError("DB000100", fmt.Sprintf("system owned set %s must be an index", s.Name))
		}
		s.Order = OrderSystemIndex
		if len(s.Members) != 1 || s.Junction != nil {
			return errorrepo.NewError("DB000100", fmt.Sprintf("system owned set %s needs exactly one member", s.Name))
		}
		s.ForeignKey = ""
	case s.Junction != nil || len(s.Members) > 1:
		if s.Order != OrderFirst && s.Order != OrderLast {
			return errorrepo.NewError("DB000100", fmt.Sprintf("multi-member set %s must be FIRST or LAST", s.Name))
		}
		if s.Junction == nil {
			s.Junction = &Junction{}
		}
		j := s.Junction
		if j.Table == "" {
			j.Table = s.Name + "_J"
		}
		if j.IDColumn == "" {
			j.IDColumn = defaultJunctionID
		}
		if j.OwnerColumn == "" {
			j.OwnerColumn = defaultJunctionOwn
		}
		if j.MemberColumn == "" {
			j.MemberColumn = defaultJunctionMem
		}
		if j.TypeColumn == "" {
			j.TypeColumn = defaultJunctionType
		}
		s.ForeignKey = ""
	default:
		if s.Order == OrderSystemIndex {
			return errorrepo.NewError("DB000100", fmt.Sprintf("owned set %s cannot be a system index", s.Name))
		}
		if s.ForeignKey == "" {
			s.ForeignKey = s.Name + "_FK"
		}
	}
	if s.Order == OrderSorted && len(s.SortKeys) == 0 {
		return errorrepo.NewError("DB000100", fmt.Sprintf("sorted set %s without sort keys", s.Name))
	}
	if s.Order == OrderLinkedList {
		if s.NextColumn == "" {
			s.NextColumn = s.Name + "_NEXT"
		}
		if s.PriorColumn == "" {
			s.PriorColumn = s.Name + "_PRIOR"
		}
	}
	for _, m := range s.Members {
		member := schema.records[m]
		for _, k := range s.SortKeys {
			if !member.HasColumn(k.Column) && !strings.EqualFold(k.Column, member.IDColumn) {
				return errorrepo.NewError("DB000100", fmt.Sprintf("sort key %s unknown in %s", k.Column, m))
			}
		}
		member.Roles[s.Name] = RoleMember
		member.SetNames = append(member.SetNames, s.Name)
		if s.ForeignKey != "" {
			member.managed = append(member.managed, strings.ToUpper(s.ForeignKey))
		}
		if s.IsLinked() {
			member.managed = append(member.managed, strings.ToUpper(s.NextColumn), strings.ToUpper(s.PriorColumn))
		}
	}
	if s.Owner != "" {
		owner := schema.records[s.Owner]
		owner.Roles[s.Name] = RoleOwner
		owner.SetNames = append(owner.SetNames, s.Name)
	}
	schema.sets[s.Name] = s
	return nil
}

func (schema *Schema) computeKeyColumns(r *Record) {
	keys := []string{r.IDColumn}
	add := func(c string) {
		if c == "" {
			return
		}
		for _, k := range keys {
			if strings.EqualFold(k, c) {
				return
			}
		}
		keys = append(keys, c)
	}
	for _, k := range r.Keys {
		add(k)
	}
	for _, sn := range r.SetNames {
		if r.Roles[sn] != RoleMember {
			continue
		}
		s := schema.sets[sn]
		add(s.ForeignKey)
		if s.IsLinked() {
			add(s.NextColumn)
			add(s.PriorColumn)
		}
		for _, k := range s.SortColumns() {
			add(k.Column)
		}
	}
	r.keyColumns = keys
}

// Record record definition by name
func (schema *Schema) Record(name string) (*Record, error) {
	if r, ok := schema.records[Normalize(name)]; ok {
		return r, nil
	}
	return nil, errorrepo.NewError("DB000101", name)
}

// Set set definition by name
func (schema *Schema) Set(name string) (*Set, error) {
	if s, ok := schema.sets[Normalize(name)]; ok {
		return s, nil
	}
	return nil, errorrepo.NewError("DB000102", name)
}

// Participation record and set definition, checking the record
// participates in the set
func (schema *Schema) Participation(recordName, setName string) (*Record, *Set, Role, error) {
	r, err := schema.Record(recordName)
	if err != nil {
		return nil, nil, RoleMember, err
	}
	s, err := schema.Set(setName)
	if err != nil {
		return nil, nil, RoleMember, err
	}
	role, ok := r.Roles[s.Name]
	if !ok {
		return nil, nil, RoleMember, errorrepo.NewError("DB000103", r.Name, s.Name)
	}
	return r, s, role, nil
}

// MemberSets sets in which the record is member, in declaration order
func (schema *Schema) MemberSets(r *Record) []*Set {
	return schema.roleSets(r, RoleMember)
}

// OwnedSets sets owned by the record, in declaration order
func (schema *Schema) OwnedSets(r *Record) []*Set {
	return schema.roleSets(r, RoleOwner)
}

func (schema *Schema) roleSets(r *Record, role Role) []*Set {
	sets := make([]*Set, 0)
	for _, sn := range r.SetNames {
		if r.Roles[sn] == role {
			sets = append(sets, schema.sets[sn])
		}
	}
	return sets
}

// RecordNames record names in declaration order
func (schema *Schema) RecordNames() []string {
	names := make([]string, 0, len(schema.RecordList))
	for _, r := range schema.RecordList {
		names = append(names, r.Name)
	}
	return names
}

// SetNames set names in declaration order
func (schema *Schema) SetNames() []string {
	names := make([]string, 0, len(schema.SetList))
	for _, s := range schema.SetList {
		names = append(names, s.Name)
	}
	return names
}

// MultiMemberSetsOf multi-member sets the record is a member of
func (schema *Schema) MultiMemberSetsOf(r *Record) []*Set {
	sets := make([]*Set, 0)
	for _, s := range schema.MemberSets(r) {
		if s.IsMultiMember() && slices.Contains(s.Members, r.Name) {
			sets = append(sets, s)
		}
	}
	return sets
}
