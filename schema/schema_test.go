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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaLoad(t *testing.T) {
	s, err := Load("testdata/empschm.yaml")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "EMPSCHM", s.Name)
	assert.Equal(t, []string{"DEPARTMENT", "EMPLOYEE", "EXPERTISE", "ORDER", "LINE_ITEM", "PROJECT", "CONTRACTOR"}, s.RecordNames())
	assert.Equal(t, []string{"DEPT_EMPLOYEE", "EMP_NAME_NDX", "DEPT_NDX", "EMP_EXPERTISE", "ORDER_LINE", "PROJECT_TEAM"}, s.SetNames())

	order, err := s.Record("order")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "ORDERS", order.Source())
	assert.Equal(t, "ID", order.IDColumn)
	assert.Equal(t, []string{"ID", "ORDER_NO"}, order.KeyColumns())
	role, ok := order.Role("ORDER-LINE")
	assert.True(t, ok)
	assert.Equal(t, RoleOwner, role)

	line, err := s.Set("ORDER-LINE")
	if !assert.NoError(t, err) {
		return
	}
	assert.True(t, line.IsLinked())
	assert.Equal(t, "ORDER_LINE_FK", line.ForeignKey)
	assert.Equal(t, "ORDER_LINE_NEXT", line.NextColumn)
	assert.Equal(t, "ORDER_LINE_PRIOR", line.PriorColumn)
	item, _ := s.Record("LINE-ITEM")
	assert.Equal(t, []string{"ID", "ORDER_LINE_FK", "ORDER_LINE_NEXT", "ORDER_LINE_PRIOR"}, item.KeyColumns())
	assert.True(t, item.IsManaged("order_line_next"))
	assert.False(t, item.IsManaged("ITEM"))
}

func TestSchemaSetKinds(t *testing.T) {
	s, err := Load("testdata/empschm.yaml")
	if !assert.NoError(t, err) {
		return
	}
	ndx, _ := s.Set("EMP-NAME-NDX")
	assert.True(t, ndx.IsSystemOwned())
	assert.Equal(t, OrderSystemIndex, ndx.Order)
	assert.False(t, ndx.HasForeignKey())
	assert.Equal(t, []SortKey{{Column: "EMP_NAME"}}, ndx.SortColumns())

	team, _ := s.Set("PROJECT-TEAM")
	assert.True(t, team.IsMultiMember())
	assert.Equal(t, []string{"EMPLOYEE", "CONTRACTOR"}, team.Members)
	assert.Equal(t, "PROJECT_TEAM_J", team.Junction.Table)
	assert.Equal(t, "JID", team.Junction.IDColumn)
	assert.Equal(t, "MEMBER_TYPE", team.Junction.TypeColumn)
	assert.False(t, team.HasForeignKey())

	dn, _ := s.Set("DEPT-NDX")
	assert.Equal(t, DupNotAllowed, dn.Duplicates)

	emp, _ := s.Record("EMPLOYEE")
	assert.Equal(t, []string{"ID", "EMP_ID", "DEPT_EMPLOYEE_FK", "EMP_NAME"}, emp.KeyColumns())
	assert.Len(t, s.MemberSets(emp), 3)
	assert.Len(t, s.OwnedSets(emp), 1)
	assert.Len(t, s.MultiMemberSetsOf(emp), 1)

	_, _, role, err := s.Participation("EXPERTISE", "EMP-EXPERTISE")
	assert.NoError(t, err)
	assert.Equal(t, RoleMember, role)
	_, _, _, err = s.Participation("ORDER", "EMP-EXPERTISE")
	assert.Error(t, err)
	_, err = s.Set("UNKNOWN")
	assert.Error(t, err)
}

func TestSchemaValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown member", `
records:
  - name: A
sets:
  - name: A-B
    order: first
    owner: A
    member: B
`},
		{"sorted without keys", `
records:
  - name: A
  - name: B
sets:
  - name: A-B
    order: sorted
    owner: A
    member: B
`},
		{"multi member sorted", `
records:
  - name: A
  - name: B
  - name: C
sets:
  - name: A-BC
    order: sorted
    owner: A
    members: [B, C]
    sortKeys:
      - column: ID
`},
		{"owner index", `
records:
  - name: A
  - name: B
sets:
  - name: A-B
    order: index
    owner: A
    member: B
`},
		{"duplicate record", `
records:
  - name: A
  - name: a
`},
		{"bad order", `
records:
  - name: A
sets:
  - name: X
    order: random
    member: A
`},
	}
	for _, test := range tests {
		_, err := Parse([]byte(test.yaml))
		assert.Error(t, err, test.name)
	}
}

func TestSchemaNormalize(t *testing.T) {
	assert.Equal(t, "ORDER_LINE", Normalize(" order-line "))
	assert.Equal(t, "EMP_NAME_NDX", Normalize("EMP-NAME-NDX"))
}
