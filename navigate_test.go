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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tknie/codasyl/common"
	"github.com/tknie/codasyl/currency"
	"github.com/tknie/codasyl/dal"
)

func checkName(t *testing.T, ru *RunUnit, rec dal.Record, column string, dir common.Direction, setName, expected string) {
	st, err := ru.GetInList(rec, setName, dir)
	if checkStatus(t, common.StatusOK, st, err) {
		data, _ := rec.Data()
		assert.Equal(t, expected, data.Get(column), "%s in %s", dir, setName)
	}
}

func TestNavigateSortedSet(t *testing.T) {
	ru := newRunUnit(t, nil)
	storeDepartment(t, ru)
	dept := mapRecord(ru, "DEPARTMENT", "DEPT_ID", 10)
	st, err := ru.GetByKey(dept)
	checkStatus(t, common.StatusOK, st, err)

	emp := ru.Record("EMPLOYEE")
	checkName(t, ru, emp, "EMP_NAME", common.First, "DEPT-EMPLOYEE", "Adams")
	checkName(t, ru, emp, "EMP_NAME", common.Next, "DEPT-EMPLOYEE", "Baker")
	checkName(t, ru, emp, "EMP_NAME", common.Next, "DEPT-EMPLOYEE", "Clark")
	st, err = ru.GetInList(emp, "DEPT-EMPLOYEE", common.Next)
	checkStatus(t, common.StatusEndOfSet, st, err)
	lc, _ := ru.Currency().List("DEPT-EMPLOYEE")
	assert.Equal(t, currency.OnOwnerRow, lc.Position)
	assert.Equal(t, "DEPARTMENT", ru.Currency().CurrentRecord)

	checkName(t, ru, emp, "EMP_NAME", common.Last, "DEPT-EMPLOYEE", "Clark")
	checkName(t, ru, emp, "EMP_NAME", common.Prior, "DEPT-EMPLOYEE", "Baker")
	checkName(t, ru, emp, "EMP_NAME", common.Current, "DEPT-EMPLOYEE", "Baker")
}

func TestNavigateSortedNextPrior(t *testing.T) {
	ru := newRunUnit(t, nil)
	storeDepartment(t, ru)

	// fresh row not read through the set
	emp := mapRecord(ru, "EMPLOYEE", "EMP_ID", 102)
	st, err := ru.GetByKey(emp)
	checkStatus(t, common.StatusOK, st, err)
	assert.Equal(t, "Baker", emp.Get("EMP_NAME"))

	checkName(t, ru, emp, "EMP_NAME", common.Next, "DEPT-EMPLOYEE", "Clark")
	checkName(t, ru, emp, "EMP_NAME", common.Prior, "DEPT-EMPLOYEE", "Baker")
	checkName(t, ru, emp, "EMP_NAME", common.Prior, "DEPT-EMPLOYEE", "Adams")
	st, err = ru.GetInList(emp, "DEPT-EMPLOYEE", common.Prior)
	checkStatus(t, common.StatusEndOfSet, st, err)
	checkName(t, ru, emp, "EMP_NAME", common.Next, "DEPT-EMPLOYEE", "Adams")
}

func TestNavigateNoCurrency(t *testing.T) {
	ru := newRunUnit(t, nil)
	emp := ru.Record("EMPLOYEE")
	st, err := ru.GetInList(emp, "DEPT-EMPLOYEE", common.First)
	checkStatus(t, common.StatusNoCurrency, st, err)

	// owner records cannot be read as members
	dept := ru.Record("DEPARTMENT")
	_, err = ru.GetInList(dept, "DEPT-EMPLOYEE", common.First)
	assert.Error(t, err)
	assert.Equal(t, common.StatusBadRequest, ru.Status())
}

func TestNavigateSystemIndex(t *testing.T) {
	ru := newRunUnit(t, nil)
	storeDepartment(t, ru)
	assert.NoError(t, ru.ResetListCurrency("EMP-NAME-NDX"))
	emp := ru.Record("EMPLOYEE")
	checkName(t, ru, emp, "EMP_NAME", common.Next, "EMP-NAME-NDX", "Adams")
	checkName(t, ru, emp, "EMP_NAME", common.Last, "EMP-NAME-NDX", "Clark")
	st, err := ru.GetInList(emp, "EMP-NAME-NDX", common.Next)
	checkStatus(t, common.StatusEndOfSet, st, err)
}

func TestNavigateSweepReverse(t *testing.T) {
	config := common.DefaultConfig()
	config.AreaSweepReverse = true
	ru := newRunUnit(t, config)
	storeDepartment(t, ru)
	emp := ru.Record("EMPLOYEE")
	checkName(t, ru, emp, "EMP_NAME", common.First, "EMP-NAME-NDX", "Clark")
	checkName(t, ru, emp, "EMP_NAME", common.Next, "EMP-NAME-NDX", "Baker")
	checkName(t, ru, emp, "EMP_NAME", common.Next, "EMP-NAME-NDX", "Adams")
	st, err := ru.GetInList(emp, "EMP-NAME-NDX", common.Next)
	checkStatus(t, common.StatusEndOfSet, st, err)
	checkName(t, ru, emp, "EMP_NAME", common.Last, "EMP-NAME-NDX", "Adams")

	dept := mapRecord(ru, "DEPARTMENT", "DEPT_ID", 10)
	st, err = ru.GetByKey(dept)
	checkStatus(t, common.StatusOK, st, err)
	checkName(t, ru, emp, "EMP_NAME", common.Last, "DEPT-EMPLOYEE", "Adams")
	checkName(t, ru, emp, "EMP_NAME", common.Prior, "DEPT-EMPLOYEE", "Baker")
	checkName(t, ru, emp, "EMP_NAME", common.Next, "DEPT-EMPLOYEE", "Adams")
}

func TestNavigateByRow(t *testing.T) {
	ru := newRunUnit(t, nil)
	storeDepartment(t, ru)
	dept := mapRecord(ru, "DEPARTMENT", "DEPT_ID", 10)
	st, err := ru.GetByKey(dept)
	checkStatus(t, common.StatusOK, st, err)

	emp := ru.Record("EMPLOYEE")
	st, err = ru.GetInListByRow(emp, "DEPT-EMPLOYEE", 2)
	if checkStatus(t, common.StatusOK, st, err) {
		data, _ := emp.Data()
		assert.Equal(t, "Baker", data.Get("EMP_NAME"))
	}
	st, err = ru.GetInListByRow(emp, "DEPT-EMPLOYEE", -1)
	if checkStatus(t, common.StatusOK, st, err) {
		data, _ := emp.Data()
		assert.Equal(t, "Clark", data.Get("EMP_NAME"))
	}
	checkName(t, ru, emp, "EMP_NAME", common.Prior, "DEPT-EMPLOYEE", "Baker")
	st, err = ru.GetInListByRow(emp, "DEPT-EMPLOYEE", 0)
	checkStatus(t, common.StatusBadRequest, st, err)
	st, err = ru.GetInListByRow(emp, "DEPT-EMPLOYEE", 5)
	checkStatus(t, common.StatusEndOfSet, st, err)
}

func TestNavigateLinkedListInclude(t *testing.T) {
	ru := newRunUnit(t, nil)
	store(t, ru, "ORDER", "ORDER_NO", 4711, "CUSTOMER", "ACME")
	line := ru.Record("LINE-ITEM")
	for _, item := range []string{"A", "B", "C"} {
		store(t, ru, "LINE-ITEM", "ITEM", item, "QUANTITY", 1)
		st, err := ru.IsInList(line, "ORDER-LINE")
		checkStatus(t, common.StatusNotMember, st, err)
		st, err = ru.IncludeInList(line, "ORDER-LINE")
		checkStatus(t, common.StatusOK, st, err)
		// connected without reading the row again
		st, err = ru.IsInList(line, "ORDER-LINE")
		checkStatus(t, common.StatusOK, st, err)
	}
	st, err := ru.IncludeInList(line, "ORDER-LINE")
	checkStatus(t, common.StatusConnected, st, err)

	order := ru.Record("ORDER")
	st, err = ru.GetOwner(order, "ORDER-LINE")
	if checkStatus(t, common.StatusOK, st, err) {
		data, _ := order.Data()
		assert.EqualValues(t, 4711, data.Get("ORDER_NO"))
	}
	checkName(t, ru, line, "ITEM", common.First, "ORDER-LINE", "A")
	checkName(t, ru, line, "ITEM", common.Next, "ORDER-LINE", "B")
	checkName(t, ru, line, "ITEM", common.Next, "ORDER-LINE", "C")
	st, err = ru.GetInList(line, "ORDER-LINE", common.Next)
	checkStatus(t, common.StatusEndOfSet, st, err)
	checkName(t, ru, line, "ITEM", common.Last, "ORDER-LINE", "C")
	checkName(t, ru, line, "ITEM", common.Prior, "ORDER-LINE", "B")
	checkName(t, ru, line, "ITEM", common.Prior, "ORDER-LINE", "A")
	st, err = ru.GetInList(line, "ORDER-LINE", common.Prior)
	checkStatus(t, common.StatusEndOfSet, st, err)
}

func TestNavigateLinkedListAutomatic(t *testing.T) {
	ru := newRunUnit(t, nil)
	store(t, ru, "ORDER", "ORDER_NO", 1, "CUSTOMER", "ACME")
	for _, r := range []string{"N1", "N2", "N3"} {
		store(t, ru, "NOTE", "REMARK", r)
	}
	order := mapRecord(ru, "ORDER", "ORDER_NO", 1)
	st, err := ru.GetByKey(order)
	checkStatus(t, common.StatusOK, st, err)
	note := ru.Record("NOTE")
	checkName(t, ru, note, "REMARK", common.First, "ORDER-NOTE", "N1")

	// a new note is linked behind the current note
	store(t, ru, "NOTE", "REMARK", "N4")
	st, err = ru.GetByKey(order)
	checkStatus(t, common.StatusOK, st, err)
	for _, expected := range []string{"N1", "N4", "N2", "N3"} {
		checkName(t, ru, note, "REMARK", common.Next, "ORDER-NOTE", expected)
	}
	st, err = ru.GetInList(note, "ORDER-NOTE", common.Next)
	checkStatus(t, common.StatusEndOfSet, st, err)
}

func TestNavigateMultiMember(t *testing.T) {
	ru := newRunUnit(t, nil)
	storeDepartment(t, ru)
	store(t, ru, "PROJECT", "PROJ_CODE", "P1")

	emp := mapRecord(ru, "EMPLOYEE", "EMP_ID", 101)
	st, err := ru.GetByKey(emp)
	checkStatus(t, common.StatusOK, st, err)
	st, err = ru.IsInList(emp, "PROJECT-TEAM")
	checkStatus(t, common.StatusNotMember, st, err)
	st, err = ru.IncludeInList(emp, "PROJECT-TEAM")
	checkStatus(t, common.StatusOK, st, err)
	st, err = ru.IncludeInList(emp, "PROJECT-TEAM")
	checkStatus(t, common.StatusConnected, st, err)
	st, err = ru.IsInList(emp, "PROJECT-TEAM")
	checkStatus(t, common.StatusOK, st, err)

	store(t, ru, "CONTRACTOR", "CONTRACTOR_ID", 1, "CONTRACTOR_NAME", "Miller")
	contractor := ru.Record("CONTRACTOR")
	st, err = ru.IncludeInList(contractor, "PROJECT-TEAM")
	checkStatus(t, common.StatusOK, st, err)
	st, err = ru.IsListEmpty("PROJECT-TEAM")
	checkStatus(t, common.StatusNotMember, st, err)

	rec, st, err := ru.GetMemberInList("PROJECT-TEAM", common.First)
	if checkStatus(t, common.StatusOK, st, err) {
		assert.Equal(t, "EMPLOYEE", rec.Name())
		data, _ := rec.Data()
		assert.Equal(t, "Adams", data.Get("EMP_NAME"))
	}
	rec, st, err = ru.GetMemberInList("PROJECT-TEAM", common.Next)
	if checkStatus(t, common.StatusOK, st, err) {
		assert.Equal(t, "CONTRACTOR", rec.Name())
		data, _ := rec.Data()
		assert.Equal(t, "Miller", data.Get("CONTRACTOR_NAME"))
	}
	rec, st, err = ru.GetMemberInList("PROJECT-TEAM", common.Next)
	checkStatus(t, common.StatusEndOfSet, st, err)
	assert.Nil(t, rec)

	project := ru.Record("PROJECT")
	st, err = ru.GetOwner(project, "PROJECT-TEAM")
	if checkStatus(t, common.StatusOK, st, err) {
		data, _ := project.Data()
		assert.Equal(t, "P1", data.Get("PROJ_CODE"))
	}

	st, err = ru.ExcludeFromList(contractor, "PROJECT-TEAM")
	checkStatus(t, common.StatusOK, st, err)
	st, err = ru.IsInList(contractor, "PROJECT-TEAM")
	checkStatus(t, common.StatusNotMember, st, err)
	rec, st, err = ru.GetMemberInList("PROJECT-TEAM", common.First)
	if checkStatus(t, common.StatusOK, st, err) {
		assert.Equal(t, "EMPLOYEE", rec.Name())
	}
	_, st, err = ru.GetMemberInList("PROJECT-TEAM", common.Next)
	checkStatus(t, common.StatusEndOfSet, st, err)
}

func TestNavigateListEmpty(t *testing.T) {
	ru := newRunUnit(t, nil)
	st, err := ru.IsListEmpty("DEPT-EMPLOYEE")
	checkStatus(t, common.StatusIfNoCurrency, st, err)
	store(t, ru, "DEPARTMENT", "DEPT_ID", 1, "DEPT_NAME", "Empty")
	st, err = ru.IsListEmpty("DEPT-EMPLOYEE")
	checkStatus(t, common.StatusOK, st, err)
	store(t, ru, "EMPLOYEE", "EMP_ID", 1, "EMP_NAME", "Doe")
	st, err = ru.IsListEmpty("DEPT-EMPLOYEE")
	checkStatus(t, common.StatusNotMember, st, err)

	exp := ru.Record("EXPERTISE")
	st, err = ru.IsInList(exp, "EMP-EXPERTISE")
	checkStatus(t, common.StatusIfNoCurrency, st, err)
}
