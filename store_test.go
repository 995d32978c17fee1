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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tknie/codasyl/common"
	"github.com/tknie/codasyl/currency"
)

func TestStoreInsertRow(t *testing.T) {
	ru := newRunUnit(t, nil)
	id := store(t, ru, "DEPARTMENT", "DEPT_ID", 20, "DEPT_NAME", "Research")
	assert.True(t, id > 0)
	assert.Equal(t, "DEPARTMENT", ru.Currency().CurrentRecord)
	lc, _ := ru.Currency().List("DEPT-EMPLOYEE")
	assert.Equal(t, currency.OnOwnerRow, lc.Position)
	assert.Equal(t, id, lc.OwnerID(ru.Currency()))

	dept := mapRecord(ru, "DEPARTMENT")
	st, err := ru.GetByIdCol(dept, id)
	if checkStatus(t, common.StatusOK, st, err) {
		assert.EqualValues(t, 20, dept.Get("DEPT_ID"))
		assert.Equal(t, "Research", dept.Get("DEPT_NAME"))
	}

	// the automatic set of the current owner is connected
	emp := store(t, ru, "EMPLOYEE", "EMP_ID", 1, "EMP_NAME", "Doe")
	rc, _ := ru.Currency().Record("EMPLOYEE")
	assert.Equal(t, id, rc.Keys.Get("DEPT_EMPLOYEE_FK"))
	assert.Equal(t, emp, lc.MemberID(ru.Currency()))
	st, err = ru.IsInList(ru.Record("EMPLOYEE"), "DEPT-EMPLOYEE")
	checkStatus(t, common.StatusOK, st, err)
}

func TestStoreInsertDuplicate(t *testing.T) {
	ru := newRunUnit(t, nil)
	store(t, ru, "DEPARTMENT", "DEPT_ID", 1, "DEPT_NAME", "Sales")
	dept := mapRecord(ru, "DEPARTMENT", "DEPT_ID", 1, "DEPT_NAME", "Other")
	st, err := ru.InsertRow(dept)
	checkStatus(t, common.StatusStoreDup, st, err)
	dept = mapRecord(ru, "DEPARTMENT", "DEPT_ID", 2, "DEPT_NAME", "Sales")
	st, err = ru.InsertRow(dept)
	checkStatus(t, common.StatusStoreDup, st, err)
	// duplicates do not roll back
	assert.True(t, ru.Supervisor().IsTransaction())
	dept = mapRecord(ru, "DEPARTMENT", "DEPT_ID", 1)
	st, err = ru.GetByKey(dept)
	checkStatus(t, common.StatusOK, st, err)
}

func TestStoreMandatoryOwner(t *testing.T) {
	ru := newRunUnit(t, nil)
	exp := mapRecord(ru, "EXPERTISE", "SKILL", "Go", "SKILL_LEVEL", 3)
	st, err := ru.InsertRow(exp)
	checkStatus(t, common.StatusStoreNoCurrency, st, err)

	store(t, ru, "EMPLOYEE", "EMP_ID", 1, "EMP_NAME", "Doe")
	store(t, ru, "EXPERTISE", "SKILL", "Go", "SKILL_LEVEL", 3)
	store(t, ru, "EXPERTISE", "SKILL", "SQL", "SKILL_LEVEL", 2)
	st, err = ru.IsInList(ru.Record("EXPERTISE"), "EMP-EXPERTISE")
	checkStatus(t, common.StatusOK, st, err)
	st, err = ru.IsListEmpty("EMP-EXPERTISE")
	checkStatus(t, common.StatusNotMember, st, err)

	// the employee is not connected to a department
	st, err = ru.IsInList(ru.Record("EMPLOYEE"), "DEPT-EMPLOYEE")
	checkStatus(t, common.StatusNotMember, st, err)
}

func TestStoreModifyRow(t *testing.T) {
	ru := newRunUnit(t, nil)
	store(t, ru, "DEPARTMENT", "DEPT_ID", 1, "DEPT_NAME", "Sales")
	d2 := store(t, ru, "DEPARTMENT", "DEPT_ID", 2, "DEPT_NAME", "Research")

	dept := mapRecord(ru, "DEPARTMENT", "DEPT_ID", 2)
	st, err := ru.GetByKey(dept)
	checkStatus(t, common.StatusOK, st, err)
	dept.Set("DEPT_ID", 1)
	st, err = ru.ModifyRow(dept)
	checkStatus(t, common.StatusModifyDup, st, err)
	dept.Set("DEPT_ID", 2)
	dept.Set("DEPT_NAME", "Sales")
	st, err = ru.ModifyRow(dept)
	checkStatus(t, common.StatusModifyDup, st, err)
	dept.Set("DEPT_NAME", "Development")
	st, err = ru.ModifyRow(dept)
	checkStatus(t, common.StatusOK, st, err)

	dept = mapRecord(ru, "DEPARTMENT")
	st, err = ru.GetByIdCol(dept, d2)
	if checkStatus(t, common.StatusOK, st, err) {
		assert.Equal(t, "Development", dept.Get("DEPT_NAME"))
	}

	// the department is no longer current of run unit
	store(t, ru, "EMPLOYEE", "EMP_ID", 1, "EMP_NAME", "Doe")
	dept.Set("DEPT_NAME", "Marketing")
	st, err = ru.ModifyRow(dept)
	checkStatus(t, common.StatusModifyNoCurrency, st, err)
}

func TestStoreModifyResort(t *testing.T) {
	ru := newRunUnit(t, nil)
	storeDepartment(t, ru)
	emp := mapRecord(ru, "EMPLOYEE", "EMP_ID", 101)
	st, err := ru.GetByKey(emp)
	checkStatus(t, common.StatusOK, st, err)
	emp.Set("EMP_NAME", "Young")
	st, err = ru.ModifyRow(emp)
	checkStatus(t, common.StatusOK, st, err)

	dept := mapRecord(ru, "DEPARTMENT", "DEPT_ID", 10)
	st, err = ru.GetByKey(dept)
	checkStatus(t, common.StatusOK, st, err)
	for i, expected := range []string{"Baker", "Clark", "Young"} {
		dir := common.Next
		if i == 0 {
			dir = common.First
		}
		checkName(t, ru, emp, "EMP_NAME", dir, "DEPT-EMPLOYEE", expected)
	}
}

func TestStoreUniqueIndex(t *testing.T) {
	ru := newRunUnit(t, nil)
	// unique index unknown to the schema, reported by the database only
	_, err := ru.Supervisor().ExecText(context.Background(), "CREATE UNIQUE INDEX EMP_CITY_UQ ON EMPLOYEE (EMP_CITY)")
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	store(t, ru, "EMPLOYEE", "EMP_ID", 1, "EMP_NAME", "Doe", "EMP_CITY", "Darmstadt")
	emp := mapRecord(ru, "EMPLOYEE", "EMP_ID", 2, "EMP_NAME", "Roe", "EMP_CITY", "Darmstadt")
	st, err := ru.InsertRow(emp)
	checkStatus(t, common.StatusStoreDup, st, err)
	assert.True(t, ru.Supervisor().IsTransaction())

	store(t, ru, "EMPLOYEE", "EMP_ID", 2, "EMP_NAME", "Roe", "EMP_CITY", "Berlin")
	emp = mapRecord(ru, "EMPLOYEE", "EMP_ID", 2)
	st, err = ru.GetByKey(emp)
	checkStatus(t, common.StatusOK, st, err)
	emp.Set("EMP_CITY", "Darmstadt")
	st, err = ru.ModifyRow(emp)
	checkStatus(t, common.StatusModifyDup, st, err)
	assert.True(t, ru.Supervisor().IsTransaction())

	assert.NoError(t, ru.Commit())
	for _, id := range []int{1, 2} {
		emp = mapRecord(ru, "EMPLOYEE", "EMP_ID", id)
		st, err = ru.GetByKey(emp)
		checkStatus(t, common.StatusOK, st, err)
	}
	assert.Equal(t, "Berlin", emp.Get("EMP_CITY"))
}
