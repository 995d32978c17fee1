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
)

func TestRetrieveByKey(t *testing.T) {
	ru := newRunUnit(t, nil)
	_, emps := storeDepartment(t, ru)

	emp := mapRecord(ru, "EMPLOYEE", "EMP_ID", 101)
	st, err := ru.GetByKey(emp)
	if checkStatus(t, common.StatusOK, st, err) {
		assert.Equal(t, "Adams", emp.Get("EMP_NAME"))
		assert.Equal(t, emps[1], currentID(t, ru, "EMPLOYEE"))
		assert.Equal(t, "EMPLOYEE", ru.Currency().CurrentRecord)
	}

	emp = mapRecord(ru, "EMPLOYEE", "EMP_ID", 999)
	st, err = ru.GetByKey(emp)
	checkStatus(t, common.StatusNotFound, st, err)
	rc, _ := ru.Currency().Record("EMPLOYEE")
	assert.Equal(t, currency.NoRow, rc.Action)
	assert.False(t, rc.HasRow())

	emp = mapRecord(ru, "EMPLOYEE", "EMP_NAME", "Adams")
	st, err = ru.GetByKey(emp)
	checkStatus(t, common.StatusNullKey, st, err)
}

func TestRetrieveDuplicate(t *testing.T) {
	ru := newRunUnit(t, nil)
	store(t, ru, "CONTRACTOR", "CONTRACTOR_ID", 7, "CONTRACTOR_NAME", "Abel")
	store(t, ru, "CONTRACTOR", "CONTRACTOR_ID", 8, "CONTRACTOR_NAME", "Cain")
	store(t, ru, "CONTRACTOR", "CONTRACTOR_ID", 7, "CONTRACTOR_NAME", "Seth")

	contractor := mapRecord(ru, "CONTRACTOR", "CONTRACTOR_ID", 7)
	st, err := ru.GetByKey(contractor)
	if checkStatus(t, common.StatusOK, st, err) {
		assert.Equal(t, "Abel", contractor.Get("CONTRACTOR_NAME"))
	}
	st, err = ru.GetDuplicate(contractor)
	if checkStatus(t, common.StatusOK, st, err) {
		assert.Equal(t, "Seth", contractor.Get("CONTRACTOR_NAME"))
	}
	st, err = ru.GetDuplicate(contractor)
	checkStatus(t, common.StatusNotFound, st, err)

	// without cache the duplicates are read from the database
	contractor.Cache().Clear()
	st, err = ru.GetByKey(mapRecord(ru, "CONTRACTOR", "CONTRACTOR_ID", 7))
	checkStatus(t, common.StatusOK, st, err)
	contractor.Cache().Clear()
	st, err = ru.GetDuplicate(contractor)
	if checkStatus(t, common.StatusOK, st, err) {
		assert.Equal(t, "Seth", contractor.Get("CONTRACTOR_NAME"))
	}
}

func TestRetrieveByIDAndCurrent(t *testing.T) {
	config := common.DefaultConfig()
	config.TimestampColumn = "%s_DTS"
	ru := newRunUnit(t, config)
	_, emps := storeDepartment(t, ru)

	emp := mapRecord(ru, "EMPLOYEE")
	st, err := ru.GetByIdCol(emp, emps[2])
	if checkStatus(t, common.StatusOK, st, err) {
		assert.EqualValues(t, 102, emp.Get("EMP_ID"))
		assert.Equal(t, "Baker", emp.Get("EMP_NAME"))
		assert.Equal(t, emps[2], emp.Get("ID"))
		assert.NotNil(t, emp.Get("EMPLOYEE_DTS"))
	}
	st, err = ru.GetByIdCol(emp, int64(9999))
	checkStatus(t, common.StatusNotFound, st, err)
	st, err = ru.GetCurrent(emp)
	checkStatus(t, common.StatusNoCurrency, st, err)

	st, err = ru.GetByIdCol(emp, emps[0])
	checkStatus(t, common.StatusOK, st, err)
	emp.Set("EMP_CITY", "Berlin")
	st, err = ru.GetCurrent(emp)
	if checkStatus(t, common.StatusOK, st, err) {
		assert.Equal(t, "Darmstadt", emp.Get("EMP_CITY"))
		assert.Equal(t, "Clark", emp.Get("EMP_NAME"))
	}
}

func TestRetrieveOwner(t *testing.T) {
	ru := newRunUnit(t, nil)
	dept := ru.Record("DEPARTMENT")
	st, err := ru.GetOwner(dept, "DEPT-EMPLOYEE")
	checkStatus(t, common.StatusNoCurrency, st, err)

	storeDepartment(t, ru)
	st, err = ru.GetOwner(dept, "DEPT-EMPLOYEE")
	if checkStatus(t, common.StatusOK, st, err) {
		data, _ := dept.Data()
		assert.Equal(t, "Sales", data.Get("DEPT_NAME"))
	}
	emp := ru.Record("EMPLOYEE")
	st, err = ru.GetOwner(emp, "DEPT-EMPLOYEE")
	checkStatus(t, common.StatusBadRequest, st, err)
}

func TestRetrieveUsing(t *testing.T) {
	ru := newRunUnit(t, nil)
	storeDepartment(t, ru)
	dept := mapRecord(ru, "DEPARTMENT", "DEPT_ID", 10)
	st, err := ru.GetByKey(dept)
	checkStatus(t, common.StatusOK, st, err)

	emp := ru.Record("EMPLOYEE")
	st, err = ru.GetUsing(emp, "DEPT-EMPLOYEE", map[string]any{"EMP_NAME": "Baker"})
	if checkStatus(t, common.StatusOK, st, err) {
		data, _ := emp.Data()
		assert.EqualValues(t, 102, data.Get("EMP_ID"))
	}

	// a miss keeps the record currency and continues at the key position
	st, err = ru.GetUsing(emp, "DEPT-EMPLOYEE", map[string]any{"EMP_NAME": "Bell"})
	checkStatus(t, common.StatusNotFound, st, err)
	lc, _ := ru.Currency().List("DEPT-EMPLOYEE")
	assert.Equal(t, currency.MissOnUsing, lc.Action)
	rc, _ := ru.Currency().Record("EMPLOYEE")
	assert.EqualValues(t, 102, rc.Keys.Get("EMP_ID"))
	checkName(t, ru, emp, "EMP_NAME", common.Next, "DEPT-EMPLOYEE", "Clark")

	st, err = ru.GetUsing(emp, "DEPT-EMPLOYEE", map[string]any{"EMP_NAME": "Bell"})
	checkStatus(t, common.StatusNotFound, st, err)
	checkName(t, ru, emp, "EMP_NAME", common.Prior, "DEPT-EMPLOYEE", "Baker")

	st, err = ru.GetUsing(emp, "DEPT-EMPLOYEE", map[string]any{"EMP_NAME": "Zorn"})
	checkStatus(t, common.StatusNotFound, st, err)
	st, err = ru.GetInList(emp, "DEPT-EMPLOYEE", common.Next)
	checkStatus(t, common.StatusEndOfSet, st, err)

	st, err = ru.GetUsing(emp, "EMP-NAME-NDX", map[string]any{"EMP_NAME": "Aaron"})
	checkStatus(t, common.StatusNotFound, st, err)
	checkName(t, ru, emp, "EMP_NAME", common.Next, "EMP-NAME-NDX", "Adams")
}

func TestRetrieveInArea(t *testing.T) {
	ru := newRunUnit(t, nil)
	storeDepartment(t, ru)
	emp := ru.Record("EMPLOYEE")
	for i, expected := range []string{"Clark", "Adams", "Baker"} {
		dir := common.Next
		if i == 0 {
			dir = common.First
		}
		st, err := ru.GetInArea(emp, dir)
		if checkStatus(t, common.StatusOK, st, err) {
			data, _ := emp.Data()
			assert.Equal(t, expected, data.Get("EMP_NAME"))
		}
	}
	st, err := ru.GetInArea(emp, common.Next)
	checkStatus(t, common.StatusEndOfSet, st, err)
	st, err = ru.GetInArea(emp, common.Last)
	checkStatus(t, common.StatusOK, st, err)
	st, err = ru.GetInArea(emp, common.Prior)
	if checkStatus(t, common.StatusOK, st, err) {
		data, _ := emp.Data()
		assert.Equal(t, "Adams", data.Get("EMP_NAME"))
	}
}

func TestRetrieveInAreaReverse(t *testing.T) {
	config := common.DefaultConfig()
	config.AreaSweepReverse = true
	ru := newRunUnit(t, config)
	storeDepartment(t, ru)
	emp := ru.Record("EMPLOYEE")
	st, err := ru.GetInArea(emp, common.First)
	if checkStatus(t, common.StatusOK, st, err) {
		data, _ := emp.Data()
		assert.Equal(t, "Baker", data.Get("EMP_NAME"))
	}
	st, err = ru.GetInArea(emp, common.Next)
	if checkStatus(t, common.StatusOK, st, err) {
		data, _ := emp.Data()
		assert.Equal(t, "Adams", data.Get("EMP_NAME"))
	}
}

func TestRetrieveReturnKey(t *testing.T) {
	ru := newRunUnit(t, nil)
	storeDepartment(t, ru)
	emp := mapRecord(ru, "EMPLOYEE", "EMP_ID", 100)
	st, err := ru.GetByKey(emp)
	checkStatus(t, common.StatusOK, st, err)
	currentID := ru.Currency().CurrentID

	for i, expected := range []string{"Adams", "Baker", "Clark"} {
		dir := common.Next
		if i == 0 {
			dir = common.First
		}
		row, st, err := ru.ReturnKey("EMP-NAME-NDX", dir)
		if checkStatus(t, common.StatusOK, st, err) {
			assert.Equal(t, expected, row.Get("EMP_NAME"))
			assert.NotNil(t, row.Get("ID"))
		}
	}
	row, st, err := ru.ReturnKey("EMP-NAME-NDX", common.Current)
	if checkStatus(t, common.StatusOK, st, err) {
		assert.Equal(t, "Clark", row.Get("EMP_NAME"))
	}
	_, st, err = ru.ReturnKey("EMP-NAME-NDX", common.Next)
	checkStatus(t, common.StatusIndexEnd, st, err)
	_, st, err = ru.ReturnKey("EMP-NAME-NDX", common.Current)
	checkStatus(t, common.StatusIndexNotFound, st, err)

	row, st, err = ru.ReturnUsing("EMP-NAME-NDX", map[string]any{"EMP_NAME": "Baker"})
	if checkStatus(t, common.StatusOK, st, err) {
		assert.Equal(t, "Baker", row.Get("EMP_NAME"))
	}
	row, st, err = ru.ReturnKey("EMP-NAME-NDX", common.Prior)
	if checkStatus(t, common.StatusOK, st, err) {
		assert.Equal(t, "Adams", row.Get("EMP_NAME"))
	}
	_, st, err = ru.ReturnUsing("EMP-NAME-NDX", map[string]any{"EMP_NAME": "Nobody"})
	checkStatus(t, common.StatusIndexNotFound, st, err)

	// record currency is not touched
	assert.Equal(t, currentID, ru.Currency().CurrentID)
	assert.Equal(t, "Clark", emp.Get("EMP_NAME"))

	_, st, err = ru.ReturnKey("ORDER-LINE", common.First)
	checkStatus(t, common.StatusBadRequest, st, err)
}
