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

package db2

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tknie/codasyl/common"
)

func TestDB2URL(t *testing.T) {
	ref := &common.Reference{Driver: common.DB2Type, Host: "db2host", Port: 50000,
		User: "db2inst1", Database: "EMPSCHM"}
	assert.Equal(t, "HOSTNAME=db2host;DATABASE=EMPSCHM;PORT=50000;UID=db2inst1;PWD=pw", URL(ref, "pw"))
}

func TestDB2Classify(t *testing.T) {
	dup := errors.New("SQLExecute: {23505} [IBM][CLI Driver][DB2/LINUXX8664] SQL0803N  One or more values ... SQLSTATE=23505")
	assert.Equal(t, common.ClassUniqueViolation, common.Classify(common.DB2Type, dup))
	lost := errors.New("[IBM][CLI Driver] SQL30081N  A communication error has been detected. SQLSTATE=08001")
	assert.Equal(t, common.ClassConnectionLost, common.Classify(common.DB2Type, lost))
	assert.Equal(t, common.ClassOther, common.Classify(common.DB2Type, errors.New("no state")))
}
