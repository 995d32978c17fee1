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

package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCompose(t *testing.T) {
	assert.Equal(t, StatusEndOfSet, MakeStatus(VerbObtain, MinorEndOfSet))
	assert.Equal(t, StatusStoreDup, MakeStatus(VerbStore, MinorDuplicate))
	assert.Equal(t, StatusNotConnected, MakeStatus(VerbDisconnect, MinorNoCurrency))
	assert.Equal(t, StatusNotMember, MakeStatus(VerbIf, MinorNotMember))
	assert.Equal(t, StatusOK, MakeStatus(VerbStore, MinorOK))
	assert.Equal(t, VerbReturn, StatusIndexNotFound.Verb())
	assert.Equal(t, MinorNotFound, StatusIndexNotFound.Minor())
	assert.Equal(t, "0307", StatusEndOfSet.String())
	assert.Equal(t, "1205", StatusStoreDup.String())
}

func TestStatusCheck(t *testing.T) {
	assert.NoError(t, StatusNotFound.Check(nil))
	assert.NoError(t, StatusOK.Check([]Status{}))
	assert.NoError(t, StatusNotFound.Check([]Status{StatusNotFound, StatusEndOfSet}))
	err := StatusEndOfSet.Check([]Status{StatusNotFound})
	assert.Error(t, err)
	var se *StatusError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, StatusEndOfSet, se.Status)
	assert.Equal(t, "unexpected IDMS status 0307", err.Error())
}

func TestDirection(t *testing.T) {
	assert.Equal(t, Last, First.Reverse())
	assert.Equal(t, Prior, Next.Reverse())
	assert.Equal(t, Current, Current.Reverse())
	assert.True(t, Prior.Backward())
	assert.False(t, First.Backward())
	assert.Equal(t, -1, Last.Step())
	d, ok := ParseDirection("next")
	assert.True(t, ok)
	assert.Equal(t, Next, d)
	assert.Equal(t, "PRIOR", Prior.String())
}
