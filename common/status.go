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
	"fmt"

	"golang.org/x/exp/slices"
)

// Status IDMS error status returned by every navigational verb. The value
// is composed of the major verb code times 100 plus the minor code, so
// 307 is "OBTAIN: end of set" and 1205 "STORE: duplicate not allowed".
type Status int

// Verb major code part of the status
type Verb int

// Minor minor code part of the status
type Minor int

const (
	VerbAny        Verb = 0
	VerbFinish     Verb = 1
	VerbErase      Verb = 2
	VerbObtain     Verb = 3
	VerbConnect    Verb = 7
	VerbModify     Verb = 8
	VerbDisconnect Verb = 11
	VerbStore      Verb = 12
	VerbIf         Verb = 16
	VerbReturn     Verb = 17
	VerbCommit     Verb = 18
	VerbRollback   Verb = 19
)

const (
	MinorOK             Minor = 0
	MinorNotMember      Minor = 1
	MinorNullKey        Minor = 2
	MinorDuplicate      Minor = 5
	MinorNoCurrency     Minor = 6
	MinorEndOfSet       Minor = 7
	MinorMandatory      Minor = 8
	MinorAlreadyMember  Minor = 16
	MinorNotFound       Minor = 26
	MinorOwnsMembers    Minor = 30
	MinorInvalidRequest Minor = 99
)

const (
	StatusOK Status = 0

	StatusEraseNoCurrency Status = 206
	StatusEraseNotEmpty   Status = 230

	StatusNullKey    Status = 302
	StatusNoCurrency Status = 306
	StatusEndOfSet   Status = 307
	StatusNotFound   Status = 326
	StatusBadRequest Status = 399

	StatusConnectDup        Status = 705
	StatusConnectNoCurrency Status = 706
	StatusConnected         Status = 716

	StatusModifyDup        Status = 805
	StatusModifyNoCurrency Status = 806

	StatusNotConnected    Status = 1106
	StatusMandatory       Status = 1108
	StatusStoreDup        Status = 1205
	StatusStoreNoCurrency Status = 1206
	StatusNotMember       Status = 1601
	StatusIfNoCurrency    Status = 1606
	StatusIndexEnd        Status = 1707
	StatusIndexNotFound   Status = 1726
)

// benign statuses never escalated by the auto-status check
var benign = []Status{StatusOK}

// MakeStatus compose status out of verb and minor code
func MakeStatus(verb Verb, minor Minor) Status {
	if minor == MinorOK {
		return StatusOK
	}
	return Status(int(verb)*100 + int(minor))
}

// Verb major verb code of the status
func (s Status) Verb() Verb {
	return Verb(int(s) / 100)
}

// Minor minor code of the status
func (s Status) Minor() Minor {
	return Minor(int(s) % 100)
}

// IsOK status indicating success
func (s Status) IsOK() bool {
	return s == StatusOK
}

// String status in IDMS four digit notation
func (s Status) String() string {
	return fmt.Sprintf("%04d", int(s))
}

// Check returns an error if the status is neither benign nor part of
// the allowed list. A nil allowed list disables the check.
func (s Status) Check(allowed []Status) error {
	if allowed == nil || slices.Contains(benign, s) || slices.Contains(allowed, s) {
		return nil
	}
	return &StatusError{Status: s}
}

// StatusError status escalated to an error by the auto-status check
type StatusError struct {
	Status Status
	Verb   string
	Name   string
}

func (se *StatusError) Error() string {
	if se.Verb == "" {
		return fmt.Sprintf("unexpected IDMS status %s", se.Status)
	}
	return fmt.Sprintf("unexpected IDMS status %s in %s of %s", se.Status, se.Verb, se.Name)
}
