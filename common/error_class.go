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
	"context"
	"errors"
	"sync"
)

// ErrorClass closed classification of driver errors
type ErrorClass byte

const (
	ClassOther ErrorClass = iota
	ClassUniqueViolation
	ClassConnectionLost
	ClassTimeout
)

var errorClassName = []string{"Other", "UniqueViolation", "ConnectionLost", "Timeout"}

func (ec ErrorClass) String() string {
	return errorClassName[ec]
}

// Classifier maps a native driver error to an error class. It returns
// false if the error is not known to the driver.
type Classifier func(err error) (ErrorClass, bool)

var classifierLock sync.RWMutex
var classifiers = make(map[ReferenceType]Classifier)

// RegisterClassifier register driver specific error classification
func RegisterClassifier(driver ReferenceType, classifier Classifier) {
	classifierLock.Lock()
	defer classifierLock.Unlock()
	classifiers[driver] = classifier
}

// Classify classify error using the classifier of the driver. Context
// timeouts are classified independent of the driver.
func Classify(driver ReferenceType, err error) ErrorClass {
	if err == nil {
		return ClassOther
	}
	classifierLock.RLock()
	classifier, ok := classifiers[driver]
	classifierLock.RUnlock()
	if ok {
		if ec, found := classifier(err); found {
			return ec
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	case errors.Is(err, context.Canceled):
		return ClassTimeout
	}
	return ClassOther
}

// ClassifiedError error with driver classification attached
type ClassifiedError struct {
	Class ErrorClass
	Err   error
}

func (ce *ClassifiedError) Error() string {
	return ce.Class.String() + ": " + ce.Err.Error()
}

func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// ErrorClassOf return class of classified error in chain
func ErrorClassOf(err error) ErrorClass {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	return ClassOther
}
