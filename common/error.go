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
	"embed"
	"path"

	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
)

//go:embed messages
var embedFiles embed.FS

func init() {
	fss, err := embedFiles.ReadDir("messages")
	if err != nil {
		panic("Internal config load error: " + err.Error())
	}
	for _, f := range fss {
		if f.Type().IsRegular() {
			byteValue, err := embedFiles.ReadFile("messages/" + f.Name())
			if err != nil {
				panic("Internal config load error: " + err.Error())
			}
			lang := path.Ext(f.Name())
			errorrepo.RegisterMessage(lang[1:], string(byteValue))
		}
	}
}

// OperationError unexpected error of a navigational operation. It
// carries the failing operation, the record or set name and the driver
// error, and is returned after the ambient transaction is rolled back.
type OperationError struct {
	Operation string
	Name      string
	Err       error
	message   error
}

// NewOperationError wrap driver error into an operation error
func NewOperationError(operation, name string, err error) *OperationError {
	log.Log.Errorf("%s of %s failed: %v", operation, name, err)
	return &OperationError{Operation: operation, Name: name, Err: err,
		message: errorrepo.NewError("DB000200", operation, name, err)}
}

func (oe *OperationError) Error() string {
	return oe.message.Error()
}

func (oe *OperationError) Unwrap() error {
	return oe.Err
}
