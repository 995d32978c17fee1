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

package dal

import (
	"sort"
	"sync"

	"github.com/tknie/codasyl/schema"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
)

// Constructor creates a new empty record buffer
type Constructor func() Record

// Registry record buffer constructors by logical record name
type Registry struct {
	lock         sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry empty registry
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register register constructor for the record name
func (registry *Registry) Register(name string, constructor Constructor) {
	registry.lock.Lock()
	defer registry.lock.Unlock()
	registry.constructors[schema.Normalize(name)] = constructor
	log.Log.Debugf("Record buffer %s registered", schema.Normalize(name))
}

// Registered record name has a constructor
func (registry *Registry) Registered(name string) bool {
	registry.lock.RLock()
	defer registry.lock.RUnlock()
	_, ok := registry.constructors[schema.Normalize(name)]
	return ok
}

// New create record buffer for the record name
func (registry *Registry) New(name string) (Record, error) {
	registry.lock.RLock()
	constructor, ok := registry.constructors[schema.Normalize(name)]
	registry.lock.RUnlock()
	if !ok {
		return nil, errorrepo.NewError("DB000205", name)
	}
	return constructor(), nil
}

// NewOrMap create registered record buffer or a map buffer if none is
// registered
func (registry *Registry) NewOrMap(name string) Record {
	if registry != nil {
		if r, err := registry.New(name); err == nil {
			return r
		}
	}
	return NewMapRecord(name)
}

// Names registered record names
func (registry *Registry) Names() []string {
	registry.lock.RLock()
	defer registry.lock.RUnlock()
	names := make([]string, 0, len(registry.constructors))
	for n := range registry.constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
