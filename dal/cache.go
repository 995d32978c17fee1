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
	"github.com/tknie/codasyl/common"
)

// RowCache rows of the last query in logical forward order together
// with the cursor. Scope and owner identify the set occurrence the rows
// were read from.
type RowCache struct {
	Rows    []Row
	Index   int
	Scope   string
	OwnerID any
	deleted []bool
}

// NewRowCache empty row cache
func NewRowCache() *RowCache {
	return &RowCache{Index: -1}
}

// Load replace the cached rows and position the cursor
func (c *RowCache) Load(scope string, ownerID any, rows []Row, index int) {
	c.Rows = rows
	c.deleted = make([]bool, len(rows))
	c.Scope = scope
	c.OwnerID = common.NormalizeValue(ownerID)
	c.Index = index
	if index >= len(rows) {
		c.Index = -1
	}
}

// Clear drop all cached rows
func (c *RowCache) Clear() {
	c.Rows = nil
	c.deleted = nil
	c.Scope = ""
	c.OwnerID = nil
	c.Index = -1
}

// Len number of cached rows including deleted
func (c *RowCache) Len() int {
	return len(c.Rows)
}

// Current row at the cursor, nil if no row is current
func (c *RowCache) Current() Row {
	if c.Index < 0 || c.Index >= len(c.Rows) {
		return nil
	}
	return c.Rows[c.Index]
}

// Matches cache was filled for the scope and owner
func (c *RowCache) Matches(scope string, ownerID any) bool {
	return c.Scope == scope && len(c.Rows) > 0 && common.SameValue(c.OwnerID, ownerID)
}

// Find index of the row with the id, -1 if not cached
func (c *RowCache) Find(idColumn string, id any) int {
	if common.IsNull(id) {
		return -1
	}
	for i, r := range c.Rows {
		if common.SameValue(r.Get(idColumn), id) {
			return i
		}
	}
	return -1
}

// Advance next row index from the given index in step direction,
// skipping deleted rows. Returns -1 if the cache bound is reached.
func (c *RowCache) Advance(from, step int) int {
	for i := from + step; i >= 0 && i < len(c.Rows); i += step {
		if !c.deleted[i] {
			return i
		}
	}
	return -1
}

// Anchor nearest non deleted row to the given index in step direction
// including the index itself, -1 if none
func (c *RowCache) Anchor(from, step int) int {
	if from >= 0 && from < len(c.Rows) && !c.deleted[from] {
		return from
	}
	return c.Advance(from, step)
}

// IsDeleted row at index is logically deleted
func (c *RowCache) IsDeleted(index int) bool {
	return index >= 0 && index < len(c.deleted) && c.deleted[index]
}

// MarkDeleted mark the cached row with the id as deleted
func (c *RowCache) MarkDeleted(idColumn string, id any) bool {
	i := c.Find(idColumn, id)
	if i < 0 {
		return false
	}
	c.deleted[i] = true
	return true
}

// Replace replace the cached row with the same id, keeping the cursor
func (c *RowCache) Replace(idColumn string, row Row) bool {
	i := c.Find(idColumn, row.Get(idColumn))
	if i < 0 {
		return false
	}
	c.Rows[i] = row
	return true
}

// MarkDeletedWhere mark all cached rows matching the condition as deleted
func (c *RowCache) MarkDeletedWhere(match func(Row) bool) int {
	n := 0
	for i, r := range c.Rows {
		if !c.deleted[i] && match(r) {
			c.deleted[i] = true
			n++
		}
	}
	return n
}
