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

package dbsql

// Expr typed SQL expression node
type Expr interface {
	writeTo(r *renderer)
}

// Source table reference of a FROM or JOIN clause
type Source interface {
	sourceTo(r *renderer)
}

// Col column reference, optionally qualified by a table alias
type Col struct {
	Qualifier string
	Name      string
}

// Param bound parameter value
type Param struct {
	Value any
}

// Lit literal SQL fragment, only used for constants generated here
type Lit string

// Cmp binary comparison
type Cmp struct {
	Left  Expr
	Op    string
	Right Expr
}

// IsNull NULL test
type IsNull struct {
	Expr Expr
	Not  bool
}

// And conjunction, nil entries are skipped
type And []Expr

// Or disjunction, nil entries are skipped
type Or []Expr

// As expression with column alias
type As struct {
	Expr  Expr
	Alias string
}

// AllOf all columns of the qualifier, `q.*`
type AllOf struct {
	Qualifier string
}

// Plus arithmetic addition
type Plus struct {
	Left  Expr
	Right Expr
}

// RowNumber ROW_NUMBER() window function
type RowNumber struct {
	OrderBy []Order
}

// SubSelect scalar sub query
type SubSelect struct {
	Select *Select
}

// Order ORDER BY term
type Order struct {
	Expr Expr
	Desc bool
}

// Table table reference with optional alias
type Table struct {
	Name  string
	Alias string
}

// Derived derived table out of a sub query
type Derived struct {
	Select *Select
	Alias  string
}

// Join join clause, Kind is JOIN or CROSS JOIN
type Join struct {
	Kind   string
	Source Source
	On     Expr
}

// CTE common table expression, recursive if Recursive is set
type CTE struct {
	Name      string
	Columns   []string
	Body      *Select
	Recursive *Select
}

// Statement node of a complete SQL statement
type StatementNode interface {
	statementTo(r *renderer)
}

// Select SELECT statement
type Select struct {
	With    []*CTE
	Columns []Expr
	From    Source
	Joins   []Join
	Where   Expr
	OrderBy []Order
	Limit   int
}

// Assign SET clause entry
type Assign struct {
	Column string
	Value  Expr
}

// Insert INSERT statement. Returning names the generated id column
// returned by the dialect specific identity retrieval.
type Insert struct {
	Table     string
	Columns   []string
	Values    []Expr
	Returning string
}

// Update UPDATE statement
type Update struct {
	Table string
	Set   []Assign
	Where Expr
}

// Delete DELETE statement
type Delete struct {
	Table string
	Where Expr
}

// C shortcut for a qualified column
func C(qualifier, name string) Col {
	return Col{Qualifier: qualifier, Name: name}
}

// P shortcut for a parameter
func P(value any) Param {
	return Param{Value: value}
}

// Eq equal comparison
func Eq(left, right Expr) Cmp {
	return Cmp{Left: left, Op: "=", Right: right}
}

// Reverse reverse all order terms
func Reverse(orders []Order) []Order {
	r := make([]Order, len(orders))
	for i, o := range orders {
		r[i] = Order{Expr: o.Expr, Desc: !o.Desc}
	}
	return r
}

func (a And) compact() []Expr {
	return compact(a)
}

func (o Or) compact() []Expr {
	return compact(o)
}

func compact(list []Expr) []Expr {
	c := make([]Expr, 0, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		switch x := e.(type) {
		case And:
			if len(x.compact()) == 0 {
				continue
			}
		case Or:
			if len(x.compact()) == 0 {
				continue
			}
		}
		c = append(c, e)
	}
	return c
}

// Empty expression renders nothing
func Empty(e Expr) bool {
	switch x := e.(type) {
	case nil:
		return true
	case And:
		return len(x.compact()) == 0
	case Or:
		return len(x.compact()) == 0
	}
	return false
}
