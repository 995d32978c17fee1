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

import (
	"strings"
)

type renderer struct {
	dialect   Dialect
	buffer    strings.Builder
	args      []any
	recursive bool
}

// Render render statement node into dialect specific SQL text and the
// parameter list. Every parameter occurrence gets its own marker.
func Render(d Dialect, node StatementNode) (string, []any) {
	r := &renderer{dialect: d, args: make([]any, 0)}
	node.statementTo(r)
	if r.recursive && d == SQLServer {
		r.write(" OPTION (MAXRECURSION 0)")
	}
	return r.buffer.String(), r.args
}

func (r *renderer) write(s ...string) {
	for _, x := range s {
		r.buffer.WriteString(x)
	}
}

func (r *renderer) param(v any) {
	r.args = append(r.args, v)
	r.write(r.dialect.Placeholder(len(r.args)))
}

func (r *renderer) list(exprs []Expr, sep string) {
	for i, e := range exprs {
		if i > 0 {
			r.write(sep)
		}
		e.writeTo(r)
	}
}

func (c Col) writeTo(r *renderer) {
	if c.Qualifier != "" {
		r.write(c.Qualifier, ".")
	}
	r.write(c.Name)
}

func (p Param) writeTo(r *renderer) {
	r.param(p.Value)
}

func (l Lit) writeTo(r *renderer) {
	r.write(string(l))
}

func (c Cmp) writeTo(r *renderer) {
	c.Left.writeTo(r)
	r.write(" ", c.Op, " ")
	c.Right.writeTo(r)
}

func (n IsNull) writeTo(r *renderer) {
	n.Expr.writeTo(r)
	if n.Not {
		r.write(" IS NOT NULL")
	} else {
		r.write(" IS NULL")
	}
}

func (a And) writeTo(r *renderer) {
	list := a.compact()
	for i, e := range list {
		if i > 0 {
			r.write(" AND ")
		}
		if o, ok := e.(Or); ok && len(o.compact()) > 1 {
			r.write("(")
			e.writeTo(r)
			r.write(")")
			continue
		}
		e.writeTo(r)
	}
}

func (o Or) writeTo(r *renderer) {
	list := o.compact()
	for i, e := range list {
		if i > 0 {
			r.write(" OR ")
		}
		if a, ok := e.(And); ok && len(a.compact()) > 1 {
			r.write("(")
			e.writeTo(r)
			r.write(")")
			continue
		}
		e.writeTo(r)
	}
}

func (a As) writeTo(r *renderer) {
	a.Expr.writeTo(r)
	r.write(" AS ", a.Alias)
}

func (a AllOf) writeTo(r *renderer) {
	if a.Qualifier != "" {
		r.write(a.Qualifier, ".")
	}
	r.write("*")
}

func (p Plus) writeTo(r *renderer) {
	p.Left.writeTo(r)
	r.write(" + ")
	p.Right.writeTo(r)
}

func (rn RowNumber) writeTo(r *renderer) {
	r.write("ROW_NUMBER() OVER (")
	r.orderBy(rn.OrderBy)
	r.write(")")
}

func (s SubSelect) writeTo(r *renderer) {
	r.write("(")
	s.Select.statementTo(r)
	r.write(")")
}

func (r *renderer) orderBy(orders []Order) {
	r.write("ORDER BY ")
	for i, o := range orders {
		if i > 0 {
			r.write(", ")
		}
		o.Expr.writeTo(r)
		if o.Desc {
			r.write(" DESC")
		} else {
			r.write(" ASC")
		}
	}
}

func (t Table) sourceTo(r *renderer) {
	r.write(t.Name)
	if t.Alias != "" {
		r.write(" ", t.Alias)
	}
}

func (d Derived) sourceTo(r *renderer) {
	r.write("(")
	d.Select.statementTo(r)
	r.write(") ", d.Alias)
}

func (s *Select) statementTo(r *renderer) {
	if len(s.With) > 0 {
		r.write("WITH ")
		for _, cte := range s.With {
			if cte.Recursive != nil && r.dialect.recursiveKeyword() {
				r.write("RECURSIVE ")
				break
			}
		}
		for i, cte := range s.With {
			if i > 0 {
				r.write(", ")
			}
			r.write(cte.Name)
			if len(cte.Columns) > 0 {
				r.write(" (", strings.Join(cte.Columns, ", "), ")")
			}
			r.write(" AS (")
			cte.Body.statementTo(r)
			if cte.Recursive != nil {
				r.recursive = true
				r.write(" UNION ALL ")
				cte.Recursive.statementTo(r)
			}
			r.write(")")
		}
		r.write(" ")
	}
	r.write("SELECT ", r.dialect.limitPrefix(s.Limit))
	if len(s.Columns) == 0 {
		r.write("*")
	} else {
		r.list(s.Columns, ", ")
	}
	r.write(" FROM ")
	s.From.sourceTo(r)
	for _, j := range s.Joins {
		r.write(" ", j.Kind, " ")
		j.Source.sourceTo(r)
		if j.On != nil {
			r.write(" ON ")
			j.On.writeTo(r)
		}
	}
	if !Empty(s.Where) {
		r.write(" WHERE ")
		s.Where.writeTo(r)
	}
	if len(s.OrderBy) > 0 {
		r.write(" ")
		r.orderBy(s.OrderBy)
	}
	r.write(r.dialect.limitSuffix(s.Limit))
}

func (i *Insert) statementTo(r *renderer) {
	r.write("INSERT INTO ", i.Table)
	switch {
	case len(i.Columns) > 0:
		r.write(" (", strings.Join(i.Columns, ", "), ") VALUES (")
		r.list(i.Values, ", ")
		r.write(")")
	case r.dialect == MySQL:
		r.write(" () VALUES ()")
	case r.dialect == Oracle || r.dialect == DB2:
		r.write(" (", i.Returning, ") VALUES (DEFAULT)")
	default:
		r.write(" DEFAULT VALUES")
	}
	if i.Returning == "" {
		return
	}
	switch r.dialect {
	case SQLServer:
		r.write("; SELECT CAST(SCOPE_IDENTITY() AS BIGINT)")
	case Postgres, SQLite:
		r.write(" RETURNING ", i.Returning)
	case Oracle:
		r.write(" RETURNING ", i.Returning, " INTO ")
		r.param(nil)
	}
}

func (u *Update) statementTo(r *renderer) {
	r.write("UPDATE ", u.Table, " SET ")
	for i, a := range u.Set {
		if i > 0 {
			r.write(", ")
		}
		r.write(a.Column, " = ")
		a.Value.writeTo(r)
	}
	if !Empty(u.Where) {
		r.write(" WHERE ")
		u.Where.writeTo(r)
	}
}

func (d *Delete) statementTo(r *renderer) {
	r.write("DELETE FROM ", d.Table)
	if !Empty(d.Where) {
		r.write(" WHERE ")
		d.Where.writeTo(r)
	}
}
