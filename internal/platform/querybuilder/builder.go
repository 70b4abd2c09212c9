// Package querybuilder renders the small set of Postgres statements the
// repositories need, numbering placeholders as $1..$n in argument order.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

type Condition interface {
	appendSQL(w *writer)
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) appendSQL(w *writer) {
	w.WriteString(c.column)
	w.WriteString(" = ")
	w.arg(c.value)
}

type isNullCondition struct {
	column string
}

func IsNull(column string) Condition {
	return isNullCondition{column: column}
}

func (c isNullCondition) appendSQL(w *writer) {
	w.WriteString(c.column)
	w.WriteString(" IS NULL")
}

// Expr is a raw fragment whose ? marks bind args in order.
type exprCondition struct {
	expr string
	args []any
}

func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: args}
}

func (c exprCondition) appendSQL(w *writer) {
	w.expr(c.expr, c.args)
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	w := newWriter()
	w.WriteString("SELECT ")
	w.WriteString(strings.Join(b.columns, ", "))
	w.WriteString(" FROM ")
	w.WriteString(b.table)
	w.where(b.where)
	if len(b.orderBy) > 0 {
		w.WriteString(" ORDER BY ")
		w.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.WriteString(" LIMIT ")
		w.WriteString(strconv.Itoa(b.limit))
	}
	return w.String(), w.args, nil
}

type setClause struct {
	column string
	value  any
	expr   *exprCondition
}

func (s setClause) appendSQL(w *writer) {
	w.WriteString(s.column)
	w.WriteString(" = ")
	if s.expr != nil {
		w.expr(s.expr.expr, s.expr.args)
		return
	}
	w.arg(s.value)
}

type InsertBuilder struct {
	table     string
	columns   []string
	rows      [][]any
	conflict  []string
	updates   []setClause
	doNothing bool
	returning []string
	err       error
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// OnConflict names the unique key of an upsert.
func (b *InsertBuilder) OnConflict(columns ...string) *InsertBuilder {
	b.conflict = append([]string(nil), columns...)
	return b
}

// DoUpdateExcluded overwrites each column with the value of the rejected row.
func (b *InsertBuilder) DoUpdateExcluded(columns ...string) *InsertBuilder {
	for _, column := range columns {
		b.updates = append(b.updates, setClause{column: column, expr: &exprCondition{expr: "EXCLUDED." + column}})
	}
	return b
}

func (b *InsertBuilder) DoUpdateExpr(column, expr string, args ...any) *InsertBuilder {
	b.updates = append(b.updates, setClause{column: column, expr: &exprCondition{expr: expr, args: args}})
	return b
}

func (b *InsertBuilder) DoNothing() *InsertBuilder {
	b.doNothing = true
	return b
}

func (b *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	b.returning = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}
	if (len(b.updates) > 0 || b.doNothing) && len(b.conflict) == 0 {
		return "", nil, fmt.Errorf("on conflict target is required")
	}
	if len(b.updates) > 0 && b.doNothing {
		return "", nil, fmt.Errorf("on conflict cannot both update and do nothing")
	}

	w := newWriter()
	w.WriteString("INSERT INTO ")
	w.WriteString(b.table)
	w.WriteString(" (")
	w.WriteString(strings.Join(b.columns, ", "))
	w.WriteString(") VALUES ")
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			w.WriteString(", ")
		}
		w.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				w.WriteString(", ")
			}
			w.arg(value)
		}
		w.WriteString(")")
	}

	if len(b.conflict) > 0 {
		w.WriteString(" ON CONFLICT (")
		w.WriteString(strings.Join(b.conflict, ", "))
		w.WriteString(")")
		switch {
		case len(b.updates) > 0:
			w.WriteString(" DO UPDATE SET ")
			w.sets(b.updates)
		default:
			w.WriteString(" DO NOTHING")
		}
	}
	w.returning(b.returning)
	return w.String(), w.args, nil
}

type UpdateBuilder struct {
	table     string
	sets      []setClause
	where     []Condition
	returning []string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, expr: &exprCondition{expr: expr, args: args}})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Returning(columns ...string) *UpdateBuilder {
	b.returning = append([]string(nil), columns...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	w := newWriter()
	w.WriteString("UPDATE ")
	w.WriteString(b.table)
	w.WriteString(" SET ")
	w.sets(b.sets)
	w.where(b.where)
	w.returning(b.returning)
	return w.String(), w.args, nil
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// ToSQL refuses an unconditional delete.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete without conditions is not allowed")
	}

	w := newWriter()
	w.WriteString("DELETE FROM ")
	w.WriteString(b.table)
	w.where(b.where)
	return w.String(), w.args, nil
}

type writer struct {
	strings.Builder
	args []any
}

func newWriter() *writer {
	return &writer{}
}

func (w *writer) arg(value any) {
	w.args = append(w.args, value)
	w.WriteString("$")
	w.WriteString(strconv.Itoa(len(w.args)))
}

func (w *writer) expr(expr string, args []any) {
	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && next < len(args) {
			w.arg(args[next])
			next++
			continue
		}
		w.WriteByte(expr[i])
	}
}

func (w *writer) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.WriteString(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.WriteString(" AND ")
		}
		c.appendSQL(w)
	}
}

func (w *writer) sets(sets []setClause) {
	for i, s := range sets {
		if i > 0 {
			w.WriteString(", ")
		}
		s.appendSQL(w)
	}
}

func (w *writer) returning(columns []string) {
	if len(columns) == 0 {
		return
	}
	w.WriteString(" RETURNING ")
	w.WriteString(strings.Join(columns, ", "))
}
