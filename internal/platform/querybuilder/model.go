package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel starts an insert from the db tagged exported fields of model,
// in declaration order.
func InsertModel(table string, model any) *InsertBuilder {
	b := InsertInto(table)
	cols, vals, err := modelColumns(model)
	if err != nil {
		b.err = fmt.Errorf("insert %s: %w", table, err)
		return b
	}
	return b.Columns(cols...).Values(vals...)
}

func modelColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct, got %s", value.Kind())
	}

	typ := value.Type()
	var (
		cols []string
		vals []any
	)
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
