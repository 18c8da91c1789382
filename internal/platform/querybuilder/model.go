package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// InsertModel builds a single-row INSERT from the exported `db` tagged fields of model,
// in declaration order. suffix is appended as is, typically ON CONFLICT or RETURNING.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	value, err := structValue(model)
	if err != nil {
		return "", nil, err
	}

	fields := columnFields(value.Type())
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("model %s has no db columns", value.Type())
	}
	cols := make([]string, len(fields))
	vals := make([]any, len(fields))
	for i, f := range fields {
		cols[i] = f.column
		vals[i] = value.Field(f.index).Interface()
	}

	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

type columnField struct {
	index  int
	column string
}

// Row models are few and fixed, so their column layout is resolved once per type.
var columnFieldCache sync.Map

func columnFields(typ reflect.Type) []columnField {
	if cached, ok := columnFieldCache.Load(typ); ok {
		return cached.([]columnField)
	}

	fields := make([]columnField, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		column, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		column = strings.TrimSpace(column)
		if column == "" || column == "-" {
			continue
		}
		fields = append(fields, columnField{index: i, column: column})
	}

	columnFieldCache.Store(typ, fields)
	return fields
}

func structValue(model any) (reflect.Value, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model must be a struct, got %s", value.Kind())
	}
	return value, nil
}
