package table

import (
	"strings"
	"time"
)

// Column is a typed schema element. Columns are immutable: a schema change
// replaces columns, it never mutates them.
type Column interface {
	Name() string
	Type() TypeTag
	// DefaultValue is the value injected for a missing source value.
	DefaultValue() interface{}
	// IsValidValue reports whether v may be stored in a cell of this column.
	// A nil value is always valid and represents null.
	IsValidValue(v interface{}) bool
	ConvertFromString(s string) (interface{}, error)
	ConvertToString(v interface{}) (string, error)
	CreateCell(v interface{}) (*Cell, error)
}

// TypedColumn is a Column whose values have the Go type T.
type TypedColumn[T any] struct {
	name         string
	tag          TypeTag
	defaultValue T
	parse        func(string) (T, error)
	format       func(T) string
}

func newTypedColumn[T any](name string, tag TypeTag, def T, parse func(string) (T, error), format func(T) string) (*TypedColumn[T], error) {
	if strings.TrimSpace(name) == "" {
		return nil, schemaErrorf("column name must not be blank")
	}
	return &TypedColumn[T]{
		name:         name,
		tag:          tag,
		defaultValue: def,
		parse:        parse,
		format:       format,
	}, nil
}

func (this *TypedColumn[T]) Name() string {
	return this.name
}

func (this *TypedColumn[T]) Type() TypeTag {
	return this.tag
}

func (this *TypedColumn[T]) DefaultValue() interface{} {
	return this.defaultValue
}

// Default returns the typed default value.
func (this *TypedColumn[T]) Default() T {
	return this.defaultValue
}

func (this *TypedColumn[T]) IsValidValue(v interface{}) bool {
	if v == nil {
		return true
	}
	_, ok := v.(T)
	return ok
}

// Parse converts s to the column type.
func (this *TypedColumn[T]) Parse(s string) (T, error) {
	v, err := this.parse(s)
	if err != nil {
		var zero T
		return zero, &ConversionError{Column: this.name, Value: s, Type: this.tag, Cause: err}
	}
	return v, nil
}

// Format converts a typed value to its string form.
func (this *TypedColumn[T]) Format(v T) string {
	return this.format(v)
}

func (this *TypedColumn[T]) ConvertFromString(s string) (interface{}, error) {
	v, err := this.Parse(s)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (this *TypedColumn[T]) ConvertToString(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	typed, ok := v.(T)
	if !ok {
		return "", validationErrorf("value %v (%T) is not valid for %s column %q", v, v, this.tag, this.name)
	}
	return this.format(typed), nil
}

func (this *TypedColumn[T]) CreateCell(v interface{}) (*Cell, error) {
	cell := &Cell{column: this}
	if err := cell.SetValue(v); err != nil {
		return nil, err
	}
	return cell, nil
}

func NewStringColumn(name string) (*TypedColumn[string], error) {
	return newTypedColumn(name, TypeString, "", parseString, formatString)
}

func NewIntColumn(name string) (*TypedColumn[int64], error) {
	return newTypedColumn(name, TypeInt, int64(0), parseInt, formatInt)
}

func NewDoubleColumn(name string) (*TypedColumn[float64], error) {
	return newTypedColumn(name, TypeDouble, 0.0, parseDouble, FormatDouble)
}

func NewBooleanColumn(name string) (*TypedColumn[bool], error) {
	return newTypedColumn(name, TypeBoolean, false, parseBoolean, formatBoolean)
}

// NewDateColumn creates a calendar date column. Its default value is the
// date of now, fixed at creation.
func NewDateColumn(name string, now time.Time) (*TypedColumn[time.Time], error) {
	return newTypedColumn(name, TypeDate, dateOf(now), parseDate, formatDate)
}

// NewTimeColumn creates a time-of-day column defaulting to the clock time of now.
func NewTimeColumn(name string, now time.Time) (*TypedColumn[time.Time], error) {
	return newTypedColumn(name, TypeTime, timeOf(now), parseTime, formatTime)
}

// NewDateTimeColumn creates a local date-time column defaulting to now.
func NewDateTimeColumn(name string, now time.Time) (*TypedColumn[time.Time], error) {
	return newTypedColumn(name, TypeDateTime, dateTimeOf(now), parseDateTime, formatDateTime)
}

// NewColumn creates a column from a case-sensitive type name. Temporal
// columns take their default value from now.
func NewColumn(name, typeName string, now time.Time) (Column, error) {
	tag, ok := ParseTypeTag(typeName)
	if !ok {
		return nil, schemaErrorf("unsupported type %q for column %q", typeName, name)
	}

	var (
		col Column
		err error
	)
	switch tag {
	case TypeString:
		col, err = NewStringColumn(name)
	case TypeInt:
		col, err = NewIntColumn(name)
	case TypeDouble:
		col, err = NewDoubleColumn(name)
	case TypeBoolean:
		col, err = NewBooleanColumn(name)
	case TypeDate:
		col, err = NewDateColumn(name, now)
	case TypeTime:
		col, err = NewTimeColumn(name, now)
	case TypeDateTime:
		col, err = NewDateTimeColumn(name, now)
	}
	if err != nil {
		return nil, err
	}
	return col, nil
}
