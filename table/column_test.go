package table

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func TestNewColumn_TypeNames(t *testing.T) {
	tests := []struct {
		typeName string
		want     TypeTag
	}{
		{"string", TypeString},
		{"int", TypeInt},
		{"double", TypeDouble},
		{"boolean", TypeBoolean},
		{"date", TypeDate},
		{"time", TypeTime},
		{"datetime", TypeDateTime},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			col, err := NewColumn("c", tt.typeName, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, "c", col.Name())
			assert.Equal(t, tt.want, col.Type())
			assert.Equal(t, tt.typeName, col.Type().String())
		})
	}
}

func TestNewColumn_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		column   string
		typeName string
	}{
		{"unknown type", "c", "decimal"},
		{"type is case sensitive", "c", "Int"},
		{"empty type", "c", ""},
		{"empty name", "", "string"},
		{"blank name", "   ", "int"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := NewColumn(tt.column, tt.typeName, fixedNow)
			assert.Nil(t, col)
			assert.True(t, errors.Is(err, ErrSchema), "got %v", err)
		})
	}
}

func TestColumn_Defaults(t *testing.T) {
	tests := []struct {
		typeName string
		want     interface{}
	}{
		{"string", ""},
		{"int", int64(0)},
		{"double", 0.0},
		{"boolean", false},
		{"date", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"time", time.Date(0, 1, 1, 14, 5, 7, 0, time.UTC)},
		{"datetime", fixedNow},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			col, err := NewColumn("c", tt.typeName, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, col.DefaultValue())
			assert.True(t, col.IsValidValue(col.DefaultValue()))
		})
	}
}

func TestColumn_ConvertFromString(t *testing.T) {
	tests := []struct {
		typeName string
		input    string
		want     interface{}
	}{
		{"string", "hello", "hello"},
		{"string", "", ""},
		{"int", "42", int64(42)},
		{"int", "-7", int64(-7)},
		{"double", "75000.50", 75000.5},
		{"double", ".5", 0.5},
		{"double", "1e3", 1000.0},
		{"double", "-Infinity", math.Inf(-1)},
		{"double", "+Infinity", math.Inf(1)},
		{"boolean", "TRUE", true},
		{"boolean", "false", false},
		{"date", "2023-01-15", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"time", "09:30:00", time.Date(0, 1, 1, 9, 30, 0, 0, time.UTC)},
		{"time", "09:30", time.Date(0, 1, 1, 9, 30, 0, 0, time.UTC)},
		{"datetime", "2023-01-15T09:30:00", time.Date(2023, 1, 15, 9, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.typeName+"/"+tt.input, func(t *testing.T) {
			col, err := NewColumn("c", tt.typeName, fixedNow)
			require.NoError(t, err)
			got, err := col.ConvertFromString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumn_ConvertFromString_NaN(t *testing.T) {
	col, err := NewDoubleColumn("d")
	require.NoError(t, err)
	v, err := col.Parse("nan")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))
}

func TestColumn_ConvertFromString_Malformed(t *testing.T) {
	tests := []struct {
		typeName string
		input    string
	}{
		{"int", "abc"},
		{"int", "1.5"},
		{"int", ""},
		{"double", "12,5"},
		{"boolean", "yes"},
		{"date", "2023-13-01"},
		{"date", "15/01/2023"},
		{"time", "25:00:00"},
		{"datetime", "2023-01-15 09:30:00"},
	}
	for _, tt := range tests {
		t.Run(tt.typeName+"/"+tt.input, func(t *testing.T) {
			col, err := NewColumn("Amount", tt.typeName, fixedNow)
			require.NoError(t, err)
			_, err = col.ConvertFromString(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConversion))

			var convErr *ConversionError
			require.True(t, errors.As(err, &convErr))
			assert.Equal(t, "Amount", convErr.Column)
			assert.Equal(t, tt.input, convErr.Value)
			assert.Contains(t, err.Error(), "Amount")
		})
	}
}

func TestColumn_ConvertToString(t *testing.T) {
	tests := []struct {
		typeName string
		value    interface{}
		want     string
	}{
		{"string", "x", "x"},
		{"int", int64(30), "30"},
		{"double", 75000.5, "75000.5"},
		{"double", 30.0, "30"},
		{"boolean", true, "true"},
		{"date", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), "2023-01-15"},
		{"time", time.Date(0, 1, 1, 10, 30, 0, 0, time.UTC), "10:30:00"},
		{"time", time.Date(0, 1, 1, 10, 30, 0, 500000000, time.UTC), "10:30:00.5"},
		{"datetime", time.Date(2023, 1, 15, 9, 30, 0, 0, time.UTC), "2023-01-15T09:30:00"},
		{"int", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.typeName+"/"+tt.want, func(t *testing.T) {
			col, err := NewColumn("c", tt.typeName, fixedNow)
			require.NoError(t, err)
			got, err := col.ConvertToString(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumn_IsValidValue(t *testing.T) {
	intCol, err := NewIntColumn("i")
	require.NoError(t, err)

	assert.True(t, intCol.IsValidValue(int64(1)))
	assert.True(t, intCol.IsValidValue(nil))
	assert.False(t, intCol.IsValidValue(1))
	assert.False(t, intCol.IsValidValue("1"))
	assert.False(t, intCol.IsValidValue(1.0))

	_, err = intCol.ConvertToString("1")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestColumn_CreateCell(t *testing.T) {
	col, err := NewBooleanColumn("b")
	require.NoError(t, err)

	cell, err := col.CreateCell(true)
	require.NoError(t, err)
	assert.Equal(t, true, cell.Value())
	assert.Equal(t, "true", cell.String())
	assert.Same(t, col, cell.Column())

	_, err = col.CreateCell("true")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCell_SetValueRevalidates(t *testing.T) {
	col, err := NewDoubleColumn("d")
	require.NoError(t, err)
	cell, err := col.CreateCell(1.5)
	require.NoError(t, err)

	err = cell.SetValue("2.5")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, 1.5, cell.Value())

	require.NoError(t, cell.SetValue(nil))
	assert.True(t, cell.IsNull())
	assert.Equal(t, "", cell.String())
}
