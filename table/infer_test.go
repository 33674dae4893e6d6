package table

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "string"},
		{"   ", "string"},
		{"42", "int"},
		{"-42", "int"},
		{"007", "int"},
		{"99999999999999999999", "int"},
		{"3.14", "double"},
		{"-3.14", "double"},
		{"75000.50", "double"},
		{"5.", "double"},
		{".5", "double"},
		{"-.5", "double"},
		{"1e10", "double"},
		{"1.5E-3", "double"},
		{".5e3", "double"},
		{"true", "boolean"},
		{"FALSE", "boolean"},
		{"True", "boolean"},
		{"NaN", "double"},
		{"nan", "double"},
		{"Infinity", "double"},
		{"+Infinity", "double"},
		{"-infinity", "double"},
		{"2023-01-15", "date"},
		{"2023-02-30", "string"},
		{"2023-1-15", "string"},
		{"09:30:00", "time"},
		{"23:59:59", "time"},
		{"9:30:00", "string"},
		{"09:30", "string"},
		{"24:00:00", "string"},
		{"2023-01-15T09:30:00", "datetime"},
		{"2023-01-15T9:30:00", "string"},
		{"2023-01-15 09:30:00", "string"},
		{"2023-01-15T09:30", "string"},
		{"Alice", "string"},
		{"12abc", "string"},
		{"1,000", "string"},
		{" 42", "string"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, InferType(tt.input))
		})
	}
}

func TestInferType_IsTotal(t *testing.T) {
	inputs := []string{"", "x", "∞", "--1", "1-", "T", "::", "0x1F", "1_000", "\n", "2023-01-15T"}
	for _, in := range inputs {
		assert.True(t, IsKnownType(InferType(in)), "input %q", in)
	}
}

func TestInferType_InferredValuesConvert(t *testing.T) {
	inputs := []string{"42", "3.14", "5.", ".5", "1e10", "true", "NaN", "-Infinity",
		"2023-01-15", "09:30:00", "2023-01-15T09:30:00", "Alice"}
	for _, in := range inputs {
		col, err := NewColumn("c", InferType(in), fixedNow)
		require.NoError(t, err)
		_, err = col.ConvertFromString(in)
		assert.NoError(t, err, "input %q inferred as %s", in, col.Type())
	}
}

func TestMergeType(t *testing.T) {
	assert.Equal(t, "int", MergeType("int", "int"))
	assert.Equal(t, "double", MergeType("int", "double"))
	assert.Equal(t, "double", MergeType("double", "int"))
	assert.Equal(t, "string", MergeType("int", "boolean"))
	assert.Equal(t, "date", MergeType("", "date"))
	assert.Equal(t, "string", MergeType("date", "datetime"))
}

func TestInferSchema(t *testing.T) {
	defs := InferSchema([]string{"Name", "Age", "Salary", "Extra"}, []string{"Alice", "30", "75000.50"})
	assert.Equal(t, []ColumnDef{
		{Name: "Name", Type: "string"},
		{Name: "Age", Type: "int"},
		{Name: "Salary", Type: "double"},
		{Name: "Extra", Type: "string"},
	}, defs)
}

func TestDefaultValueString(t *testing.T) {
	now := time.Date(2023, 1, 15, 9, 30, 5, 0, time.UTC)
	tests := []struct {
		typeName string
		want     string
	}{
		{"string", ""},
		{"int", "0"},
		{"double", "0.0"},
		{"boolean", "false"},
		{"date", "2023-01-15"},
		{"time", "09:30:05"},
		{"datetime", "2023-01-15T09:30:05"},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			got, err := DefaultValueString(tt.typeName, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DefaultValueString("money", now)
	assert.True(t, errors.Is(err, ErrSchema))
}
