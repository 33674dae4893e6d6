package table

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeeSchema() []ColumnDef {
	return []ColumnDef{
		{Name: "Name", Type: "string"},
		{Name: "Age", Type: "int"},
		{Name: "Salary", Type: "double"},
	}
}

func newEmployeeTable(t *testing.T, opts ...Option) *Table {
	t.Helper()
	tbl := New(opts...)
	require.NoError(t, tbl.SetColumns(employeeSchema()))
	return tbl
}

func TestTable_ExampleScenario(t *testing.T) {
	tbl := newEmployeeTable(t)

	idx, err := tbl.AddRow(map[string]string{"Name": "Alice", "Age": "30", "Salary": "75000.50"})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, tbl.RowCount())

	salary, err := tbl.GetValueAt(0, "Salary")
	require.NoError(t, err)
	assert.Equal(t, "75000.50", salary)

	obj, err := tbl.GetValueObject(0, "Salary")
	require.NoError(t, err)
	assert.Equal(t, 75000.5, obj)

	age, err := tbl.GetValueObject(0, "Age")
	require.NoError(t, err)
	assert.Equal(t, int64(30), age)
}

func TestTable_SetColumns(t *testing.T) {
	tbl := newEmployeeTable(t)

	assert.Equal(t, 3, tbl.ColumnCount())
	assert.Equal(t, []string{"Name", "Age", "Salary"}, tbl.ColumnNames())
	assert.Equal(t, employeeSchema(), tbl.Schema())

	for i, want := range []string{"Name", "Age", "Salary"} {
		got, err := tbl.ColumnName(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := tbl.ColumnName(3)
	assert.True(t, errors.Is(err, ErrLookup))
	_, err = tbl.ColumnName(-1)
	assert.True(t, errors.Is(err, ErrLookup))
}

func TestTable_SetColumns_Invalid(t *testing.T) {
	tests := []struct {
		name string
		defs []ColumnDef
	}{
		{"duplicate", []ColumnDef{{"A", "int"}, {"B", "string"}, {"A", "double"}}},
		{"blank name", []ColumnDef{{"A", "int"}, {" ", "string"}}},
		{"blank type", []ColumnDef{{"A", ""}}},
		{"unknown type", []ColumnDef{{"A", "int"}, {"B", "money"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newEmployeeTable(t)
			err := tbl.SetColumns(tt.defs)
			assert.True(t, errors.Is(err, ErrSchema), "got %v", err)
			// all or nothing
			assert.Equal(t, employeeSchema(), tbl.Schema())
		})
	}
}

func TestTable_SetColumns_RejectsPopulatedTable(t *testing.T) {
	tbl := newEmployeeTable(t)
	_, err := tbl.AddRow(map[string]string{"Name": "Alice", "Age": "30", "Salary": "1.0"})
	require.NoError(t, err)

	err = tbl.SetColumns([]ColumnDef{{"Other", "string"}})
	assert.True(t, errors.Is(err, ErrSchema))
	assert.Equal(t, employeeSchema(), tbl.Schema())
	assert.Equal(t, 1, tbl.RowCount())

	require.NoError(t, tbl.ResetSchema([]ColumnDef{{"Other", "string"}}))
	assert.Equal(t, 0, tbl.RowCount())
	assert.Equal(t, []string{"Other"}, tbl.ColumnNames())
}

func TestTable_ResetSchema_InvalidKeepsRows(t *testing.T) {
	tbl := newEmployeeTable(t)
	_, err := tbl.AddRow(map[string]string{"Name": "Alice", "Age": "30", "Salary": "1.0"})
	require.NoError(t, err)

	err = tbl.ResetSchema([]ColumnDef{{"A", "int"}, {"A", "int"}})
	assert.True(t, errors.Is(err, ErrSchema))
	assert.Equal(t, 1, tbl.RowCount())
}

func TestTable_AddRow_MissingColumn(t *testing.T) {
	tbl := newEmployeeTable(t)

	_, err := tbl.AddRow(map[string]string{"Name": "Bob", "Age": "41"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "Salary")
	assert.Equal(t, 0, tbl.RowCount())
}

func TestTable_AddRow_DefaultValues(t *testing.T) {
	now := time.Date(2023, 1, 15, 9, 30, 0, 0, time.UTC)
	tbl := New(WithCreateDefaultValue(true), WithClock(func() time.Time { return now }))
	require.NoError(t, tbl.SetColumns([]ColumnDef{
		{"Name", "string"},
		{"Age", "int"},
		{"Salary", "double"},
		{"Active", "boolean"},
		{"Hired", "date"},
		{"Start", "time"},
		{"Seen", "datetime"},
	}))

	_, err := tbl.AddRow(map[string]string{})
	require.NoError(t, err)

	want := map[string]string{
		"Name":   "",
		"Age":    "0",
		"Salary": "0.0",
		"Active": "false",
		"Hired":  "2023-01-15",
		"Start":  "09:30:00",
		"Seen":   "2023-01-15T09:30:00",
	}
	for column, expected := range want {
		got, err := tbl.GetValueAt(0, column)
		require.NoError(t, err)
		assert.Equal(t, expected, got, column)
	}

	obj, err := tbl.GetValueObject(0, "Salary")
	require.NoError(t, err)
	assert.Equal(t, 0.0, obj)
}

func TestTable_TemporalDefaultsFrozenAtColumnCreation(t *testing.T) {
	now := time.Date(2023, 1, 15, 9, 30, 0, 0, time.UTC)
	tbl := New(WithCreateDefaultValue(true), WithClock(func() time.Time { return now }))
	require.NoError(t, tbl.SetColumns([]ColumnDef{{"Day", "date"}}))

	now = now.AddDate(0, 0, 3)
	_, err := tbl.AddRow(map[string]string{})
	require.NoError(t, err)

	day, err := tbl.GetValueAt(0, "Day")
	require.NoError(t, err)
	assert.Equal(t, "2023-01-15", day)

	def, err := tbl.DefaultValue("date")
	require.NoError(t, err)
	assert.Equal(t, "2023-01-18", def)
}

func TestTable_AddRow_ConversionErrorLeavesTableUntouched(t *testing.T) {
	tbl := newEmployeeTable(t)

	_, err := tbl.AddRow(map[string]string{"Name": "Carol", "Age": "old", "Salary": "1.50"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConversion))
	assert.Equal(t, 0, tbl.RowCount())

	idx, err := tbl.AddRow(map[string]string{"Name": "Carol", "Age": "50", "Salary": "2"})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	salary, err := tbl.GetValueAt(0, "Salary")
	require.NoError(t, err)
	assert.Equal(t, "2", salary)
}

func TestTable_AddRow_IgnoresUnknownKeys(t *testing.T) {
	tbl := newEmployeeTable(t)
	_, err := tbl.AddRow(map[string]string{"Name": "A", "Age": "1", "Salary": "1", "Dept": "IT"})
	require.NoError(t, err)
	_, err = tbl.GetValueAt(0, "Dept")
	assert.True(t, errors.Is(err, ErrLookup))
}

func TestTable_AddRow_NoColumns(t *testing.T) {
	_, err := New().AddRow(map[string]string{"a": "b"})
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestTable_RoundTripPrecision(t *testing.T) {
	values := []string{"75000.50", "1.0", "0.000", "-3.1400", "10.", ".50", "1.50e3", "123456789.123456789000"}
	tbl := New()
	require.NoError(t, tbl.SetColumns([]ColumnDef{{"v", "double"}}))

	for _, s := range values {
		idx, err := tbl.AddRow(map[string]string{"v": s})
		require.NoError(t, err)
		got, err := tbl.GetValueAt(idx, "v")
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestTable_DoubleWithoutDecimalPoint(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.SetColumns([]ColumnDef{{"v", "double"}}))

	tests := []struct {
		input string
		want  string
	}{
		{"75000", "75000"},
		{"1e3", "1000"},
		{"NaN", "NaN"},
		{"-Infinity", "-Infinity"},
	}
	for _, tt := range tests {
		idx, err := tbl.AddRow(map[string]string{"v": tt.input})
		require.NoError(t, err)
		got, err := tbl.GetValueAt(idx, "v")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestTable_RowCountMonotonic(t *testing.T) {
	tbl := newEmployeeTable(t)
	for i := 0; i < 5; i++ {
		before := tbl.RowCount()
		idx, err := tbl.AddRow(map[string]string{"Name": "n", "Age": "1", "Salary": "2.5"})
		require.NoError(t, err)
		assert.Equal(t, before, idx)
		assert.Equal(t, before+1, tbl.RowCount())
	}
}

func TestTable_GetValueAt_Lookups(t *testing.T) {
	tbl := newEmployeeTable(t)
	_, err := tbl.AddRow(map[string]string{"Name": "Alice", "Age": "30", "Salary": "1.5"})
	require.NoError(t, err)

	_, err = tbl.GetValueAt(1, "Name")
	assert.True(t, errors.Is(err, ErrLookup))
	_, err = tbl.GetValueAt(-1, "Name")
	assert.True(t, errors.Is(err, ErrLookup))
	_, err = tbl.GetValueAt(0, "Missing")
	assert.True(t, errors.Is(err, ErrLookup))
	_, err = tbl.GetValueObject(0, "Missing")
	assert.True(t, errors.Is(err, ErrLookup))
	_, err = tbl.Row(2)
	assert.True(t, errors.Is(err, ErrLookup))
}

func TestTable_SetValueAt(t *testing.T) {
	tbl := newEmployeeTable(t)
	_, err := tbl.AddRow(map[string]string{"Name": "Alice", "Age": "30", "Salary": "75000.50"})
	require.NoError(t, err)

	require.NoError(t, tbl.SetValueAt(0, "Salary", "80000.00"))
	got, err := tbl.GetValueAt(0, "Salary")
	require.NoError(t, err)
	assert.Equal(t, "80000.00", got)

	require.NoError(t, tbl.SetValueAt(0, "Salary", "81000"))
	got, err = tbl.GetValueAt(0, "Salary")
	require.NoError(t, err)
	assert.Equal(t, "81000", got)

	err = tbl.SetValueAt(0, "Age", "thirty")
	assert.True(t, errors.Is(err, ErrConversion))
	age, err := tbl.GetValueObject(0, "Age")
	require.NoError(t, err)
	assert.Equal(t, int64(30), age)

	assert.True(t, errors.Is(tbl.SetValueAt(4, "Age", "1"), ErrLookup))
	assert.True(t, errors.Is(tbl.SetValueAt(0, "Dept", "1"), ErrLookup))
}

func TestTable_SetValueObject(t *testing.T) {
	tbl := newEmployeeTable(t)
	_, err := tbl.AddRow(map[string]string{"Name": "Alice", "Age": "30", "Salary": "75000.50"})
	require.NoError(t, err)

	require.NoError(t, tbl.SetValueObject(0, "Salary", 1.25))
	got, err := tbl.GetValueAt(0, "Salary")
	require.NoError(t, err)
	assert.Equal(t, "1.25", got)

	err = tbl.SetValueObject(0, "Salary", "1.25")
	assert.True(t, errors.Is(err, ErrValidation))

	require.NoError(t, tbl.SetValueObject(0, "Name", nil))
	obj, err := tbl.GetValueObject(0, "Name")
	require.NoError(t, err)
	assert.Nil(t, obj)
	name, err := tbl.GetValueAt(0, "Name")
	require.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestTable_EmptyAsNull(t *testing.T) {
	tbl := newEmployeeTable(t, WithEmptyAsNull(true))
	_, err := tbl.AddRow(map[string]string{"Name": "", "Age": "", "Salary": " "})
	require.NoError(t, err)

	name, err := tbl.GetValueObject(0, "Name")
	require.NoError(t, err)
	assert.Equal(t, "", name)

	age, err := tbl.GetValueObject(0, "Age")
	require.NoError(t, err)
	assert.Nil(t, age)

	salary, err := tbl.GetValueAt(0, "Salary")
	require.NoError(t, err)
	assert.Equal(t, "", salary)
}

func TestTable_CreateRowAndAppend(t *testing.T) {
	tbl := newEmployeeTable(t)

	row := tbl.CreateRow()
	require.NoError(t, row.SetValueByName("Name", "Dave"))
	require.NoError(t, row.SetValueByName("Age", int64(22)))
	require.NoError(t, row.SetValueByName("Salary", 10.5))

	err := row.SetValueByName("Dept", "IT")
	assert.True(t, errors.Is(err, ErrLookup))
	err = row.SetValueByName("Age", "22")
	assert.True(t, errors.Is(err, ErrValidation))

	idx, err := tbl.AppendRow(row)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	got, err := tbl.GetValueAt(0, "Salary")
	require.NoError(t, err)
	assert.Equal(t, "10.5", got)
}

func TestTable_AppendRow_Incomplete(t *testing.T) {
	tbl := newEmployeeTable(t)
	row := tbl.CreateRow()
	require.NoError(t, row.SetValueByName("Name", "Eve"))

	_, err := tbl.AppendRow(row)
	assert.True(t, errors.Is(err, ErrValidation))

	other := newEmployeeTable(t)
	_, err = tbl.AppendRow(other.CreateRow())
	assert.True(t, errors.Is(err, ErrValidation))

	withDefaults := newEmployeeTable(t, WithCreateDefaultValue(true))
	row = withDefaults.CreateRow()
	require.NoError(t, row.SetValueByName("Name", "Eve"))
	_, err = withDefaults.AppendRow(row)
	require.NoError(t, err)
	age, err := withDefaults.GetValueAt(0, "Age")
	require.NoError(t, err)
	assert.Equal(t, "0", age)
}

func TestTable_AppendRow_StaleSchema(t *testing.T) {
	tbl := newEmployeeTable(t)
	row := tbl.CreateRow()
	require.NoError(t, row.SetValueByName("Name", "Eve"))
	require.NoError(t, row.SetValueByName("Age", int64(1)))
	require.NoError(t, row.SetValueByName("Salary", 1.0))

	require.NoError(t, tbl.ResetSchema(employeeSchema()))
	_, err := tbl.AppendRow(row)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestTable_Clear(t *testing.T) {
	tbl := newEmployeeTable(t)
	_, err := tbl.AddRow(map[string]string{"Name": "A", "Age": "1", "Salary": "1.10"})
	require.NoError(t, err)

	tbl.Clear()
	assert.Equal(t, 0, tbl.RowCount())
	assert.Equal(t, 3, tbl.ColumnCount())

	_, err = tbl.AddRow(map[string]string{"Name": "A", "Age": "1", "Salary": "1"})
	require.NoError(t, err)
	got, err := tbl.GetValueAt(0, "Salary")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestRow_Accessors(t *testing.T) {
	tbl := newEmployeeTable(t)
	_, err := tbl.AddRow(map[string]string{"Name": "A", "Age": "1", "Salary": "1.10"})
	require.NoError(t, err)

	row, err := tbl.Row(0)
	require.NoError(t, err)
	assert.Equal(t, 3, row.Len())
	assert.Equal(t, "A", row.Value("Name"))
	assert.Nil(t, row.Value("Dept"))
	assert.Nil(t, row.Cell("Dept"))
	assert.Equal(t, "1", row.Cell("Age").String())

	clone := row.Clone()
	require.NoError(t, clone.SetValueByName("Name", "B"))
	assert.Equal(t, "A", row.Value("Name"))
	assert.Equal(t, "B", clone.Value("Name"))
}
