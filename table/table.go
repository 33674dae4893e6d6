// Package table implements a typed in-memory table: ordered columns, index
// ordered rows and lossless conversion between raw strings and typed values.
//
// Readers fill a table from string maps with AddRow, writers read it back
// with GetValueAt or GetValueObject. Doubles supplied with a decimal point
// read back exactly as they were written, so "75000.50" stays "75000.50".
package table

import (
	"strings"
	"time"
)

// Option configures a Table.
type Option func(*Table)

// WithCreateDefaultValue makes AddRow inject the column default for missing
// values instead of failing.
func WithCreateDefaultValue(create bool) Option {
	return func(t *Table) {
		t.createDefaultValue = create
	}
}

// WithEmptyAsNull makes blank raw values of non-string columns null instead
// of a conversion error.
func WithEmptyAsNull(emptyAsNull bool) Option {
	return func(t *Table) {
		t.emptyAsNull = emptyAsNull
	}
}

// WithConcurrentAccess backs the rows with copy-on-write snapshots, allowing
// concurrent readers alongside writers. Schema changes are not covered.
func WithConcurrentAccess() Option {
	return func(t *Table) {
		t.store = newCowStore()
	}
}

// WithClock sets the source of "now" for temporal defaults.
func WithClock(clock func() time.Time) Option {
	return func(t *Table) {
		t.clock = clock
	}
}

// Table owns its columns and rows.
type Table struct {
	columns            []Column
	index              map[string]int
	store              rowStore
	createDefaultValue bool
	emptyAsNull        bool
	clock              func() time.Time
}

func New(opts ...Option) *Table {
	t := &Table{
		index: make(map[string]int),
		store: newSliceStore(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CreateDefaultValue reports whether AddRow injects defaults for missing values.
func (this *Table) CreateDefaultValue() bool {
	return this.createDefaultValue
}

// SetColumns replaces the schema with defs, keeping their order. It fails
// without changing anything when a name or type is blank, a name repeats, a
// type is unknown, or the table already has rows.
func (this *Table) SetColumns(defs []ColumnDef) error {
	if n := this.store.Len(); n > 0 {
		return schemaErrorf("can not replace the columns of a table holding %d rows", n)
	}
	columns, index, err := this.buildColumns(defs)
	if err != nil {
		return err
	}
	this.columns, this.index = columns, index
	return nil
}

// ResetSchema drops all rows and sets a new schema. Nothing changes when defs
// are invalid.
func (this *Table) ResetSchema(defs []ColumnDef) error {
	columns, index, err := this.buildColumns(defs)
	if err != nil {
		return err
	}
	this.store.Clear()
	this.columns, this.index = columns, index
	return nil
}

func (this *Table) buildColumns(defs []ColumnDef) ([]Column, map[string]int, error) {
	now := this.clock()
	columns := make([]Column, 0, len(defs))
	index := make(map[string]int, len(defs))
	for i, def := range defs {
		if strings.TrimSpace(def.Name) == "" {
			return nil, nil, schemaErrorf("column %d has a blank name", i)
		}
		if strings.TrimSpace(def.Type) == "" {
			return nil, nil, schemaErrorf("column %q has a blank type", def.Name)
		}
		if _, dup := index[def.Name]; dup {
			return nil, nil, schemaErrorf("duplicate column %q", def.Name)
		}
		col, err := NewColumn(def.Name, def.Type, now)
		if err != nil {
			return nil, nil, err
		}
		index[def.Name] = len(columns)
		columns = append(columns, col)
	}
	return columns, index, nil
}

// Clear drops all rows and keeps the schema.
func (this *Table) Clear() {
	this.store.Clear()
}

func (this *Table) ColumnCount() int {
	return len(this.columns)
}

func (this *Table) RowCount() int {
	return this.store.Len()
}

// ColumnName returns the name of the column at position i.
func (this *Table) ColumnName(i int) (string, error) {
	if i < 0 || i >= len(this.columns) {
		return "", lookupErrorf("column index %d out of range [0,%d)", i, len(this.columns))
	}
	return this.columns[i].Name(), nil
}

// ColumnIndex returns the position of the named column.
func (this *Table) ColumnIndex(name string) (int, bool) {
	i, ok := this.index[name]
	return i, ok
}

func (this *Table) Column(name string) (Column, bool) {
	i, ok := this.index[name]
	if !ok {
		return nil, false
	}
	return this.columns[i], true
}

// Columns returns the columns in schema order.
func (this *Table) Columns() []Column {
	out := make([]Column, len(this.columns))
	copy(out, this.columns)
	return out
}

func (this *Table) ColumnNames() []string {
	names := make([]string, len(this.columns))
	for i, col := range this.columns {
		names[i] = col.Name()
	}
	return names
}

// Schema returns the ordered column definitions.
func (this *Table) Schema() []ColumnDef {
	defs := make([]ColumnDef, len(this.columns))
	for i, col := range this.columns {
		defs[i] = ColumnDef{Name: col.Name(), Type: col.Type().String()}
	}
	return defs
}

// DefaultValue returns the string form of the default value of a type name.
func (this *Table) DefaultValue(typeName string) (string, error) {
	return DefaultValueString(typeName, this.clock())
}

// CreateRow returns an empty row bound to this table. It is not part of the
// table until passed to AppendRow.
func (this *Table) CreateRow() *Row {
	return newRow(this)
}

// Row returns the row at index i.
func (this *Table) Row(i int) (*Row, error) {
	e, ok := this.store.Entry(i)
	if !ok {
		return nil, rowRangeError(i, this.store.Len())
	}
	return e.row, nil
}

func rowRangeError(i, n int) error {
	return lookupErrorf("row index %d out of range [0,%d)", i, n)
}

// Rows returns the rows in index order.
func (this *Table) Rows() []*Row {
	return this.store.Rows()
}

// AddRow converts values, keyed by column name, and appends them as a new
// row. Keys that are not columns are ignored. A missing column gets its
// default value when the table creates defaults, otherwise the row is
// rejected. Returns the index of the new row.
func (this *Table) AddRow(values map[string]string) (int, error) {
	if len(this.columns) == 0 {
		return -1, schemaErrorf("can not add a row to a table without columns")
	}

	row := newRow(this)
	originals := make(map[string]string)
	for _, col := range this.columns {
		name := col.Name()
		raw, ok := values[name]
		if !ok {
			if !this.createDefaultValue {
				return -1, validationErrorf("missing value for column %q", name)
			}
			var err error
			if raw, err = defaultLiteral(col); err != nil {
				return -1, err
			}
		}

		v, err := this.convert(col, raw)
		if err != nil {
			return -1, err
		}
		if v != nil && col.Type() == TypeDouble && keepsOriginalForm(raw) {
			originals[name] = raw
		}
		row.cells[name] = &Cell{value: v, column: col}
	}

	return this.store.Append(row, originals), nil
}

// AppendRow appends a row created by CreateRow. Columns without a cell get
// their default value when the table creates defaults.
func (this *Table) AppendRow(r *Row) (int, error) {
	if r.table != this {
		return -1, validationErrorf("row belongs to another table")
	}
	if len(this.columns) == 0 {
		return -1, schemaErrorf("can not add a row to a table without columns")
	}

	row := newRow(this)
	for _, col := range this.columns {
		name := col.Name()
		cell := r.cells[name]
		if cell != nil && cell.column != col {
			return -1, validationErrorf("cell of column %q was created for a replaced schema", name)
		}
		if cell == nil {
			if !this.createDefaultValue {
				return -1, validationErrorf("missing value for column %q", name)
			}
			cell = &Cell{value: col.DefaultValue(), column: col}
		}
		copied := *cell
		row.cells[name] = &copied
	}
	for name := range r.cells {
		if _, ok := this.index[name]; !ok {
			return -1, validationErrorf("row has a cell for unknown column %q", name)
		}
	}

	return this.store.Append(row, nil), nil
}

// GetValueAt returns the string form of a value. A double keeps the exact
// text it was supplied with when that text had a decimal point; otherwise
// it is printed by FormatDouble. Null values are empty strings.
func (this *Table) GetValueAt(rowIndex int, column string) (string, error) {
	entry, col, err := this.locate(rowIndex, column)
	if err != nil {
		return "", err
	}
	v := entry.row.Value(column)
	if v == nil {
		return "", nil
	}

	switch col.Type() {
	case TypeDouble:
		if original, ok := entry.original(column); ok {
			return original, nil
		}
		return FormatDouble(v.(float64)), nil
	default:
		return col.ConvertToString(v)
	}
}

// GetValueObject returns the typed value, nil for null.
func (this *Table) GetValueObject(rowIndex int, column string) (interface{}, error) {
	entry, _, err := this.locate(rowIndex, column)
	if err != nil {
		return nil, err
	}
	return entry.row.Value(column), nil
}

// SetValueAt converts raw and replaces the value in place, recording or
// dropping the original double text as AddRow does.
func (this *Table) SetValueAt(rowIndex int, column, raw string) error {
	_, col, err := this.locate(rowIndex, column)
	if err != nil {
		return err
	}
	v, err := this.convert(col, raw)
	if err != nil {
		return err
	}

	keep := v != nil && col.Type() == TypeDouble && keepsOriginalForm(raw)
	if !this.store.Update(rowIndex, &Cell{value: v, column: col}, raw, keep) {
		return rowRangeError(rowIndex, this.store.Len())
	}
	return nil
}

// SetValueObject replaces a value with a typed one.
func (this *Table) SetValueObject(rowIndex int, column string, v interface{}) error {
	_, col, err := this.locate(rowIndex, column)
	if err != nil {
		return err
	}
	cell := &Cell{column: col}
	if err := cell.SetValue(v); err != nil {
		return err
	}

	if !this.store.Update(rowIndex, cell, "", false) {
		return rowRangeError(rowIndex, this.store.Len())
	}
	return nil
}

// locate returns the column and one consistent view of row rowIndex.
func (this *Table) locate(rowIndex int, column string) (rowEntry, Column, error) {
	col, ok := this.Column(column)
	if !ok {
		return rowEntry{}, nil, lookupErrorf("column %q does not exist", column)
	}
	entry, ok := this.store.Entry(rowIndex)
	if !ok {
		return rowEntry{}, nil, rowRangeError(rowIndex, this.store.Len())
	}
	return entry, col, nil
}

func (this *Table) convert(col Column, raw string) (interface{}, error) {
	if this.emptyAsNull && col.Type() != TypeString && strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return col.ConvertFromString(raw)
}

// defaultLiteral is the raw text injected for a missing value. Doubles use
// "0.0" so that they read back in their canonical default form.
func defaultLiteral(col Column) (string, error) {
	if col.Type() == TypeDouble {
		return "0.0", nil
	}
	return col.ConvertToString(col.DefaultValue())
}
