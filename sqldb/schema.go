package sqldb

import (
	"github.com/and-hom/tabconv/table"
)

// Column describes one column of a database table.
type Column struct {
	Name     string
	Type     table.TypeTag
	SqlType  string
	Nullable bool
}

// Schema is an ordered list of database columns.
type Schema []Column

func (this Schema) Names() []string {
	names := make([]string, len(this))
	for i, col := range this {
		names[i] = col.Name
	}
	return names
}

func (this Schema) Get(name string) (Column, bool) {
	for _, col := range this {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// ColumnDefs converts the schema into a table schema.
func (this Schema) ColumnDefs() []table.ColumnDef {
	defs := make([]table.ColumnDef, len(this))
	for i, col := range this {
		defs[i] = table.ColumnDef{Name: col.Name, Type: col.Type.String()}
	}
	return defs
}

// SchemaOf derives a database schema from a table. A column is nullable
// when any of its values is null.
func SchemaOf(t *table.Table) Schema {
	columns := t.Columns()
	schema := make(Schema, len(columns))
	for i, col := range columns {
		schema[i] = Column{Name: col.Name(), Type: col.Type()}
	}
	for _, row := range t.Rows() {
		for i := range schema {
			if row.Value(schema[i].Name) == nil {
				schema[i].Nullable = true
			}
		}
	}
	return schema
}

// RowArgs returns the values of row i as statement arguments in the given
// column order. Temporal values are passed in their text form, which every
// supported database parses for date, time and timestamp columns.
func RowArgs(t *table.Table, i int, columns []string) ([]interface{}, error) {
	args := make([]interface{}, len(columns))
	for j, name := range columns {
		v, err := t.GetValueObject(i, name)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		col, _ := t.Column(name)
		if col.Type().IsTemporal() {
			if v, err = t.GetValueAt(i, name); err != nil {
				return nil, err
			}
		}
		args[j] = v
	}
	return args, nil
}
