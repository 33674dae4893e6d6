package table

// Row is one record of a table: a cell per column name. The table reference
// is used to resolve columns by name, it does not own the table.
type Row struct {
	cells map[string]*Cell
	table *Table
}

func newRow(t *Table) *Row {
	return &Row{
		cells: make(map[string]*Cell, t.ColumnCount()),
		table: t,
	}
}

// Cell returns the cell for the named column, or nil when the row has none.
func (this *Row) Cell(name string) *Cell {
	return this.cells[name]
}

// Value returns the typed value of the named column, nil when absent or null.
func (this *Row) Value(name string) interface{} {
	cell := this.cells[name]
	if cell == nil {
		return nil
	}
	return cell.Value()
}

// Len returns the number of cells in the row.
func (this *Row) Len() int {
	return len(this.cells)
}

// SetValue stores v in the cell of col, creating the cell if needed.
func (this *Row) SetValue(col Column, v interface{}) error {
	cell := this.cells[col.Name()]
	if cell == nil || cell.Column() != col {
		created, err := col.CreateCell(v)
		if err != nil {
			return err
		}
		this.cells[col.Name()] = created
		return nil
	}
	return cell.SetValue(v)
}

// SetValueByName resolves the column through the owning table's current
// schema and stores v.
func (this *Row) SetValueByName(name string, v interface{}) error {
	col, ok := this.table.Column(name)
	if !ok {
		return lookupErrorf("column %q does not exist", name)
	}
	return this.SetValue(col, v)
}

// Clone returns a copy of the row with copied cells.
func (this *Row) Clone() *Row {
	clone := &Row{
		cells: make(map[string]*Cell, len(this.cells)),
		table: this.table,
	}
	for name, cell := range this.cells {
		copied := *cell
		clone.cells[name] = &copied
	}
	return clone
}
