package table

// Cell holds one value of a row. The column reference is used for
// validation only.
type Cell struct {
	value  interface{}
	column Column
}

// Value returns the typed value, nil for null.
func (this *Cell) Value() interface{} {
	return this.value
}

func (this *Cell) Column() Column {
	return this.column
}

// SetValue validates v against the cell's column before storing it.
func (this *Cell) SetValue(v interface{}) error {
	if !this.column.IsValidValue(v) {
		return validationErrorf("value %v (%T) is not valid for %s column %q",
			v, v, this.column.Type(), this.column.Name())
	}
	this.value = v
	return nil
}

// IsNull reports whether the cell holds no value.
func (this *Cell) IsNull() bool {
	return this.value == nil
}

// String returns the column's string form of the value.
func (this *Cell) String() string {
	s, err := this.column.ConvertToString(this.value)
	if err != nil {
		return ""
	}
	return s
}
