package table

import "fmt"

// TypeTag identifies the value type carried by a column.
type TypeTag int

const (
	TypeString TypeTag = iota
	TypeInt
	TypeDouble
	TypeBoolean
	TypeDate
	TypeTime
	TypeDateTime
)

const (
	TypeNameString   = "string"
	TypeNameInt      = "int"
	TypeNameDouble   = "double"
	TypeNameBoolean  = "boolean"
	TypeNameDate     = "date"
	TypeNameTime     = "time"
	TypeNameDateTime = "datetime"
)

var typeNames = map[TypeTag]string{
	TypeString:   TypeNameString,
	TypeInt:      TypeNameInt,
	TypeDouble:   TypeNameDouble,
	TypeBoolean:  TypeNameBoolean,
	TypeDate:     TypeNameDate,
	TypeTime:     TypeNameTime,
	TypeDateTime: TypeNameDateTime,
}

var typeTags = map[string]TypeTag{
	TypeNameString:   TypeString,
	TypeNameInt:      TypeInt,
	TypeNameDouble:   TypeDouble,
	TypeNameBoolean:  TypeBoolean,
	TypeNameDate:     TypeDate,
	TypeNameTime:     TypeTime,
	TypeNameDateTime: TypeDateTime,
}

// TypeNames lists the supported type names in TypeTag order.
var TypeNames = []string{
	TypeNameString,
	TypeNameInt,
	TypeNameDouble,
	TypeNameBoolean,
	TypeNameDate,
	TypeNameTime,
	TypeNameDateTime,
}

// String returns the canonical type name used in schemas and mapping files.
func (this TypeTag) String() string {
	if name, ok := typeNames[this]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(this))
}

// IsTemporal reports whether values of this type are time.Time.
func (this TypeTag) IsTemporal() bool {
	return this == TypeDate || this == TypeTime || this == TypeDateTime
}

// ParseTypeTag resolves a case-sensitive type name.
func ParseTypeTag(name string) (TypeTag, bool) {
	tag, ok := typeTags[name]
	return tag, ok
}

// IsKnownType reports whether name is a supported type name.
func IsKnownType(name string) bool {
	_, ok := typeTags[name]
	return ok
}

// ColumnDef is one entry of an ordered schema.
type ColumnDef struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}
