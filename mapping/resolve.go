package mapping

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Record is one source record as seen by a Resolver. Lookups report false
// for absent and null values.
type Record interface {
	Lookup(name string) (string, bool)
	At(index int) (string, bool)
	Len() int
}

// SliceRecord is a positional record with an optional header.
type SliceRecord struct {
	values []string
	header map[string]int
}

// NewSliceRecord creates a record whose names come from header. A nil
// header allows positional lookups only.
func NewSliceRecord(header map[string]int, values []string) SliceRecord {
	return SliceRecord{values: values, header: header}
}

// HeaderIndex maps header names to their positions. The first occurrence of
// a repeated name wins.
func HeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

func (this SliceRecord) Lookup(name string) (string, bool) {
	i, ok := this.header[name]
	if !ok {
		return "", false
	}
	return this.At(i)
}

func (this SliceRecord) At(index int) (string, bool) {
	if index < 0 || index >= len(this.values) {
		return "", false
	}
	return this.values[index], true
}

func (this SliceRecord) Len() int {
	return len(this.values)
}

// Field is a named value of an OrderedRecord. Null fields are kept for
// their position but are never returned by lookups.
type Field struct {
	Name  string
	Value string
	Null  bool
}

// OrderedRecord is a record of named fields in source order, as produced by
// JSON and XML decoders.
type OrderedRecord []Field

func (this OrderedRecord) Lookup(name string) (string, bool) {
	for _, f := range this {
		if f.Name == name {
			if f.Null {
				return "", false
			}
			return f.Value, true
		}
	}
	return "", false
}

func (this OrderedRecord) At(index int) (string, bool) {
	if index < 0 || index >= len(this) || this[index].Null {
		return "", false
	}
	return this[index].Value, true
}

func (this OrderedRecord) Len() int {
	return len(this)
}

// Names returns the field names in order.
func (this OrderedRecord) Names() []string {
	names := make([]string, len(this))
	for i, f := range this {
		names[i] = f.Name
	}
	return names
}

// Resolver applies column mappings to source records.
type Resolver struct {
	mappings []ColumnMapping
	strict   bool
	warned   map[int]bool
}

// NewResolver creates a resolver. In strict mode an absent source value
// without a default is an error instead of an empty string.
func NewResolver(mappings []ColumnMapping, strict bool) *Resolver {
	return &Resolver{
		mappings: mappings,
		strict:   strict,
		warned:   make(map[int]bool),
	}
}

// Resolver creates a resolver for the configuration's mappings, strict when
// the strict option is set.
func (this *Configuration) Resolver() *Resolver {
	return NewResolver(this.ColumnMappings, this.Bool(OptStrict, false))
}

// Resolve returns the raw target values of rec keyed by target column name.
func (this *Resolver) Resolve(rec Record) (map[string]string, error) {
	out := make(map[string]string, len(this.mappings))
	for i, m := range this.mappings {
		raw, found := this.lookup(i, m, rec)
		if !found || raw == "" {
			if def, ok := m.DefaultValue(); ok {
				raw = def
			} else if !found && this.strict {
				return nil, errors.Wrapf(ErrMapping, "source column %s for %q is absent and has no default",
					m.source(), m.targetName)
			} else {
				raw = ""
			}
		}
		out[m.targetName] = raw
	}
	return out, nil
}

func (this *Resolver) lookup(i int, m ColumnMapping, rec Record) (string, bool) {
	var (
		raw   string
		found bool
	)
	switch m.mode {
	case modeName:
		raw, found = rec.Lookup(m.sourceName)
	case modeIndex:
		raw, found = rec.At(m.sourceIndex)
		if !found && m.sourceIndex >= rec.Len() {
			this.warnOnce(i, "Source column index %d for %q is out of bounds (record has %d columns)",
				m.sourceIndex, m.targetName, rec.Len())
		}
		return raw, found
	}
	if !found {
		this.warnOnce(i, "Source column %q for %q not found", m.sourceName, m.targetName)
	}
	return raw, found
}

func (this *Resolver) warnOnce(i int, format string, args ...interface{}) {
	if this.warned[i] {
		return
	}
	this.warned[i] = true
	log.Warnf(format, args...)
}
