// Package mapping describes how the columns of a source are translated into
// the columns of a target table.
package mapping

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/and-hom/tabconv/table"
)

// ErrMapping reports an invalid mapping or a source value that can not be
// resolved.
var ErrMapping = errors.New("mapping error")

type sourceMode int

const (
	modeNone sourceMode = iota
	modeName
	modeIndex
)

// ColumnMapping translates one source column, identified by name or by
// ordinal, into a typed target column. The two identity modes are exclusive.
type ColumnMapping struct {
	mode         sourceMode
	sourceName   string
	sourceIndex  int
	targetName   string
	targetType   string
	defaultValue *string
}

// ByName maps the source column called source to target.
func ByName(source, target, typeName string) ColumnMapping {
	return ColumnMapping{
		mode:       modeName,
		sourceName: source,
		targetName: target,
		targetType: typeName,
	}
}

// ByIndex maps the source column at the zero-based position index to target.
func ByIndex(index int, target, typeName string) ColumnMapping {
	return ColumnMapping{
		mode:        modeIndex,
		sourceIndex: index,
		targetName:  target,
		targetType:  typeName,
	}
}

// WithDefault returns a copy of m that falls back to value when the source
// value is absent, null or empty.
func (this ColumnMapping) WithDefault(value string) ColumnMapping {
	this.defaultValue = &value
	return this
}

func (this ColumnMapping) UsesSourceColumnName() bool {
	return this.mode == modeName
}

func (this ColumnMapping) UsesSourceColumnIndex() bool {
	return this.mode == modeIndex
}

func (this ColumnMapping) SourceColumnName() string {
	return this.sourceName
}

func (this ColumnMapping) SourceColumnIndex() int {
	return this.sourceIndex
}

func (this ColumnMapping) TargetColumnName() string {
	return this.targetName
}

func (this ColumnMapping) TargetColumnType() string {
	return this.targetType
}

// DefaultValue returns the configured default and whether one is set.
func (this ColumnMapping) DefaultValue() (string, bool) {
	if this.defaultValue == nil {
		return "", false
	}
	return *this.defaultValue, true
}

func (this ColumnMapping) source() string {
	switch this.mode {
	case modeName:
		return fmt.Sprintf("%q", this.sourceName)
	case modeIndex:
		return fmt.Sprintf("#%d", this.sourceIndex)
	}
	return "<none>"
}

func (this ColumnMapping) String() string {
	return fmt.Sprintf("%s -> %s:%s", this.source(), this.targetName, this.targetType)
}

// Validate checks a single mapping.
func (this ColumnMapping) Validate() error {
	switch this.mode {
	case modeNone:
		return errors.Wrapf(ErrMapping, "mapping to %q has no source column", this.targetName)
	case modeName:
		if this.sourceName == "" {
			return errors.Wrapf(ErrMapping, "mapping to %q has an empty source column name", this.targetName)
		}
	case modeIndex:
		if this.sourceIndex < 0 {
			return errors.Wrapf(ErrMapping, "mapping to %q has negative source index %d", this.targetName, this.sourceIndex)
		}
	}
	if strings.TrimSpace(this.targetName) == "" {
		return errors.Wrapf(ErrMapping, "mapping from %s has a blank target column name", this.source())
	}
	if !table.IsKnownType(this.targetType) {
		return errors.Wrapf(ErrMapping, "mapping %s has unsupported type %q (supported: %s)",
			this, this.targetType, strings.Join(table.TypeNames, ", "))
	}
	return nil
}

// Configuration is a complete source to table translation: where the data
// comes from, how its columns map, and adapter specific options.
type Configuration struct {
	SourceLocation string                 `json:"sourceLocation" yaml:"sourceLocation"`
	ColumnMappings []ColumnMapping        `json:"columnMappings" yaml:"columnMappings"`
	Options        map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`
}

// NewConfiguration creates a configuration with an empty option set.
func NewConfiguration(sourceLocation string, mappings ...ColumnMapping) *Configuration {
	return &Configuration{
		SourceLocation: sourceLocation,
		ColumnMappings: mappings,
		Options:        make(map[string]interface{}),
	}
}

// HasMappings reports whether the configuration declares any column mapping.
// Adapters copy source columns as they are when it does not.
func (this *Configuration) HasMappings() bool {
	return this != nil && len(this.ColumnMappings) > 0
}

// CreateColumnDefinitions derives the target schema in mapping order.
func (this *Configuration) CreateColumnDefinitions() []table.ColumnDef {
	defs := make([]table.ColumnDef, len(this.ColumnMappings))
	for i, m := range this.ColumnMappings {
		defs[i] = table.ColumnDef{Name: m.targetName, Type: m.targetType}
	}
	return defs
}

// Validate checks every mapping and the uniqueness of target names.
func (this *Configuration) Validate() error {
	seen := make(map[string]bool, len(this.ColumnMappings))
	for i, m := range this.ColumnMappings {
		if err := m.Validate(); err != nil {
			return errors.WithMessagef(err, "column mapping %d", i)
		}
		if seen[m.targetName] {
			return errors.Wrapf(ErrMapping, "target column %q is mapped more than once", m.targetName)
		}
		seen[m.targetName] = true
	}
	return nil
}
