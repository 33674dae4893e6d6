package mapping

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// columnMappingDoc is the serialized form of a ColumnMapping.
type columnMappingDoc struct {
	SourceColumnName  *string `json:"sourceColumnName,omitempty" yaml:"sourceColumnName,omitempty"`
	SourceColumnIndex *int    `json:"sourceColumnIndex,omitempty" yaml:"sourceColumnIndex,omitempty"`
	TargetColumnName  string  `json:"targetColumnName" yaml:"targetColumnName"`
	TargetColumnType  string  `json:"targetColumnType" yaml:"targetColumnType"`
	DefaultValue      *string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

func (this ColumnMapping) toDoc() columnMappingDoc {
	doc := columnMappingDoc{
		TargetColumnName: this.targetName,
		TargetColumnType: this.targetType,
		DefaultValue:     this.defaultValue,
	}
	switch this.mode {
	case modeName:
		name := this.sourceName
		doc.SourceColumnName = &name
	case modeIndex:
		index := this.sourceIndex
		doc.SourceColumnIndex = &index
	}
	return doc
}

func fromDoc(doc columnMappingDoc) (ColumnMapping, error) {
	var m ColumnMapping
	switch {
	case doc.SourceColumnName != nil && doc.SourceColumnIndex != nil:
		return m, errors.Wrapf(ErrMapping, "mapping to %q sets both sourceColumnName and sourceColumnIndex", doc.TargetColumnName)
	case doc.SourceColumnName != nil:
		m = ByName(*doc.SourceColumnName, doc.TargetColumnName, doc.TargetColumnType)
	case doc.SourceColumnIndex != nil:
		m = ByIndex(*doc.SourceColumnIndex, doc.TargetColumnName, doc.TargetColumnType)
	default:
		return m, errors.Wrapf(ErrMapping, "mapping to %q sets neither sourceColumnName nor sourceColumnIndex", doc.TargetColumnName)
	}
	m.defaultValue = doc.DefaultValue
	return m, nil
}

func (this ColumnMapping) MarshalJSON() ([]byte, error) {
	return json.Marshal(this.toDoc())
}

func (this *ColumnMapping) UnmarshalJSON(data []byte) error {
	var doc columnMappingDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	decoded, err := fromDoc(doc)
	if err != nil {
		return err
	}
	*this = decoded
	return nil
}

func (this ColumnMapping) MarshalYAML() (interface{}, error) {
	return this.toDoc(), nil
}

func (this *ColumnMapping) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var doc columnMappingDoc
	if err := unmarshal(&doc); err != nil {
		return err
	}
	decoded, err := fromDoc(doc)
	if err != nil {
		return err
	}
	*this = decoded
	return nil
}
