package mapping

import (
	"fmt"
	"strconv"
	"strings"
)

// Well known option keys. Adapters ignore keys they do not understand.
const (
	OptHasHeaderRow       = "hasHeaderRow"
	OptDelimiter          = "delimiter"
	OptEncoding           = "encoding"
	OptTableName          = "tableName"
	OptTableMode          = "tableMode"
	OptRootElement        = "rootElement"
	OptRowElement         = "rowElement"
	OptOnError            = "onError"
	OptCreateDefaultValue = "createDefaultValue"
	OptEmptyAsNull        = "emptyAsNull"
	OptStrict             = "strict"
	OptBatchSize          = "batchSize"
	OptQuery              = "query"
	OptSampleRows         = "sampleRows"
)

// SetOption sets an option, creating the option map if needed.
func (this *Configuration) SetOption(key string, value interface{}) {
	if this.Options == nil {
		this.Options = make(map[string]interface{})
	}
	this.Options[key] = value
}

func (this *Configuration) option(key string) (interface{}, bool) {
	if this == nil || this.Options == nil {
		return nil, false
	}
	v, ok := this.Options[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns a string option, def when unset.
func (this *Configuration) String(key, def string) string {
	v, ok := this.option(key)
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool returns a boolean option, def when unset or not a boolean.
func (this *Configuration) Bool(key string, def bool) bool {
	v, ok := this.option(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return def
		}
		return parsed
	}
	return def
}

// Int returns an integer option, def when unset or not a number. Options
// decoded from JSON arrive as float64, from YAML as int.
func (this *Configuration) Int(key string, def int) int {
	v, ok := this.option(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return def
		}
		return parsed
	}
	return def
}
