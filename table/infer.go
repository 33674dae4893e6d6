package table

import (
	"regexp"
	"strings"
	"time"
)

var (
	intPattern = regexp.MustCompile(`^-?\d+$`)

	doublePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[-+]?\d+\.\d*$`),                // 12.5, 12.
		regexp.MustCompile(`^[-+]?\.\d+$`),                   // .5
		regexp.MustCompile(`^[-+]?\d+(\.\d*)?[eE][-+]?\d+$`), // 1.5e10, 15E-3
		regexp.MustCompile(`^[-+]?\.\d+[eE][-+]?\d+$`),       // .5e3
	}

	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)
)

// InferType guesses the type name of a raw value. It is total and returns
// one of string, int, double, boolean, date, time or datetime.
//
// Temporal values are recognised only in their strict ISO forms
// YYYY-MM-DD, HH:MM:SS and YYYY-MM-DDTHH:MM:SS; anything else, such as a
// single digit hour or a space instead of T, is a string.
func InferType(value string) string {
	if strings.TrimSpace(value) == "" {
		return TypeNameString
	}
	if intPattern.MatchString(value) {
		return TypeNameInt
	}
	for _, p := range doublePatterns {
		if p.MatchString(value) {
			return TypeNameDouble
		}
	}
	if strings.EqualFold(value, "true") || strings.EqualFold(value, "false") {
		return TypeNameBoolean
	}
	switch strings.ToLower(value) {
	case "nan", "infinity", "+infinity", "-infinity":
		return TypeNameDouble
	}
	if datePattern.MatchString(value) && parses(DateLayout, value) {
		return TypeNameDate
	}
	if timePattern.MatchString(value) && parses(TimeLayout, value) {
		return TypeNameTime
	}
	if dateTimePattern.MatchString(value) && parses(DateTimeLayout, value) {
		return TypeNameDateTime
	}
	return TypeNameString
}

func parses(layout, value string) bool {
	_, err := time.Parse(layout, value)
	return err == nil
}

// MergeType returns a type able to hold values inferred as a and b.
func MergeType(a, b string) string {
	switch {
	case a == b:
		return a
	case a == "":
		return b
	case b == "":
		return a
	case (a == TypeNameInt && b == TypeNameDouble) || (a == TypeNameDouble && b == TypeNameInt):
		return TypeNameDouble
	}
	return TypeNameString
}

// InferSchema builds a schema from a header and one sample record. Columns
// without a sample value are strings.
func InferSchema(header []string, sample []string) []ColumnDef {
	defs := make([]ColumnDef, len(header))
	for i, name := range header {
		typeName := TypeNameString
		if i < len(sample) {
			typeName = InferType(sample[i])
		}
		defs[i] = ColumnDef{Name: name, Type: typeName}
	}
	return defs
}

// DefaultValueString returns the string form of the default value of a type.
// Temporal types default to now.
func DefaultValueString(typeName string, now time.Time) (string, error) {
	tag, ok := ParseTypeTag(typeName)
	if !ok {
		return "", schemaErrorf("unsupported type %q", typeName)
	}
	switch tag {
	case TypeInt:
		return "0", nil
	case TypeDouble:
		return "0.0", nil
	case TypeBoolean:
		return "false", nil
	case TypeDate:
		return formatDate(now), nil
	case TypeTime:
		return now.Format(TimeLayout), nil
	case TypeDateTime:
		return now.Format(DateTimeLayout), nil
	}
	return "", nil
}
