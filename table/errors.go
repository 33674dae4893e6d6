package table

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Every error returned by this package matches exactly one of
// them through errors.Is.
var (
	// ErrSchema reports blank or duplicate column names and unknown type names.
	ErrSchema = errors.New("schema error")
	// ErrValidation reports a value that is not valid for its column.
	ErrValidation = errors.New("validation error")
	// ErrConversion reports a string that can not be parsed as the column type.
	ErrConversion = errors.New("conversion error")
	// ErrLookup reports an unknown column name or an out of range index.
	ErrLookup = errors.New("lookup error")
)

// ConversionError is returned when a raw string can not be converted to the
// declared type of a column.
type ConversionError struct {
	Column string
	Value  string
	Type   TypeTag
	Cause  error
}

func (this *ConversionError) Error() string {
	msg := fmt.Sprintf("can not convert %q to %s for column %q", this.Value, this.Type, this.Column)
	if this.Cause != nil {
		msg += ": " + this.Cause.Error()
	}
	return msg
}

// Is makes the error match ErrConversion.
func (this *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

func (this *ConversionError) Unwrap() error {
	return this.Cause
}

func schemaErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrSchema, format, args...)
}

func validationErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

func lookupErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrLookup, format, args...)
}
