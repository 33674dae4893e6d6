// Package adapter reads and writes tables in file formats.
//
// Every decoder turns its input into a stream of records and hands it to
// Load, so schema sniffing, column mapping and the per-record error policy
// work the same for all formats.
package adapter

import (
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"

	"github.com/and-hom/tabconv/mapping"
	"github.com/and-hom/tabconv/table"
)

// Decoder reads a whole table from r.
type Decoder interface {
	Decode(r io.Reader, cfg *mapping.Configuration) (*table.Table, error)
}

// Encoder writes a whole table to w.
type Encoder interface {
	Encode(w io.Writer, t *table.Table, cfg *mapping.Configuration) error
}

// Format is a named pair of decoder and encoder. Write only formats have
// no decoder.
type Format struct {
	Name    string
	Decoder Decoder
	Encoder Encoder
}

const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatXML   = "xml"
	FormatASCII = "txt"
)

var formats = map[string]Format{
	FormatCSV:   {Name: FormatCSV, Decoder: CSV{}, Encoder: CSV{}},
	FormatJSON:  {Name: FormatJSON, Decoder: JSON{}, Encoder: JSON{}},
	FormatXML:   {Name: FormatXML, Decoder: XML{}, Encoder: XML{}},
	FormatASCII: {Name: FormatASCII, Encoder: ASCII{}},
}

// Formats lists the supported format names.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForFormat returns the format registered under name.
func ForFormat(name string) (Format, error) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Format{}, errors.Errorf("unsupported format %q. Available formats are: %s",
			name, strings.Join(Formats(), ", "))
	}
	return f, nil
}

// DetectFormat guesses a format name from a file extension. It returns an
// empty string for unknown extensions.
func DetectFormat(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "csv", "tsv":
		return FormatCSV
	case "json":
		return FormatJSON
	case "xml":
		return FormatXML
	case "txt":
		return FormatASCII
	}
	return ""
}

// DecodeCharset converts r from the named encoding to UTF-8.
func DecodeCharset(r io.Reader, encoding string) (io.Reader, error) {
	if isUTF8(encoding) {
		return r, nil
	}
	decoded, err := charset.NewReaderLabel(encoding, r)
	if err != nil {
		return nil, errors.Wrapf(err, "can not decode input from charset %s", encoding)
	}
	return decoded, nil
}

func isUTF8(encoding string) bool {
	return encoding == "" || strings.EqualFold(encoding, "UTF-8") || strings.EqualFold(encoding, "utf8")
}

// rowStrings returns the string values of row i in column order.
func rowStrings(t *table.Table, i int, names []string) ([]string, error) {
	values := make([]string, len(names))
	for j, name := range names {
		v, err := t.GetValueAt(i, name)
		if err != nil {
			return nil, err
		}
		values[j] = v
	}
	return values, nil
}
