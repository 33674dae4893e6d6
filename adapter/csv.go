package adapter

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/and-hom/tabconv/mapping"
	"github.com/and-hom/tabconv/table"
)

const utf8BOM = "\ufeff"

// CSV reads and writes delimited text. Options: hasHeaderRow (default true),
// delimiter (default ","), encoding (input only, default UTF-8).
type CSV struct{}

func (CSV) Decode(r io.Reader, cfg *mapping.Configuration) (*table.Table, error) {
	src, err := NewCSVSource(r, cfg)
	if err != nil {
		return nil, err
	}
	return Load(src, cfg)
}

func (CSV) Encode(w io.Writer, t *table.Table, cfg *mapping.Configuration) error {
	delimiter, err := Delimiter(cfg)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	writer.Comma = delimiter

	names := t.ColumnNames()
	if cfg.Bool(mapping.OptHasHeaderRow, true) {
		if err := writer.Write(names); err != nil {
			return errors.Wrap(err, "can not write CSV header")
		}
	}
	for i := 0; i < t.RowCount(); i++ {
		values, err := rowStrings(t, i, names)
		if err != nil {
			return err
		}
		if err := writer.Write(values); err != nil {
			return errors.Wrapf(err, "can not write CSV row %d", i)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Delimiter returns the single character delimiter option. "\t" and "tab"
// both mean a tab.
func Delimiter(cfg *mapping.Configuration) (rune, error) {
	s := cfg.String(mapping.OptDelimiter, ",")
	if s == `\t` || strings.EqualFold(s, "tab") {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, errors.Errorf("invalid CSV delimiter %q", s)
	}
	return r, nil
}

type csvRecord struct {
	mapping.SliceRecord
	names []string
}

func (this csvRecord) Names() []string {
	return this.names
}

type csvSource struct {
	reader    *csv.Reader
	hasHeader bool
	started   bool
	names     []string
	index     map[string]int
}

// NewCSVSource creates a record source reading CSV from r. Without a header
// row the columns are named col1...colN after the first record.
func NewCSVSource(r io.Reader, cfg *mapping.Configuration) (RecordSource, error) {
	delimiter, err := Delimiter(cfg)
	if err != nil {
		return nil, err
	}
	decoded, err := DecodeCharset(r, cfg.String(mapping.OptEncoding, "UTF-8"))
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bufio.NewReader(decoded))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	return &csvSource{
		reader:    reader,
		hasHeader: cfg.Bool(mapping.OptHasHeaderRow, true),
	}, nil
}

func (this *csvSource) Next() (Record, error) {
	line, err := this.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, errors.Wrap(err, "can not read CSV")
	}

	if !this.started {
		this.started = true
		if len(line) > 0 {
			line[0] = strings.TrimPrefix(line[0], utf8BOM)
		}
		if this.hasHeader {
			header := make([]string, len(line))
			for i, name := range line {
				header[i] = strings.TrimSpace(name)
			}
			this.setNames(header)
			return this.Next()
		}
		log.Warnf("CSV has no header - using col1...col%d column names", len(line))
		this.setNames(generatedNames(len(line)))
	}
	return csvRecord{SliceRecord: mapping.NewSliceRecord(this.index, line), names: this.names}, nil
}

func (this *csvSource) setNames(names []string) {
	this.names = names
	this.index = mapping.HeaderIndex(names)
}

func generatedNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("col%d", i+1)
	}
	return names
}
