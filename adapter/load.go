package adapter

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/and-hom/tabconv/mapping"
	"github.com/and-hom/tabconv/table"
)

// Record is a source record that knows the names of its columns.
type Record interface {
	mapping.Record
	Names() []string
}

// RecordSource yields records until it returns io.EOF.
type RecordSource interface {
	Next() (Record, error)
}

// SchemaSource is a RecordSource that knows its schema up front, such as a
// SQL result set. Load uses the schema instead of sniffing one.
type SchemaSource interface {
	RecordSource
	Schema() []table.ColumnDef
}

// ErrorPolicy decides what Load does with a record that does not fit the
// table.
type ErrorPolicy string

const (
	AbortOnError ErrorPolicy = "abort"
	SkipOnError  ErrorPolicy = "skip"
)

// ParseErrorPolicy parses an onError option value.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch p := ErrorPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", AbortOnError:
		return AbortOnError, nil
	case SkipOnError:
		return SkipOnError, nil
	}
	return "", errors.Errorf("unsupported error policy %q. Available are: %s, %s", s, AbortOnError, SkipOnError)
}

// TableOptions builds the table options carried by cfg.
func TableOptions(cfg *mapping.Configuration) []table.Option {
	return []table.Option{
		table.WithCreateDefaultValue(cfg.Bool(mapping.OptCreateDefaultValue, false)),
		table.WithEmptyAsNull(cfg.Bool(mapping.OptEmptyAsNull, false)),
	}
}

// Load fills a new table from src.
//
// With column mappings the schema is the mapping schema and every record is
// resolved through the mappings. Without them source columns are copied by
// name, into the schema of a SchemaSource or a schema sniffed from the first
// sampleRows records.
func Load(src RecordSource, cfg *mapping.Configuration) (*table.Table, error) {
	policy, err := ParseErrorPolicy(cfg.String(mapping.OptOnError, string(AbortOnError)))
	if err != nil {
		return nil, err
	}

	t := table.New(TableOptions(cfg)...)
	var (
		resolver *mapping.Resolver
		pending  []Record
	)
	if cfg.HasMappings() {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if err := t.SetColumns(cfg.CreateColumnDefinitions()); err != nil {
			return nil, err
		}
		resolver = cfg.Resolver()
	} else if known, ok := src.(SchemaSource); ok {
		if err := t.SetColumns(known.Schema()); err != nil {
			return nil, err
		}
	} else {
		pending, err = readSample(src, cfg.Int(mapping.OptSampleRows, 1))
		if err != nil {
			return nil, err
		}
		if len(pending) == 0 {
			log.Warn("Source is empty - nothing to load")
			return t, nil
		}
		schema := SniffSchema(pending)
		log.Debugf("Sniffed schema %v", schema)
		if err := t.SetColumns(schema); err != nil {
			return nil, err
		}
	}

	read, skipped := 0, 0
	add := func(rec Record) error {
		read++
		values, err := recordValues(rec, resolver)
		if err == nil {
			_, err = t.AddRow(values)
		}
		if err == nil {
			return nil
		}
		if policy == SkipOnError {
			skipped++
			log.Warnf("Skip record %d: %v", read, err)
			return nil
		}
		return errors.WithMessagef(err, "record %d", read)
	}

	for _, rec := range pending {
		if err := add(rec); err != nil {
			return nil, err
		}
	}
	for {
		rec, err := src.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.WithMessagef(err, "can not read record %d", read+1)
		}
		if err := add(rec); err != nil {
			return nil, err
		}
	}

	if skipped > 0 {
		log.Warnf("Skipped %d of %d records", skipped, read)
	}
	log.Debugf("Loaded %d records", t.RowCount())
	return t, nil
}

func readSample(src RecordSource, n int) ([]Record, error) {
	if n < 1 {
		n = 1
	}
	sample := make([]Record, 0, n)
	for len(sample) < n {
		rec, err := src.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.WithMessagef(err, "can not read record %d", len(sample)+1)
		}
		sample = append(sample, rec)
	}
	return sample, nil
}

// SniffSchema infers a schema from sample records. Column names come from
// the first record; types are widened over the whole sample. Blank values
// say nothing about a type, so a column blank in every record is a string.
func SniffSchema(sample []Record) []table.ColumnDef {
	if len(sample) == 0 {
		return nil
	}
	names := sample[0].Names()
	defs := make([]table.ColumnDef, len(names))
	for i, name := range names {
		defs[i].Name = name
		for _, rec := range sample {
			if v, ok := rec.Lookup(name); ok && strings.TrimSpace(v) != "" {
				defs[i].Type = table.MergeType(defs[i].Type, table.InferType(v))
			}
		}
		if defs[i].Type == "" {
			defs[i].Type = table.TypeNameString
		}
	}
	return defs
}

func recordValues(rec Record, resolver *mapping.Resolver) (map[string]string, error) {
	if resolver != nil {
		return resolver.Resolve(rec)
	}
	names := rec.Names()
	values := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := rec.Lookup(name); ok {
			values[name] = v
		}
	}
	return values, nil
}
