package adapter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/and-hom/tabconv/mapping"
	"github.com/and-hom/tabconv/table"
)

// JSON reads and writes an array of flat objects. Key order is kept, numbers
// keep their literal text and null values are treated as absent. Nested
// arrays and objects are read as compact JSON text.
type JSON struct{}

func (JSON) Decode(r io.Reader, cfg *mapping.Configuration) (*table.Table, error) {
	decoded, err := DecodeCharset(r, cfg.String(mapping.OptEncoding, "UTF-8"))
	if err != nil {
		return nil, err
	}
	return Load(NewJSONSource(decoded), cfg)
}

type jsonSource struct {
	dec     *json.Decoder
	started bool
	done    bool
}

// NewJSONSource creates a record source reading a JSON array of objects.
func NewJSONSource(r io.Reader) RecordSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec}
}

func (this *jsonSource) Next() (Record, error) {
	if this.done {
		return nil, io.EOF
	}
	if !this.started {
		this.started = true
		tok, err := this.dec.Token()
		if err == io.EOF {
			this.done = true
			return nil, io.EOF
		} else if err != nil {
			return nil, errors.Wrap(err, "can not read JSON")
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return nil, errors.Errorf("JSON input must be an array of objects, got %v", tok)
		}
	}

	if !this.dec.More() {
		if _, err := this.dec.Token(); err != nil {
			return nil, errors.Wrap(err, "can not read JSON")
		}
		this.done = true
		return nil, io.EOF
	}
	return readJSONObject(this.dec)
}

func readJSONObject(dec *json.Decoder) (mapping.OrderedRecord, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "can not read JSON")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.Errorf("JSON array element must be an object, got %v", tok)
	}

	rec := mapping.OrderedRecord{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "can not read JSON key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.Errorf("unexpected JSON token %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrapf(err, "can not read JSON value of %q", key)
		}
		field, err := jsonField(key, raw)
		if err != nil {
			return nil, err
		}
		rec = append(rec, field)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "can not read JSON")
	}
	return rec, nil
}

func jsonField(name string, raw json.RawMessage) (mapping.Field, error) {
	raw = bytes.TrimSpace(raw)
	field := mapping.Field{Name: name}
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		field.Null = true
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &field.Value); err != nil {
			return field, errors.Wrapf(err, "can not read JSON string of %q", name)
		}
	case raw[0] == '{' || raw[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return field, errors.Wrapf(err, "can not read JSON value of %q", name)
		}
		field.Value = buf.String()
	default:
		// numbers and booleans keep their literal text
		field.Value = string(raw)
	}
	return field, nil
}

func (JSON) Encode(w io.Writer, t *table.Table, cfg *mapping.Configuration) error {
	out := bufio.NewWriter(w)
	columns := t.Columns()
	keys := make([][]byte, len(columns))
	for i, col := range columns {
		key, err := json.Marshal(col.Name())
		if err != nil {
			return errors.Wrapf(err, "can not encode column name %q", col.Name())
		}
		keys[i] = key
	}

	if t.RowCount() == 0 {
		out.WriteString("[]\n")
		return out.Flush()
	}

	out.WriteString("[\n")
	for i := 0; i < t.RowCount(); i++ {
		out.WriteString("  {")
		for j, col := range columns {
			if j > 0 {
				out.WriteString(", ")
			}
			out.Write(keys[j])
			out.WriteString(": ")
			value, err := jsonValue(t, i, col)
			if err != nil {
				return err
			}
			out.Write(value)
		}
		out.WriteString("}")
		if i < t.RowCount()-1 {
			out.WriteString(",")
		}
		out.WriteString("\n")
	}
	out.WriteString("]\n")
	return out.Flush()
}

// jsonValue renders a cell. Numbers and booleans are bare literals unless
// their text is not a valid JSON number (NaN, Infinity, ".5"), in which case
// they are quoted so the text survives a round trip.
func jsonValue(t *table.Table, row int, col table.Column) ([]byte, error) {
	v, err := t.GetValueObject(row, col.Name())
	if err != nil {
		return nil, err
	}
	if v == nil {
		return []byte("null"), nil
	}
	s, err := t.GetValueAt(row, col.Name())
	if err != nil {
		return nil, err
	}

	switch col.Type() {
	case table.TypeInt, table.TypeBoolean:
		return []byte(s), nil
	case table.TypeDouble:
		f := v.(float64)
		if !math.IsNaN(f) && !math.IsInf(f, 0) && isJSONNumber(s) {
			return []byte(s), nil
		}
	}
	return json.Marshal(s)
}

func isJSONNumber(s string) bool {
	var n json.Number
	return json.Unmarshal([]byte(s), &n) == nil && s != "" && s[0] != '"'
}
