package adapter

import (
	"encoding/xml"
	"io"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"

	"github.com/and-hom/tabconv/mapping"
	"github.com/and-hom/tabconv/table"
)

const (
	defaultRootElement = "rows"
	defaultRowElement  = "row"
	columnNameAttr     = "name"
)

// XML reads and writes
//
//	<rows><row><Name>Alice</Name><Age>30</Age></row></rows>
//
// Options rootElement and rowElement rename the outer elements. Column names
// that are not valid element names are written as sanitized elements with
// the real name in a name attribute.
type XML struct{}

func (XML) Decode(r io.Reader, cfg *mapping.Configuration) (*table.Table, error) {
	src, err := NewXMLSource(r, cfg)
	if err != nil {
		return nil, err
	}
	return Load(src, cfg)
}

type xmlSource struct {
	dec    *xml.Decoder
	root   string
	row    string
	inRoot bool
	done   bool
}

// NewXMLSource creates a record source reading row elements. The input
// charset comes from the XML declaration unless the encoding option names a
// charset other than UTF-8; then the declaration is ignored.
func NewXMLSource(r io.Reader, cfg *mapping.Configuration) (RecordSource, error) {
	encoding := cfg.String(mapping.OptEncoding, "UTF-8")
	decoded, err := DecodeCharset(r, encoding)
	if err != nil {
		return nil, err
	}
	dec := xml.NewDecoder(decoded)
	if isUTF8(encoding) {
		dec.CharsetReader = charset.NewReaderLabel
	} else {
		// already UTF-8
		dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
			return input, nil
		}
	}
	return &xmlSource{
		dec:  dec,
		root: cfg.String(mapping.OptRootElement, defaultRootElement),
		row:  cfg.String(mapping.OptRowElement, defaultRowElement),
	}, nil
}

func (this *xmlSource) Next() (Record, error) {
	if this.done {
		return nil, io.EOF
	}
	for {
		tok, err := this.dec.Token()
		if err == io.EOF {
			this.done = true
			if this.inRoot {
				return nil, errors.Errorf("XML element <%s> is not closed", this.root)
			}
			return nil, io.EOF
		} else if err != nil {
			return nil, errors.Wrap(err, "can not read XML")
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if !this.inRoot {
				if el.Name.Local != this.root {
					return nil, errors.Errorf("expected XML root element <%s>, got <%s>", this.root, el.Name.Local)
				}
				this.inRoot = true
				continue
			}
			if el.Name.Local != this.row {
				log.Warnf("Skip unexpected XML element <%s>", el.Name.Local)
				if err := this.dec.Skip(); err != nil {
					return nil, errors.Wrap(err, "can not read XML")
				}
				continue
			}
			return this.readRow()
		case xml.EndElement:
			if this.inRoot && el.Name.Local == this.root {
				this.done = true
				return nil, io.EOF
			}
		}
	}
}

type xmlCell struct {
	Value string `xml:",chardata"`
}

func (this *xmlSource) readRow() (mapping.OrderedRecord, error) {
	rec := mapping.OrderedRecord{}
	for {
		tok, err := this.dec.Token()
		if err != nil {
			return nil, errors.Wrapf(err, "can not read XML element <%s>", this.row)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			var cell xmlCell
			if err := this.dec.DecodeElement(&cell, &el); err != nil {
				return nil, errors.Wrapf(err, "can not read XML element <%s>", el.Name.Local)
			}
			rec = append(rec, mapping.Field{Name: xmlFieldName(el), Value: cell.Value})
		case xml.EndElement:
			return rec, nil
		}
	}
}

func xmlFieldName(el xml.StartElement) string {
	for _, attr := range el.Attr {
		if attr.Name.Space == "" && attr.Name.Local == columnNameAttr {
			return attr.Value
		}
	}
	return el.Name.Local
}

func (XML) Encode(w io.Writer, t *table.Table, cfg *mapping.Configuration) error {
	root := cfg.String(mapping.OptRootElement, defaultRootElement)
	row := cfg.String(mapping.OptRowElement, defaultRowElement)
	if ElementName(root) != root || ElementName(row) != row {
		return errors.Errorf("invalid XML element names <%s> and <%s>", root, row)
	}

	names := t.ColumnNames()
	elements := make([]xml.StartElement, len(names))
	for i, name := range names {
		el := xml.StartElement{Name: xml.Name{Local: ElementName(name)}}
		if el.Name.Local != name {
			el.Attr = []xml.Attr{{Name: xml.Name{Local: columnNameAttr}, Value: name}}
		}
		elements[i] = el
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	rootStart := xml.StartElement{Name: xml.Name{Local: root}}
	rowStart := xml.StartElement{Name: xml.Name{Local: row}}
	if err := enc.EncodeToken(rootStart); err != nil {
		return errors.Wrap(err, "can not write XML")
	}
	for i := 0; i < t.RowCount(); i++ {
		values, err := rowStrings(t, i, names)
		if err != nil {
			return err
		}
		if err := enc.EncodeToken(rowStart); err != nil {
			return errors.Wrap(err, "can not write XML")
		}
		for j, value := range values {
			if err := enc.EncodeElement(xmlCell{Value: value}, elements[j]); err != nil {
				return errors.Wrapf(err, "can not write XML row %d", i)
			}
		}
		if err := enc.EncodeToken(rowStart.End()); err != nil {
			return errors.Wrap(err, "can not write XML")
		}
	}
	if err := enc.EncodeToken(rootStart.End()); err != nil {
		return errors.Wrap(err, "can not write XML")
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ElementName turns a column name into a valid XML element name.
func ElementName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
			sb.WriteRune(r)
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
			sb.WriteRune(r)
		case i == 0 && unicode.IsDigit(r):
			sb.WriteRune('_')
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	out := sb.String()
	if out == "" || strings.HasPrefix(strings.ToLower(out), "xml") {
		out = "_" + out
	}
	return out
}
