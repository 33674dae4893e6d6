package adapter

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/and-hom/tabconv/mapping"
	"github.com/and-hom/tabconv/table"
)

// ASCII renders a table as a text grid for terminals. It can not be read
// back.
type ASCII struct{}

func (ASCII) Encode(w io.Writer, t *table.Table, cfg *mapping.Configuration) error {
	names := t.ColumnNames()
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(names)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	for i := 0; i < t.RowCount(); i++ {
		values, err := rowStrings(t, i, names)
		if err != nil {
			return err
		}
		tw.Append(values)
	}
	tw.Render()
	return nil
}

// WriteSchema renders a schema as a two column grid.
func WriteSchema(w io.Writer, schema []table.ColumnDef) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Column", "Type"})
	tw.SetAutoFormatHeaders(false)
	for _, def := range schema {
		tw.Append([]string{def.Name, def.Type})
	}
	tw.Render()
}
