package adapter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and-hom/tabconv/mapping"
	"github.com/and-hom/tabconv/table"
)

func TestASCII_Encode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ASCII{}.Encode(&buf, employeeTable(t), mapping.NewConfiguration("x")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "Name")
	assert.Contains(t, lines[1], "Salary")
	assert.Contains(t, lines[3], "75000.50")
	assert.Contains(t, lines[4], "Bob, Jr.")
}

func TestWriteSchema(t *testing.T) {
	var buf bytes.Buffer
	WriteSchema(&buf, []table.ColumnDef{{Name: "id", Type: "int"}})
	assert.Contains(t, buf.String(), "Column")
	assert.Contains(t, buf.String(), "id")
	assert.Contains(t, buf.String(), "int")
}
