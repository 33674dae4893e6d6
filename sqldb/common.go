package sqldb

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/and-hom/tabconv/table"
)

// MAX_PARAMS_PER_STATEMENT bounds the placeholders of one multi-row insert.
const MAX_PARAMS_PER_STATEMENT = 1000

// CommonDbTool implements the parts of DbTool that only differ between
// dialects by identifier quoting, placeholders and type names.
type CommonDbTool struct {
	Db              *sql.DB
	DbToTypeMapping map[string]table.TypeTag
	TypeToDbMapping map[table.TypeTag]string
	DefaultSchema   string
	EscapeF         func(string) string
	PlaceholderF    func(n int) string
	// BatchSize is the number of rows per multi-row insert; 0 derives it
	// from the column count.
	BatchSize int
}

func NewCommonDbTool(db *sql.DB, defaultSchema string, escape func(string) string, placeholder func(n int) string) CommonDbTool {
	return CommonDbTool{
		Db:              db,
		DbToTypeMapping: make(map[string]table.TypeTag),
		TypeToDbMapping: make(map[table.TypeTag]string),
		DefaultSchema:   defaultSchema,
		EscapeF:         escape,
		PlaceholderF:    placeholder,
	}
}

// RegisterType maps SQL type names to a column type. The primary name is
// used when creating tables.
func (this CommonDbTool) RegisterType(tag table.TypeTag, dbPrimaryType string, dbTypes ...string) {
	this.DbToTypeMapping[normalizeSqlType(dbPrimaryType)] = tag
	for _, dbType := range dbTypes {
		this.DbToTypeMapping[normalizeSqlType(dbType)] = tag
	}
	this.TypeToDbMapping[tag] = dbPrimaryType
}

func (this CommonDbTool) DB() *sql.DB {
	return this.Db
}

// TypeOf resolves a SQL type name as reported by the catalog or the driver.
// Length and precision modifiers are ignored.
func (this CommonDbTool) TypeOf(sqlType string) (table.TypeTag, bool) {
	tag, ok := this.DbToTypeMapping[normalizeSqlType(sqlType)]
	return tag, ok
}

// SqlType returns the SQL type used to create a column of tag.
func (this CommonDbTool) SqlType(tag table.TypeTag) (string, error) {
	sqlType, registered := this.TypeToDbMapping[tag]
	if !registered {
		return "", errors.Errorf("no registered SQL type for column type %s", tag)
	}
	return sqlType, nil
}

func normalizeSqlType(sqlType string) string {
	s := strings.ToLower(strings.TrimSpace(sqlType))
	if i := strings.Index(s, "("); i >= 0 {
		if j := strings.Index(s[i:], ")"); j >= 0 {
			s = s[:i] + s[i+j+1:]
		} else {
			s = s[:i]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), " unsigned")
	return strings.Join(strings.Fields(s), " ")
}

// RowsPerBatch returns how many rows of a columns wide insert go into one
// statement.
func (this CommonDbTool) RowsPerBatch(columns int) int {
	if this.BatchSize > 0 {
		return this.BatchSize
	}
	if columns <= 0 || columns >= MAX_PARAMS_PER_STATEMENT {
		return 1
	}
	return MAX_PARAMS_PER_STATEMENT / columns
}

func (this CommonDbTool) Escape(identifier string) string {
	if this.EscapeF == nil {
		return identifier
	}
	return this.EscapeF(identifier)
}

func (this CommonDbTool) NvlSchema(schema string) string {
	if schema == "" {
		return this.DefaultSchema
	}
	return schema
}

func (this CommonDbTool) TableName(schema, table string) TableName {
	schemaPlain := this.NvlSchema(schema)
	escapedSchema := ""
	if schemaPlain != "" {
		escapedSchema = this.Escape(schemaPlain)
	}
	return TableName{
		Schema:      escapedSchema,
		Table:       this.Escape(table),
		SchemaPlain: schemaPlain,
		TablePlain:  table,
	}
}

func (this CommonDbTool) CreateTableQuery(tableName TableName, schema Schema) (string, error) {
	if len(schema) == 0 {
		return "", errors.New("can not create table without any column")
	}
	sb := bytes.NewBufferString("CREATE TABLE ")
	sb.WriteString(tableName.String())
	sb.WriteString("(")

	for i, col := range schema {
		if i > 0 {
			sb.WriteString(", ")
		}
		sqlType := col.SqlType
		if sqlType == "" {
			var err error
			if sqlType, err = this.SqlType(col.Type); err != nil {
				return "", err
			}
		}
		sb.WriteString(this.Escape(col.Name))
		sb.WriteString(" ")
		sb.WriteString(sqlType)
		if !col.Nullable {
			sb.WriteString(" NOT NULL")
		}
	}
	sb.WriteString(")")
	return sb.String(), nil
}

func (this CommonDbTool) CreateTable(tableName TableName, schema Schema) error {
	query, err := this.CreateTableQuery(tableName, schema)
	if err != nil {
		return err
	}
	return this.exec(query)
}

func (this CommonDbTool) DropTable(tableName TableName) error {
	return this.exec(fmt.Sprintf("DROP TABLE %s", tableName))
}

func (this CommonDbTool) TruncateTable(tableName TableName) error {
	return this.exec(fmt.Sprintf("TRUNCATE TABLE %s", tableName))
}

func (this CommonDbTool) DeleteFromTable(tableName TableName) error {
	return this.exec(fmt.Sprintf("DELETE FROM %s", tableName))
}

func (this CommonDbTool) exec(query string) error {
	log.Debug(query)
	if _, err := this.Db.Exec(query); err != nil {
		return errors.Wrapf(err, "can not execute %s", query)
	}
	return nil
}

func (this CommonDbTool) InsertQuery(tableName TableName, columns []string) (string, error) {
	return this.InsertQueryMultiple(tableName, columns, 1)
}

// InsertQueryMultiple builds an insert of rows rows in one statement.
// Placeholders are numbered across rows.
func (this CommonDbTool) InsertQueryMultiple(tableName TableName, columns []string, rows int) (string, error) {
	if len(columns) == 0 {
		return "", errors.New("can not insert 0 columns")
	}
	if rows < 1 {
		return "", errors.Errorf("can not insert %d rows", rows)
	}

	sb := bytes.NewBufferString("INSERT INTO ")
	sb.WriteString(tableName.String())
	sb.WriteString("(")
	sb.WriteString(strings.Join(this.escapeAll(columns), ","))
	sb.WriteString(") VALUES ")

	n := 1
	for i := 0; i < rows; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(")
		for j := range columns {
			if j > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(this.placeholder(n))
			n++
		}
		sb.WriteString(")")
	}
	return sb.String(), nil
}

func (this CommonDbTool) SelectQuery(tableName TableName, columns []string) (string, error) {
	if len(columns) == 0 {
		return "", errors.New("can not select 0 columns")
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(this.escapeAll(columns), ","), tableName), nil
}

func (this CommonDbTool) placeholder(n int) string {
	if this.PlaceholderF == nil {
		return "?"
	}
	return this.PlaceholderF(n)
}

func (this CommonDbTool) escapeAll(names []string) []string {
	escaped := make([]string, len(names))
	for i, name := range names {
		escaped[i] = this.Escape(name)
	}
	return escaped
}
