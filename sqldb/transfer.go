package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/and-hom/tabconv/adapter"
	"github.com/and-hom/tabconv/mapping"
	"github.com/and-hom/tabconv/table"
)

// WriteTable inserts every row of t into tableName, preparing the table as
// mode says. An existing table keeps its own schema: only the columns of t
// that it has are written.
func WriteTable(ctx context.Context, dbTool DbTool, tableName TableName, mode TableMode, t *table.Table) error {
	tableExists, err := dbTool.Exists(tableName)
	if err != nil {
		return errors.Wrapf(err, "can not check table %s", tableName)
	}

	if tableExists {
		if tableExists, err = onTableExists(dbTool, tableName, mode); err != nil {
			return err
		}
	}

	columns, err := insertColumns(dbTool, tableName, mode, tableExists, t)
	if err != nil {
		return err
	}
	log.Infof("Insert columns are %s", strings.Join(columns, ", "))

	inserter, err := dbTool.CreateInserter(tableName, columns)
	if err != nil {
		return err
	}

	started := time.Now()
	for i := 0; i < t.RowCount(); i++ {
		if err := ctx.Err(); err != nil {
			return Abort(inserter, err)
		}
		args, err := RowArgs(t, i, columns)
		if err != nil {
			return Abort(inserter, err)
		}
		if err := inserter.Add(args...); err != nil {
			return Abort(inserter, errors.Wrapf(err, "can not insert row %d into %s", i, tableName))
		}
	}
	if err := inserter.Close(); err != nil {
		return errors.Wrapf(err, "can not insert into %s", tableName)
	}
	log.Infof("Inserted %d rows into %s in %s", t.RowCount(), tableName, time.Since(started))
	return nil
}

// onTableExists applies mode to an existing table and reports whether the
// table still exists.
func onTableExists(dbTool DbTool, tableName TableName, mode TableMode) (bool, error) {
	switch {
	case mode.DropAndCreateIfExists():
		if err := dbTool.DropTable(tableName); err != nil {
			return true, errors.Wrapf(err, "can not drop table %s", tableName)
		}
		return false, nil
	case mode.TruncatePrevious():
		if err := dbTool.TruncateTable(tableName); err != nil {
			return true, errors.Wrapf(err, "can not truncate table %s", tableName)
		}
	case mode.DeletePrevious():
		if err := dbTool.DeleteFromTable(tableName); err != nil {
			return true, errors.Wrapf(err, "can not delete all from table %s", tableName)
		}
	}
	return true, nil
}

func insertColumns(dbTool DbTool, tableName TableName, mode TableMode, tableExists bool, t *table.Table) ([]string, error) {
	if !tableExists {
		if !mode.CreateIfMissing() && !mode.DropAndCreateIfExists() {
			return nil, errors.Errorf("table %s does not exist. Please set table mode to %s or create table manually",
				tableName, MODE_CREATE)
		}
		if err := dbTool.CreateTable(tableName, SchemaOf(t)); err != nil {
			return nil, errors.Wrapf(err, "can not create table %s", tableName)
		}
		return t.ColumnNames(), nil
	}

	dbSchema, err := dbTool.LoadSchema(tableName)
	if err != nil {
		return nil, errors.Wrapf(err, "can not load schema of %s", tableName)
	}
	columns := make([]string, 0, t.ColumnCount())
	for _, name := range t.ColumnNames() {
		if _, found := dbSchema.Get(name); !found {
			log.Warnf("Can not find column %s in table %s - skip it", name, tableName)
			continue
		}
		columns = append(columns, name)
	}
	if len(columns) == 0 {
		return nil, errors.Errorf("table %s has none of the columns %s", tableName, strings.Join(t.ColumnNames(), ", "))
	}
	return columns, nil
}

// ReadTable reads a table, or the result of the query option when it is
// set. Column types come from the database unless cfg maps the columns.
// NULL values are read as nulls unless cfg sets emptyAsNull itself.
func ReadTable(ctx context.Context, dbTool DbTool, tableName TableName, cfg *mapping.Configuration) (*table.Table, error) {
	if cfg == nil {
		cfg = mapping.NewConfiguration(tableName.String())
	}
	var schema Schema
	query := cfg.String(mapping.OptQuery, "")
	if query == "" {
		var err error
		if schema, err = dbTool.LoadSchema(tableName); err != nil {
			return nil, errors.Wrapf(err, "can not load schema of %s", tableName)
		}
		if len(schema) == 0 {
			return nil, errors.Errorf("table %s does not exist or has no supported columns", tableName)
		}
		if query, err = dbTool.SelectQuery(tableName, schema.Names()); err != nil {
			return nil, err
		}
	}
	log.Debug("Select query is ", query)

	rows, err := dbTool.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "can not execute %s", query)
	}
	defer rows.Close()

	src, err := newRowSource(rows, dbTool, schema)
	if err != nil {
		return nil, err
	}
	return adapter.Load(src, withDefaultOption(cfg, mapping.OptEmptyAsNull, true))
}

// withDefaultOption returns cfg, or a copy of it with key set when cfg
// does not set it.
func withDefaultOption(cfg *mapping.Configuration, key string, value interface{}) *mapping.Configuration {
	if _, ok := cfg.Options[key]; ok {
		return cfg
	}
	copied := *cfg
	copied.Options = make(map[string]interface{}, len(cfg.Options)+1)
	for k, v := range cfg.Options {
		copied.Options[k] = v
	}
	copied.Options[key] = value
	return &copied
}

// rowSource feeds a result set to adapter.Load.
type rowSource struct {
	rows   *sql.Rows
	names  []string
	schema Schema
}

func newRowSource(rows *sql.Rows, dbTool DbTool, known Schema) (*rowSource, error) {
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, errors.Wrap(err, "can not read result columns")
	}
	schema := make(Schema, len(columnTypes))
	names := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		names[i] = ct.Name()
		if col, ok := known.Get(ct.Name()); ok {
			schema[i] = col
			continue
		}
		tag, ok := dbTool.TypeOf(ct.DatabaseTypeName())
		if !ok {
			log.Warnf("Can not detect column type for SQL type %s of %s - use string", ct.DatabaseTypeName(), ct.Name())
			tag = table.TypeString
		}
		nullable, _ := ct.Nullable()
		schema[i] = Column{Name: ct.Name(), Type: tag, SqlType: ct.DatabaseTypeName(), Nullable: nullable}
	}
	return &rowSource{rows: rows, names: names, schema: schema}, nil
}

func (this *rowSource) Schema() []table.ColumnDef {
	return this.schema.ColumnDefs()
}

func (this *rowSource) Next() (adapter.Record, error) {
	if !this.rows.Next() {
		if err := this.rows.Err(); err != nil {
			return nil, errors.Wrap(err, "can not read rows")
		}
		return nil, io.EOF
	}

	values := make([]interface{}, len(this.names))
	ptrs := make([]interface{}, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := this.rows.Scan(ptrs...); err != nil {
		return nil, errors.Wrap(err, "can not scan row")
	}

	rec := make(mapping.OrderedRecord, len(values))
	for i, v := range values {
		rec[i] = sqlField(this.names[i], this.schema[i].Type, v)
	}
	return rec, nil
}

// sqlField turns a scanned driver value into the text form AddRow parses.
// NULL becomes an empty string, read back as null by ReadTable tables.
func sqlField(name string, tag table.TypeTag, v interface{}) mapping.Field {
	field := mapping.Field{Name: name}
	switch typed := v.(type) {
	case nil:
	case []byte:
		field.Value = string(typed)
	case string:
		field.Value = typed
	case int64:
		field.Value = strconv.FormatInt(typed, 10)
	case float64:
		field.Value = table.FormatDouble(typed)
	case bool:
		field.Value = strconv.FormatBool(typed)
	case time.Time:
		switch tag {
		case table.TypeDate:
			field.Value = typed.Format(table.DateLayout)
		case table.TypeTime:
			field.Value = typed.Format(table.TimeLayout)
		default:
			field.Value = typed.Format(table.DateTimeLayout)
		}
	default:
		field.Value = fmt.Sprint(typed)
	}
	if tag == table.TypeDateTime && len(field.Value) > 10 && field.Value[10] == ' ' {
		field.Value = field.Value[:10] + "T" + field.Value[11:]
	}
	return field
}
