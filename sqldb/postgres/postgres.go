// Package postgres is the PostgreSQL dialect of sqldb.
package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/and-hom/tabconv/sqldb"
	"github.com/and-hom/tabconv/sqldb/inserter"
	"github.com/and-hom/tabconv/table"
)

const (
	DRIVER_PQ  = "postgres"
	DRIVER_PGX = "pgx"

	DEFAULT_SCHEMA = "public"
)

// MakeDbTool builds the dialect for db opened with driver. COPY is only
// available through lib/pq; other drivers insert in batches of batchSize
// rows, or a size derived from the column count when batchSize is 0.
func MakeDbTool(db *sql.DB, driver string, batchSize int) sqldb.DbTool {
	tool := pgDbTool{
		CommonDbTool: sqldb.NewCommonDbTool(db, DEFAULT_SCHEMA, Escape, func(n int) string {
			return fmt.Sprintf("$%d", n)
		}),
		driver: driver,
	}
	tool.BatchSize = batchSize
	tool.RegisterType(table.TypeInt, "bigint", "int8", "integer", "int", "int4", "smallint", "int2",
		"bigserial", "serial", "smallserial")
	tool.RegisterType(table.TypeDouble, "double precision", "float8", "numeric", "decimal", "real", "float4")
	tool.RegisterType(table.TypeBoolean, "boolean", "bool")
	tool.RegisterType(table.TypeString, "text", "character varying", "varchar", "character", "char", "bpchar",
		"json", "jsonb", "uuid", "xml", "name")
	tool.RegisterType(table.TypeDate, "date")
	tool.RegisterType(table.TypeTime, "time", "time without time zone", "time with time zone", "timetz")
	tool.RegisterType(table.TypeDateTime, "timestamp", "timestamp without time zone",
		"timestamp with time zone", "timestamptz")
	return tool
}

// Escape quotes an identifier.
func Escape(identifier string) string {
	return `"` + strings.Replace(identifier, `"`, `""`, -1) + `"`
}

type pgDbTool struct {
	sqldb.CommonDbTool
	driver string
}

func (this pgDbTool) Exists(tableName sqldb.TableName) (bool, error) {
	query := `SELECT EXISTS (
				   SELECT 1
				   FROM   pg_catalog.pg_class c
				   JOIN   pg_catalog.pg_namespace n ON n.oid = c.relnamespace
				   WHERE  n.nspname = $1
				   AND    c.relname = $2
				   AND    c.relkind = 'r'
				)`
	log.Debug(query)
	rows, err := this.Db.Query(query, tableName.SchemaPlain, tableName.TablePlain)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	if rows.Next() {
		result := false
		err := rows.Scan(&result)
		return result, err
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	return false, errors.New("empty result for select exists")
}

func (this pgDbTool) LoadSchema(tableName sqldb.TableName) (sqldb.Schema, error) {
	rows, err := this.Db.Query(`SELECT
					    f.attname AS name,
					    not f.attnotnull AS nullable,
					    pg_catalog.format_type(f.atttypid,f.atttypmod) AS type
					    FROM pg_attribute f
					    JOIN pg_class c ON c.oid = f.attrelid
					    LEFT JOIN pg_namespace n ON n.oid = c.relnamespace
					WHERE c.relkind = 'r'::char
					    AND n.nspname = $1
					    AND c.relname = $2
					    AND f.attnum > 0
					    AND NOT f.attisdropped
					ORDER BY f.attnum ASC`, tableName.SchemaPlain, tableName.TablePlain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schema := sqldb.Schema{}
	for rows.Next() {
		col := sqldb.Column{}
		if err := rows.Scan(&col.Name, &col.Nullable, &col.SqlType); err != nil {
			return nil, err
		}
		tag, ok := this.TypeOf(col.SqlType)
		if !ok {
			log.Warnf("Can not detect column type for SQL type %s of %s - skip column", col.SqlType, col.Name)
			continue
		}
		col.Type = tag
		schema = append(schema, col)
	}
	return schema, rows.Err()
}

func (this pgDbTool) CreateInserter(tableName sqldb.TableName, columns []string) (sqldb.Inserter, error) {
	if this.driver == DRIVER_PQ {
		return CreateCopyInserter(this.Db, tableName, columns)
	}
	ins, err := inserter.CreateBufferedTxInserter(this.Db, this, tableName, columns, this.RowsPerBatch(len(columns)))
	if err != nil {
		return nil, err
	}
	return inserter.Background(ins), nil
}
