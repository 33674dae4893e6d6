// Package mysql is the MySQL dialect of sqldb.
package mysql

import (
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/and-hom/tabconv/sqldb"
	"github.com/and-hom/tabconv/sqldb/inserter"
	"github.com/and-hom/tabconv/table"
)

// MakeDbTool builds the dialect for db. Tables without a schema go to the
// current database.
func MakeDbTool(db *sql.DB, batchSize int) (sqldb.DbTool, error) {
	defaultSchema := ""
	if err := db.QueryRow("SELECT DATABASE()").Scan(&defaultSchema); err != nil {
		return nil, errors.Wrap(err, "can not determine current schema")
	}
	tool := newDbTool(db, defaultSchema)
	tool.BatchSize = batchSize
	return tool, nil
}

func newDbTool(db *sql.DB, defaultSchema string) myDbTool {
	tool := myDbTool{sqldb.NewCommonDbTool(db, defaultSchema, Escape, nil)}
	// boolean columns are tinyint(1) in the catalog and read back as int
	tool.RegisterType(table.TypeInt, "bigint", "int", "integer", "mediumint", "smallint", "tinyint")
	tool.RegisterType(table.TypeDouble, "double", "double precision", "float", "real", "decimal", "numeric")
	tool.RegisterType(table.TypeBoolean, "boolean", "bool")
	tool.RegisterType(table.TypeString, "text", "varchar", "char", "json", "enum", "longtext", "mediumtext", "tinytext")
	tool.RegisterType(table.TypeDate, "date")
	tool.RegisterType(table.TypeTime, "time")
	tool.RegisterType(table.TypeDateTime, "datetime", "timestamp")
	return tool
}

// Escape quotes an identifier.
func Escape(identifier string) string {
	return "`" + strings.Replace(identifier, "`", "``", -1) + "`"
}

type myDbTool struct {
	sqldb.CommonDbTool
}

func (this myDbTool) Exists(tableName sqldb.TableName) (bool, error) {
	query := `SELECT COUNT(*)
			FROM information_schema.tables
			WHERE table_schema = ?
			AND table_name = ?`
	log.Debug(query)
	result := 0
	if err := this.Db.QueryRow(query, tableName.SchemaPlain, tableName.TablePlain).Scan(&result); err != nil {
		return false, err
	}
	return result > 0, nil
}

func (this myDbTool) LoadSchema(tableName sqldb.TableName) (sqldb.Schema, error) {
	rows, err := this.Db.Query(`SELECT COLUMN_NAME, IS_NULLABLE, DATA_TYPE
  					FROM INFORMATION_SCHEMA.COLUMNS
  					WHERE table_schema = ?
  					AND table_name = ?
  					ORDER BY ORDINAL_POSITION ASC`, tableName.SchemaPlain, tableName.TablePlain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schema := sqldb.Schema{}
	for rows.Next() {
		col := sqldb.Column{}
		nullableStr := ""
		if err := rows.Scan(&col.Name, &nullableStr, &col.SqlType); err != nil {
			return nil, err
		}
		col.Nullable = nullableStr == "YES"

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

func (this myDbTool) CreateInserter(tableName sqldb.TableName, columns []string) (sqldb.Inserter, error) {
	ins, err := inserter.CreateBufferedTxInserter(this.Db, this, tableName, columns, this.RowsPerBatch(len(columns)))
	if err != nil {
		return nil, err
	}
	return inserter.Background(ins), nil
}
