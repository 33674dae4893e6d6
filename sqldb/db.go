// Package sqldb moves tables between memory and SQL databases through
// database/sql. Dialects live in the postgres and mysql subpackages.
package sqldb

import (
	"database/sql"
	"io"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xo/dburl"

	"github.com/and-hom/tabconv/table"
)

// DbTool hides the differences between SQL dialects.
type DbTool interface {
	QueryBuilder
	DB() *sql.DB
	TableName(schema, table string) TableName
	Exists(tableName TableName) (bool, error)
	LoadSchema(tableName TableName) (Schema, error)
	CreateTable(tableName TableName, schema Schema) error
	DeleteFromTable(tableName TableName) error
	TruncateTable(tableName TableName) error
	DropTable(tableName TableName) error
	SelectQuery(tableName TableName, columns []string) (string, error)
	CreateInserter(tableName TableName, columns []string) (Inserter, error)
	TypeOf(sqlType string) (table.TypeTag, bool)
	Escape(identifier string) string
}

// QueryBuilder builds insert statements.
type QueryBuilder interface {
	InsertQuery(tableName TableName, columns []string) (string, error)
	InsertQueryMultiple(tableName TableName, columns []string, rows int) (string, error)
}

// Inserter writes rows. Values are passed in the column order the inserter
// was created for. Close flushes and commits; after a failed Add it rolls
// back instead.
type Inserter interface {
	io.Closer
	Add(values ...interface{}) error
}

// Failer is implemented by inserters that can be told to roll back on Close.
type Failer interface {
	Fail(err error)
}

// Abort closes ins after err, rolling back when ins supports it.
func Abort(ins Inserter, err error) error {
	if failer, ok := ins.(Failer); ok {
		failer.Fail(err)
	}
	if closeErr := ins.Close(); closeErr != nil {
		log.Debug("Close after failure: ", closeErr)
	}
	return err
}

type CanPrepareStatement interface {
	Prepare(query string) (*sql.Stmt, error)
}

// TableName holds a table name both escaped for SQL text and as given.
type TableName struct {
	Schema      string
	Table       string
	SchemaPlain string
	TablePlain  string
}

func (this TableName) String() string {
	if this.Schema == "" {
		return this.Table
	}
	return this.Schema + "." + this.Table
}

// SplitTableName splits "schema.table" into its parts. The schema is empty
// when name has no dot.
func SplitTableName(name string) (string, string) {
	parts := strings.Split(name, ".")
	if len(parts) > 1 {
		return strings.Join(parts[:len(parts)-1], "."), parts[len(parts)-1]
	}
	return "", name
}

// Open connects to the database described by a dburl URL.
func Open(dbUrl *dburl.URL) (*sql.DB, error) {
	db, err := sql.Open(dbUrl.Driver, dbUrl.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "can not connect to database %s", dbUrl.Redacted())
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "can not connect to database %s", dbUrl.Redacted())
	}
	log.Debugf("Connected to %s", dbUrl.Redacted())
	return db, nil
}
