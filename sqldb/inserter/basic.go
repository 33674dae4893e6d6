// Package inserter provides the row writers used by the SQL dialects.
package inserter

import (
	"database/sql"

	log "github.com/sirupsen/logrus"

	"github.com/and-hom/tabconv/sqldb"
)

// BasicInserter executes one prepared insert per row.
type BasicInserter struct {
	Stmt *sql.Stmt
}

func (this *BasicInserter) Add(args ...interface{}) error {
	_, err := this.Stmt.Exec(args...)
	return err
}

func (this *BasicInserter) Close() error {
	return this.Stmt.Close()
}

func CreateBasicInserter(db sqldb.CanPrepareStatement, queryBuilder sqldb.QueryBuilder, tableName sqldb.TableName, columns []string) (sqldb.Inserter, error) {
	query, err := queryBuilder.InsertQuery(tableName, columns)
	if err != nil {
		return nil, err
	}
	log.Debug("Insert query is ", query)

	stmt, err := db.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &BasicInserter{Stmt: stmt}, nil
}
