package postgres

import (
	"database/sql"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"github.com/and-hom/tabconv/sqldb"
	"github.com/and-hom/tabconv/sqldb/inserter"
)

// CreateCopyInserter streams rows with COPY FROM STDIN in one transaction.
func CreateCopyInserter(db *sql.DB, tableName sqldb.TableName, columns []string) (sqldb.Inserter, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}

	query := pq.CopyInSchema(tableName.SchemaPlain, tableName.TablePlain, columns...)
	log.Debug("Query is " + query)
	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &copyInserter{TxInserter: inserter.InitTxInserter(stmt, tx)}, nil
}

// copyInserter flushes the COPY buffer with an argument-less Exec before
// the statement is closed.
type copyInserter struct {
	*inserter.TxInserter
	flushed bool
}

func (this *copyInserter) Close() error {
	if !this.flushed && this.Err() == nil {
		this.flushed = true
		if _, err := this.Stmt.Exec(); err != nil {
			this.Fail(err)
		}
	}
	return this.TxInserter.Close()
}
