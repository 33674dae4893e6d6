package inserter

import (
	"database/sql"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/and-hom/tabconv/sqldb"
)

// TxInserter runs a statement inside a transaction. It commits on Close
// unless an Add failed.
type TxInserter struct {
	Stmt   *sql.Stmt
	Tx     *sql.Tx
	failed error
}

func CreateTxInserter(db *sql.DB, queryBuilder sqldb.QueryBuilder, tableName sqldb.TableName, columns []string) (sqldb.Inserter, error) {
	query, err := queryBuilder.InsertQuery(tableName, columns)
	if err != nil {
		return nil, err
	}
	log.Debug("Insert query is ", query)

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return InitTxInserter(stmt, tx), nil
}

// InitTxInserter wraps a statement already prepared in tx.
func InitTxInserter(stmt *sql.Stmt, tx *sql.Tx) *TxInserter {
	return &TxInserter{Stmt: stmt, Tx: tx}
}

func (this *TxInserter) Add(args ...interface{}) error {
	if this.failed != nil {
		return this.failed
	}
	if _, err := this.Stmt.Exec(args...); err != nil {
		this.failed = err
		return err
	}
	return nil
}

// Fail marks the transaction for rollback.
func (this *TxInserter) Fail(err error) {
	if this.failed == nil {
		this.failed = err
	}
}

// Err returns the failure that will roll the transaction back, if any.
func (this *TxInserter) Err() error {
	return this.failed
}

func (this *TxInserter) Close() error {
	err := this.Stmt.Close()
	if err == nil && this.failed == nil {
		return this.Tx.Commit()
	}
	if err == nil {
		err = this.failed
	}
	log.Error("Can not insert: ", err)
	if rbErr := this.Tx.Rollback(); rbErr != nil {
		log.Error("Can not rollback: ", rbErr)
	}
	return errors.Wrap(err, "transaction rolled back")
}
