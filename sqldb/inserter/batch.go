package inserter

import (
	"database/sql"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/and-hom/tabconv/sqldb"
)

// bufferedTxInserter collects rows and writes them as multi-row inserts in
// one transaction.
type bufferedTxInserter struct {
	db               *sql.DB
	queryBuilder     sqldb.QueryBuilder
	tableName        sqldb.TableName
	columns          []string
	tx               *sql.Tx
	stmt             *sql.Stmt
	buffer           []interface{}
	counter          int
	prevStmtRowCount int
	batchSize        int
	failed           error
}

func CreateBufferedTxInserter(db *sql.DB, queryBuilder sqldb.QueryBuilder, tableName sqldb.TableName, columns []string, batchSize int) (sqldb.Inserter, error) {
	if len(columns) == 0 {
		return nil, errors.New("can not insert 0 columns")
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &bufferedTxInserter{
		db:           db,
		queryBuilder: queryBuilder,
		tableName:    tableName,
		columns:      columns,
		buffer:       make([]interface{}, 0, batchSize*len(columns)),
		batchSize:    batchSize,
	}, nil
}

func (this *bufferedTxInserter) Add(args ...interface{}) error {
	if this.failed != nil {
		return this.failed
	}
	if len(args) != len(this.columns) {
		return errors.Errorf("expected %d values, got %d", len(this.columns), len(args))
	}
	this.buffer = append(this.buffer, args...)
	this.counter += 1
	if this.counter >= this.batchSize {
		return this.flush()
	}
	return nil
}

func (this *bufferedTxInserter) initTx() error {
	var err error
	if this.tx == nil {
		this.tx, err = this.db.Begin()
	}
	return err
}

func (this *bufferedTxInserter) prepareStmt() error {
	if this.stmt == nil {
		return this.prepareStmtForce()
	} else if this.counter != this.prevStmtRowCount {
		if err := this.stmt.Close(); err != nil {
			return err
		}
		return this.prepareStmtForce()
	}
	return nil
}

func (this *bufferedTxInserter) prepareStmtForce() error {
	log.Debugf("Preparing statement for %d rows", this.counter)
	query, err := this.queryBuilder.InsertQueryMultiple(this.tableName, this.columns, this.counter)
	if err != nil {
		return err
	}
	log.Debug("Insert query is: ", query)

	if this.stmt, err = this.tx.Prepare(query); err != nil {
		return err
	}
	this.prevStmtRowCount = this.counter
	return nil
}

func (this *bufferedTxInserter) flush() error {
	err := this.initTx()
	if err == nil {
		err = this.prepareStmt()
	}
	if err == nil {
		_, err = this.stmt.Exec(this.buffer...)
	}
	this.counter = 0
	this.buffer = this.buffer[:0]
	if err != nil {
		this.failed = err
	}
	return err
}

func (this *bufferedTxInserter) Fail(err error) {
	if this.failed == nil {
		this.failed = err
	}
}

func (this *bufferedTxInserter) Close() error {
	if this.failed == nil && this.counter > 0 {
		this.flush()
	}
	if this.stmt != nil {
		if err := this.stmt.Close(); err != nil && this.failed == nil {
			this.failed = err
		}
	}
	if this.tx == nil {
		return this.failed
	}
	if this.failed != nil {
		if err := this.tx.Rollback(); err != nil {
			log.Error("Can not rollback: ", err)
		}
		return errors.Wrap(this.failed, "transaction rolled back")
	}
	return this.tx.Commit()
}
