package inserter

import (
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and-hom/tabconv/sqldb"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func queryBuilder() sqldb.CommonDbTool {
	return sqldb.NewCommonDbTool(nil, "public", nil, func(n int) string {
		return fmt.Sprintf("$%d", n)
	})
}

func peopleName(qb sqldb.CommonDbTool) sqldb.TableName {
	return qb.TableName("", "people")
}

func TestBasicInserter(t *testing.T) {
	db, mock := newMock(t)
	qb := queryBuilder()

	prep := mock.ExpectPrepare("INSERT INTO public.people(name,age) VALUES ($1,$2)")
	prep.ExpectExec().WithArgs("Alice", int64(30)).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.WillBeClosed()

	ins, err := CreateBasicInserter(db, qb, peopleName(qb), []string{"name", "age"})
	require.NoError(t, err)
	require.NoError(t, ins.Add("Alice", int64(30)))
	require.NoError(t, ins.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxInserter_Commit(t *testing.T) {
	db, mock := newMock(t)
	qb := queryBuilder()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO public.people(name) VALUES ($1)")
	prep.ExpectExec().WithArgs("Alice").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("Bob").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ins, err := CreateTxInserter(db, qb, peopleName(qb), []string{"name"})
	require.NoError(t, err)
	require.NoError(t, ins.Add("Alice"))
	require.NoError(t, ins.Add("Bob"))
	require.NoError(t, ins.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxInserter_RollbackAfterFailure(t *testing.T) {
	db, mock := newMock(t)
	qb := queryBuilder()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO public.people(name) VALUES ($1)")
	prep.ExpectExec().WithArgs("Alice").WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	ins, err := CreateTxInserter(db, qb, peopleName(qb), []string{"name"})
	require.NoError(t, err)
	assert.Error(t, ins.Add("Alice"))
	assert.Error(t, ins.Add("Bob"), "inserter stays failed")

	err = ins.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxInserter_Fail(t *testing.T) {
	db, mock := newMock(t)
	qb := queryBuilder()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO public.people(name) VALUES ($1)")
	prep.ExpectExec().WithArgs("Alice").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	ins, err := CreateTxInserter(db, qb, peopleName(qb), []string{"name"})
	require.NoError(t, err)
	require.NoError(t, ins.Add("Alice"))
	ins.(sqldb.Failer).Fail(errors.New("cancelled"))
	assert.Error(t, ins.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBufferedTxInserter(t *testing.T) {
	db, mock := newMock(t)
	qb := queryBuilder()

	mock.ExpectBegin()
	full := mock.ExpectPrepare("INSERT INTO public.people(name,age) VALUES ($1,$2),($3,$4)")
	full.ExpectExec().WithArgs("a", int64(1), "b", int64(2)).WillReturnResult(sqlmock.NewResult(0, 2))
	full.ExpectExec().WithArgs("c", int64(3), "d", int64(4)).WillReturnResult(sqlmock.NewResult(0, 2))
	full.WillBeClosed()
	tail := mock.ExpectPrepare("INSERT INTO public.people(name,age) VALUES ($1,$2)")
	tail.ExpectExec().WithArgs("e", int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ins, err := CreateBufferedTxInserter(db, qb, peopleName(qb), []string{"name", "age"}, 2)
	require.NoError(t, err)
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, ins.Add(name, int64(i+1)))
	}
	require.NoError(t, ins.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBufferedTxInserter_Errors(t *testing.T) {
	db, mock := newMock(t)
	qb := queryBuilder()

	_, err := CreateBufferedTxInserter(db, qb, peopleName(qb), nil, 2)
	assert.Error(t, err)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO public.people(name) VALUES ($1)")
	prep.ExpectExec().WithArgs("a").WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	ins, err := CreateBufferedTxInserter(db, qb, peopleName(qb), []string{"name"}, 1)
	require.NoError(t, err)
	assert.Error(t, ins.Add("a", "extra"))
	assert.Error(t, ins.Add("a"))
	assert.Error(t, ins.Add("b"))
	assert.Error(t, ins.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBufferedTxInserter_NothingAdded(t *testing.T) {
	db, mock := newMock(t)
	qb := queryBuilder()

	ins, err := CreateBufferedTxInserter(db, qb, peopleName(qb), []string{"name"}, 10)
	require.NoError(t, err)
	assert.NoError(t, ins.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

type memoryInserter struct {
	mu        sync.Mutex
	rows      [][]interface{}
	failAfter int
	failed    error
	closed    bool
}

func (this *memoryInserter) Add(values ...interface{}) error {
	this.mu.Lock()
	defer this.mu.Unlock()
	if this.failAfter > 0 && len(this.rows) >= this.failAfter {
		return errors.New("disk full")
	}
	this.rows = append(this.rows, values)
	return nil
}

func (this *memoryInserter) Fail(err error) {
	this.failed = err
}

func (this *memoryInserter) Close() error {
	this.closed = true
	if this.failed != nil {
		return errors.Wrap(this.failed, "transaction rolled back")
	}
	return nil
}

func TestBackground(t *testing.T) {
	inner := &memoryInserter{}
	ins := Background(inner)
	for i := 0; i < QUEUE_SIZE*3; i++ {
		require.NoError(t, ins.Add(int64(i)))
	}
	require.NoError(t, ins.Close())

	assert.True(t, inner.closed)
	require.Len(t, inner.rows, QUEUE_SIZE*3)
	assert.Equal(t, []interface{}{int64(7)}, inner.rows[7])
}

func TestBackground_InsertError(t *testing.T) {
	inner := &memoryInserter{failAfter: 3}
	ins := Background(inner)
	for i := 0; i < 10; i++ {
		// later Adds may already report the failure
		ins.Add(int64(i))
	}
	err := ins.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, inner.rows, 3)
	assert.Error(t, inner.failed)
}

func TestBackground_Fail(t *testing.T) {
	inner := &memoryInserter{}
	ins := Background(inner)
	require.NoError(t, ins.Add(int64(1)))
	ins.(sqldb.Failer).Fail(errors.New("cancelled"))
	assert.Error(t, ins.Add(int64(2)))

	err := ins.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
	assert.True(t, inner.closed)
}
