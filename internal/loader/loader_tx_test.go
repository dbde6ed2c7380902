package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvload/internal/probe"
	"csvload/internal/sqlgen"
	"csvload/internal/storage/sqldb"
)

var peopleCols = []probe.Column{
	{Position: 0, Name: "name", Type: probe.Text},
	{Position: 1, Name: "age", Type: probe.Integer},
}

const peopleCSV = "name,age\nAlice,30\nBob,\n"

func mockSession(t *testing.T) (*sqldb.Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqldb.New(db, sqlgen.Postgres), mock
}

func expectSchema(mock sqlmock.Sqlmock) {
	for _, stmt := range sqlgen.BuildSchema(sqlgen.Postgres, DefaultTable, peopleCols).Statements {
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func insertFor(row ...string) string {
	return sqlgen.BuildInsert(sqlgen.Postgres, DefaultTable, peopleCols, row)
}

func TestLoadTx_CommitsAllRows(t *testing.T) {
	t.Parallel()
	sess, mock := mockSession(t)

	expectSchema(mock)
	mock.ExpectBegin()
	mock.ExpectExec(insertFor("Alice", "30")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertFor("Bob", "")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := (&Loader{}).Load(context.Background(), sess, source(t, peopleCSV))
	require.NoError(t, err)
	assert.Equal(t, Committed, res.State)
	assert.Equal(t, int64(2), res.Rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadTx_RowFailureRollsBack(t *testing.T) {
	t.Parallel()
	sess, mock := mockSession(t)

	boom := errors.New("value too long")
	expectSchema(mock)
	mock.ExpectBegin()
	mock.ExpectExec(insertFor("Alice", "30")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertFor("Bob", "")).WillReturnError(boom)
	mock.ExpectRollback()

	res, err := (&Loader{}).Load(context.Background(), sess, source(t, peopleCSV))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRowExecution)
	assert.ErrorIs(t, err, boom)

	le := asLoadError(t, err)
	assert.Equal(t, 3, le.Line)
	assert.Equal(t, insertFor("Bob", ""), le.Statement)
	assert.Equal(t, Aborted, res.State)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadTx_SchemaFailureStopsBeforeBegin(t *testing.T) {
	t.Parallel()
	sess, mock := mockSession(t)

	ddl := sqlgen.BuildSchema(sqlgen.Postgres, DefaultTable, peopleCols)
	mock.ExpectExec(ddl.Statements[0]).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(ddl.Statements[1]).WillReturnError(errors.New("permission denied"))

	_, err := (&Loader{}).Load(context.Background(), sess, source(t, peopleCSV))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaExecution)

	le := asLoadError(t, err)
	assert.Equal(t, SchemaEmission, le.State)
	assert.Equal(t, ddl.Statements[1], le.Statement)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadTx_BeginFailure(t *testing.T) {
	t.Parallel()
	sess, mock := mockSession(t)

	expectSchema(mock)
	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

	_, err := (&Loader{}).Load(context.Background(), sess, source(t, peopleCSV))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransaction)
	assert.Equal(t, TransactionOpen, asLoadError(t, err).State)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadTx_CommitFailure(t *testing.T) {
	t.Parallel()
	sess, mock := mockSession(t)

	expectSchema(mock)
	mock.ExpectBegin()
	mock.ExpectExec(insertFor("Alice", "30")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertFor("Bob", "")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	res, err := (&Loader{}).Load(context.Background(), sess, source(t, peopleCSV))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransaction)
	assert.Equal(t, TransactionCommit, asLoadError(t, err).State)
	assert.Equal(t, int64(0), res.Rows)
	require.NoError(t, mock.ExpectationsWereMet())
}
