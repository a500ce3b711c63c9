package service

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

// newMockDB returns a sqlx.DB backed by sqlmock. The repositories themselves
// are mocked; the sqlmock only plays the transaction begin/commit/rollback
// that the services drive.
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { rawDB.Close() })

	return sqlx.NewDb(rawDB, "sqlmock"), mock
}

// expectTxCommit sets up a successful begin+commit pair.
func expectTxCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

// expectTxRollback sets up a begin that ends in rollback.
func expectTxRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}
