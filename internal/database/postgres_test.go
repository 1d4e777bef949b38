package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPqStore(t *testing.T) (*PqStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewPqStoreFromDB(conn), mock
}

func TestPqSaveBundleWritesParentBeforeChildren(t *testing.T) {
	store, mock := newMockPqStore(t)
	bundle := sampleBundle()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO property").
		WillReturnResult(sqlmock.NewResult(0, 1))
	for range []string{"leads", "valuation", "rehab", "hoa", "taxes"} {
		mock.ExpectExec("DELETE FROM").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("INSERT INTO valuation").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO valuation").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveBundle(bundle))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPqSaveBundleRollsBackOnFailure(t *testing.T) {
	store, mock := newMockPqStore(t)
	bundle := sampleBundle()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO property").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.SaveBundle(bundle)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.False(t, le.Connectivity)
}

func TestPqInitSchemaCreatesAllTables(t *testing.T) {
	store, mock := newMockPqStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS property").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.InitSchema())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPqListKeysReturnsStoredKeys(t *testing.T) {
	store, mock := newMockPqStore(t)

	mock.ExpectQuery("SELECT property_key FROM property").
		WillReturnRows(sqlmock.NewRows([]string{"property_key"}).
			AddRow("TX-aaaa").
			AddRow("CA-bbbb"))

	keys, err := store.ListKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"TX-aaaa", "CA-bbbb"}, keys)
}

func TestPqDeletePropertyRemovesParentRow(t *testing.T) {
	store, mock := newMockPqStore(t)

	mock.ExpectExec("DELETE FROM property WHERE property_key").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.DeleteProperty("TX-aaaa"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
