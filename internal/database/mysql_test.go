package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"property-etl/internal/models"
	"property-etl/internal/transform"
)

func newMockGormStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewGormStoreFromDB(db), mock
}

func sampleBundle() transform.Bundle {
	street := "12 Oak St"
	city := "Austin"
	state := "TX"
	zip := "78701"
	price1 := 100000.0
	price2 := 90000.0

	key := transform.PropertyKey(street, city, state, zip)
	return transform.Bundle{
		Property: models.Property{
			PropertyKey:   key,
			StreetAddress: &street,
			City:          &city,
			State:         &state,
			ZipCode:       &zip,
		},
		Valuations: []models.Valuation{
			{PropertyKey: key, ScenarioRank: 1, ListPrice: &price1},
			{PropertyKey: key, ScenarioRank: 2, ListPrice: &price2},
		},
	}
}

func TestSaveBundleInsertsNewProperty(t *testing.T) {
	store, mock := newMockGormStore(t)
	bundle := sampleBundle()

	mock.ExpectBegin()
	// No existing row: the parent is created.
	mock.ExpectQuery("SELECT \\* FROM `property`").
		WillReturnRows(sqlmock.NewRows([]string{"property_key"}))
	mock.ExpectExec("INSERT INTO `property`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("DELETE FROM `leads`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `valuation`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `valuation`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `rehab`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `hoa`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `taxes`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, store.SaveBundle(bundle))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBundleUpdatesExistingProperty(t *testing.T) {
	store, mock := newMockGormStore(t)
	bundle := sampleBundle()
	originalCreatedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	// Existing row: the parent is saved with its original created_at.
	mock.ExpectQuery("SELECT \\* FROM `property`").
		WillReturnRows(sqlmock.NewRows([]string{"property_key", "created_at"}).
			AddRow(bundle.Property.PropertyKey, originalCreatedAt))
	mock.ExpectExec("UPDATE `property` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("DELETE FROM `leads`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `valuation`").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO `valuation`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `rehab`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `hoa`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `taxes`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, store.SaveBundle(bundle))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBundleEmptyChildrenStillReplaced(t *testing.T) {
	store, mock := newMockGormStore(t)
	bundle := sampleBundle()
	// A reload with zero scenarios must still clear stale child rows.
	bundle.Valuations = nil

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `property`").
		WillReturnRows(sqlmock.NewRows([]string{"property_key", "created_at"}).
			AddRow(bundle.Property.PropertyKey, time.Now()))
	mock.ExpectExec("UPDATE `property` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("DELETE FROM `leads`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `valuation`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `rehab`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `hoa`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `taxes`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, store.SaveBundle(bundle))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBundleRowFailureIsLoadError(t *testing.T) {
	store, mock := newMockGormStore(t)
	bundle := sampleBundle()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `property`").
		WillReturnRows(sqlmock.NewRows([]string{"property_key"}))
	mock.ExpectExec("INSERT INTO `property`").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.SaveBundle(bundle)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, bundle.Property.PropertyKey, le.PropertyKey)
	assert.False(t, le.Connectivity)
	assert.False(t, IsConnectivity(err))
}

func TestListKeysReturnsStoredKeys(t *testing.T) {
	store, mock := newMockGormStore(t)

	mock.ExpectQuery("SELECT `property_key` FROM `property`").
		WillReturnRows(sqlmock.NewRows([]string{"property_key"}).
			AddRow("TX-aaaa").
			AddRow("CA-bbbb"))

	keys, err := store.ListKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"TX-aaaa", "CA-bbbb"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePropertyRemovesParentRow(t *testing.T) {
	store, mock := newMockGormStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `property`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.DeleteProperty("TX-aaaa"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
