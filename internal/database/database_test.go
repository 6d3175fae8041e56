package database

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySchemaIndexesShiftCashQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("idx_orders_cash_created ON orders (status, payment_method, created_at)")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, ApplySchema(db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySchemaWrapsError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(assert.AnError)

	err = ApplySchema(db)
	assert.ErrorIs(t, err, assert.AnError)
}
