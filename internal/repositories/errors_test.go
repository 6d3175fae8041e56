package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestWrapDBError(t *testing.T) {
	assert.NoError(t, wrapDBError(nil, "op"))
	assert.ErrorIs(t, wrapDBError(sql.ErrNoRows, "op"), ErrNotFound)
	assert.ErrorIs(t, wrapDBError(&pq.Error{Code: "23505", Constraint: "uq_member_phone"}, "op"), ErrDuplicateKey)
	assert.ErrorIs(t, wrapDBError(&pq.Error{Code: "23503"}, "op"), ErrForeignKey)
	assert.ErrorIs(t, wrapDBError(&pq.Error{Code: "23514"}, "op"), ErrCheckViolation)

	err := wrapDBError(errors.New("connection reset"), "listing tables")
	assert.ErrorIs(t, err, ErrDatabaseError)
	assert.Contains(t, err.Error(), "listing tables")
}

func TestNormalizePage(t *testing.T) {
	limit, offset := normalizePage(0, 0)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset = normalizePage(3, 500)
	assert.Equal(t, 200, limit)
	assert.Equal(t, 400, offset)
}
