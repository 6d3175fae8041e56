package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNullString(t *testing.T) {
	assert.Nil(t, NewNullString(""))
	assert.Nil(t, NewNullString("   "))
	got := NewNullString("  meja 3 ")
	require.NotNil(t, got)
	assert.Equal(t, "meja 3", *got)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty(" \t\n"))
	assert.False(t, IsEmpty(" x "))
}

func TestInt64Conversions(t *testing.T) {
	assert.Equal(t, "42", Int64ToStr(42))

	n, err := StrToInt64("9000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(9000000000), n)

	_, err = StrToInt64("12a")
	assert.Error(t, err)
}
