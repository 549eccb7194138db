package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	BcryptCost = bcrypt.MinCost

	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)
	assert.True(t, CheckPassword("correct horse battery", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("anything", "not-a-hash"))
}

func TestHashPassword_TooLong(t *testing.T) {
	BcryptCost = bcrypt.MinCost

	_, err := HashPassword(strings.Repeat("x", 73))
	assert.Error(t, err)
}
