package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier(t *testing.T) {
	v := NewBcryptVerifier(bcrypt.MinCost)

	hash, err := v.Hash("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, v.Verify(hash, "s3cret!"))
	assert.False(t, v.Verify(hash, "wrong"))
	assert.False(t, v.Verify("", "s3cret!"))
	assert.False(t, v.Verify("not-a-bcrypt-hash", "s3cret!"))
}

func TestNewBcryptVerifierDefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptVerifier(0).Cost)
}
