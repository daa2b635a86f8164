package service

import (
	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier hashes and checks passwords.
type CredentialVerifier interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// BcryptVerifier is the bcrypt CredentialVerifier.
type BcryptVerifier struct {
	Cost int
}

// NewBcryptVerifier uses bcrypt.DefaultCost when cost is zero.
func NewBcryptVerifier(cost int) BcryptVerifier {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return BcryptVerifier{Cost: cost}
}

func (v BcryptVerifier) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), v.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify fails closed: malformed hashes and comparison errors are a mismatch.
func (v BcryptVerifier) Verify(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
