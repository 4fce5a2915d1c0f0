package auth

import (
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor for newly hashed passwords.
const DefaultBcryptCost = 12

// CredentialVerifier checks a presented secret against a stored hash.
type CredentialVerifier interface {
	Check(secret, storedHash string) bool
	// CheckMissing spends the same effort as Check for an account that does
	// not exist. It always reports false.
	CheckMissing(secret string) bool
}

// BcryptVerifier implements CredentialVerifier with bcrypt.
type BcryptVerifier struct {
	cost      int
	dummyHash []byte
}

// NewBcryptVerifier prepares a verifier hashing at the given cost.
func NewBcryptVerifier(cost int) (*BcryptVerifier, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	dummy, err := bcrypt.GenerateFromPassword(common.GenerateRandByteArray(16), cost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}

	return &BcryptVerifier{cost: cost, dummyHash: dummy}, nil
}

// Hash returns the bcrypt hash of secret.
func (v *BcryptVerifier) Hash(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), v.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Check reports whether secret matches storedHash. bcrypt compares the
// derived keys in constant time.
func (v *BcryptVerifier) Check(secret, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)) == nil
}

// CheckMissing burns one bcrypt comparison against a throwaway hash.
func (v *BcryptVerifier) CheckMissing(secret string) bool {
	_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(secret))
	return false
}
