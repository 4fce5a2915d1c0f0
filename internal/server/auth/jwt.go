// Package auth holds the server-side identity primitives: signing and
// verifying session tokens and checking passwords against stored hashes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenValidity is how long a minted token is accepted.
const DefaultTokenValidity = 24 * time.Hour

// Claims is the JWT payload: the registered claims (subject = account id)
// plus the email the account logged in with.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Identity is what a verified token asserts.
type Identity struct {
	SubjectID  string
	Identifier string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// TokenCodec mints and verifies HS256 session tokens. The server holds no
// session table; a token is valid as long as its signature matches and it
// has not expired.
type TokenCodec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewTokenCodec returns a codec signing with secretKey. An empty key is
// rejected with common.ErrMissingSecret; a non-positive validity falls back
// to DefaultTokenValidity.
func NewTokenCodec(secretKey []byte, validity time.Duration) (*TokenCodec, error) {
	if len(secretKey) == 0 {
		return nil, common.ErrMissingSecret
	}
	if validity <= 0 {
		validity = DefaultTokenValidity
	}
	return &TokenCodec{secret: secretKey, validity: validity, now: time.Now}, nil
}

// Validity reports the configured token lifetime.
func (c *TokenCodec) Validity() time.Duration { return c.validity }

// Mint signs a token for the given account.
func (c *TokenCodec) Mint(subjectID, identifier string) (string, error) {
	jti, err := common.MakeRandHexString(16)
	if err != nil {
		return "", fmt.Errorf("token id: %w", err)
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.validity)),
		},
		Email: identifier,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString. It performs no I/O.
//
// Errors: common.ErrMalformedToken when the token cannot be decoded,
// common.ErrInvalidSignature when the signature (or algorithm) does not
// match, common.ErrTokenExpired once the validity window has passed.
// Segments are decoded strictly, so a signature whose encoding is corrupted
// (an invalid character or non-zero trailing bits) is classed as malformed.
func (c *TokenCodec) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if claims.Subject == "" {
		return nil, common.ErrMalformedToken
	}

	id := &Identity{SubjectID: claims.Subject, Identifier: claims.Email}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		// bad signature, wrong algorithm, nbf in the future, missing exp
		return common.ErrInvalidSignature
	}
}
