package auth

import (
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/common"
)

// ParseBearer extracts the token from an "Authorization: Bearer <token>"
// value. Anything else, including an empty token, is common.ErrMissingToken.
func ParseBearer(value string) (string, error) {
	if !strings.HasPrefix(value, common.BearerPrefix) {
		return "", common.ErrMissingToken
	}
	token := strings.TrimSpace(value[len(common.BearerPrefix):])
	if token == "" {
		return "", common.ErrMissingToken
	}
	return token, nil
}
