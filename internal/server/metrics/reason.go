package metrics

import (
	"errors"

	"github.com/dmitrijs2005/fintrack/internal/common"
)

// ReasonFor maps an authentication error onto its rejection label.
func ReasonFor(err error) string {
	switch {
	case errors.Is(err, common.ErrMissingToken):
		return ReasonMissingToken
	case errors.Is(err, common.ErrMalformedToken):
		return ReasonMalformedToken
	case errors.Is(err, common.ErrInvalidSignature):
		return ReasonInvalidSignature
	case errors.Is(err, common.ErrTokenExpired):
		return ReasonExpiredToken
	case errors.Is(err, common.ErrUserNotFound):
		return ReasonUserNotFound
	default:
		return ReasonInternal
	}
}
