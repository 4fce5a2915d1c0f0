// Package common contains shared constants and sentinel errors used across
// FinTrack components.
package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the bearer token.
	AuthorizationHeaderName = "Authorization"

	// AuthorizationMetadataKey is the gRPC metadata key carrying the bearer token.
	// gRPC lowercases metadata keys.
	AuthorizationMetadataKey = "authorization"

	// BearerPrefix precedes the token inside the authorization value.
	BearerPrefix = "Bearer "
)

// Generic messages returned to callers. Internal reasons stay in the logs.
const (
	MsgAccessTokenRequired = "Access token required"
	MsgInvalidToken        = "Invalid token"
	MsgUserNotFound        = "User not found"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgInternalError       = "Internal server error"
)
