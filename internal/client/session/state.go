// Package session is the client-side session state machine and the gate
// protected commands consult before running.
package session

import "github.com/dmitrijs2005/fintrack/internal/client/models"

// Status is the phase of the client session.
type Status int

const (
	Unauthenticated Status = iota
	Initializing
	Authenticating
	Authenticated
	Failed
)

func (s Status) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Initializing:
		return "initializing"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the single view of the session handed to the UI. Err is a
// user-facing message, empty when there is nothing to report.
type State struct {
	Status Status
	Token  string
	User   *models.User
	Err    string
}
