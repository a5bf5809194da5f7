package usecase

import "errors"

// Sentinel errors shared by the query service, the dispatcher and the
// fetchers. The HTTP layer maps each one to a status code.
var (
	// ErrInvalidInput covers bad ids, limits, patches and pick scopes.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is a missing league, team, player, match or dispatch.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized rejects refresh and delete calls without the admin token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDependencyUnavailable means STRATZ, OpenDota or the dispatcher pool
	// cannot take the request right now.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
