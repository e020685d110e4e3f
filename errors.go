package goGate

import "errors"

var (
	// ErrUnauthorized is returned by [Engine.RequireSession] when the request carries no session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned by [Engine.RequireRole] when the session role is not allowed.
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownRole is returned when a role value is outside the fixed enumeration.
	ErrUnknownRole = errors.New("unknown role")
	// ErrRoleTableInvalid is returned when a role table is not total, injective, and prefix-free.
	ErrRoleTableInvalid = errors.New("invalid role table")
	// ErrInvalidConfig wraps every [Config.Validate] failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrSessionCheckFailed marks a session check that could not confirm identity.
	ErrSessionCheckFailed = errors.New("session check failed")
	// ErrSessionBudgetExceeded is returned when the per-client session check budget is exhausted.
	ErrSessionBudgetExceeded = errors.New("session check budget exceeded")
	// ErrEngineNotReady is returned by methods called on a nil or closed [Engine].
	ErrEngineNotReady = errors.New("engine not initialized")
)
