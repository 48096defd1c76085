package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Clients for external services
// (registry, ledger gateway, redis, kafka) return these, optionally wrapped,
// so providers can classify a failure without parsing messages.
//
// - ErrNotFound: the external service answered definitively that the record does not exist
// - ErrUnavailable: the service could not be reached or answered with a server error
// - ErrBadResponse: the service answered but the payload could not be understood
// - ErrNotConfigured: the client lacks the configuration needed to make the call
var (
	ErrNotFound      = errors.New("not found")
	ErrUnavailable   = errors.New("unavailable")
	ErrBadResponse   = errors.New("bad response")
	ErrNotConfigured = errors.New("not configured")
)
