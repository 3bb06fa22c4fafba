// Package client contains the remote API client of LegalTrack and the
// bootstrap of the local cache database.
//
// # Overview
//
// Client is the transport-agnostic interface the rest of the app depends on;
// HTTPClient implements it over the backend's JSON endpoints. Every request
// carries the session token in the Authorization header and a fresh
// X-Request-ID.
//
// # Errors
//
// Failures are classified into sentinels usable with errors.Is:
//
//	ErrUnavailable   network failure, timeout, 5xx
//	ErrUnauthorized  401 / 403
//	ErrNotFound      404
//	ErrNoData        2xx with the data field missing
//	ErrDecode        2xx with a body of unexpected shape
//
// Other statuses become *HTTPError. context.Canceled is returned as is so
// that controllers can ignore superseded requests. UserMessage maps an error
// to the copy shown on an empty, failed screen.
//
// # Database
//
// InitDatabase opens the pure-Go SQLite file and runs the embedded goose
// migrations (cache_entries, metadata).
package client
