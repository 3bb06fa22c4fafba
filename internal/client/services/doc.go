// Package services holds the screen-level services of the client: the
// monitoring list (cases and companies), calendar, case details and delays.
//
// Each service wraps one or more resource.Controller values, so all of them
// share the same cache-first behaviour. Services are constructed explicitly
// and registered with the session manager for Reset on login and logout.
package services
