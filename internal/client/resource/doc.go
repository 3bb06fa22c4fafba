// Package resource implements the cache-first load cycle shared by every
// screen of the app.
//
// # Overview
//
// A Controller owns one resource key (for example "cases" or
// "case_detail:482") and runs this cycle on each Load:
//
//	Idle -> ShowingCache? -> Fetching -> {Success, Failure}
//
//   - A cached snapshot is published first. While it is visible the state
//     says Refreshing, never Loading.
//   - When the Online reporter says offline, the cycle stops after the cache.
//   - Success replaces the state, rewrites the cache and stamps LastSync.
//   - Failure with data on screen is swallowed. Failure on an empty screen
//     retries the cache once, then sets Err and Message.
//
// # Generations
//
// Every Load takes a new generation number and cancels the previous
// in-flight fetch. A result is applied only if its generation is still the
// latest, so a slow response can never overwrite a newer one. Cancellation
// (a newer Load, an offline transition, Reset) is not an error: it leaves
// data, error and cache untouched.
//
// Controllers are independent; there is no lock shared between resources.
package resource
