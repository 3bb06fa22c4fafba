// Package cli provides the legaltrack command-line client.
//
// It wires configuration, the local cache database, the API client and the
// sync layer (resource controllers, notification feed, prefetcher,
// connectivity observer) behind a cobra command tree. Every read command
// prints cached data first when the backend is unreachable.
//
// Typical flow:
//
//	legaltrack login
//	legaltrack cases
//	legaltrack notifications --pages 2
//	legaltrack watch --metrics-addr :9100
//
// The tree is built by NewRootCommand; App holds the wired components for
// the lifetime of one command.
package cli
