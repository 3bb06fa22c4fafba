// Package models defines the client-side data models of LegalTrack: cache
// rows and the JSON shapes returned by the monitoring backend.
package models

import "time"

// CacheEntry is one row of the local key-value cache.
type CacheEntry struct {
	// Key is the logical resource identifier, e.g. "cases" or "case_detail:482".
	Key string

	// Payload is the JSON snapshot of the resource.
	Payload []byte

	// SavedAt is the time of the last write.
	SavedAt time.Time
}
