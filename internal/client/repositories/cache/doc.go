// Package cache stores the client's offline snapshots in SQLite.
//
// # Overview
//
// Every resource the app shows (case list, companies, calendar, notification
// pages, case cards) is kept as one row of the cache_entries table:
//
//	key      TEXT PRIMARY KEY   logical resource id, e.g. "case_detail:482"
//	payload  BLOB               JSON snapshot
//	saved_at INTEGER            unix milliseconds of the last write
//
// Writes are full replacements. The repository knows nothing about the JSON
// inside; typed access lives in the cachestore package.
//
// # Semantics
//
//   - Get returns (nil, nil) when the key is absent.
//   - Put upserts the whole row.
//   - DeletePrefix removes a key family such as "notifications:page:".
//   - Clear wipes the table (login and logout).
//
// Errors are wrapped with the operation and key for context.
package cache
