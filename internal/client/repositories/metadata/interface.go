// Package metadata keeps small session facts outside the resource cache:
// the installation id, the account fingerprint, the push subscriber id.
//
// Unlike cache_entries these rows survive a cache wipe; the session manager
// deletes SessionKeys on logout and login.
package metadata

import (
	"context"
)

const (
	KeyInstallationID   = "installation_id"
	KeyAccount          = "account"
	KeyToken            = "token"
	KeyPushSubscriberID = "push_subscriber_id"
	KeyPushForwarded    = "push_forwarded"
)

// SessionKeys are the rows bound to the signed-in account. Installation
// and push subscriber ids belong to the device and are not listed.
func SessionKeys() []string {
	return []string{KeyToken, KeyAccount, KeyPushForwarded}
}

// Repository stores text values by key. Absent keys read as "".
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Lookup reads several keys at once. Absent keys are missing from the map.
	Lookup(ctx context.Context, keys ...string) (map[string]string, error)
	Delete(ctx context.Context, keys ...string) error
}
