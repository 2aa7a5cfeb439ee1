// Package key provides API credential value types and pure validation
// functions. This package has NO dependencies on I/O or external packages.
package key

import (
	"strings"
	"time"
)

// Recognized credential prefixes. A credential that does not start with
// one of these is rejected before any network call is made.
const (
	PrefixProjectLive = "hk_proj_live_"
	PrefixProjectTest = "hk_proj_test_"
	PrefixLive        = "hk_live_"
	PrefixTest        = "hk_test_"
)

// Prefixes lists every recognized credential prefix. Order matters:
// project-scoped prefixes come first so that HasPrefix checks match the
// longest form before the shorter "hk_live_"/"hk_test_" forms.
var Prefixes = []string{
	PrefixProjectLive,
	PrefixProjectTest,
	PrefixLive,
	PrefixTest,
}

// Key represents an API key record as reported by the service
// (immutable value type). The secret portion is never present here;
// see the client's CreatedKey for the one-time secret.
type Key struct {
	ID        string
	Name      string
	Prefix    string // Display prefix, e.g. "hk_live_abc1"
	Scopes    []string
	Metadata  map[string]string
	ExpiresAt *time.Time // nil = never expires
	RevokedAt *time.Time // nil = not revoked
	CreatedAt time.Time
	LastUsed  *time.Time
}

// ValidFormat reports whether a raw credential carries one of the
// recognized prefixes. This is a PURE function.
func ValidFormat(credential string) bool {
	if credential == "" {
		return false
	}
	for _, p := range Prefixes {
		if strings.HasPrefix(credential, p) {
			return true
		}
	}
	return false
}

// IsLive reports whether the credential belongs to the live
// environment. This is a PURE function.
func IsLive(credential string) bool {
	return strings.HasPrefix(credential, PrefixProjectLive) ||
		strings.HasPrefix(credential, PrefixLive)
}

// Mask returns a display-safe form of a credential: the first 8
// characters, an ellipsis, and the last 4. Credentials of 12 characters
// or fewer are masked entirely so that prefix and suffix never overlap.
func Mask(credential string) string {
	if len(credential) <= 12 {
		return strings.Repeat("*", len(credential))
	}
	return credential[:8] + "..." + credential[len(credential)-4:]
}
