package ledger

import (
	"strings"
	"time"
)

// GenerateAccountCode derives a code from the first three characters of the
// account name uppercased plus a UTC timestamp at second precision. Two
// accounts sharing a name prefix within the same second collide; uniqueness
// is ultimately enforced by the storage layer's constraint on code.
func GenerateAccountCode(name string, now time.Time) string {
	// Prefix is counted in runes so multi-byte names stay valid UTF-8.
	prefix := []rune(name)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return strings.ToUpper(string(prefix)) + now.UTC().Format("20060102150405")
}
