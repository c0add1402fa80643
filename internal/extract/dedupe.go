package extract

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashCode returns a lowercase hex SHA-256 of the fragment body. The language
// tag is deliberately excluded from the identity key.
func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Dedupe removes fragments whose code bodies hash identically, keeping the
// first occurrence and preserving the relative order of the rest.
func Dedupe(frags []Fragment) []Fragment {
	if len(frags) == 0 {
		return frags
	}
	seen := make(map[string]struct{}, len(frags))
	out := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		key := hashCode(f.Code)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}
