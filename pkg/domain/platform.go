package domain

import "strings"

// platformAliases collapses driver-specific platform names onto canonical
// platform keys. Unknown names map to their lowercase form.
var platformAliases = map[string]string{
	"playwright": "web",
	"browser":    "web",
	"clubapp":    "club",
	"club-app":   "club",
}

// CanonicalPlatform normalizes a platform identifier.
func CanonicalPlatform(p string) string {
	key := strings.ToLower(strings.TrimSpace(p))
	if canon, ok := platformAliases[key]; ok {
		return canon
	}
	return key
}

// SamePlatform reports whether two platform identifiers normalize to the
// same canonical key.
func SamePlatform(a, b string) bool {
	return CanonicalPlatform(a) == CanonicalPlatform(b)
}
