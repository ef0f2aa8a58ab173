// Package namex provides small filename utilities used across the project.
package namex

import (
	"path/filepath"
	"strings"
)

// SanitizeFilename reduces an untrusted client filename to a form safe for
// the storage medium: the base name only, whitespace collapsed to
// underscores, and control or path-hostile characters stripped.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ' || r == '\t':
			b.WriteRune('_')
		case r == '/' || r == '\\' || r == ':' || r < 32 || r == 127:
			// drop
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "upload"
	}
	return out
}
