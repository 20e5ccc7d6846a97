package domain

import (
	"regexp"
	"strings"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRuns      = regexp.MustCompile(`\s+`)
)

// SanitizeFilename maps an arbitrary display name to a filesystem-safe
// token. Reserved characters become underscores and whitespace runs
// collapse to a single underscore. Applied before building any download
// filename ("name.geojson", "name.kml").
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = whitespaceRuns.ReplaceAllString(name, "_")
	return strings.TrimSpace(name)
}
