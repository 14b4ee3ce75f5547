// Package format recognizes well known semantic string formats (email, uuid,
// date, ...) by full regex match. Detection is stateless; the registry is
// built once at init and scanned in registration order, first match wins.
package format

import "regexp"

type entry struct {
	re   *regexp.Regexp
	name string
}

// registry is keyed by type hint. Only "string" is populated today, but the
// shape leaves room for hinted numeric formats later.
var registry = map[string][]entry{
	"string": {
		{regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`), "email"},
		{regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`), "uuid"},
		{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), "date"},
		{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`), "date-time"},
		{regexp.MustCompile(`^(?i)https?://[^\s/$.?#].[^\s]*$`), "uri"},
		{regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\.){3}(?:25[0-5]|2[0-4]\d|[01]?\d\d?)$`), "ipv4"},
	},
}

// Detect returns the name of the first registered format whose pattern fully
// matches s, or "" when nothing matches. Partial matches never count.
func Detect(s, hint string) string {
	for _, e := range registry[hint] {
		if e.re.MatchString(s) {
			return e.name
		}
	}
	return ""
}

// DetectString is Detect with the "string" hint, the only hint in use.
func DetectString(s string) string {
	return Detect(s, "string")
}
