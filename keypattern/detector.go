// Package keypattern decides whether the key set of a JSON object is really
// an index set in disguise (a "pseudo array"): all-numeric keys, UUIDs, ISO
// dates and so on. Each convention is one Detector; the orchestrator in
// detect.go resolves overlaps by priority.
package keypattern

import (
	"regexp"

	"github.com/google/uuid"
)

// Detector recognizes one key naming convention. Detectors are immutable and
// shared; higher Priority wins when several conventions cover the same keys.
type Detector struct {
	Name     string
	Priority int
	Comment  string

	body     string // anchor-free regex source, used as the patternProperties key
	re       *regexp.Regexp
	examples []string
	// confirm optionally double checks a regex match.
	confirm func(key string) bool
	// veto reports that an otherwise matching key set is described better
	// by a lower priority detector.
	veto func(keys []string) bool
}

func newDetector(name string, priority int, body, comment string, examples ...string) *Detector {
	return &Detector{
		Name:     name,
		Priority: priority,
		Comment:  comment,
		body:     body,
		re:       regexp.MustCompile(`^(?:` + body + `)$`),
		examples: examples,
	}
}

// Matches reports whether key fully matches the detector pattern.
func (d *Detector) Matches(key string) bool {
	if !d.re.MatchString(key) {
		return false
	}
	if d.confirm != nil {
		return d.confirm(key)
	}
	return true
}

// Body returns the anchor-free regex source. Callers anchor it themselves
// when they need a full-match pattern.
func (d *Detector) Body() string {
	return d.body
}

// ShouldConvert reports whether an object whose keys all match this detector
// should actually be collapsed under this pattern, rather than deferring to
// a lower priority detector.
func (d *Detector) ShouldConvert(keys []string) bool {
	if d.veto == nil {
		return true
	}
	return !d.veto(keys)
}

var plainDigits = regexp.MustCompile(`^[0-9]+$`)

// detectors holds every known detector in descending priority order. The
// slice is append-only; adding a convention means adding one entry here.
var detectors = func() []*Detector {
	ds := []*Detector{
		newDetector("uuid", 70,
			`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}`,
			"UUID keys",
			"550e8400-e29b-41d4-a716-446655440000",
			"6fa459ea-ee8a-3ca4-894e-db77e160355e"),
		newDetector("iso-datetime", 60,
			`\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?)?`,
			"ISO date or date-time keys",
			"2024-01-01",
			"2024-01-01T12:00:00Z"),
		newDetector("iso-code", 50,
			`([A-Z]{2,3}|[a-z]{2}-[A-Z]{2})`,
			"ISO country or locale code keys",
			"US", "GBR", "en-US"),
		newDetector("hex", 40,
			`0[xX][0-9a-fA-F]+`,
			"Hexadecimal keys",
			"0x1a3f", "0xFF"),
		newDetector("alphabetic", 30,
			`[a-zA-Z]+`,
			"Alphabetic keys",
			"a", "bc"),
		newDetector("signed-integer", 20,
			`-?[0-9]+`,
			"Signed integer keys",
			"-12", "7"),
		newDetector("positive-integer", 10,
			`[0-9]+`,
			"Numeric string keys",
			"0", "15"),
	}

	for _, d := range ds {
		switch d.Name {
		case "uuid":
			// Parsing double checks the variant bits after the regex
			// accepted the shape.
			d.confirm = func(key string) bool {
				_, err := uuid.Parse(key)
				return err == nil
			}
		case "signed-integer":
			// All plain positive digits defer to the more specific
			// positive-integer detector.
			d.veto = func(keys []string) bool {
				for _, k := range keys {
					if !plainDigits.MatchString(k) {
						return false
					}
				}
				return true
			}
		}
	}
	return ds
}()

// All returns every detector in descending priority order. The returned
// slice must not be mutated.
func All() []*Detector {
	return detectors
}

// ForBody returns the detector whose pattern body is exactly body, or nil.
func ForBody(body string) *Detector {
	for _, d := range detectors {
		if d.body == body {
			return d
		}
	}
	return nil
}
