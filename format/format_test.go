package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectKnownFormats(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"john.doe@example.com", "email"},
		{"550e8400-e29b-41d4-a716-446655440000", "uuid"},
		{"550E8400-E29B-41D4-A716-446655440000", "uuid"},
		{"2024-01-31", "date"},
		{"2024-01-31T12:00:00Z", "date-time"},
		{"2024-01-31T12:00:00.123+02:00", "date-time"},
		{"https://example.com/profile/123", "uri"},
		{"http://example.com", "uri"},
		{"192.168.1.42", "ipv4"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, DetectString(c.in), c.in)
	}
}

func TestDetectRequiresFullMatch(t *testing.T) {
	assert.Equal(t, "", DetectString("mail me at john.doe@example.com please"))
	assert.Equal(t, "", DetectString("2024-01-31 extra"))
	assert.Equal(t, "", DetectString("999.999.999.999"))
	assert.Equal(t, "", DetectString(""))
	assert.Equal(t, "", DetectString("plain text"))
}

func TestDetectFirstRegisteredWins(t *testing.T) {
	// A bare date also prefixes the date-time pattern; the date entry is
	// registered first and must win.
	assert.Equal(t, "date", DetectString("1990-05-15"))
}

func TestDetectUnknownHint(t *testing.T) {
	assert.Equal(t, "", Detect("42", "number"))
}
