package country

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xctd-glitch/trackng.app/models"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "US", Normalize("us"))
	assert.Equal(t, "DE", Normalize(" de "))
	assert.Equal(t, "GB", Normalize("GB"))

	// Everything malformed collapses to the sentinel
	for _, bad := range []string{"", "U", "USA", "1A", "u$", "??", "  "} {
		assert.Equal(t, Unknown, Normalize(bad), "input %q", bad)
	}
}

func TestAllowedModeAll(t *testing.T) {
	assert.True(t, Allowed("US", models.FilterAll, nil))
	assert.True(t, Allowed(Unknown, models.FilterAll, []string{"US"}))
}

func TestAllowedWhitelist(t *testing.T) {
	list := []string{"US", "de"}
	assert.True(t, Allowed("US", models.FilterWhitelist, list))
	assert.True(t, Allowed("DE", models.FilterWhitelist, list), "list entries are normalized before comparison")
	assert.False(t, Allowed("FR", models.FilterWhitelist, list))
	assert.False(t, Allowed(Unknown, models.FilterWhitelist, list))
}

func TestAllowedBlacklist(t *testing.T) {
	list := []string{"RU", "CN"}
	assert.False(t, Allowed("RU", models.FilterBlacklist, list))
	assert.True(t, Allowed("US", models.FilterBlacklist, list))
	assert.True(t, Allowed(Unknown, models.FilterBlacklist, list))

	// Sentinel on the blacklist blocks unknown traffic
	assert.False(t, Allowed(Unknown, models.FilterBlacklist, []string{"XX"}))
}

func TestMalformedCodeBehavesAsSentinel(t *testing.T) {
	// Malformed input, once normalized, must evaluate exactly like "XX"
	list := []string{"XX"}
	for _, bad := range []string{"ZZZ", "1", ""} {
		code := Normalize(bad)
		assert.True(t, Allowed(code, models.FilterWhitelist, list))
		assert.False(t, Allowed(code, models.FilterBlacklist, list))
	}
}
