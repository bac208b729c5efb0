package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "SPR#3", KnownKey("SPR", 3))
	assert.Equal(t, "SPR$unknown#-2", UnknownKey("SPR", -2))
	assert.True(t, IsUnknownKey("SPR$unknown#-1"))
	assert.False(t, IsUnknownKey("SPR#1"))
}

func TestNextSuffix(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		known   int
		unknown int
	}{
		{name: "no keys", known: 1, unknown: -1},
		{name: "gaps are not filled", keys: []string{"A#1", "A#4", "A#2"}, known: 5, unknown: -1},
		{name: "unknown keys count down", keys: []string{"A$unknown#-1", "A$unknown#-3"}, known: 1, unknown: -4},
		{name: "malformed keys are skipped", keys: []string{"A", "A#x", "A#2"}, known: 3, unknown: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.known, nextKnownSuffix(tt.keys))
			assert.Equal(t, tt.unknown, nextUnknownSuffix(tt.keys))
		})
	}
}
