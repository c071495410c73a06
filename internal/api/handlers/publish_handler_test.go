package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHashtags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"comma separated", "#travel, #summer", []string{"travel", "summer"}},
		{"whitespace separated", "travel summer\nbeach", []string{"travel", "summer", "beach"}},
		{"bare hash dropped", "# #travel", []string{"travel"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitHashtags(tt.raw))
		})
	}
}

func TestParseScheduledTime(t *testing.T) {
	got, err := parseScheduledTime("2026-09-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC), got.UTC())

	got, err = parseScheduledTime("2026-09-01T10:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 10, 30, 0, 0, time.Local), got)

	_, err = parseScheduledTime("next tuesday")
	assert.Error(t, err)
}
