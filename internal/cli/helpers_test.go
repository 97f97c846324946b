package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationArg(t *testing.T) {
	valid := map[string]int64{
		"1500":  1500,
		"25m":   1500,
		"1h30m": 5400,
		"90s":   90,
		" 0 ":   0,
		"-1":    -1,
		"-5m":   -300,
	}
	for in, want := range valid {
		got, err := parseDurationArg(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "soon", "1.5s", "250ms"} {
		_, err := parseDurationArg(in)
		assert.Error(t, err, in)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", formatDuration(45))
	assert.Equal(t, "25m 0s", formatDuration(1500))
	assert.Equal(t, "1h 1m 5s", formatDuration(3665))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "deep work", truncate("deep work", 10))
	assert.Equal(t, "deep wo...", truncate("deep work block", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
