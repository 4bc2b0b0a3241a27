package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUtils_MinMax(t *testing.T) {
	assert.Equal(t, 2, Min(2, 7))
	assert.Equal(t, 2, Min(7, 2))
	assert.Equal(t, 7, Max(2, 7))
	assert.Equal(t, 0.5, Max(0.25, 0.5))
	assert.Equal(t, 3, Abs(-3))
	assert.Equal(t, 255, Clamp(300, 0, 255))
	assert.Equal(t, 0, Clamp(-4, 0, 255))
	assert.Equal(t, 18, Clamp(18, 0, 255))
}

func TestUtils_Contains(t *testing.T) {
	exts := []string{".jpg", ".png"}
	assert.True(t, Contains(exts, ".png"))
	assert.False(t, Contains(exts, ".gif"))
}

func TestUtils_FormatTime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.50s"},
		{2*time.Minute + 3*time.Second, "2m 3.00s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h 2m 3.00s"},
		{26*time.Hour + 3*time.Second, "1d 2h 0m 3.00s"},
		{2 * time.Hour, "2h 0m 0.00s"},
		{49*time.Hour + 30*time.Minute + 1500*time.Millisecond, "2d 1h 30m 1.50s"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatTime(tc.d))
	}
}

func TestUtils_DecorateText(t *testing.T) {
	assert.Equal(t, ErrorColor+"failed"+DefaultColor, DecorateText("failed", ErrorMessage))
	assert.Equal(t, "plain", DecorateText("plain", MessageType(42)))
	assert.Equal(t, "640x480", FormatSize(640, 480))
}
