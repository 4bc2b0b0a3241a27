package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreview_WindowSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  float64
	}{
		{"fits", 640, 480, 640, 480},
		{"wide", 2732, 768, 1366, 384},
		{"tall", 1000, 1536, 500, 768},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h := previewSize(tc.width, tc.height)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}
