package boxscale

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_TargetSize(t *testing.T) {
	tests := []struct {
		name         string
		proc         Processor
		wantW, wantH int
		wantErr      bool
	}{
		{"width only keeps height", Processor{NewWidth: 50}, 50, 50, false},
		{"height only keeps width", Processor{NewHeight: 20}, 100, 20, false},
		{"width with ratio", Processor{NewWidth: 50, KeepRatio: true}, 50, 25, false},
		{"height with ratio", Processor{NewHeight: 10, KeepRatio: true}, 20, 10, false},
		{"both dimensions", Processor{NewWidth: 30, NewHeight: 40}, 30, 40, false},
		{"enlarge", Processor{NewWidth: 300, NewHeight: 150}, 300, 150, false},
		{"percentage", Processor{NewWidth: 50, NewHeight: 10, Percentage: true}, 50, 5, false},
		{"percentage width only", Processor{NewWidth: 25, Percentage: true}, 25, 50, false},
		{"percentage with ratio", Processor{NewWidth: 25, Percentage: true, KeepRatio: true}, 25, 13, false},
		{"percentage never below one pixel", Processor{NewWidth: 1, NewHeight: 1, Percentage: true}, 1, 1, false},
		{"percentage enlargement", Processor{NewWidth: 150, Percentage: true}, 0, 0, true},
		{"square", Processor{NewWidth: 80, NewHeight: 40, Square: true}, 40, 40, false},
		{"square needs both sides", Processor{NewWidth: 80, Square: true}, 0, 0, true},
		{"no target", Processor{}, 0, 0, true},
		{"negative target", Processor{NewWidth: -1, NewHeight: 10}, 0, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h, err := tc.proc.TargetSize(100, 50)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}

	_, _, err := (&Processor{NewWidth: 10}).TargetSize(0, 10)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestProcessor_Resize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for i := range img.Pix {
		img.Pix[i] = 0x40
	}

	p := &Processor{NewWidth: 4, NewHeight: 3}
	res, err := p.Resize(img)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Width)
	assert.Equal(t, 3, res.Height)
	for _, v := range res.Pix {
		assert.Equal(t, uint8(0x40), v)
	}

	p = &Processor{NewWidth: 5, NewHeight: 6, Resampler: Resampler{Strict: true}}
	_, err = p.Resize(img)
	assert.NoError(t, err)

	p = &Processor{NewWidth: 12, NewHeight: 6, Resampler: Resampler{Strict: true}}
	_, err = p.Resize(img)
	assert.ErrorIs(t, err, ErrEmptySampleRegion)
}

func TestProcessor_ProcessEncodesJPEGToWriters(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			// Fully transparent left half, opaque blue right half.
			if x >= 10 {
				src.SetNRGBA(x, y, color.NRGBA{B: 0xff, A: 0xff})
			}
		}
	}
	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, src))

	var out bytes.Buffer
	p := &Processor{NewWidth: 10, NewHeight: 5, Quality: 90}
	require.NoError(t, p.Process(&in, &out))

	img, format, err := image.Decode(&out)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, 10, 5), img.Bounds())

	// The transparent area is flattened onto white.
	r, g, b, _ := img.At(1, 2).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestProcessor_ProcessWithBackground(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, src))

	var out bytes.Buffer
	p := &Processor{NewWidth: 2, NewHeight: 2, Background: "#000"}
	require.NoError(t, p.Process(&in, &out))

	img, _, err := image.Decode(&out)
	require.NoError(t, err)
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Less(t, r>>8, uint32(16))
	assert.Less(t, g>>8, uint32(16))
	assert.Less(t, b>>8, uint32(16))

	in.Reset()
	require.NoError(t, png.Encode(&in, src))
	p.Background = "#nothex"
	assert.Error(t, p.Process(&in, &out))
}

func TestProcessor_ProcessInvalidInput(t *testing.T) {
	var out bytes.Buffer
	p := &Processor{NewWidth: 2}
	assert.Error(t, p.Process(bytes.NewReader([]byte("garbage")), &out))
	assert.Zero(t, out.Len())
}
