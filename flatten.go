package boxscale

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/esimov/boxscale/imop"
)

// Flatten composites src over a solid background color and returns the result
// as a new raster. The source raster is left untouched.
func Flatten(src *Raster, bg color.NRGBA) (*Raster, error) {
	if err := src.validate(); err != nil {
		return nil, err
	}

	dst := &Raster{
		Width:  src.Width,
		Height: src.Height,
		Pix:    make([]uint8, len(src.Pix)),
	}
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i+0] = bg.R
		dst.Pix[i+1] = bg.G
		dst.Pix[i+2] = bg.B
		dst.Pix[i+3] = bg.A
	}

	op := imop.InitOp()
	op.Set(imop.SrcOver)
	if err := op.Draw(dst.Pix, src.Pix, dst.Pix); err != nil {
		return nil, err
	}
	return dst, nil
}

// ParseHexColor converts a #rgb, #rrggbb or #rrggbbaa string to a color.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if n := len(hex); n != 3 && n != 6 && n != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: unexpected length %d", s, n)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}

	switch len(hex) {
	case 3:
		return color.NRGBA{
			R: uint8(v>>8&0xf) * 0x11,
			G: uint8(v>>4&0xf) * 0x11,
			B: uint8(v&0xf) * 0x11,
			A: 0xff,
		}, nil
	case 6:
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
