package boxscale

import (
	"fmt"
	"image"
	"image/color"
)

// Raster is a rectangular grid of pixels stored as a flat, row-major buffer
// holding 4 interleaved 8-bit channels (R, G, B, A, non-premultiplied) per pixel.
// The length of Pix is always Width*Height*4.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRaster allocates a zeroed raster of the given size.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: raster of %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}, nil
}

// NewRasterFromPix wraps an existing pixel buffer. The buffer is not copied.
func NewRasterFromPix(width, height int, pix []uint8) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: raster of %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: got %d samples, want %d", ErrInvalidBuffer, len(pix), width*height*4)
	}
	return &Raster{Width: width, Height: height, Pix: pix}, nil
}

// validate checks the raster invariants.
func (r *Raster) validate() error {
	if r == nil || r.Width <= 0 || r.Height <= 0 {
		return ErrInvalidDimensions
	}
	if len(r.Pix) != r.Width*r.Height*4 {
		return fmt.Errorf("%w: got %d samples, want %d", ErrInvalidBuffer, len(r.Pix), r.Width*r.Height*4)
	}
	return nil
}

// Bounds returns the raster rectangle with the min-point at (0, 0).
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// PixOffset returns the index of the first channel of the pixel at (x, y).
func (r *Raster) PixOffset(x, y int) int {
	return (y*r.Width + x) * 4
}

// At returns the color of the pixel at (x, y).
func (r *Raster) At(x, y int) color.NRGBA {
	if !(image.Pt(x, y).In(r.Bounds())) {
		return color.NRGBA{}
	}
	i := r.PixOffset(x, y)
	s := r.Pix[i : i+4 : i+4]
	return color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// Set changes the color of the pixel at (x, y).
func (r *Raster) Set(x, y int, c color.NRGBA) {
	if !(image.Pt(x, y).In(r.Bounds())) {
		return
	}
	i := r.PixOffset(x, y)
	s := r.Pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = c.R, c.G, c.B, c.A
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	pix := make([]uint8, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Width: r.Width, Height: r.Height, Pix: pix}
}

// Opaque reports whether every pixel has a fully opaque alpha channel.
func (r *Raster) Opaque() bool {
	for i := 3; i < len(r.Pix); i += 4 {
		if r.Pix[i] != 0xff {
			return false
		}
	}
	return true
}

// NRGBA copies the raster into a new *image.NRGBA.
func (r *Raster) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(r.Bounds())
	copy(dst.Pix, r.Pix)
	return dst
}

// RasterFromImage converts any image type to a raster with the min-point at (0, 0).
func RasterFromImage(img image.Image) *Raster {
	srcBounds := img.Bounds()
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstW := srcBounds.Dx()
	dstH := srcBounds.Dy()
	dst := &Raster{
		Width:  dstW,
		Height: dstH,
		Pix:    make([]uint8, dstW*dstH*4),
	}
	rowSize := dstW * 4

	switch src := img.(type) {
	case *image.NRGBA:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}
