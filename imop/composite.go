// Package imop implements the Porter-Duff composition operations used for mixing
// a graphic element with its backdrop. The image/draw core package implements only
// the source-over-destination and source operators, this package covers the rest.
//
// The operators work on flat, non-premultiplied RGBA buffers, the same layout
// used by boxscale.Raster. It is mainly used to flatten images with transparent
// areas onto a solid background before encoding them to formats without alpha.
package imop

import (
	"errors"

	"github.com/esimov/boxscale/utils"
)

const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// ErrSizeMismatch is returned when the composited buffers do not have the same length.
var ErrSizeMismatch = errors.New("imop: buffers must have the same length")

// Composite holds the currently active composition operation.
type Composite struct {
	current string
	ops     []string
}

// InitOp initializes a new composition operation with SrcOver as the default.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops: []string{
			Clear,
			Copy,
			Dst,
			SrcOver,
			DstOver,
			SrcIn,
			DstIn,
			SrcOut,
			DstOut,
			SrcAtop,
			DstAtop,
			Xor,
		},
	}
}

// Set changes the current composition operation. Unsupported operations are ignored.
func (op *Composite) Set(cop string) {
	if utils.Contains(op.ops, cop) {
		op.current = cop
	}
}

// Get returns the currently active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// factors returns the fractions of the source and of the backdrop
// kept by the current operation.
func (op *Composite) factors(as, ab float64) (fa, fb float64) {
	switch op.current {
	case Clear:
		return 0, 0
	case Copy:
		return 1, 0
	case Dst:
		return 0, 1
	case SrcOver:
		return 1, 1 - as
	case DstOver:
		return 1 - ab, 1
	case SrcIn:
		return ab, 0
	case DstIn:
		return 0, as
	case SrcOut:
		return 1 - ab, 0
	case DstOut:
		return 0, 1 - as
	case SrcAtop:
		return ab, 1 - as
	case DstAtop:
		return 1 - ab, as
	case Xor:
		return 1 - ab, 1 - as
	}
	return 1, 1 - as
}

// Draw composites src over backdrop with the current operation and stores the
// result in dst. All three buffers hold non-premultiplied RGBA samples.
// dst may alias src or backdrop.
func (op *Composite) Draw(dst, src, backdrop []uint8) error {
	if len(src) != len(backdrop) || len(dst) != len(src) || len(src)%4 != 0 {
		return ErrSizeMismatch
	}

	for i := 0; i < len(src); i += 4 {
		s := src[i : i+4 : i+4]
		b := backdrop[i : i+4 : i+4]

		as := float64(s[3]) / 255
		ab := float64(b[3]) / 255
		fa, fb := op.factors(as, ab)

		ao := as*fa + ab*fb

		var out [4]uint8
		if ao > 0 {
			for c := 0; c < 3; c++ {
				cs := float64(s[c]) / 255
				cb := float64(b[c]) / 255
				// Premultiplied result converted back to straight alpha.
				co := (cs*as*fa + cb*ab*fb) / ao
				out[c] = toSample(co)
			}
			out[3] = toSample(ao)
		}
		copy(dst[i:i+4], out[:])
	}
	return nil
}

// toSample converts a normalized channel value to an 8-bit sample.
func toSample(v float64) uint8 {
	return uint8(utils.Clamp(v*255+0.5, 0, 255))
}
