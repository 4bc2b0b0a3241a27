package boxscale

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidDimensions is returned when a source or target dimension is not positive.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrEmptySampleRegion is returned when a destination pixel maps to no source pixel.
	ErrEmptySampleRegion = errors.New("empty sample region")
	// ErrInvalidBuffer is returned when the pixel buffer does not match the raster size.
	ErrInvalidBuffer = errors.New("pixel buffer does not match the raster dimensions")
)

// Rounding selects how a channel sum is divided by the number of sampled pixels.
type Rounding int

const (
	// Truncate discards the fractional part of the mean.
	Truncate Rounding = iota
	// RoundHalfEven rounds the mean to the nearest integer, ties to even.
	RoundHalfEven
)

// String implements the fmt.Stringer interface.
func (r Rounding) String() string {
	switch r {
	case Truncate:
		return "truncate"
	case RoundHalfEven:
		return "half_even"
	}
	return fmt.Sprintf("Rounding(%d)", int(r))
}

// ParseRounding converts a rounding mode name into its Rounding value.
func ParseRounding(s string) (Rounding, error) {
	switch s {
	case "", "truncate", "floor":
		return Truncate, nil
	case "half_even", "round":
		return RoundHalfEven, nil
	}
	return Truncate, fmt.Errorf("unknown rounding mode %q", s)
}

// Resampler converts a raster to a new resolution by area averaging (box filtering).
// The zero value is ready to use and runs sequentially with truncating division.
type Resampler struct {
	// Rounding is applied when dividing the channel sums by the sample count.
	Rounding Rounding
	// Strict reports destination pixels without any source pixel as ErrEmptySampleRegion.
	// Otherwise they take the source pixel their region starts in.
	Strict bool
	// Workers is the number of destination row bands resampled concurrently.
	// Values lower than 2 disable the concurrent path.
	Workers int
}

// span is the half-open [lo, hi) range of source indices averaged into one destination index.
type span struct {
	lo, hi int
}

// Resample resamples src to targetWidth x targetHeight with the zero value Resampler.
func Resample(src *Raster, targetWidth, targetHeight int) (*Raster, error) {
	var rs Resampler
	return rs.Resample(src, targetWidth, targetHeight)
}

// Resample returns a newly allocated raster of targetWidth x targetHeight where every
// pixel is the per channel mean of the source pixels its area covers.
//
// With kw = w1/w2 and kh = h1/h2 the destination pixel (j2, i2) averages the source
// columns j1 with ceil(j2*kw) <= j1 < (j2+1)*kw and the source rows i1 with
// ceil(i2*kh) <= i1 < (i2+1)*kh. The source raster is never modified.
func (rs *Resampler) Resample(src *Raster, targetWidth, targetHeight int) (*Raster, error) {
	if err := src.validate(); err != nil {
		return nil, fmt.Errorf("source raster: %w", err)
	}
	if targetWidth <= 0 || targetHeight <= 0 {
		return nil, fmt.Errorf("%w: target size %dx%d", ErrInvalidDimensions, targetWidth, targetHeight)
	}

	cols, err := axisSpans(src.Width, targetWidth, rs.Strict)
	if err != nil {
		return nil, fmt.Errorf("column %w", err)
	}
	rows, err := axisSpans(src.Height, targetHeight, rs.Strict)
	if err != nil {
		return nil, fmt.Errorf("row %w", err)
	}

	dst := &Raster{
		Width:  targetWidth,
		Height: targetHeight,
		Pix:    make([]uint8, targetWidth*targetHeight*4),
	}

	workers := min(rs.Workers, targetHeight)
	if workers < 2 {
		rs.resampleRows(src, dst, rows, cols, 0, targetHeight)
		return dst, nil
	}

	// Every band owns a disjoint range of destination rows.
	var g errgroup.Group
	g.SetLimit(workers)

	band := (targetHeight + workers - 1) / workers
	for y0 := 0; y0 < targetHeight; y0 += band {
		y1 := min(y0+band, targetHeight)
		g.Go(func() error {
			rs.resampleRows(src, dst, rows, cols, y0, y1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return dst, nil
}

// resampleRows fills the destination rows in the [y0, y1) range.
func (rs *Resampler) resampleRows(src, dst *Raster, rows, cols []span, y0, y1 int) {
	var (
		sum    [4]int
		stride = src.Width * 4
	)

	for i2 := y0; i2 < y1; i2++ {
		r := rows[i2]
		di := dst.PixOffset(0, i2)
		for _, c := range cols {
			sum = [4]int{}
			for i1 := r.lo; i1 < r.hi; i1++ {
				si := i1*stride + c.lo*4
				for j1 := c.lo; j1 < c.hi; j1++ {
					s := src.Pix[si : si+4 : si+4]
					sum[0] += int(s[0])
					sum[1] += int(s[1])
					sum[2] += int(s[2])
					sum[3] += int(s[3])
					si += 4
				}
			}
			n := (r.hi - r.lo) * (c.hi - c.lo)

			d := dst.Pix[di : di+4 : di+4]
			d[0] = rs.mean(sum[0], n)
			d[1] = rs.mean(sum[1], n)
			d[2] = rs.mean(sum[2], n)
			d[3] = rs.mean(sum[3], n)
			di += 4
		}
	}
}

// mean divides a channel sum by the sample count and clamps the result to a valid sample.
func (rs *Resampler) mean(sum, n int) uint8 {
	q := sum / n
	if rs.Rounding == RoundHalfEven {
		rem := sum % n
		if 2*rem > n || (2*rem == n && q%2 == 1) {
			q++
		}
	}
	if q > 0xff {
		return 0xff
	}
	if q < 0 {
		return 0
	}
	return uint8(q)
}

// axisSpans maps every destination index along one axis to its source range.
// With k = srcLen/dstLen, index i covers the source indices s with
// ceil(i*k) <= s < (i+1)*k. Both bounds are evaluated on integers, which keeps
// boundaries exact when k is not a whole number.
func axisSpans(srcLen, dstLen int, strict bool) ([]span, error) {
	spans := make([]span, dstLen)
	for i := range spans {
		lo := ceilDiv(i*srcLen, dstLen)
		hi := ceilDiv((i+1)*srcLen, dstLen)
		if lo >= hi {
			if strict {
				return nil, fmt.Errorf("%w: destination index %d of %d (source %d)",
					ErrEmptySampleRegion, i, dstLen, srcLen)
			}
			// Upscaling leaves some regions without a whole source pixel.
			// Those replicate the pixel the region lies in.
			lo = i * srcLen / dstLen
			hi = lo + 1
		}
		spans[i] = span{lo: lo, hi: hi}
	}
	return spans, nil
}

// ceilDiv returns ceil(a/b) for a >= 0 and b > 0.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
