package boxscale

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/esimov/boxscale/utils"
	"github.com/rs/zerolog/log"
)

// defaultBackground is used to flatten transparent images encoded to formats without alpha.
var defaultBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Processor options
type Processor struct {
	// Resampler holds the area averaging options.
	Resampler Resampler
	// Background, when set, is the hex color the result is composited on.
	Background string
	// Quality is the JPEG encoding quality (1-100).
	Quality    int
	NewWidth   int
	NewHeight  int
	Percentage bool
	Square     bool
	KeepRatio  bool
	Preview    bool
	Spinner    *utils.Spinner
}

// TargetSize resolves the destination size of a width x height source image
// from the processor options.
func (p *Processor) TargetSize(width, height int) (int, int, error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: source size %dx%d", ErrInvalidDimensions, width, height)
	}
	if p.NewWidth < 0 || p.NewHeight < 0 {
		return 0, 0, fmt.Errorf("%w: negative target size %dx%d", ErrInvalidDimensions, p.NewWidth, p.NewHeight)
	}
	if p.NewWidth == 0 && p.NewHeight == 0 {
		return 0, 0, fmt.Errorf("%w: please provide a new width or height", ErrInvalidDimensions)
	}

	nw, nh := p.NewWidth, p.NewHeight

	// Use the Percentage flag only for shrinking the image.
	if p.Percentage {
		if nw > 100 || nh > 100 {
			return 0, 0, errors.New("cannot use the percentage flag for image enlargement")
		}
		if nw > 0 {
			nw = scaleDim(width, float64(nw)/100)
		}
		if nh > 0 {
			nh = scaleDim(height, float64(nh)/100)
		}
	}

	// When the square option is used the image will be resized to a square based on the shortest edge.
	if p.Square {
		if p.NewWidth == 0 || p.NewHeight == 0 {
			return 0, 0, errors.New("please provide a new WIDTH and HEIGHT when using the square option")
		}
		nw = utils.Min(nw, nh)
		nh = nw
	}

	// A missing dimension either follows the aspect ratio or keeps the source size.
	switch {
	case nw == 0 && p.KeepRatio:
		nw = scaleDim(width, float64(nh)/float64(height))
	case nw == 0:
		nw = width
	case nh == 0 && p.KeepRatio:
		nh = scaleDim(height, float64(nw)/float64(width))
	case nh == 0:
		nh = height
	}

	return nw, nh, nil
}

// scaleDim multiplies a dimension by a factor, rounding to the nearest
// integer and never going below one pixel.
func scaleDim(dim int, factor float64) int {
	return utils.Max(int(math.Round(float64(dim)*factor)), 1)
}

// Resize converts the image to a raster and resamples it to the size
// resolved by TargetSize.
func (p *Processor) Resize(img image.Image) (*Raster, error) {
	src := RasterFromImage(img)

	nw, nh, err := p.TargetSize(src.Width, src.Height)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("source", utils.FormatSize(src.Width, src.Height)).
		Str("target", utils.FormatSize(nw, nh)).
		Stringer("rounding", p.Resampler.Rounding).
		Int("workers", p.Resampler.Workers).
		Msg("resampling image")

	return p.Resampler.Resample(src, nw, nh)
}

// flatten composites the raster on the background color when one is configured,
// or on white when the output format cannot store transparency.
func (p *Processor) flatten(res *Raster, format imaging.Format) (*Raster, error) {
	bg := defaultBackground
	switch {
	case p.Background != "":
		c, err := ParseHexColor(p.Background)
		if err != nil {
			return nil, err
		}
		bg = c
	case format == imaging.JPEG && !res.Opaque():
	default:
		return res, nil
	}
	return Flatten(res, bg)
}

// Process decodes the image read from r, resamples it and encodes the result into w.
// We are using the io package, since we can provide different input and output types,
// as long as they implement the io.Reader and io.Writer interface.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	_, err := p.process(r, w)
	return err
}

// process runs the whole pipeline and returns the encoded raster.
func (p *Processor) process(r io.Reader, w io.Writer) (*Raster, error) {
	format, err := outputFormat(w)
	if err != nil {
		return nil, err
	}

	src, err := decodeImg(r)
	if err != nil {
		return nil, err
	}

	res, err := p.Resize(src)
	if err != nil {
		return nil, err
	}

	res, err = p.flatten(res, format)
	if err != nil {
		return nil, err
	}

	if err := encodeImg(w, res.NRGBA(), format, p.Quality); err != nil {
		return nil, err
	}
	return res, nil
}
