package boxscale

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/esimov/boxscale/utils"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when the destination extension has no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// defaultQuality is the JPEG quality used when none is provided.
const defaultQuality = 100

// SourceExtensions lists the file extensions picked up when resizing a directory.
var SourceExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

// DestExtensions lists the file extensions an image can be encoded to.
var DestExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff"}

// decodeImg decodes an image, applying the EXIF orientation when present.
func decodeImg(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("could not decode the source image: %w", err)
	}
	return img, nil
}

// checkImageFile sniffs the file content and refuses anything which is not an image.
func checkImageFile(src string) error {
	ctype, err := utils.DetectContentType(src)
	if err != nil {
		return fmt.Errorf("could not open the image file: %w", err)
	}
	// TIFF is not sniffed by net/http.
	ext := strings.ToLower(filepath.Ext(src))
	if !strings.Contains(ctype, "image") && ext != ".tif" && ext != ".tiff" {
		return fmt.Errorf("%s is not an image file (%s)", filepath.Base(src), ctype)
	}
	return nil
}

// outputFormat returns the encoding format for the destination writer.
// Files are encoded according to their extension, anything else as JPEG.
func outputFormat(w io.Writer) (imaging.Format, error) {
	f, ok := w.(*os.File)
	if !ok {
		return imaging.JPEG, nil
	}
	return formatFromName(f.Name())
}

// formatFromName resolves the encoding format from a file name.
// Files without extension, including stdout, are encoded as JPEG.
func formatFromName(name string) (imaging.Format, error) {
	if filepath.Ext(name) == "" {
		return imaging.JPEG, nil
	}
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return imaging.JPEG, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
	return format, nil
}

// encodeImg encodes an image to a destination of type io.Writer.
func encodeImg(w io.Writer, img image.Image, format imaging.Format, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("could not encode the %s image: %w", format, err)
	}
	return nil
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	return utils.Contains(extensions, strings.ToLower(ext))
}
