// Package preview displays resampled images in a Gio window.
package preview

import (
	"image"
	"image/color"
	"math"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
)

const (
	maxScreenX = 1366
	maxScreenY = 768
)

var previewBkgColor = color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}

// previewSize returns the window size for an image of width x height.
// The aspect ratio is retained when the image does not fit the predefined window.
func previewSize(width, height int) (float64, float64) {
	w, h := float64(width), float64(height)
	if w > maxScreenX || h > maxScreenY {
		ratio := math.Min(maxScreenX/w, maxScreenY/h)
		w, h = w*ratio, h*ratio
	}
	return math.Round(w), math.Round(h)
}

// Show opens a Gio window displaying the resampled image and blocks
// until the window is closed or the ESC key is pressed.
// The caller must run app.Main on the main goroutine.
func Show(img image.Image, title string) error {
	width, height := previewSize(img.Bounds().Dx(), img.Bounds().Dy())

	w := app.NewWindow(
		app.Title(title),
		app.Size(unit.Dp(width), unit.Dp(height)),
	)

	var ops op.Ops
	src := paint.NewImageOp(img)

	for e := range w.Events() {
		switch e := e.(type) {
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)
			paint.Fill(gtx.Ops, previewBkgColor)

			widget.Image{
				Src:      src,
				Fit:      widget.Contain,
				Position: layout.Center,
				Scale:    1 / gtx.Metric.PxPerDp,
			}.Layout(gtx)

			e.Frame(gtx.Ops)
		case key.Event:
			if e.Name == key.NameEscape {
				w.Perform(system.ActionClose)
			}
		case system.DestroyEvent:
			return e.Err
		}
	}
	return nil
}
