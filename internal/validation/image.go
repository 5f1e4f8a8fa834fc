// Package validation checks rendered images against the social card contract:
// fixed dimensions and a uniform dark edge with no white ribbon.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
)

// Contract constants shared with the renderer.
const (
	DefaultWidth     = 1200
	DefaultHeight    = 630
	DefaultTolerance = 10

	// sampleStride is the pixel spacing used when scanning an edge.
	sampleStride = 100
)

// RGB is an 8-bit color without alpha.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as a CSS hex string such as "#1a2332".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// EdgeColor is the background color of the social card template.
var EdgeColor = RGB{R: 26, G: 35, B: 50}

// Options configures an image validation.
type Options struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	CheckEdges bool `json:"check_edges"`
	EdgeColor  RGB  `json:"-"`
	Tolerance  int  `json:"-"`
}

// DefaultOptions returns the social card contract.
func DefaultOptions() Options {
	return Options{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		CheckEdges: true,
		EdgeColor:  EdgeColor,
		Tolerance:  DefaultTolerance,
	}
}

// Result collects validation findings. Valid is true iff Errors is empty.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func failed(msg string) Result {
	return Result{Valid: false, Errors: []string{msg}, Warnings: []string{}}
}

// ValidateImage checks the image at path. Problems are reported in the
// Result, never as an error.
func ValidateImage(path string, opts Options) Result {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return failed("Image file does not exist")
	}
	if err != nil {
		return failed(fmt.Sprintf("Failed to open image: %v", err))
	}
	defer func() { _ = f.Close() }()

	return validate(f, opts)
}

// ValidateImageBytes checks an encoded image held in memory.
func ValidateImageBytes(data []byte, opts Options) Result {
	if len(data) == 0 {
		return failed("Image file does not exist")
	}
	return validate(bytes.NewReader(data), opts)
}

func validate(r io.Reader, opts Options) Result {
	img, _, err := image.Decode(r)
	if err != nil {
		return failed(fmt.Sprintf("Failed to open image: %v", err))
	}
	return Check(img, opts)
}

// Check validates a decoded image.
func Check(img image.Image, opts Options) Result {
	errs := []string{}
	warnings := []string{}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width != opts.Width {
		errs = append(errs, fmt.Sprintf("Width is %d, expected %d", width, opts.Width))
	}
	if height != opts.Height {
		errs = append(errs, fmt.Sprintf("Height is %d, expected %d", height, opts.Height))
	}

	if opts.CheckEdges && hasColorChannels(img.ColorModel()) && width > 0 && height > 0 {
		for x := 0; x < width; x += sampleStride {
			pixel := pixelAt(img, bounds.Min.X+x, bounds.Max.Y-1)
			if !withinTolerance(pixel, opts.EdgeColor, opts.Tolerance) {
				errs = append(errs, fmt.Sprintf(
					"Bottom edge pixel at x=%d is %s, expected near %s (white ribbon detected?)",
					x, pixel, opts.EdgeColor))
				break
			}
		}

		for y := 0; y < height; y += sampleStride {
			pixel := pixelAt(img, bounds.Max.X-1, bounds.Min.Y+y)
			if !withinTolerance(pixel, opts.EdgeColor, opts.Tolerance) {
				warnings = append(warnings, fmt.Sprintf(
					"Right edge pixel at y=%d is %s, expected near %s",
					y, pixel, opts.EdgeColor))
				break
			}
		}
	}

	return Result{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}

// hasColorChannels reports whether the model carries RGB data. Grayscale and
// alpha-only models are not edge checked.
func hasColorChannels(m color.Model) bool {
	switch m {
	case color.GrayModel, color.Gray16Model, color.AlphaModel, color.Alpha16Model:
		return false
	}
	return true
}

func pixelAt(img image.Image, x, y int) RGB {
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return RGB{R: c.R, G: c.G, B: c.B}
}

func withinTolerance(actual, expected RGB, tolerance int) bool {
	return absDiff(actual.R, expected.R) <= tolerance &&
		absDiff(actual.G, expected.G) <= tolerance &&
		absDiff(actual.B, expected.B) <= tolerance
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
