/*
Package image implements the greenfield image container.

A greenfield image stores each RGB color at a reduced, per-channel bit
precision described by a quantization.Scheme. All fields are big-endian and
the file is laid out as:

	bits  field
	64    magic value "grnfld42"
	32    width
	32    height
	12    scheme; 4 bits each for red, green and blue
	...   width * height colors, each (r + g + b) bits, in row-major order

Colors are packed with no padding between channels or colors; only the final
byte is padded with zero bits. There is no further compression so a 640 by
480 image using a (5, 6, 5) scheme is 614418 bytes.

Colors are quantized once, when the Image is created, and the Image stores
the quantized values from then on.
*/
package image

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"iter"
	"math"

	"github.com/bodgit/greenfield/quantization"
	"github.com/bodgit/greenfield/rgb"
)

// Magic is the value every greenfield image starts with.
const Magic = "grnfld42"

const (
	magicBits     = 64
	dimensionBits = 32
	levelBits     = 4
	headerBits    = magicBits + 2*dimensionBits + 3*levelBits
	headerBytes   = (headerBits + 7) >> 3
)

var (
	// ErrDimensionMismatch is returned when the number of colors does not
	// match the width and height of an image
	ErrDimensionMismatch = errors.New("image: dimension mismatch")
	// ErrMalformedHeader is returned when the header of an image cannot be
	// parsed
	ErrMalformedHeader = errors.New("image: malformed header")
)

// Image is a greenfield image. It implements the image.Image interface,
// returning dequantized colors from At.
type Image struct {
	width, height int
	scheme        quantization.Scheme
	pix           []rgb.Color
}

// Pixel is a stored color along with its coordinates.
type Pixel struct {
	X, Y  int
	Color rgb.Color
}

func dimensionError(found, expected uint64) error {
	return fmt.Errorf("%w: %d pixels found (expected %d)", ErrDimensionMismatch, found, expected)
}

// New returns a new Image of the given dimensions. Every color is quantized
// with s, there must be exactly width * height colors in row-major order.
func New(width, height int, s quantization.Scheme, colors []rgb.Color) (*Image, error) {
	if width < 0 || height < 0 || uint64(width) > math.MaxUint32 || uint64(height) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrDimensionMismatch, width, height)
	}
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %v", quantization.ErrInvalidLevel, s)
	}

	if expected := uint64(width) * uint64(height); uint64(len(colors)) != expected {
		return nil, dimensionError(uint64(len(colors)), expected)
	}

	pix := make([]rgb.Color, len(colors))
	for i, c := range colors {
		pix[i] = s.Quantize(c)
	}

	return &Image{
		width:  width,
		height: height,
		scheme: s,
		pix:    pix,
	}, nil
}

// Dimensions returns the width and height of the image.
func (m *Image) Dimensions() (int, int) {
	return m.width, m.height
}

// Scheme returns the quantization scheme of the image.
func (m *Image) Scheme() quantization.Scheme {
	return m.scheme
}

// Len returns the number of stored colors.
func (m *Image) Len() int {
	return len(m.pix)
}

// Colors iterates over the stored, quantized, colors in row-major order.
func (m *Image) Colors() iter.Seq[rgb.Color] {
	return func(yield func(rgb.Color) bool) {
		for _, c := range m.pix {
			if !yield(c) {
				return
			}
		}
	}
}

// Pixels iterates over the stored colors along with their coordinates.
func (m *Image) Pixels() iter.Seq[Pixel] {
	return func(yield func(Pixel) bool) {
		for i, c := range m.pix {
			if !yield(Pixel{X: i % m.width, Y: i / m.width, Color: c}) {
				return
			}
		}
	}
}

// Bytes iterates over the red, green and blue bytes of each stored color.
// This is the unpacked form, three bytes per color regardless of the scheme.
func (m *Image) Bytes() iter.Seq[byte] {
	return func(yield func(byte) bool) {
		for _, c := range m.pix {
			for _, b := range c.Bytes() {
				if !yield(b) {
					return
				}
			}
		}
	}
}

// ColorModel implements the image.Image interface.
func (m *Image) ColorModel() color.Model {
	return rgb.Model
}

// Bounds implements the image.Image interface.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// At implements the image.Image interface. The returned color is the
// dequantized stored color.
func (m *Image) At(x, y int) color.Color {
	return m.RGBAt(x, y)
}

// RGBAt returns the dequantized color at (x, y).
func (m *Image) RGBAt(x, y int) rgb.Color {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return rgb.Color{}
	}
	return m.scheme.Dequantize(m.pix[y*m.width+x])
}

func (m *Image) String() string {
	return fmt.Sprintf("[%dx%d] %v", m.width, m.height, m.scheme)
}
