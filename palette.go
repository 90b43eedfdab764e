package greenfield

import (
	"image"
	"image/color"

	"github.com/bodgit/greenfield/rgb"
	"github.com/ericpauley/go-quantize/quantize"
)

// Palette returns up to n colors representative of m, found by median cut.
func Palette(m image.Image, n int) []rgb.Color {
	if n < 1 {
		return nil
	}

	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, n), m)

	colors := make([]rgb.Color, 0, len(p))
	for _, c := range p {
		colors = append(colors, rgb.Model.Convert(c).(rgb.Color))
	}
	return colors
}
