// Package term renders greenfield colors, pixels and images for a truecolor
// terminal. Colors are dropped automatically when stdout is not a terminal.
package term

import (
	"fmt"
	"strings"

	gfimage "github.com/bodgit/greenfield/image"
	"github.com/bodgit/greenfield/rgb"
	"github.com/fatih/color"
)

func foreground(c rgb.Color) *color.Color {
	return color.RGB(int(c.R), int(c.G), int(c.B))
}

// Color returns c as "#rrggbb" drawn in c.
func Color(c rgb.Color) string {
	return foreground(c).Sprint(c.String())
}

// Swatch returns a two cell block filled with c.
func Swatch(c rgb.Color) string {
	return color.BgRGB(int(c.R), int(c.G), int(c.B)).Sprint("  ")
}

// Pixel returns the coordinates of p as "(x,y)" drawn in the pixel color. The
// color is dequantized with the scheme of the image the pixel came from.
func Pixel(m *gfimage.Image, p gfimage.Pixel) string {
	return foreground(m.Scheme().Dequantize(p.Color)).Sprintf("(%d,%d)", p.X, p.Y)
}

// Image returns a one line description of m followed by every color.
func Image(m *gfimage.Image) string {
	var sb strings.Builder
	sb.WriteString(m.String())
	sb.WriteString(" [")
	first := true
	for c := range m.Colors() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(Color(m.Scheme().Dequantize(c)))
	}
	sb.WriteString("]")
	return sb.String()
}

// Palette returns each color as a swatch followed by its value, one per line.
func Palette(p []rgb.Color) string {
	var sb strings.Builder
	for _, c := range p {
		fmt.Fprintf(&sb, "%s %s\n", Swatch(c), c)
	}
	return sb.String()
}
