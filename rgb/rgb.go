/*
Package rgb implements the 8 bit per channel color used by greenfield images.

There is no alpha channel; every Color is fully opaque when viewed through the
image/color interfaces.
*/
package rgb

import (
	"fmt"
	"image/color"
)

// Color is an opaque 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// New returns the Color with the given channel values.
func New(r, g, b uint8) Color {
	return Color{r, g, b}
}

// Bytes returns the channels in r, g, b order.
func (c Color) Bytes() [3]byte {
	return [3]byte{c.R, c.G, c.B}
}

// RGBA implements the color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Model converts any color.Color to a Color, discarding alpha.
var Model = color.ModelFunc(model)

func model(c color.Color) color.Color {
	if c, ok := c.(Color); ok {
		return c
	}
	// Use the non-premultiplied values so translucent colors keep their hue
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{n.R, n.G, n.B}
}
