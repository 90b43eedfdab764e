/*
Package quantization implements uniform per-channel quantization of RGB colors.

A Scheme keeps the top n bits of each 8 bit channel, where n is between 1 and
8 inclusive and may differ per channel. Quantizing a channel yields an index
into the 2^n intervals of that channel; dequantizing an index yields the
midpoint of its interval.
*/
package quantization

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bodgit/greenfield/rgb"
)

const (
	// MinBits is the fewest bits a channel can be stored with
	MinBits = 1
	// MaxBits is the most bits a channel can be stored with
	MaxBits = 8
)

// ErrInvalidLevel is returned when a channel bit width is outside of the
// range MinBits to MaxBits
var ErrInvalidLevel = errors.New("quantization: invalid quantization level")

// Scheme holds the number of bits used for each of the red, green and blue
// channels. The zero value is not valid, use New or Default.
type Scheme struct {
	r, g, b uint8
}

// New returns a Scheme using the given number of bits per channel.
func New(r, g, b uint8) (Scheme, error) {
	for _, n := range []uint8{r, g, b} {
		if n < MinBits || n > MaxBits {
			return Scheme{}, fmt.Errorf("%w: %d %d %d, levels must be between %d and %d", ErrInvalidLevel, r, g, b, MinBits, MaxBits)
		}
	}
	return Scheme{r, g, b}, nil
}

// Default returns the full precision (8, 8, 8) scheme.
func Default() Scheme {
	return Scheme{MaxBits, MaxBits, MaxBits}
}

// Parse parses a scheme written either as three comma-separated numbers, such
// as "5,6,5", or as three digits, such as "565".
func Parse(s string) (Scheme, error) {
	var fields []string
	if strings.Contains(s, ",") {
		fields = strings.Split(s, ",")
	} else {
		for _, r := range s {
			fields = append(fields, string(r))
		}
	}
	if len(fields) != 3 {
		return Scheme{}, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}

	var bits [3]uint8
	for i, f := range fields {
		n, err := strconv.ParseUint(strings.TrimSpace(f), 10, 8)
		if err != nil {
			return Scheme{}, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
		}
		bits[i] = uint8(n)
	}

	return New(bits[0], bits[1], bits[2])
}

// Bits returns the number of bits used for each channel.
func (s Scheme) Bits() (r, g, b uint8) {
	return s.r, s.g, s.b
}

// ChunkSize returns the number of bits used to store one color.
func (s Scheme) ChunkSize() int {
	return int(s.r) + int(s.g) + int(s.b)
}

// IsFull reports whether s is the full precision scheme.
func (s Scheme) IsFull() bool {
	return s.r == MaxBits && s.g == MaxBits && s.b == MaxBits
}

// Valid reports whether s was constructed with valid bit widths.
func (s Scheme) Valid() bool {
	return s.r >= MinBits && s.r <= MaxBits && s.g >= MinBits && s.g <= MaxBits && s.b >= MinBits && s.b <= MaxBits
}

func (s Scheme) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s.r, s.g, s.b)
}

func quantize(v, bits uint8) uint8 {
	if bits == MaxBits {
		return v
	}
	return v >> (MaxBits - bits)
}

func dequantize(i, bits uint8) uint8 {
	if bits == MaxBits {
		return i
	}
	i &= 1<<bits - 1
	return i<<(MaxBits-bits) + 1<<(MaxBits-1-bits)
}

// Quantize returns the per-channel interval indices of c.
func (s Scheme) Quantize(c rgb.Color) rgb.Color {
	if s.IsFull() {
		return c
	}
	return rgb.Color{
		R: quantize(c.R, s.r),
		G: quantize(c.G, s.g),
		B: quantize(c.B, s.b),
	}
}

// Dequantize returns the color at the midpoint of the intervals indexed by
// the channels of i. Bits of each index above the channel width are ignored.
func (s Scheme) Dequantize(i rgb.Color) rgb.Color {
	if s.IsFull() {
		return i
	}
	return rgb.Color{
		R: dequantize(i.R, s.r),
		G: dequantize(i.G, s.g),
		B: dequantize(i.B, s.b),
	}
}
