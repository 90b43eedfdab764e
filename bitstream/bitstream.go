/*
Package bitstream packs quantized colors into a contiguous big-endian bit
sequence and unpacks them again.

Each color is stored as three fields of the widths given by a
quantization.Scheme, red first, most significant bit first, with no padding
between channels or between colors. Only the final byte of a sequence is
padded, with zero bits in its low order positions.
*/
package bitstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/bodgit/greenfield/quantization"
	"github.com/bodgit/greenfield/rgb"
	"github.com/icza/bitio"
)

var (
	// ErrShortSequence is returned when a sequence holds fewer whole colors
	// than requested
	ErrShortSequence = errors.New("bitstream: not enough bits")
	// ErrInvalidCount is returned when a negative number of colors is requested
	ErrInvalidCount = errors.New("bitstream: invalid count")
)

// Writer writes bit fields most significant bit first, tracking the number
// of bits written.
type Writer struct {
	w *bitio.Writer
	n uint64
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bitio.NewWriter(w)}
}

// WriteBits writes the low n bits of v. Any higher bits in v are ignored.
func (w *Writer) WriteBits(v uint64, n uint8) error {
	if n < 64 {
		v &= 1<<n - 1
	}
	if err := w.w.WriteBits(v, n); err != nil {
		return err
	}
	w.n += uint64(n)
	return nil
}

// Len returns the number of bits written so far.
func (w *Writer) Len() uint64 {
	return w.n
}

// Close writes out any partial byte, padding it with zero bits. It does not
// close the underlying io.Writer.
func (w *Writer) Close() error {
	return w.w.Close()
}

// Reader reads bit fields most significant bit first, tracking the number of
// bits read.
type Reader struct {
	r *bitio.Reader
	n uint64
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bitio.NewReader(r)}
}

// ReadBits reads n bits and returns them as the low n bits of the result.
func (r *Reader) ReadBits(n uint8) (uint64, error) {
	v, err := r.r.ReadBits(n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	r.n += uint64(n)
	return v, nil
}

// Pos returns the number of bits read so far.
func (r *Reader) Pos() uint64 {
	return r.n
}

// WriteIndices writes each already quantized color in indices to w using
// the field widths of s. No quantization is applied.
func WriteIndices(w *Writer, indices []rgb.Color, s quantization.Scheme) error {
	br, bg, bb := s.Bits()
	for _, c := range indices {
		if err := w.WriteBits(uint64(c.R), br); err != nil {
			return err
		}
		if err := w.WriteBits(uint64(c.G), bg); err != nil {
			return err
		}
		if err := w.WriteBits(uint64(c.B), bb); err != nil {
			return err
		}
	}
	return nil
}

// ReadIndices reads exactly count colors from r using the field widths of s
// and returns them without dequantizing.
func ReadIndices(r *Reader, count int, s quantization.Scheme) ([]rgb.Color, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	br, bg, bb := s.Bits()
	indices := make([]rgb.Color, count)
	for i := range indices {
		var v [3]uint64
		for j, n := range [3]uint8{br, bg, bb} {
			var err error
			if v[j], err = r.ReadBits(n); err != nil {
				if err == io.ErrUnexpectedEOF {
					return nil, fmt.Errorf("%w: %d colors found (expected %d)", ErrShortSequence, i, count)
				}
				return nil, err
			}
		}
		indices[i] = rgb.New(uint8(v[0]), uint8(v[1]), uint8(v[2]))
	}
	return indices, nil
}

// Sequence is a sequence of Len bits stored most significant bit first in
// Bytes. Bits in Bytes beyond Len are zero.
type Sequence struct {
	Bytes []byte
	Len   int
}

// bits returns Len clamped to the bits actually backed by Bytes.
func (seq Sequence) bits() int {
	return max(0, min(seq.Len, len(seq.Bytes)*8))
}

// Chunks returns the number of whole colors the sequence can hold under s.
func (seq Sequence) Chunks(s quantization.Scheme) int {
	if !s.Valid() {
		return 0
	}
	return seq.bits() / s.ChunkSize()
}

// String renders the sequence as a string of '0' and '1' characters. A Len
// larger than Bytes can hold is truncated.
func (seq Sequence) String() string {
	var sb bytes.Buffer
	for i := 0; i < seq.bits(); i++ {
		if seq.Bytes[i>>3]>>(7-i&7)&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Pack packs already quantized colors into a Sequence.
func Pack(indices []rgb.Color, s quantization.Scheme) Sequence {
	b := new(bytes.Buffer)
	w := NewWriter(b)

	// Writes to a bytes.Buffer never fail
	_ = WriteIndices(w, indices, s)
	_ = w.Close()

	return Sequence{
		Bytes: b.Bytes(),
		Len:   int(w.Len()),
	}
}

// PackColors quantizes full precision colors with s and packs the result.
func PackColors(colors []rgb.Color, s quantization.Scheme) Sequence {
	indices := make([]rgb.Color, len(colors))
	for i, c := range colors {
		indices[i] = s.Quantize(c)
	}
	return Pack(indices, s)
}

// UnpackIndices reads exactly count colors from seq without dequantizing.
// Any bits after the last color are ignored.
func UnpackIndices(seq Sequence, count int, s quantization.Scheme) ([]rgb.Color, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	if n := seq.Chunks(s); n < count {
		return nil, fmt.Errorf("%w: %d colors found (expected %d)", ErrShortSequence, n, count)
	}
	return ReadIndices(NewReader(bytes.NewReader(seq.Bytes)), count, s)
}

// Unpack reads exactly count colors from seq and dequantizes them with s.
func Unpack(seq Sequence, count int, s quantization.Scheme) ([]rgb.Color, error) {
	colors, err := UnpackIndices(seq, count, s)
	if err != nil {
		return nil, err
	}
	for i, c := range colors {
		colors[i] = s.Dequantize(c)
	}
	return colors, nil
}
