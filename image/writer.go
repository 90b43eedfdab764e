package image

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/bodgit/greenfield/bitstream"
	"github.com/bodgit/greenfield/quantization"
	"github.com/bodgit/greenfield/rgb"
)

// Options are the encoding parameters.
type Options struct {
	// Scheme is used to quantize the image. The zero value means full
	// precision.
	Scheme quantization.Scheme
}

type encoder struct {
	w *bitstream.Writer
}

func (e *encoder) writeHeader(m *Image) error {
	r, g, b := m.scheme.Bits()
	for _, f := range []struct {
		v uint64
		n uint8
	}{
		{binary.BigEndian.Uint64([]byte(Magic)), magicBits},
		{uint64(m.width), dimensionBits},
		{uint64(m.height), dimensionBits},
		{uint64(r), levelBits},
		{uint64(g), levelBits},
		{uint64(b), levelBits},
	} {
		if err := e.w.WriteBits(f.v, f.n); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encode(m *Image) error {
	if !m.scheme.Valid() {
		return fmt.Errorf("%w: %v", quantization.ErrInvalidLevel, m.scheme)
	}

	if err := e.writeHeader(m); err != nil {
		return err
	}

	// The stored colors are already quantized so must not be quantized again
	if err := bitstream.WriteIndices(e.w, m.pix, m.scheme); err != nil {
		return err
	}

	return e.w.Close()
}

// WriteTo writes the encoded image to w.
func (m *Image) WriteTo(w io.Writer) (int64, error) {
	b, err := m.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (m *Image) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	b.Grow(headerBytes + (len(m.pix)*m.scheme.ChunkSize()+7)>>3)

	e := encoder{w: bitstream.NewWriter(b)}
	if err := e.encode(m); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// WriteFile encodes the image and writes it to the named file.
func (m *Image) WriteFile(name string) error {
	b, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	return os.WriteFile(name, b, 0o644)
}

// FromImage converts m to an Image quantized with s.
func FromImage(m image.Image, s quantization.Scheme) (*Image, error) {
	if gm, ok := m.(*Image); ok && gm.scheme == s {
		return gm, nil
	}

	b := m.Bounds()
	colors := make([]rgb.Color, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			colors = append(colors, rgb.Model.Convert(m.At(x, y)).(rgb.Color))
		}
	}

	return New(b.Dx(), b.Dy(), s, colors)
}

// Encode writes the Image m to w in greenfield format. A nil Options uses
// full precision.
func Encode(w io.Writer, m image.Image, o *Options) error {
	s := quantization.Default()
	if o != nil && o.Scheme.Valid() {
		s = o.Scheme
	}

	gm, err := FromImage(m, s)
	if err != nil {
		return err
	}

	_, err = gm.WriteTo(w)

	return err
}
