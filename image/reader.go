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

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r *bitstream.Reader

	width, height uint32
	scheme        quantization.Scheme
	pix           []rgb.Color
}

func (d *decoder) readHeader() error {
	magic, err := d.r.ReadBits(uint8(magicBits))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	if magic != binary.BigEndian.Uint64([]byte(Magic)) {
		return fmt.Errorf("%w: bad magic value %#016x", ErrMalformedHeader, magic)
	}

	var fields [5]uint64
	for i, n := range [5]uint8{dimensionBits, dimensionBits, levelBits, levelBits, levelBits} {
		if fields[i], err = d.r.ReadBits(n); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
	}
	d.width, d.height = uint32(fields[0]), uint32(fields[1])

	d.scheme, err = quantization.New(uint8(fields[2]), uint8(fields[3]), uint8(fields[4]))

	return err
}

func (d *decoder) decode(b []byte, configOnly bool) error {
	d.r = bitstream.NewReader(bytes.NewReader(b))

	if err := d.readHeader(); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	// Anything after the last whole color is ignored
	expected := uint64(d.width) * uint64(d.height)
	if found := (uint64(len(b))*8 - headerBits) / uint64(d.scheme.ChunkSize()); found < expected {
		return dimensionError(found, expected)
	}

	var err error
	d.pix, err = bitstream.ReadIndices(d.r, int(expected), d.scheme)

	return err
}

func (d *decoder) result() *Image {
	return &Image{
		width:  int(d.width),
		height: int(d.height),
		scheme: d.scheme,
		pix:    d.pix,
	}
}

// Unmarshal decodes an Image from b. Any bytes after the last color are
// ignored.
func Unmarshal(b []byte) (*Image, error) {
	var d decoder
	if err := d.decode(b, false); err != nil {
		return nil, err
	}
	return d.result(), nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (m *Image) UnmarshalBinary(b []byte) error {
	var d decoder
	if err := d.decode(b, false); err != nil {
		return err
	}
	*m = *d.result()
	return nil
}

// ReadFile reads and decodes the named greenfield file.
func ReadFile(name string) (*Image, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return Unmarshal(b)
}

// Decode reads a greenfield image from r and returns it as an image.Image.
func Decode(r io.Reader) (image.Image, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(b)
}

// DecodeConfig returns the color model and dimensions of a greenfield image
// without decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var b [headerBytes]byte
	if err := readFull(r, b[:]); err != nil {
		if err != io.ErrUnexpectedEOF {
			return image.Config{}, err
		}
		return image.Config{}, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	var d decoder
	if err := d.decode(b[:], true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: rgb.Model,
		Width:      int(d.width),
		Height:     int(d.height),
	}, nil
}
