package greenfield

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	gfimage "github.com/bodgit/greenfield/image"
	"github.com/bodgit/greenfield/quantization"
	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned when a raster format has no external decoder or
// encoder
var ErrUnsupported = errors.New("greenfield: unsupported format")

// Decode decodes a common raster format such as PNG, JPEG, GIF, BMP, TIFF or
// WebP. The format name is returned along with the image.
func Decode(r io.Reader) (image.Image, string, error) {
	m, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupported
		}
		return nil, "", err
	}
	return m, format, nil
}

// Encode encodes m into the common raster format identified by the file
// extension ext, for example ".png".
func Encode(w io.Writer, m image.Image, ext string) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return png.Encode(w, m)
	case "jpg", "jpeg":
		return jpeg.Encode(w, m, &jpeg.Options{Quality: 100})
	case "gif":
		return gif.Encode(w, m, &gif.Options{
			NumColors: 256,
			Quantizer: &quantize.MedianCutQuantizer{},
		})
	case "bmp":
		return bmp.Encode(w, m)
	case "tif", "tiff":
		return tiff.Encode(w, m, nil)
	default:
		return ErrUnsupported
	}
}

// Load reads the named image. Common raster formats are quantized with s,
// otherwise the file is read as a greenfield image which keeps its own
// scheme.
func Load(name string, s quantization.Scheme) (*gfimage.Image, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	m, err := fromBytes(b, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

func fromBytes(b []byte, s quantization.Scheme) (*gfimage.Image, error) {
	m, _, err := Decode(bytes.NewReader(b))
	switch {
	case errors.Is(err, ErrUnsupported):
		return gfimage.Unmarshal(b)
	case err != nil:
		return nil, err
	}
	return gfimage.FromImage(m, s)
}

// Save writes m to the named file in the format given by its extension,
// using the dequantized colors. Extensions without an external encoder are
// written as a greenfield image.
func Save(m *gfimage.Image, name string) error {
	b := new(bytes.Buffer)
	err := Encode(b, m, filepath.Ext(name))
	switch {
	case errors.Is(err, ErrUnsupported):
		return m.WriteFile(name)
	case err != nil:
		return fmt.Errorf("%s: %w", name, err)
	}
	return os.WriteFile(name, b.Bytes(), 0o644)
}
