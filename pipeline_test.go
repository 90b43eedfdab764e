package greenfield

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"

	gfimage "github.com/bodgit/greenfield/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertDir(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(src, ".hidden"), 0o755))
	writePNG(t, filepath.Join(src, "a.png"), testImage(4, 3))
	writePNG(t, filepath.Join(src, "sub", "b.png"), testImage(2, 5))
	writePNG(t, filepath.Join(src, ".hidden", "c.png"), testImage(1, 1))
	writePNG(t, filepath.Join(src, ".d.png"), testImage(1, 1))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("ignored"), 0o644))

	s := mustScheme(t, 5, 6, 5)
	require.NoError(t, New(nil, nil).ConvertDir(src, dest, s, 2))

	m, err := gfimage.ReadFile(filepath.Join(dest, "a.png.gfd"))
	require.NoError(t, err)
	w, h := m.Dimensions()
	assert.Equal(t, [2]int{4, 3}, [2]int{w, h})
	assert.Equal(t, s, m.Scheme())

	m, err = gfimage.ReadFile(filepath.Join(dest, "sub", "b.png.gfd"))
	require.NoError(t, err)
	w, h = m.Dimensions()
	assert.Equal(t, [2]int{2, 5}, [2]int{w, h})

	for _, name := range []string{".hidden/c.png.gfd", ".d.png.gfd", "notes.txt.gfd", "a.gfd"} {
		assert.NoFileExists(t, filepath.Join(dest, name))
	}
}

func TestConvertDirCatalog(t *testing.T) {
	src := t.TempDir()
	c := newCatalog(t)
	writePNG(t, filepath.Join(src, "a.png"), testImage(4, 4))
	writePNG(t, filepath.Join(src, "b.png"), testImage(4, 4))

	b := new(bytes.Buffer)
	conv := New(c, log.New(b, "", 0))
	s := mustScheme(t, 4, 4, 4)

	require.NoError(t, conv.ConvertDir(src, t.TempDir(), s, 1))

	// Both files have identical content so share one entry
	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, b.String(), "Using cached image")

	dest := t.TempDir()
	b.Reset()
	require.NoError(t, conv.ConvertDir(src, dest, s, 0))
	assert.Equal(t, 2, bytes.Count(b.Bytes(), []byte("Using cached image")))
	assert.FileExists(t, filepath.Join(dest, "a.png.gfd"))
	assert.FileExists(t, filepath.Join(dest, "b.png.gfd"))
}

func TestConvertDirSameBaseName(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	writePNG(t, filepath.Join(src, "a.png"), testImage(4, 3))
	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, testImage(2, 5), ".bmp"))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.bmp"), b.Bytes(), 0o644))

	require.NoError(t, New(nil, nil).ConvertDir(src, dest, mustScheme(t, 5, 6, 5), 2))

	for name, size := range map[string][2]int{"a.png.gfd": {4, 3}, "a.bmp.gfd": {2, 5}} {
		m, err := gfimage.ReadFile(filepath.Join(dest, name))
		require.NoError(t, err, name)
		w, h := m.Dimensions()
		assert.Equal(t, size, [2]int{w, h}, name)
	}
}

func TestConvertDirNativeFallback(t *testing.T) {
	src := t.TempDir()
	c := newCatalog(t)

	// A greenfield image saved with a raster extension
	native, err := gfimage.FromImage(testImage(4, 4), mustScheme(t, 2, 3, 4))
	require.NoError(t, err)
	require.NoError(t, native.WriteFile(filepath.Join(src, "a.png")))

	b := new(bytes.Buffer)
	conv := New(c, log.New(b, "", 0))
	s := mustScheme(t, 5, 6, 5)

	for i := 0; i < 2; i++ {
		dest := t.TempDir()
		require.NoError(t, conv.ConvertDir(src, dest, s, 1))

		m, err := gfimage.ReadFile(filepath.Join(dest, "a.png.gfd"))
		require.NoError(t, err)
		assert.Equal(t, s, m.Scheme())
	}

	assert.Equal(t, 1, bytes.Count(b.Bytes(), []byte("Using cached image")))

	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m, err := c.Lookup(fmt.Sprintf("%X", sha1.Sum(mustMarshal(t, native))), s)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, s, m.Scheme())
}

func mustMarshal(t *testing.T, m *gfimage.Image) []byte {
	t.Helper()
	b, err := m.MarshalBinary()
	require.NoError(t, err)
	return b
}

func TestConvertDirError(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.png"), []byte("not a png"), 0o644))

	err := New(nil, nil).ConvertDir(src, t.TempDir(), mustScheme(t, 8, 8, 8), 4)
	assert.ErrorIs(t, err, gfimage.ErrMalformedHeader)
}

func TestConvertDirMissing(t *testing.T) {
	err := New(nil, nil).ConvertDir(filepath.Join(t.TempDir(), "missing"), t.TempDir(), mustScheme(t, 8, 8, 8), 1)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
