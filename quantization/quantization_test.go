package quantization

import (
	"testing"

	"github.com/bodgit/greenfield/rgb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, r, g, b uint8) Scheme {
	t.Helper()
	s, err := New(r, g, b)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	tables := []struct {
		r, g, b uint8
		err     bool
	}{
		{1, 1, 1, false},
		{8, 8, 8, false},
		{5, 6, 5, false},
		{0, 1, 1, true},
		{1, 0, 1, true},
		{1, 1, 0, true},
		{9, 8, 8, true},
		{8, 8, 15, true},
	}

	for _, table := range tables {
		s, err := New(table.r, table.g, table.b)
		if table.err {
			assert.ErrorIs(t, err, ErrInvalidLevel)
			assert.False(t, s.Valid())
			continue
		}
		require.NoError(t, err)
		r, g, b := s.Bits()
		assert.Equal(t, [3]uint8{table.r, table.g, table.b}, [3]uint8{r, g, b})
		assert.Equal(t, int(table.r)+int(table.g)+int(table.b), s.ChunkSize())
		assert.True(t, s.Valid())
	}
}

func TestDefault(t *testing.T) {
	s := Default()
	assert.True(t, s.IsFull())
	assert.Equal(t, 24, s.ChunkSize())
	assert.Equal(t, "(8, 8, 8)", s.String())
	assert.Equal(t, mustNew(t, 8, 8, 8), s)
}

func TestParse(t *testing.T) {
	s, err := Parse("5,6,5")
	require.NoError(t, err)
	assert.Equal(t, mustNew(t, 5, 6, 5), s)

	s, err = Parse("2, 3, 4")
	require.NoError(t, err)
	assert.Equal(t, mustNew(t, 2, 3, 4), s)

	s, err = Parse("888")
	require.NoError(t, err)
	assert.True(t, s.IsFull())

	for _, in := range []string{"", "5,6", "5,6,5,5", "a,b,c", "909", "5,6,-1", "1234"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidLevel, in)
	}
}

func TestQuantize(t *testing.T) {
	s := mustNew(t, 5, 6, 5)
	assert.Equal(t, rgb.New(31, 63, 31), s.Quantize(rgb.New(255, 255, 255)))
	assert.Equal(t, rgb.New(0, 0, 0), s.Quantize(rgb.New(7, 3, 7)))
	assert.Equal(t, rgb.New(1, 1, 1), s.Quantize(rgb.New(12, 6, 12)))

	s = mustNew(t, 1, 1, 1)
	assert.Equal(t, rgb.New(0, 0, 0), s.Quantize(rgb.New(100, 100, 100)))
	assert.Equal(t, rgb.New(1, 0, 1), s.Quantize(rgb.New(128, 127, 255)))

	s = mustNew(t, 2, 2, 2)
	assert.Equal(t, rgb.New(3, 3, 3), s.Quantize(rgb.New(224, 224, 224)))
}

func TestDequantize(t *testing.T) {
	s := mustNew(t, 5, 6, 5)
	assert.Equal(t, rgb.New(4, 2, 4), s.Dequantize(rgb.New(0, 0, 0)))
	assert.Equal(t, rgb.New(252, 254, 252), s.Dequantize(rgb.New(31, 63, 31)))

	s = mustNew(t, 1, 1, 1)
	assert.Equal(t, rgb.New(64, 64, 64), s.Dequantize(rgb.New(0, 0, 0)))
	assert.Equal(t, rgb.New(192, 192, 192), s.Dequantize(rgb.New(1, 1, 1)))

	// Out of range indices are masked
	assert.Equal(t, rgb.New(192, 64, 64), s.Dequantize(rgb.New(3, 2, 0)))
}

func TestMixedFullChannel(t *testing.T) {
	s := mustNew(t, 8, 4, 8)
	assert.Equal(t, rgb.New(200, 12, 17), s.Quantize(rgb.New(200, 200, 17)))
	assert.Equal(t, rgb.New(200, 200, 17), s.Dequantize(rgb.New(200, 12, 17)))
}

func TestFullPrecisionIdentity(t *testing.T) {
	s := Default()
	for v := 0; v < 256; v++ {
		c := rgb.New(uint8(v), uint8(255-v), uint8(v*7))
		assert.Equal(t, c, s.Quantize(c))
		assert.Equal(t, c, s.Dequantize(c))
	}
}

func TestSameInterval(t *testing.T) {
	for bits := uint8(MinBits); bits <= MaxBits; bits++ {
		s := mustNew(t, bits, bits, bits)
		for v := 0; v < 256; v++ {
			c := rgb.New(uint8(v), uint8(v), uint8(v))
			q := s.Quantize(c)
			d := s.Dequantize(q)
			assert.Less(t, int(q.R), 1<<bits)
			assert.Equal(t, q, s.Quantize(d), "bits %d value %d", bits, v)
		}
	}
}
