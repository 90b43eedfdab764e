package greenfield

import (
	"database/sql"
	"fmt"

	gfimage "github.com/bodgit/greenfield/image"
	"github.com/bodgit/greenfield/quantization"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

// Catalog caches converted images keyed by the SHA-1 of the source file and
// the quantization scheme. Images are stored zstd compressed.
type Catalog struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCatalog opens, creating if necessary, the sqlite catalog in file.
func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, scheme TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, data BLOB NOT NULL, UNIQUE(sha1, scheme))"); err != nil {
		db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &Catalog{
		db:  db,
		enc: enc,
		dec: dec,
	}, nil
}

func schemeKey(s quantization.Scheme) string {
	r, g, b := s.Bits()
	return fmt.Sprintf("%d,%d,%d", r, g, b)
}

// Lookup returns the cached image for the given source SHA-1 and scheme, or
// nil if there isn't one.
func (c *Catalog) Lookup(sha string, s quantization.Scheme) (*gfimage.Image, error) {
	var data []byte
	switch err := c.db.QueryRow("SELECT data FROM image WHERE sha1 = ? AND scheme = ?", sha, schemeKey(s)).Scan(&data); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		b, err := c.dec.DecodeAll(data, nil)
		if err != nil {
			return nil, err
		}
		return gfimage.Unmarshal(b)
	default:
		return nil, err
	}
}

// Store caches m as the result of converting the source with the given
// SHA-1 using s, replacing any existing entry for the same scheme.
func (c *Catalog) Store(sha string, s quantization.Scheme, m *gfimage.Image) error {
	b, err := m.MarshalBinary()
	if err != nil {
		return err
	}

	width, height := m.Dimensions()
	if _, err := c.db.Exec("INSERT OR REPLACE INTO image (sha1, scheme, width, height, data) VALUES (?, ?, ?, ?, ?)", sha, schemeKey(s), width, height, c.enc.EncodeAll(b, nil)); err != nil {
		return err
	}
	return nil
}

// Len returns the number of cached images.
func (c *Catalog) Len() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM image").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the catalog.
func (c *Catalog) Close() error {
	c.dec.Close()
	if err := c.enc.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}
