/*
Package greenfield is a library for converting images to and from the
greenfield image format.

Common raster formats are decoded and encoded with the standard library and
golang.org/x/image; anything those cannot handle falls back to the native
greenfield container implemented by package image.
*/
package greenfield

import (
	"io"
	"log"
)

// Extension is the file extension used for greenfield images.
const Extension = ".gfd"

// Converter converts directories of images, optionally caching the results
// in a Catalog.
type Converter struct {
	catalog *Catalog
	logger  *log.Logger
}

// New returns a Converter. Both catalog and logger may be nil.
func New(catalog *Catalog, logger *log.Logger) *Converter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Converter{
		catalog: catalog,
		logger:  logger,
	}
}
