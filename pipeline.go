package greenfield

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	gfimage "github.com/bodgit/greenfield/image"
	"github.com/bodgit/greenfield/quantization"
)

var rasterExtensions = map[string]struct{}{
	".bmp":  {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

func isRaster(file string) bool {
	_, ok := rasterExtensions[strings.ToLower(filepath.Ext(file))]
	return ok
}

func (c *Converter) findImages(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if file != base && info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !isRaster(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

// convert returns the greenfield image for the raster file, using the
// catalog if there is one.
func (c *Converter) convert(file string, s quantization.Scheme) (*gfimage.Image, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var sha string
	if c.catalog != nil {
		sha = fmt.Sprintf("%X", sha1.Sum(b))
		m, err := c.catalog.Lookup(sha, s)
		if err != nil {
			return nil, err
		}
		if m != nil {
			c.logger.Printf("Using cached image for \"%s\", with SHA1 \"%s\"\n", file, sha)
			return m, nil
		}
	}

	m, err := fromBytes(b, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	// A native image keeps its own scheme when loaded
	if m.Scheme() != s {
		if m, err = gfimage.FromImage(m, s); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}

	if c.catalog != nil {
		if err := c.catalog.Store(sha, s, m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (c *Converter) imageWorker(ctx context.Context, src, dest string, s quantization.Scheme, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			select {
			case <-ctx.Done():
				return
			default:
			}

			rel, err := filepath.Rel(src, file)
			if err != nil {
				errc <- err
				return
			}
			// Keep the source extension so a.png and a.jpg don't collide
			target := filepath.Join(dest, rel+Extension)

			m, err := c.convert(file, s)
			if err != nil {
				errc <- err
				return
			}

			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				errc <- err
				return
			}

			if err := m.WriteFile(target); err != nil {
				errc <- err
				return
			}

			c.logger.Printf("Converted \"%s\" to \"%s\" %v\n", file, target, m)
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// ConvertDir converts every raster image found under src into a greenfield
// image quantized with s, written to the same relative path under dest with
// Extension appended, so "a/b.png" becomes "a/b.png.gfd". Up
// to workers images are converted at once, if workers is less than one then
// GOMAXPROCS is used.
func (c *Converter) ConvertDir(src, dest string, s quantization.Scheme, workers int) error {
	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	dest, err = filepath.Abs(dest)
	if err != nil {
		return err
	}

	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findImages(ctx, src)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		errc, err := c.imageWorker(ctx, src, dest, s, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
