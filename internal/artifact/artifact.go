// Package artifact opens the files produced by the offline training job.
package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
)

// BrotliExt marks an artifact that was compressed by the export job.
const BrotliExt = ".br"

type brotliFile struct {
	io.Reader
	f *os.File
}

func (b *brotliFile) Close() error { return b.f.Close() }

// Open returns a reader over the artifact at path. Files ending in ".br" are
// decompressed on the fly.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening artifact %s: %w", path, err)
	}
	if !strings.EqualFold(filepath.Ext(path), BrotliExt) {
		return f, nil
	}
	return &brotliFile{Reader: brotli.NewReader(f), f: f}, nil
}

// ReadAll reads the whole artifact into memory.
func ReadAll(path string) ([]byte, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", path, err)
	}
	return data, nil
}

// BaseExt returns the extension of path ignoring a trailing ".br", so
// "model.yaml.br" reports ".yaml".
func BaseExt(path string) string {
	if strings.EqualFold(filepath.Ext(path), BrotliExt) {
		path = path[:len(path)-len(BrotliExt)]
	}
	return strings.ToLower(filepath.Ext(path))
}
