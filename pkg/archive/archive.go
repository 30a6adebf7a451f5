// Package archive provides afs-backed archive handles and the manifest
// analyzer: a reference analyzer that diffs archives by their entry
// manifests (zip central directory or directory listing) without
// interpreting entry content.
package archive

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/viant/afs"

	"github.com/apidrift/apidrift/pkg/api"
)

// FileArchive is an api.Archive over any afs-resolvable URL: a local
// file, a directory, or an in-memory URL in tests.
type FileArchive struct {
	name string
	url  string
	fs   afs.Service
}

// NewFileArchive creates an archive handle for the given URL. The
// archive's name is the URL's base name.
func NewFileArchive(url string) *FileArchive {
	return &FileArchive{
		name: path.Base(url),
		url:  url,
		fs:   afs.New(),
	}
}

// Name returns the archive's base name.
func (a *FileArchive) Name() string { return a.name }

// URL returns the archive's full URL.
func (a *FileArchive) URL() string { return a.url }

// Open returns a reader over the archive bytes.
func (a *FileArchive) Open(ctx context.Context) (io.ReadCloser, error) {
	reader, err := a.fs.OpenURL(ctx, a.url)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", a.name, err)
	}

	return reader, nil
}

var _ api.Archive = (*FileArchive)(nil)
