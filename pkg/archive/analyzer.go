package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"golang.org/x/text/language"

	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/checks"
	"github.com/apidrift/apidrift/pkg/engine"
	"github.com/apidrift/apidrift/pkg/messages"
)

// AnalyzerID is the manifest analyzer's extension ID and configuration
// namespace.
const AnalyzerID = "apidrift.manifest"

// ErrNotTree is returned when the analyzer is handed trees it did not
// produce.
var ErrNotTree = errors.New("not a manifest tree")

// Analyzer is the reference engine.Analyzer. It reads each archive's
// entry manifest, the zip central directory for .zip and .jar archives or
// an afs directory walk otherwise, and builds deterministic element
// trees: entry roots with attribute children and metadata annotations.
type Analyzer struct {
	fs     afs.Service
	bundle *messages.Bundle
	locale language.Tag
	checks []checks.Check
	log    *slog.Logger
}

// NewAnalyzer creates a manifest analyzer with its bundled check set.
func NewAnalyzer() *Analyzer {
	a := &Analyzer{
		fs:     afs.New(),
		bundle: messages.Default(),
		log:    slog.Default(),
	}

	a.checks = []checks.Check{
		newEntryCheck(a),
		newAttributeCheck(a),
		newMetaCheck(a),
	}

	return a
}

// ID returns the analyzer's extension ID.
func (a *Analyzer) ID() string { return AnalyzerID }

// ConfigSchema declares the analyzer's configuration namespace. The
// checksum key is validated against its enum but is not read: entries are
// always compared by their CRC-32 checksum.
func (a *Analyzer) ConfigSchema() string {
	return `{
		"type": "object",
		"properties": {
			"checksum": {"type": "string", "enum": ["crc32", "none"]}
		},
		"additionalProperties": true
	}`
}

// Initialize records the locale and initializes the bundled checks.
func (a *Analyzer) Initialize(ctx *engine.AnalysisContext) error {
	a.locale = ctx.Locale()

	for _, c := range a.checks {
		if err := c.Initialize(ctx); err != nil {
			return fmt.Errorf("initialize check %s: %w", c.ID(), err)
		}
	}

	return nil
}

// Close tears down the bundled checks.
func (a *Analyzer) Close() error {
	for _, c := range a.checks {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close check %s: %w", c.ID(), err)
		}
	}

	return nil
}

// AnalyzeArchives opens one side's archives lazily: the manifest is read
// when Roots is first called.
func (a *Analyzer) AnalyzeArchives(_ context.Context, owner *api.API) (engine.TreeAnalyzer, error) {
	return &Tree{analyzer: a, owner: owner}, nil
}

// DifferenceAnalyzer returns the check dispatcher for the two sides.
func (a *Analyzer) DifferenceAnalyzer(oldTree, newTree engine.TreeAnalyzer) (engine.DifferenceAnalyzer, error) {
	oldT, ok := oldTree.(*Tree)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotTree, oldTree)
	}

	newT, ok := newTree.(*Tree)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotTree, newTree)
	}

	return checks.NewDiffAnalyzer(oldT.owner, newT.owner, a.checks), nil
}

// Tree is one side's manifest forest. Roots are built once and cached.
type Tree struct {
	analyzer *Analyzer
	owner    *api.API
	roots    []api.Element
	built    bool
}

// Roots reads every primary archive's manifest and returns the entry
// elements in comparator order.
func (t *Tree) Roots(ctx context.Context) ([]api.Element, error) {
	if t.built {
		return t.roots, nil
	}

	var (
		roots     []api.Element
		seen      = map[string]struct{}{}
		totalSize uint64
	)

	for _, arch := range t.owner.Archives() {
		entries, err := t.analyzer.readManifest(ctx, arch)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if _, dup := seen[entry.name]; dup {
				t.analyzer.log.Warn("duplicate entry across archives, keeping first",
					"entry", entry.name, "archive", arch.Name())

				continue
			}

			seen[entry.name] = struct{}{}
			totalSize += uint64(entry.size)
			roots = append(roots, entry.toElement(t.owner, arch))
		}
	}

	slices.SortFunc(roots, func(a, b api.Element) int {
		return a.Compare(b)
	})

	t.analyzer.log.Info("manifest built",
		"archives", len(t.owner.Archives()),
		"entries", len(roots),
		"size", humanize.Bytes(totalSize))

	t.roots = roots
	t.built = true

	return t.roots, nil
}

// Close releases the side. Manifests hold no open resources once built.
func (t *Tree) Close() error {
	t.roots = nil

	return nil
}

// manifestEntry is one named entry before it becomes an element.
type manifestEntry struct {
	name     string
	size     int64
	checksum string
	meta     map[string]string
}

func (e manifestEntry) toElement(owner *api.API, arch api.Archive) *Element {
	root := newElement(KindEntry, e.name, e.checksum, owner, arch)
	root.addChild(newElement(KindAttribute, "size", strconv.FormatInt(e.size, 10), owner, arch))

	for key, value := range e.meta {
		root.addChild(newElement(api.KindAnnotation, key, value, owner, arch))
	}

	return root
}

func (a *Analyzer) readManifest(ctx context.Context, arch api.Archive) ([]manifestEntry, error) {
	if fileArch, ok := arch.(*FileArchive); ok {
		if isZipURL(fileArch.URL()) {
			return a.readZipManifest(ctx, fileArch)
		}

		return a.readDirManifest(ctx, fileArch)
	}

	return a.readOpaqueManifest(ctx, arch)
}

func isZipURL(url string) bool {
	return strings.HasSuffix(url, ".zip") || strings.HasSuffix(url, ".jar")
}

func (a *Analyzer) readZipManifest(ctx context.Context, arch *FileArchive) ([]manifestEntry, error) {
	data, err := a.fs.DownloadWithURL(ctx, arch.URL())
	if err != nil {
		return nil, fmt.Errorf("download archive %s: %w", arch.Name(), err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read zip %s: %w", arch.Name(), err)
	}

	entries := make([]manifestEntry, 0, len(reader.File))

	for _, f := range reader.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}

		entries = append(entries, manifestEntry{
			name:     f.Name,
			size:     int64(f.UncompressedSize64),
			checksum: strconv.FormatUint(uint64(f.CRC32), 16),
			meta:     map[string]string{"method": zipMethod(f.Method)},
		})
	}

	return entries, nil
}

func zipMethod(method uint16) string {
	if method == zip.Store {
		return "store"
	}

	return "deflate"
}

func (a *Analyzer) readDirManifest(ctx context.Context, arch *FileArchive) ([]manifestEntry, error) {
	var entries []manifestEntry

	visitor := func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}

		name := info.Name()
		if parent != "" {
			name = parent + "/" + info.Name()
		}

		sum := crc32.NewIEEE()
		size, err := io.Copy(sum, reader)
		if err != nil {
			return false, fmt.Errorf("read entry %s: %w", name, err)
		}

		entries = append(entries, manifestEntry{
			name:     name,
			size:     size,
			checksum: strconv.FormatUint(uint64(sum.Sum32()), 16),
			meta:     map[string]string{"mode": info.Mode().Perm().String()},
		})

		return true, nil
	}

	if err := a.fs.Walk(ctx, arch.URL(), storage.OnVisit(visitor)); err != nil {
		return nil, fmt.Errorf("walk archive %s: %w", arch.Name(), err)
	}

	return entries, nil
}

// readOpaqueManifest handles archives of unknown provenance: the whole
// byte stream becomes a single entry named after the archive.
func (a *Analyzer) readOpaqueManifest(ctx context.Context, arch api.Archive) ([]manifestEntry, error) {
	reader, err := arch.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	sum := crc32.NewIEEE()

	size, err := io.Copy(sum, reader)
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", arch.Name(), err)
	}

	return []manifestEntry{{
		name:     arch.Name(),
		size:     size,
		checksum: strconv.FormatUint(uint64(sum.Sum32()), 16),
	}}, nil
}

var _ engine.Analyzer = (*Analyzer)(nil)
