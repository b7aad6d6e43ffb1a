// Package content resolves a document's storage reference to a readable
// local file, downloading remote references into a scratch directory.
package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ecodocs/reportpipe/internal/model"
)

// Source distinguishes user-owned local files from scratch copies the
// pipeline downloaded itself.
type Source int

// Content sources.
const (
	SourceLocal Source = iota
	SourceDownloaded
)

// Resolved is a readable local copy of a document's content. Cleanup only
// ever removes downloaded scratch files; user-owned local files are never
// touched.
type Resolved struct {
	Path   string
	Source Source
}

// Cleanup removes the file if it was downloaded by the pipeline.
func (r Resolved) Cleanup() error {
	if r.Source != SourceDownloaded {
		return nil
	}
	if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove downloaded file: %w", err)
	}
	return nil
}

// UnavailableError indicates that a document's content could not be found
// locally or downloaded. It is a data error for local references and wraps
// the transport error for remote ones.
type UnavailableError struct {
	Err       error
	Reference string
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("content unavailable for %q: %v", e.Reference, e.Err)
	}
	return fmt.Sprintf("content unavailable for %q", e.Reference)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

const (
	maxSlugLength   = 40
	defaultFileExt  = ".pdf"
	downloadTimeout = 2 * time.Minute
)

// Config holds the resolver's filesystem and transport settings.
type Config struct {
	HTTPClient *http.Client
	// BucketRoot is the canonical local-storage root. References under it
	// are resolved on disk; everything else is treated as a remote URL.
	BucketRoot string
	// ScratchDir receives downloaded copies awaiting analysis.
	ScratchDir string
}

// Resolver implements storage-reference resolution.
type Resolver struct {
	httpClient *http.Client
	bucketRoot string
	scratchDir string
}

// NewResolver creates a resolver for the given bucket root and scratch
// directory.
func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.BucketRoot == "" {
		return nil, fmt.Errorf("bucket root is required")
	}
	if cfg.ScratchDir == "" {
		return nil, fmt.Errorf("scratch directory is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: downloadTimeout}
	}

	return &Resolver{
		bucketRoot: filepath.Clean(cfg.BucketRoot),
		scratchDir: cfg.ScratchDir,
		httpClient: httpClient,
	}, nil
}

// Resolve yields a readable local path for the document's storage reference.
// Local references are verified on disk and never downloaded; a missing local
// file is a data-integrity error. Remote references are streamed into the
// scratch directory.
func (r *Resolver) Resolve(ctx context.Context, doc model.Document) (Resolved, error) {
	reference := strings.TrimSpace(doc.FilePath)
	if reference == "" {
		return Resolved{}, &UnavailableError{Reference: reference, Err: fmt.Errorf("empty storage reference")}
	}

	if r.isLocal(reference) {
		return r.resolveLocal(reference)
	}
	return r.download(ctx, doc, reference)
}

// isLocal reports whether the reference lives under the canonical bucket root.
func (r *Resolver) isLocal(reference string) bool {
	return strings.HasPrefix(filepath.Clean(reference), r.bucketRoot+string(filepath.Separator)) ||
		filepath.Clean(reference) == r.bucketRoot
}

func (r *Resolver) resolveLocal(reference string) (Resolved, error) {
	localPath := filepath.Clean(reference)
	info, err := os.Stat(localPath)
	if err != nil {
		return Resolved{}, &UnavailableError{Reference: reference, Err: fmt.Errorf("local file missing: %w", err)}
	}
	if info.IsDir() {
		return Resolved{}, &UnavailableError{Reference: reference, Err: fmt.Errorf("local reference is a directory")}
	}

	return Resolved{Path: localPath, Source: SourceLocal}, nil
}

func (r *Resolver) download(ctx context.Context, doc model.Document, reference string) (Resolved, error) {
	target := filepath.Join(r.scratchDir, scratchFilename(doc, reference))

	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return Resolved{}, &UnavailableError{Reference: reference, Err: fmt.Errorf("failed to create scratch directory: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reference, nil)
	if err != nil {
		return Resolved{}, &UnavailableError{Reference: reference, Err: fmt.Errorf("invalid remote reference: %w", err)}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Resolved{}, &UnavailableError{Reference: reference, Err: fmt.Errorf("download failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Resolved{}, &UnavailableError{Reference: reference, Err: fmt.Errorf("download failed with status %d", resp.StatusCode)}
	}

	file, err := os.Create(target)
	if err != nil {
		return Resolved{}, &UnavailableError{Reference: reference, Err: fmt.Errorf("failed to create scratch file: %w", err)}
	}

	written, err := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err != nil {
		_ = os.Remove(target)
		return Resolved{}, &UnavailableError{Reference: reference, Err: fmt.Errorf("download interrupted: %w", err)}
	}
	if closeErr != nil {
		_ = os.Remove(target)
		return Resolved{}, &UnavailableError{Reference: reference, Err: fmt.Errorf("failed to write scratch file: %w", closeErr)}
	}

	slog.Debug("downloaded remote document",
		"document_id", doc.ID,
		"path", target,
		"bytes", written)
	return Resolved{Path: target, Source: SourceDownloaded}, nil
}

// scratchFilename builds a collision-free scratch name from the document
// identifier plus a sanitized title slug to aid downstream debugging.
func scratchFilename(doc model.Document, reference string) string {
	name := fmt.Sprintf("document_%d", doc.ID)
	if slug := slugify(doc.Title); slug != "" {
		name += "_" + slug
	}
	return name + fileExtension(reference)
}

// slugify lowercases the title and collapses everything that is not a letter
// or digit into single dashes, capped so filenames stay manageable.
func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	return slug
}

func fileExtension(reference string) string {
	parsed, err := url.Parse(reference)
	if err != nil {
		return defaultFileExt
	}
	if ext := path.Ext(parsed.Path); ext != "" {
		return ext
	}
	return defaultFileExt
}
