package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultNamePrefix = "file"
	nameMaxAttempts   = 10
	randomSuffixRange = 1_000_000_000
)

// LocalDisk stores blob bytes as plain files below a root directory.
type LocalDisk struct {
	root   string
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// NewLocalDisk creates a local blob store rooted at root.
func NewLocalDisk(root string, logger *slog.Logger) (*LocalDisk, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create upload dir: %w", ErrIO, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalDisk{root: abs, prefix: defaultNamePrefix, logger: logger, now: time.Now}, nil
}

// Root returns the absolute upload root.
func (d *LocalDisk) Root() string {
	if d == nil {
		return ""
	}
	return d.root
}

// Put writes r into dir under a generated unique name carrying the extension of desiredName.
// dir may be empty (root), relative to the root, or an absolute path inside the root.
func (d *LocalDisk) Put(ctx context.Context, dir, desiredName string, r io.Reader) (BlobPutResult, error) {
	var zero BlobPutResult
	if d == nil {
		return zero, fmt.Errorf("blob store is not configured")
	}
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	target, err := d.resolve(dir)
	if err != nil {
		return zero, err
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return zero, fmt.Errorf("%w: create dir %s: %w", ErrIO, target, err)
	}

	tmp, err := os.CreateTemp(target, ".upload-*")
	if err != nil {
		return zero, fmt.Errorf("%w: create temp file: %w", ErrIO, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		cleanup()
		return zero, fmt.Errorf("%w: write blob: %w", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return zero, fmt.Errorf("%w: close blob: %w", ErrIO, err)
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmpPath)
		return zero, err
	}

	ext := filepath.Ext(filepath.Base(desiredName))
	for i := 0; i < nameMaxAttempts; i++ {
		dst := filepath.Join(target, d.generateName(ext))
		if _, statErr := os.Stat(dst); statErr == nil {
			continue
		} else if !errors.Is(statErr, os.ErrNotExist) {
			_ = os.Remove(tmpPath)
			return zero, fmt.Errorf("%w: stat %s: %w", ErrIO, dst, statErr)
		}
		if err := os.Rename(tmpPath, dst); err != nil {
			_ = os.Remove(tmpPath)
			return zero, fmt.Errorf("%w: rename blob: %w", ErrIO, err)
		}
		return BlobPutResult{Path: dst, SizeBytes: n}, nil
	}

	_ = os.Remove(tmpPath)
	return zero, fmt.Errorf("%w: unable to generate unique blob name", ErrIO)
}

// Open returns a reader for the blob at path, or ErrBlobNotFound.
func (d *LocalDisk) Open(ctx context.Context, path string) (*BlobReader, error) {
	if d == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := d.resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("%w: stat blob: %w", ErrIO, err)
	}
	if info.IsDir() {
		return nil, ErrBlobNotFound
	}

	f, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("%w: open blob: %w", ErrIO, err)
	}
	return &BlobReader{ReadCloser: f, Path: abs, SizeBytes: info.Size()}, nil
}

// Remove deletes the blob at path. Missing files are logged and ignored.
func (d *LocalDisk) Remove(ctx context.Context, path string) error {
	if d == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := d.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			d.logger.Debug("blob already removed", "path", abs)
			return nil
		}
		return fmt.Errorf("%w: remove blob: %w", ErrIO, err)
	}
	d.logger.Debug("blob removed", "path", abs)
	return nil
}

func (d *LocalDisk) generateName(ext string) string {
	return fmt.Sprintf("%s-%d-%d%s", d.prefix, d.now().UnixMilli(), rand.IntN(randomSuffixRange), ext)
}

// resolve maps a relative or absolute path onto the root, rejecting escapes.
func (d *LocalDisk) resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Join(d.root, filepath.Clean(filepath.FromSlash(path)))
	}
	rel, err := filepath.Rel(d.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the upload dir", path)
	}
	return abs, nil
}
