// Package blob contains the filesystem backed blob store used when no
// object storage is configured
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const tempDirName = ".tmp"

var (
	ErrNotFound   = errors.New("blob with key not found")
	ErrInvalidKey = errors.New("invalid blob key")
)

// Local keeps every blob as a single file under Root. Keys are escaped so they
// can never leave the root directory
type Local struct {
	Fs   afero.Fs
	Root string
}

// NewLocal prepares root on fs. Use afero.NewOsFs() in production
func NewLocal(fs afero.Fs, root string) (*Local, error) {
	if err := fs.MkdirAll(filepath.Join(root, tempDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory, %w", err)
	}

	return &Local{Fs: fs, Root: root}, nil
}

func (l *Local) path(key string) (string, error) {
	name := url.PathEscape(key)
	if key == "" || name == "." || name == ".." {
		return "", ErrInvalidKey
	}

	return filepath.Join(l.Root, name), nil
}

// Put writes to a temporary file first and renames it into place, so a
// failed write never leaves a partial blob behind
func (l *Local) Put(ctx context.Context, key string, body io.Reader, _ int64, _ string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}

	tmp, err := afero.TempFile(l.Fs, filepath.Join(l.Root, tempDirName), "upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file, %w", err)
	}
	defer l.Fs.Remove(tmp.Name())

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: body}); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write blob, %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close blob, %w", err)
	}

	if err := l.Fs.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to move blob into place, %w", err)
	}

	return nil
}

func (l *Local) Get(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, err
	}

	f, err := l.Fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}

		return nil, fmt.Errorf("failed to open blob, %w", err)
	}

	return f, nil
}

// Delete removes the blob. A missing blob counts as deleted
func (l *Local) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}

	if err := l.Fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob, %w", err)
	}

	return nil
}

// ctxReader stops a copy once the context is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
