package blob

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) (*Local, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	l, err := NewLocal(fs, "/data")
	require.NoError(t, err)

	return l, fs
}

func TestLocalPutGet(t *testing.T) {
	l, _ := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, l.Put(ctx, "1700000000000_cafe_photo.png", strings.NewReader("pixels"), 6, "image/png"))

	rc, err := l.Get(ctx, "1700000000000_cafe_photo.png")
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(b))
}

func TestLocalPutLeavesNoTempFiles(t *testing.T) {
	l, fs := newTestLocal(t)

	require.NoError(t, l.Put(context.Background(), "k", strings.NewReader("x"), 1, ""))

	entries, err := afero.ReadDir(fs, filepath.Join("/data", tempDirName))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalKeysStayInsideRoot(t *testing.T) {
	l, fs := newTestLocal(t)

	require.NoError(t, l.Put(context.Background(), "1_../../etc/passwd", strings.NewReader("x"), 1, ""))

	exists, err := afero.Exists(fs, "/etc/passwd")
	require.NoError(t, err)
	assert.False(t, exists)

	rc, err := l.Get(context.Background(), "1_../../etc/passwd")
	require.NoError(t, err)
	rc.Close()
}

func TestLocalInvalidKey(t *testing.T) {
	l, _ := newTestLocal(t)

	for _, key := range []string{"", ".", ".."} {
		assert.ErrorIs(t, l.Put(context.Background(), key, strings.NewReader("x"), 1, ""), ErrInvalidKey)
	}
}

func TestLocalGetMissing(t *testing.T) {
	l, _ := newTestLocal(t)

	_, err := l.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalDelete(t *testing.T) {
	l, _ := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, l.Put(ctx, "k", strings.NewReader("x"), 1, ""))
	require.NoError(t, l.Delete(ctx, "k"))

	_, err := l.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, l.Delete(ctx, "k"), "deleting twice is fine")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestLocalPutFailureKeepsNothing(t *testing.T) {
	l, _ := newTestLocal(t)
	ctx := context.Background()

	assert.Error(t, l.Put(ctx, "k", failingReader{}, 1, ""))

	_, err := l.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalPutCancelled(t *testing.T) {
	l, _ := newTestLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, l.Put(ctx, "k", strings.NewReader("x"), 1, ""), context.Canceled)
}
