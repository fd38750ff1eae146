package aws

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 understands just enough of the S3 REST API for single part uploads
// with path style addressing
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")

	if bucket != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case r.Method == http.MethodHead && key == "":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		b, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		f.objects[key] = b
		f.types[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		b, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}

		w.Header().Set("Content-Type", f.types[key])
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestS3(t *testing.T) (*S3Client, *fakeS3) {
	t.Helper()

	fake := &fakeS3{bucket: "drop", objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewS3(Options{
		Bucket:          "drop",
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Endpoint:        srv.URL,
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	return c, fake
}

func TestNewS3MissingBucket(t *testing.T) {
	fake := &fakeS3{bucket: "drop", objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := NewS3(Options{
		Bucket:          "other",
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Endpoint:        srv.URL,
		UsePathStyle:    true,
	})
	assert.Error(t, err)
}

func TestNewS3EmptyBucket(t *testing.T) {
	_, err := NewS3(Options{Region: "us-east-1"})
	assert.ErrorContains(t, err, "bucket")
}

func TestS3PutGetDelete(t *testing.T) {
	c, fake := newTestS3(t)
	ctx := context.Background()

	body := "some file contents"
	require.NoError(t, c.Put(ctx, "1700000000000_notes.txt", strings.NewReader(body), int64(len(body)), "text/plain"))

	assert.Equal(t, []byte(body), fake.objects["1700000000000_notes.txt"])
	assert.Equal(t, "text/plain", fake.types["1700000000000_notes.txt"])

	rc, err := c.Get(ctx, "1700000000000_notes.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, body, string(got))

	require.NoError(t, c.Delete(ctx, "1700000000000_notes.txt"))
	assert.Empty(t, fake.objects)
}

func TestS3GetMissing(t *testing.T) {
	c, _ := newTestS3(t)

	_, err := c.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
