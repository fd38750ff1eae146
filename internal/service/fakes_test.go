package service

import (
	"bitwise74/file-drop/internal/model"
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"gorm.io/gorm"
)

var errBackend = errors.New("backend unavailable")

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failPut bool
	failGet bool
	failDel map[string]bool
	delWait time.Duration
	puts    int
	gets    int
	deletes []string
}

func newMemBlobs() *memBlobs {
	return &memBlobs{
		objects: map[string][]byte{},
		types:   map[string]string{},
		failDel: map[string]bool{},
	}
}

func (m *memBlobs) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.puts++
	if m.failPut {
		return errBackend
	}

	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	m.objects[key] = b
	m.types[key] = contentType
	return nil
}

func (m *memBlobs) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++
	if m.failGet {
		return nil, errBackend
	}

	b, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}

	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	time.Sleep(m.delWait)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failDel[key] {
		return errBackend
	}

	m.deletes = append(m.deletes, key)
	delete(m.objects, key)
	return nil
}

type memRecords struct {
	mu         sync.Mutex
	files      []model.File
	nextID     uint
	failCreate bool
	failFind   bool
	failDel    map[uint]bool
	creates    int
	finds      int
}

func newMemRecords() *memRecords {
	return &memRecords{nextID: 1, failDel: map[uint]bool{}}
}

func (m *memRecords) Create(_ context.Context, f *model.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creates++
	if m.failCreate {
		return errBackend
	}

	for _, existing := range m.files {
		if existing.AccessCode == f.AccessCode {
			return gorm.ErrDuplicatedKey
		}
	}

	f.ID = m.nextID
	m.nextID++
	m.files = append(m.files, *f)
	return nil
}

func (m *memRecords) FindByCode(_ context.Context, code string) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finds++
	if m.failFind {
		return nil, errBackend
	}

	for _, f := range m.files {
		if f.AccessCode == code {
			return &f, nil
		}
	}

	return nil, gorm.ErrRecordNotFound
}

func (m *memRecords) FindUploadedBefore(_ context.Context, cutoff time.Time) ([]model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failFind {
		return nil, errBackend
	}

	var out []model.File
	for _, f := range m.files {
		if !f.UploadedAt.After(cutoff) {
			out = append(out, f)
		}
	}

	return out, nil
}

func (m *memRecords) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failDel[id] {
		return errBackend
	}

	for i, f := range m.files {
		if f.ID == id {
			m.files = append(m.files[:i], m.files[i+1:]...)
			return nil
		}
	}

	return gorm.ErrRecordNotFound
}

// seed inserts a record and its blob directly, uploaded at the given time
func seed(blobs *memBlobs, records *memRecords, code string, uploadedAt time.Time) model.File {
	key := code + "_blob"
	blobs.objects[key] = []byte("content of " + code)

	f := model.File{
		StorageKey:   key,
		OriginalName: code + ".txt",
		AccessCode:   code,
		ContentType:  "text/plain",
		Size:         int64(len(blobs.objects[key])),
		UploadedAt:   uploadedAt,
	}
	_ = records.Create(context.Background(), &f)
	return f
}
