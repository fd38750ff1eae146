// Package service contains the file drop core along with the background
// jobs that keep the storage clean
package service

import (
	"bitwise74/file-drop/internal/model"
	"bitwise74/file-drop/pkg/util"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultMaxSize      = 10 << 20
	DefaultExpiry       = 24 * time.Hour
	DefaultCodeAttempts = 5
	DefaultTimeout      = time.Minute

	defaultContentType = "application/octet-stream"
	downloadPath       = "/api/file/download/"
)

// BlobStore holds the file contents under opaque keys
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// FileRepository persists file records. Implementations must return
// gorm.ErrRecordNotFound for unknown codes and gorm.ErrDuplicatedKey when
// the access code is already taken
type FileRepository interface {
	Create(ctx context.Context, f *model.File) error
	FindByCode(ctx context.Context, code string) (*model.File, error)
	FindUploadedBefore(ctx context.Context, cutoff time.Time) ([]model.File, error)
	Delete(ctx context.Context, id uint) error
}

// Config holds the policy of the file service. Zero values are replaced
// with the defaults
type Config struct {
	// Prefix of the public download URL, e.g. https://drop.example.com
	PublicURL string
	// Largest accepted upload in bytes
	MaxSize int64
	// How long a file can be downloaded after upload
	Expiry time.Duration
	// How many access codes to try before giving up on a collision streak
	CodeAttempts int
	// Deadline of a single backend call
	Timeout time.Duration
}

type FileService struct {
	blobs   BlobStore
	records FileRepository
	cfg     Config

	now      func() time.Time
	generate func() (string, error)
}

type Option func(*FileService)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *FileService) {
		s.now = now
	}
}

// WithCodeGenerator replaces util.GenerateAccessCode
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *FileService) {
		s.generate = gen
	}
}

func NewFileService(blobs BlobStore, records FileRepository, cfg Config, opts ...Option) *FileService {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = DefaultExpiry
	}
	if cfg.CodeAttempts <= 0 {
		cfg.CodeAttempts = DefaultCodeAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.PublicURL = strings.TrimSuffix(cfg.PublicURL, "/")

	s := &FileService{
		blobs:    blobs,
		records:  records,
		cfg:      cfg,
		now:      time.Now,
		generate: util.GenerateAccessCode,
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

func (s *FileService) Config() Config {
	return s.cfg
}

// Upload is a file handed over by the transport layer
type Upload struct {
	Content     io.Reader
	Name        string
	Size        int64 // Declared size, the blob write never reads past it
	ContentType string
}

// Download is a stored file ready to be streamed back. Content must be closed
type Download struct {
	Content     io.ReadCloser
	Name        string
	ContentType string
	Size        int64
	ExpiresAt   time.Time
}

// Store validates the upload, writes it to the blob store and only then saves the
// record, so a record always points at an existing blob. If saving the record fails
// the blob is left behind and logged
func (s *FileService) Store(ctx context.Context, u Upload) (*model.File, error) {
	if u.Size <= 0 || u.Content == nil {
		return nil, ErrEmptyInput
	}

	if u.Size > s.cfg.MaxSize {
		return nil, fmt.Errorf("%w of %s", ErrSizeLimitExceeded, humanize.IBytes(uint64(s.cfg.MaxSize)))
	}

	// Declared sizes can lie, make sure there's at least one byte before touching storage
	body := bufio.NewReader(u.Content)
	if _, err := body.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}

		return nil, storageErr("failed to read upload", u.Name, err)
	}

	contentType := u.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	now := s.now().UTC()
	key := fmt.Sprintf("%d_%s", now.UnixMilli(), util.NormalizeFileName(u.Name))

	putCtx, cancel := s.backendCtx(ctx)
	defer cancel()

	content := &countingReader{r: io.LimitReader(body, u.Size)}
	if err := s.blobs.Put(putCtx, key, content, u.Size, contentType); err != nil {
		zap.L().Error("Failed to write blob", zap.String("name", u.Name), zap.String("storage_key", key), zap.Error(err))
		return nil, storageErr("failed to store file", u.Name, err)
	}

	f := &model.File{
		StorageKey:   key,
		OriginalName: u.Name,
		ContentType:  contentType,
		Size:         content.n,
		UploadedAt:   now,
	}

	if err := s.createRecord(ctx, f); err != nil {
		zap.L().Warn("Failed to save file record, blob is orphaned",
			zap.String("name", u.Name),
			zap.String("storage_key", key),
			zap.Error(err),
		)
		return nil, storageErr("failed to store file", u.Name, err)
	}

	zap.L().Debug("File stored", zap.String("code", f.AccessCode), zap.String("storage_key", key), zap.Int64("size", f.Size))
	return f, nil
}

// createRecord inserts f under a fresh access code, drawing a new one every
// time the unique index rejects it
func (s *FileService) createRecord(ctx context.Context, f *model.File) error {
	for attempt := 1; attempt <= s.cfg.CodeAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			return fmt.Errorf("failed to generate access code, %w", err)
		}

		f.AccessCode = code
		f.URL = s.cfg.PublicURL + downloadPath + code

		createCtx, cancel := s.backendCtx(ctx)
		err = s.records.Create(createCtx, f)
		cancel()
		if err == nil {
			return nil
		}

		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		zap.L().Debug("Access code already taken, retrying", zap.String("code", code), zap.Int("attempt", attempt))
	}

	return ErrCodeExhausted
}

// Download looks up the record behind code and opens its blob. Expiry is decided
// from the record alone, an expired file never reaches the blob store
func (s *FileService) Download(ctx context.Context, code string) (*Download, error) {
	findCtx, cancel := s.backendCtx(ctx)
	defer cancel()

	f, err := s.records.FindByCode(findCtx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		zap.L().Error("Failed to look up file", zap.String("code", code), zap.Error(err))
		return nil, storageErr("failed to look up file", code, err)
	}

	if f.Expired(s.now(), s.cfg.Expiry) {
		return nil, ErrExpired
	}

	// The stream outlives this call so it can't share the deadline above
	rc, err := s.blobs.Get(context.WithoutCancel(ctx), f.StorageKey)
	if err != nil {
		// The record says the blob exists, so this is on us and not on the user
		zap.L().Error("Failed to read blob of a valid record",
			zap.String("code", code),
			zap.String("storage_key", f.StorageKey),
			zap.Error(err),
		)
		return nil, storageErr("failed to read file", code, err)
	}

	return &Download{
		Content:     rc,
		Name:        f.OriginalName,
		ContentType: f.ContentType,
		Size:        f.Size,
		ExpiresAt:   f.ExpiresAt(s.cfg.Expiry),
	}, nil
}

// DeleteExpiredFiles removes every file uploaded at least one expiry window ago
// and returns how many records were deleted.
//
// The blob goes first and the record second, a record whose blob could not be
// deleted stays for the next sweep. Per file failures are logged and skipped
func (s *FileService) DeleteExpiredFiles(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.cfg.Expiry)

	findCtx, cancel := s.backendCtx(ctx)
	files, err := s.records.FindUploadedBefore(findCtx, cutoff)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("failed to query expired files, %w", err)
	}

	deleted := 0
	for i := range files {
		// A single delete is never cut off, but the sweep stops between files
		if err := ctx.Err(); err != nil {
			zap.L().Warn("Expired file cleanup interrupted", zap.Int("found", len(files)), zap.Int("deleted", deleted), zap.Error(err))
			return deleted, err
		}

		f := &files[i]

		if err := s.deleteFile(ctx, f); err != nil {
			zap.L().Error("Failed to delete expired file",
				zap.Uint("id", f.ID),
				zap.String("code", f.AccessCode),
				zap.String("storage_key", f.StorageKey),
				zap.Error(err),
			)
			continue
		}

		deleted++
	}

	zap.L().Info("Expired files deleted", zap.Int("found", len(files)), zap.Int("deleted", deleted), zap.Time("cutoff", cutoff))
	return deleted, nil
}

func (s *FileService) deleteFile(ctx context.Context, f *model.File) error {
	blobCtx, cancel := s.backendCtx(ctx)
	defer cancel()

	if err := s.blobs.Delete(blobCtx, f.StorageKey); err != nil {
		// Keep the record so the next sweep retries the blob
		return fmt.Errorf("failed to delete blob, %w", err)
	}

	recordCtx, cancelRecord := s.backendCtx(ctx)
	defer cancelRecord()

	if err := s.records.Delete(recordCtx, f.ID); err != nil {
		return fmt.Errorf("failed to delete record, %w", err)
	}

	return nil
}

// backendCtx bounds a single backend call. A client going away mid request
// doesn't abort it, the call either completes or hits the deadline
func (s *FileService) backendCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Timeout)
}

// countingReader records how many bytes the blob store actually consumed
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
