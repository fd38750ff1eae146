package db

import (
	"bitwise74/file-drop/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// FileRepository stores file records with gorm
type FileRepository struct {
	DB *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{DB: db}
}

func (r *FileRepository) Create(ctx context.Context, f *model.File) error {
	return r.DB.WithContext(ctx).Create(f).Error
}

// FindByCode returns gorm.ErrRecordNotFound if no file has that code
func (r *FileRepository) FindByCode(ctx context.Context, code string) (*model.File, error) {
	var f model.File

	err := r.DB.
		WithContext(ctx).
		Where("access_code = ?", code).
		First(&f).
		Error
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// FindUploadedBefore returns every file uploaded at or before cutoff, oldest first
func (r *FileRepository) FindUploadedBefore(ctx context.Context, cutoff time.Time) ([]model.File, error) {
	var files []model.File

	// SQLite compares timestamps as text, so both sides have to be in UTC
	cutoff = cutoff.UTC()

	err := r.DB.
		WithContext(ctx).
		Where("uploaded_at <= ?", cutoff).
		Order("uploaded_at").
		Find(&files).
		Error
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Delete removes a single record. Deleting a record that's already gone is not an error
func (r *FileRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.
		WithContext(ctx).
		Delete(&model.File{}, id).
		Error
}
