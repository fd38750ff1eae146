// Package model defines database models
package model

import "time"

type File struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Key of the blob in the object store, <upload unix millis>_<normalized name>.
	// Never shown to the downloader and never parsed back
	StorageKey string `gorm:"not null" json:"-"`

	// Original file name exactly as it was uploaded
	OriginalName string `json:"name"`

	// Public handle of the file. Uniqueness is enforced by the index, not by the generator
	AccessCode string `gorm:"size:8;uniqueIndex;not null" json:"code"`

	URL         string `gorm:"not null" json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `gorm:"not null" json:"size"`

	// The only field governing expiry. Records are never updated after creation
	UploadedAt time.Time `gorm:"not null;index" json:"uploaded_at"`
}

// ExpiresAt returns the last instant at which the file can still be downloaded
func (f *File) ExpiresAt(window time.Duration) time.Time {
	return f.UploadedAt.Add(window)
}

// Expired reports whether the file is past its window at now. A file that is
// exactly window old is still valid
func (f *File) Expired(now time.Time, window time.Duration) bool {
	return f.UploadedAt.Before(now.Add(-window))
}
