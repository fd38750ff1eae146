package internal

import (
	"bitwise74/file-drop/internal/service"
	"bitwise74/file-drop/pkg/middleware"

	"gorm.io/gorm"
)

type Deps struct {
	DB          *gorm.DB
	Files       *service.FileService
	Cleanup     *service.ExpiryCleanup
	RateLimiter *middleware.RateLimiter
}

// Close releases the database pool and background goroutines. The cleanup
// job is stopped separately since it needs a deadline
func (d *Deps) Close() error {
	if d.RateLimiter != nil {
		d.RateLimiter.Close()
	}

	if d.DB == nil {
		return nil
	}

	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
