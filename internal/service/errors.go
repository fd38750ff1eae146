package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput        = errors.New("failed to store empty file")
	ErrSizeLimitExceeded = errors.New("file size exceeds the maximum limit")
	ErrNotFound          = errors.New("file not found")
	ErrExpired           = errors.New("file has expired and can no longer be accessed")
	ErrStorage           = errors.New("storage failure")
	ErrCodeExhausted     = errors.New("could not generate a unique access code")
)

// StorageError is returned when a backend (blob or metadata store) fails.
// Subject is the original file name or the access code, whichever the
// operation was working with, so the failure can be traced from the logs
type StorageError struct {
	Op      string
	Subject string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %q, %v", e.Op, e.Subject, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes every StorageError match ErrStorage
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageErr(op, subject string, err error) error {
	return &StorageError{Op: op, Subject: subject, Err: err}
}
