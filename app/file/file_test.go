package file

import (
	"bitwise74/file-drop/internal/service"
	"bitwise74/file-drop/pkg/validators"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{service.ErrNotFound, http.StatusNotFound, service.ErrNotFound.Error()},
		{service.ErrExpired, http.StatusBadRequest, service.ErrExpired.Error()},
		{service.ErrEmptyInput, http.StatusBadRequest, service.ErrEmptyInput.Error()},
		{fmt.Errorf("%w of 10 MiB", service.ErrSizeLimitExceeded), http.StatusBadRequest, "file size exceeds the maximum limit of 10 MiB"},
		{validators.ErrNameTooLong, http.StatusBadRequest, validators.ErrNameTooLong.Error()},
		{errInvalidCode, http.StatusBadRequest, errInvalidCode.Error()},
		{&service.StorageError{Op: "failed to read file", Subject: "abc123", Err: errors.New("connection reset")}, http.StatusInternalServerError, "Internal server error"},
		{errors.New("anything else"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, msg := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="report.pdf"`, contentDisposition("report.pdf"))
	assert.Equal(t, `attachment; filename="a\\b.txt"`, contentDisposition(`a\b.txt`))
	assert.Equal(t, `attachment; filename="文件"; filename*=UTF-8''%E6%96%87%E4%BB%B6`, contentDisposition("文件"))
}
