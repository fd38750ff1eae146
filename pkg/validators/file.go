// Package validators checks request input before it reaches the file service
package validators

import (
	"bufio"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MaxFileNameLength = 255
	sniffLength       = 3072
	octetStream       = "application/octet-stream"
)

var (
	ErrNoFile      = errors.New("no file provided")
	ErrNoFileName  = errors.New("file name can't be empty")
	ErrNameTooLong = errors.New("file name is too long")
)

// FileHeader validates the multipart part describing the uploaded file.
// Size limits are left to the file service
func FileHeader(fh *multipart.FileHeader) error {
	if fh == nil {
		return ErrNoFile
	}

	name := filepath.Base(fh.Filename)
	if fh.Filename == "" || name == "." || name == string(filepath.Separator) {
		return ErrNoFileName
	}

	if len(fh.Filename) > MaxFileNameLength {
		return ErrNameTooLong
	}

	return nil
}

// ContentType returns the declared content type when it is meaningful,
// otherwise the type sniffed from the first bytes of r. The returned reader
// must be used in place of r
func ContentType(declared string, r io.Reader) (string, io.Reader, error) {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != octetStream {
			return declared, r, nil
		}
	}

	br := bufio.NewReaderSize(r, sniffLength)

	head, err := br.Peek(sniffLength)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", nil, err
	}

	return mimetype.Detect(head).String(), br, nil
}
