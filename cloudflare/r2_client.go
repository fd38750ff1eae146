// Package cloudflare provides a client for interacting with the Cloudflare API.
package cloudflare

import (
	a "bitwise74/file-drop/aws"
	"errors"
	"fmt"
)

type R2Options struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// NewR2 returns an S3 client pointed at the account's R2 endpoint
func NewR2(o R2Options) (*a.S3Client, error) {
	if o.AccountID == "" {
		return nil, errors.New("account id can't be empty")
	}

	return a.NewS3(a.Options{
		Bucket:          o.Bucket,
		Region:          "auto",
		AccessKeyID:     o.AccessKeyID,
		SecretAccessKey: o.SecretAccessKey,
		Endpoint:        fmt.Sprintf("https://%s.r2.cloudflarestorage.com", o.AccountID),
	})
}
