package aws

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

const partSize = 5 << 20

// ErrObjectNotFound is returned by Get when the key doesn't exist in the bucket
var ErrObjectNotFound = errors.New("object not found")

// Put uploads body under key. Uploads go through the upload manager which
// buffers the body into seekable parts, so any io.Reader works and bodies
// bigger than one part are sent as a multipart upload
func (c *S3Client) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	u := manager.NewUploader(c.C, func(u *manager.Uploader) {
		u.Concurrency = 5
		u.PartSize = partSize
	})

	input := &s3.PutObjectInput{
		Bucket:      c.Bucket,
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}

	_, err := u.Upload(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to upload object to S3, %w", err)
	}

	zap.L().Debug("Object uploaded", zap.String("key", key), zap.Int64("size", size))
	return nil
}

func (c *S3Client) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := c.C.GetObject(ctx, &s3.GetObjectInput{
		Bucket: c.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}

		return nil, fmt.Errorf("failed to get object from S3, %w", err)
	}

	return out.Body, nil
}

// Delete removes key from the bucket. S3 treats deleting a missing key as a success
func (c *S3Client) Delete(ctx context.Context, key string) error {
	_, err := c.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: c.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3, %w", err)
	}

	return nil
}
