package app

import (
	"bitwise74/file-drop/aws"
	"bitwise74/file-drop/cloudflare"
	"bitwise74/file-drop/db"
	"bitwise74/file-drop/internal"
	"bitwise74/file-drop/internal/blob"
	"bitwise74/file-drop/internal/service"
	"fmt"

	"github.com/spf13/afero"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewDeps opens the database and blob store selected in the config and builds
// the file service and the expiry cleanup job on top of them
func NewDeps() (*internal.Deps, error) {
	d := &internal.Deps{}

	conn, err := db.New(v.GetString("db.driver"), v.GetString("db.dsn"))
	if err != nil {
		return nil, err
	}
	d.DB = conn

	blobs, err := newBlobStore()
	if err != nil {
		d.Close()
		return nil, err
	}

	d.Files = service.NewFileService(blobs, db.NewFileRepository(conn), service.Config{
		PublicURL:    v.GetString("host.public_url"),
		MaxSize:      v.GetInt64("upload.max_size"),
		Expiry:       v.GetDuration("files.expiry"),
		CodeAttempts: v.GetInt("files.code_attempts"),
		Timeout:      v.GetDuration("storage.timeout"),
	})

	d.Cleanup, err = service.NewExpiryCleanup(d.Files, v.GetString("cleanup.schedule"), v.GetDuration("cleanup.timeout"))
	if err != nil {
		d.Close()
		return nil, err
	}

	return d, nil
}

func newBlobStore() (service.BlobStore, error) {
	storage := v.GetString("storage.type")
	zap.L().Info("Using blob storage", zap.String("type", storage))

	switch storage {
	case "s3":
		c, err := aws.NewS3(aws.Options{
			Bucket:          v.GetString("aws.bucket"),
			Region:          v.GetString("aws.region"),
			AccessKeyID:     v.GetString("aws.access_key"),
			SecretAccessKey: v.GetString("aws.secret_access_key"),
			Endpoint:        v.GetString("aws.endpoint"),
			// Custom endpoints are nearly always MinIO or similar
			UsePathStyle: v.GetString("aws.endpoint") != "",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		return c, nil
	case "r2":
		c, err := cloudflare.NewR2(cloudflare.R2Options{
			AccountID:       v.GetString("cloudflare.account_id"),
			AccessKeyID:     v.GetString("cloudflare.access_key_id"),
			SecretAccessKey: v.GetString("cloudflare.secret_access_key"),
			Bucket:          v.GetString("cloudflare.bucket"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize R2 client, %w", err)
		}

		return c, nil
	case "local":
		l, err := blob.NewLocal(afero.NewOsFs(), v.GetString("storage.local_path"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage, %w", err)
		}

		return l, nil
	default:
		return nil, fmt.Errorf("invalid storage type %q", storage)
	}
}
