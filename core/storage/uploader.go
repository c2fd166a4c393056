package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Uploader publishes produced CSV files to the configured bucket.
type Uploader struct {
	client Client
	cfg    Config
	logger *zap.Logger
}

func NewUploader(client Client, cfg Config, logger *zap.Logger) *Uploader {
	return &Uploader{client: client, cfg: cfg, logger: logger}
}

// EnsureBucket creates the target bucket when it does not exist yet.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", u.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.cfg.Bucket, minio.MakeBucketOptions{Region: u.cfg.Region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", u.cfg.Bucket, err)
	}
	u.logger.Info("created bucket", zap.String("bucket", u.cfg.Bucket))
	return nil
}

// UploadFile streams a local CSV file into the bucket under its base name,
// prefixed with the configured key prefix.
func (u *Uploader) UploadFile(ctx context.Context, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open csv for upload: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat csv for upload: %w", err)
	}

	objectName := path.Join(u.cfg.Prefix, filepath.Base(localPath))
	_, err = u.client.PutObject(ctx, u.cfg.Bucket, objectName, f, st.Size(), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectName, err)
	}

	u.logger.Info("uploaded csv",
		zap.String("bucket", u.cfg.Bucket),
		zap.String("object", objectName),
		zap.Int64("size", st.Size()))
	return nil
}
