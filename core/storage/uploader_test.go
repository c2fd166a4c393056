package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"esl-middleware/core/storage"
	"esl-middleware/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEnsureBucketCreatesWhenMissing(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "esl-sync").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "esl-sync", mock.Anything).Return(nil)

	u := storage.NewUploader(client, storage.Config{Bucket: "esl-sync"}, zap.NewNop())
	require.NoError(t, u.EnsureBucket(context.Background()))
	client.AssertExpectations(t)
}

func TestEnsureBucketSkipsWhenPresent(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "esl-sync").Return(true, nil)

	u := storage.NewUploader(client, storage.Config{Bucket: "esl-sync"}, zap.NewNop())
	require.NoError(t, u.EnsureBucket(context.Background()))
	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadFileUsesBaseNameAndPrefix(t *testing.T) {
	path := writeCSV(t, "STOCK_20260823093015.csv", "SKU,CurrentPrice\nA1,1.00\n")

	client := new(mocks.Client)
	client.On("PutObject",
		mock.Anything, "esl-sync", "exports/STOCK_20260823093015.csv",
		mock.Anything, int64(25), mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
			return opts.ContentType == "text/csv"
		}),
	).Return(minio.UploadInfo{}, nil)

	u := storage.NewUploader(client, storage.Config{Bucket: "esl-sync", Prefix: "exports"}, zap.NewNop())
	require.NoError(t, u.UploadFile(context.Background(), path))
	client.AssertExpectations(t)
}

func TestUploadFileMissingLocalFile(t *testing.T) {
	client := new(mocks.Client)
	u := storage.NewUploader(client, storage.Config{Bucket: "esl-sync"}, zap.NewNop())

	err := u.UploadFile(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
