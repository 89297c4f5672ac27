package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"storefront-backend/internal/config"
)

// File là một file upload đã đọc vào memory (controller layer lo việc đọc multipart)
type File struct {
	Name        string
	Data        []byte
	ContentType string
}

// UploadResult mô tả object đã upload thành công
type UploadResult struct {
	FileName string `json:"fileName"`
	Bucket   string `json:"bucketName"`
	Key      string `json:"key"`
}

// MinIOStorage handles file uploads to MinIO
type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	processor *ImageProcessor
}

// NewMinIOStorage khởi tạo MinIO client
func NewMinIOStorage(cfg config.MinIOConfig, processor *ImageProcessor) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL, // false cho local, true cho production
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	// Kiểm tra bucket có tồn tại không, nếu không thì tạo mới
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStorage{
		client:    client,
		bucket:    cfg.Bucket,
		processor: processor,
	}, nil
}

// objectKey build key theo layout {tenant}/{folder}/{file}
func (s *MinIOStorage) objectKey(folderPath, tenantID, fileName string) string {
	return path.Join(tenantID, folderPath, fileName)
}

// UploadSingleFile validate + normalize ảnh rồi upload.
// Trả về thông tin object; lỗi ở bất kỳ bước nào → error (caller lo rollback).
func (s *MinIOStorage) UploadSingleFile(ctx context.Context, file File, folderPath, tenantID string) (*UploadResult, error) {
	if err := s.processor.ValidateImage(file.Data); err != nil {
		return nil, fmt.Errorf("invalid image %s: %w", file.Name, err)
	}

	data, err := s.processor.Normalize(file.Data)
	if err != nil {
		return nil, fmt.Errorf("normalize image %s: %w", file.Name, err)
	}

	key := s.objectKey(folderPath, tenantID, file.Name)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "image/jpeg"})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &UploadResult{
		FileName: file.Name,
		Bucket:   s.bucket,
		Key:      key,
	}, nil
}

// UploadMultipleFiles upload lần lượt, fail ở file nào → dừng và trả lỗi.
// Trả về JSON-encoded danh sách file name (format lưu trong gallery field).
func (s *MinIOStorage) UploadMultipleFiles(ctx context.Context, files []File, folderPath, tenantID string) (string, error) {
	names := make([]string, 0, len(files))
	for _, f := range files {
		res, err := s.UploadSingleFile(ctx, f, folderPath, tenantID)
		if err != nil {
			return "", err
		}
		names = append(names, res.FileName)
	}

	encoded, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("encode file names: %w", err)
	}
	return string(encoded), nil
}

// DeleteFolder xóa mọi object dưới {tenant}/{folder}/.
// Best-effort: caller swallow lỗi và log, không abort flow chính.
func (s *MinIOStorage) DeleteFolder(ctx context.Context, folderPath, tenantID string) error {
	prefix := path.Join(tenantID, folderPath) + "/"

	objectsCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectsCh {
		if object.Err != nil {
			return fmt.Errorf("error listing objects: %w", object.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete object %s: %w", object.Key, err)
		}
	}

	return nil
}
