package service

import (
	"context"

	"storefront-backend/internal/infrastructure/queue"
	"storefront-backend/internal/infrastructure/storage"
	"storefront-backend/pkg/logger"
)

// ObjectStorage là contract với object-storage client (minio)
type ObjectStorage interface {
	UploadSingleFile(ctx context.Context, file storage.File, folderPath, tenantID string) (*storage.UploadResult, error)
	UploadMultipleFiles(ctx context.Context, files []storage.File, folderPath, tenantID string) (string, error)
	DeleteFolder(ctx context.Context, folderPath, tenantID string) error
}

// CodeGenerator là contract với sequence generator (redis INCR)
type CodeGenerator interface {
	GenerateCode(ctx context.Context, prefix string, minPadLength int) (string, error)
}

// TaskQueue ghi compensation log cho worker xử lý retry
type TaskQueue interface {
	EnqueueCleanupFolders(payload queue.CleanupFoldersPayload) error
}

// uploadTracker wrap ObjectStorage và ghi nhớ mọi folder đã upload trong
// một sync attempt. Khi attempt fail, Rollback xóa best-effort từng folder;
// folder xóa không được sẽ vào compensation log để worker retry.
type uploadTracker struct {
	storage  ObjectStorage
	tasks    TaskQueue
	tenantID string
	folders  []string
}

func newUploadTracker(st ObjectStorage, tasks TaskQueue, tenantID string) *uploadTracker {
	return &uploadTracker{storage: st, tasks: tasks, tenantID: tenantID}
}

func (t *uploadTracker) UploadSingleFile(ctx context.Context, file storage.File, folderPath, tenantID string) (*storage.UploadResult, error) {
	res, err := t.storage.UploadSingleFile(ctx, file, folderPath, tenantID)
	if err == nil {
		t.track(folderPath)
	}
	return res, err
}

func (t *uploadTracker) UploadMultipleFiles(ctx context.Context, files []storage.File, folderPath, tenantID string) (string, error) {
	res, err := t.storage.UploadMultipleFiles(ctx, files, folderPath, tenantID)
	if err == nil && len(files) > 0 {
		t.track(folderPath)
	}
	return res, err
}

func (t *uploadTracker) DeleteFolder(ctx context.Context, folderPath, tenantID string) error {
	return t.storage.DeleteFolder(ctx, folderPath, tenantID)
}

func (t *uploadTracker) track(folder string) {
	for _, f := range t.folders {
		if f == folder {
			return
		}
	}
	t.folders = append(t.folders, folder)
}

// Rollback dọn mọi folder đã touch trong attempt này.
// Lỗi xóa được log và swallow, flow chính đã fail rồi, lỗi gốc mới
// là thứ propagate lên caller.
func (t *uploadTracker) Rollback(ctx context.Context) {
	if len(t.folders) == 0 {
		return
	}

	var failed []string
	for _, folder := range t.folders {
		if err := t.storage.DeleteFolder(ctx, folder, t.tenantID); err != nil {
			logger.Warn("Failed to delete storage folder during rollback", map[string]interface{}{
				"folder": folder,
				"error":  err.Error(),
			})
			failed = append(failed, folder)
		}
	}

	if len(failed) > 0 && t.tasks != nil {
		err := t.tasks.EnqueueCleanupFolders(queue.CleanupFoldersPayload{
			TenantID: t.tenantID,
			Folders:  failed,
		})
		if err != nil {
			logger.Error("Failed to enqueue storage cleanup task", err)
		}
	}

	t.folders = nil
}
