package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"storefront-backend/internal/infrastructure/queue"
)

// FolderDeleter là phần contract storage mà handler này cần
type FolderDeleter interface {
	DeleteFolder(ctx context.Context, folderPath, tenantID string) error
}

// CleanupStorageHandler xử lý compensation log: xóa các storage folder
// mồ côi từ những sync attempt thất bại. Lỗi → asynq retry với backoff.
type CleanupStorageHandler struct {
	storage FolderDeleter
}

func NewCleanupStorageHandler(storage FolderDeleter) *CleanupStorageHandler {
	return &CleanupStorageHandler{storage: storage}
}

func (h *CleanupStorageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.CleanupFoldersPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal cleanup payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	for _, folder := range payload.Folders {
		if err := h.storage.DeleteFolder(ctx, folder, payload.TenantID); err != nil {
			log.Error().
				Err(err).
				Str("folder", folder).
				Msg("Failed to delete orphaned storage folder")
			return fmt.Errorf("delete folder %s: %w", folder, err)
		}
	}

	log.Info().
		Int("folders", len(payload.Folders)).
		Msg("Orphaned storage folders cleaned up")
	return nil
}
