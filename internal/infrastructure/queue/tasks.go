package queue

// Task type names, dùng chung giữa enqueue client và worker mux
const (
	TypeCleanupStorageFolders   = "storage:cleanup_folders"
	TypePruneExpiredPromotions  = "promotion:prune_expired"
)

// CleanupFoldersPayload là compensation log entry cho một sync attempt thất bại:
// danh sách folder đã upload cần xóa (retry bởi worker).
type CleanupFoldersPayload struct {
	TenantID string   `json:"tenant_id"`
	Folders  []string `json:"folders"`
}
