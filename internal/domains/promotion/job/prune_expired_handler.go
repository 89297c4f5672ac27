package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"storefront-backend/internal/domains/promotion/repository"
)

// PruneExpiredHandler soft-delete các promotion đã quá end_time.
// Chạy định kỳ từ scheduler.
type PruneExpiredHandler struct {
	promos repository.PromotionRepository
}

func NewPruneExpiredHandler(promos repository.PromotionRepository) *PruneExpiredHandler {
	return &PruneExpiredHandler{promos: promos}
}

func (h *PruneExpiredHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	pruned, err := h.promos.PruneExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune expired promotions")
		return fmt.Errorf("prune expired promotions: %w", err)
	}

	if pruned > 0 {
		log.Info().Int64("count", pruned).Msg("Pruned expired promotions")
	}
	return nil
}
