package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"storefront-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr, password string, db int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

// RegisterJobs đăng ký toàn bộ cron jobs
func (s *Scheduler) RegisterJobs() error {
	// Soft-delete các promotion đã quá end_time, chạy mỗi giờ
	task := asynq.NewTask(TypePruneExpiredPromotions, nil)
	entryID, err := s.scheduler.Register("0 * * * *", task, asynq.Queue("low"))
	if err != nil {
		return fmt.Errorf("register prune expired promotions: %w", err)
	}

	logger.Info("Registered scheduled job", map[string]interface{}{
		"task":     TypePruneExpiredPromotions,
		"entry_id": entryID,
		"cron":     "0 * * * *",
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
