// cmd/worker/main.go
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"storefront-backend/internal/infrastructure/queue"
	"storefront-backend/pkg/container"
)

func main() {
	// .env optional, env vars thật vẫn override
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] No .env file found, using environment variables")
	}

	c, err := container.NewContainer()
	if err != nil {
		log.Fatalf("[Container] Failed to initialize: %v", err)
	}
	defer c.Cleanup()

	srv := setupAsynqServer(c)
	scheduler := setupScheduler(c)

	mux := asynq.NewServeMux()
	mux.Handle(queue.TypeCleanupStorageFolders, c.CleanupStorageHandler)
	mux.Handle(queue.TypePruneExpiredPromotions, c.PruneExpiredHandler)

	if err := srv.Start(mux); err != nil {
		log.Fatalf("[Worker] Failed to start asynq server: %v", err)
	}
	if err := scheduler.RegisterJobs(); err != nil {
		log.Fatalf("[Scheduler] Failed to register jobs: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("[Scheduler] Failed to start: %v", err)
	}

	log.Println("[Worker] 🚀 Worker started, waiting for tasks...")
	waitForShutdown(srv, scheduler)
}

func setupAsynqServer(c *container.Container) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     c.Config.Redis.Host,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)
}

func setupScheduler(c *container.Container) *queue.Scheduler {
	return queue.NewScheduler(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
}

func waitForShutdown(srv *asynq.Server, scheduler *queue.Scheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[Shutdown] Gracefully stopping...")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Println("[Shutdown] ✓ Stopped")
}
