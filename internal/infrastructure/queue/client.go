package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Client enqueue background tasks lên redis
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, password string, db int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		}),
	}
}

// EnqueueCleanupFolders ghi compensation log cho các storage folder mồ côi.
// Worker retry tối đa 5 lần với backoff mặc định của asynq.
func (c *Client) EnqueueCleanupFolders(payload CleanupFoldersPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal cleanup payload: %w", err)
	}

	task := asynq.NewTask(TypeCleanupStorageFolders, data)
	_, err = c.client.Enqueue(task,
		asynq.Queue("low"),
		asynq.MaxRetry(5),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue cleanup task: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
