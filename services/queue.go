package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	FEED_REFRESH_QUEUE = "feed_refresh_queue"
	QUEUE_WORKER_COUNT = 5
)

// FeedRefreshTask - задача на пересчет кеша ленты после изменения контента
type FeedRefreshTask struct {
	PostID int64  `json:"post_id"`
	Action string `json:"action"` // "create", "update", "delete", "comment_create"
}

type QueueService struct {
	feedService *FeedService
}

func NewQueueService() *QueueService {
	return &QueueService{
		feedService: NewFeedService(),
	}
}

// StartWorkers запускает воркеры для обработки очереди
func (qs *QueueService) StartWorkers(ctx context.Context) {
	for i := 0; i < QUEUE_WORKER_COUNT; i++ {
		go qs.worker(ctx, i)
	}
}

// worker обрабатывает задачи из очереди
func (qs *QueueService) worker(ctx context.Context, workerID int) {
	log.Printf("Feed refresh worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Feed refresh worker %d stopping", workerID)
			return
		default:
			// Получаем задачу из очереди (блокирующий вызов с таймаутом)
			result, err := RedisClient.BLPop(ctx, 5*time.Second, FEED_REFRESH_QUEUE).Result()
			if err != nil {
				if err == redis.Nil {
					// Таймаут - продолжаем
					continue
				}
				log.Printf("Worker %d error getting task: %v", workerID, err)
				time.Sleep(time.Second)
				continue
			}

			if len(result) < 2 {
				continue
			}

			var task FeedRefreshTask
			if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
				log.Printf("Worker %d error unmarshaling task: %v", workerID, err)
				continue
			}

			qs.processTask(ctx, &task, workerID)
		}
	}
}

// processTask пересчитывает кеш ленты и рассылает событие клиентам
func (qs *QueueService) processTask(ctx context.Context, task *FeedRefreshTask, workerID int) {
	log.Printf("Worker %d processing feed refresh for post %d, action: %s", workerID, task.PostID, task.Action)

	if err := qs.feedService.RebuildFeedCache(ctx); err != nil {
		log.Printf("Worker %d failed to rebuild feed cache: %v", workerID, err)
	}

	event := ContentEvent{
		Event:  "feed_changed",
		PostID: task.PostID,
		Action: task.Action,
	}
	if err := PublishContentEvent(ctx, event); err != nil {
		// Fallback: если RabbitMQ недоступен, рассылаем напрямую через WebSocket
		log.Printf("Worker %d RabbitMQ error, broadcasting directly: %v", workerID, err)
		broadcastContentEvent(event)
	}
}

// EnqueueFeedRefresh добавляет задачу пересчета ленты в очередь
func (qs *QueueService) EnqueueFeedRefresh(ctx context.Context, task FeedRefreshTask) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}

	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := RedisClient.RPush(ctx, FEED_REFRESH_QUEUE, taskData).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Printf("Enqueued feed refresh for post %d, action: %s", task.PostID, task.Action)
	return nil
}

// GetQueueStats возвращает длину очереди
func (qs *QueueService) GetQueueStats(ctx context.Context) (int64, error) {
	if RedisClient == nil {
		return 0, fmt.Errorf("redis not available")
	}
	return RedisClient.LLen(ctx, FEED_REFRESH_QUEUE).Result()
}
