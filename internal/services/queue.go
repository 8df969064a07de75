package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"prasetya/candidate-evaluator/internal/apperrors"
)

// TaskPayload is the sole message shape the worker consumes.
type TaskPayload struct {
	JobID             uuid.UUID `json:"job_id"`
	CVDocumentID      uuid.UUID `json:"cv_document_id"`
	ProjectDocumentID uuid.UUID `json:"project_document_id"`
	JobTitle          string    `json:"job_title"`
}

// JobQueue carries evaluation tasks between the API process and the
// worker. Retry and failure bookkeeping beyond what the broker itself
// provides is out of scope here.
type JobQueue interface {
	Enqueue(ctx context.Context, task TaskPayload) error
	// Dequeue blocks for a bounded interval and returns nil when no
	// task arrived, so consumers can interleave shutdown checks.
	Dequeue(ctx context.Context) (*TaskPayload, error)
}

const dequeueBlockInterval = 5 * time.Second

type redisJobQueue struct {
	client *redis.Client
	key    string
}

func NewRedisJobQueue(client *redis.Client, key string) JobQueue {
	return &redisJobQueue{client: client, key: key}
}

// Enqueue implements JobQueue.
func (q *redisJobQueue) Enqueue(ctx context.Context, task TaskPayload) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal task: %v", apperrors.ErrQueue, err)
	}

	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("%w: failed to enqueue task: %v", apperrors.ErrQueue, err)
	}

	return nil
}

// Dequeue implements JobQueue.
func (q *redisJobQueue) Dequeue(ctx context.Context) (*TaskPayload, error) {
	values, err := q.client.BRPop(ctx, dequeueBlockInterval, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to dequeue task: %v", apperrors.ErrQueue, err)
	}

	// BRPop returns [key, value]
	if len(values) < 2 {
		return nil, fmt.Errorf("%w: unexpected BRPOP reply of length %d", apperrors.ErrQueue, len(values))
	}

	var task TaskPayload
	if err := json.Unmarshal([]byte(values[1]), &task); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal task: %v", apperrors.ErrQueue, err)
	}

	return &task, nil
}
