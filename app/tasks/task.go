package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type TaskType string

const (
	TaskTypeRenderFeed     TaskType = "render_feed"
	TaskTypeSyncBlogConfig TaskType = "sync_blog_config"
)

const (
	DefaultMaxRetries = 3
	MaxRetryDelay     = 30 * time.Second
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetBlogName() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	RetryDelay() time.Duration
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID         string
	Type       TaskType
	BlogName   string
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetBlogName() string {
	return t.BlogName
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) GetMaxRetries() int {
	return t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

// RetryDelay doubles with every retry, starting at one second.
func (t *Task) RetryDelay() time.Duration {
	if t.RetryCount < 1 {
		return 0
	}
	delay := time.Duration(1<<uint(t.RetryCount-1)) * time.Second
	return min(delay, MaxRetryDelay)
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, blogName string) Task {
	uniqueID := fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Intn(10000))

	return Task{
		ID:         uniqueID,
		Type:       taskType,
		BlogName:   blogName,
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
	}
}
