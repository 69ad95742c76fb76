package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/rdf2rss/app/database"
	"github.com/lysyi3m/rdf2rss/app/feed"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

var ErrAlreadyQueued = errors.New("render already queued")

type Scheduler struct {
	feedRepo    database.FeedRepository
	configCache *feed.ConfigCache
	newRenderer RendererFactory
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	mu       sync.Mutex
	inFlight map[string]bool // blogs with a queued or running render task
}

func NewScheduler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	newRenderer RendererFactory, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		feedRepo:    feedRepo,
		configCache: configCache,
		newRenderer: newRenderer,
		interval:    interval,
		workerCount: max(workerCount, 1),
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
		inFlight:    make(map[string]bool),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if task.GetType() == TaskTypeRenderFeed && task.GetRetryCount() == 0 {
		if !s.claim(task.GetBlogName()) {
			return fmt.Errorf("blog '%s': %w", task.GetBlogName(), ErrAlreadyQueued)
		}
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		s.release(task)
		return s.ctx.Err()
	default:
		s.release(task)
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) NewRenderTask(blogConfig *feed.Config) TaskInterface {
	return NewRenderFeedTask(blogConfig, s.newRenderer, s.feedRepo)
}

func (s *Scheduler) NewSyncTask(blogConfig *feed.Config) TaskInterface {
	return NewSyncBlogConfigTask(blogConfig, s.feedRepo)
}

func (s *Scheduler) claim(blogName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[blogName] {
		return false
	}
	s.inFlight[blogName] = true
	return true
}

func (s *Scheduler) release(task TaskInterface) {
	if task.GetType() != TaskTypeRenderFeed {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, task.GetBlogName())
}

func (s *Scheduler) enqueueStartupTasks() {
	blogConfigs := s.configCache.GetConfigs()
	if len(blogConfigs) == 0 {
		slog.Debug("No blog configurations found")
		return
	}

	slog.Debug("Processing blog configurations", "count", len(blogConfigs))

	for _, name := range s.configCache.GetNames() {
		blogConfig := blogConfigs[name]

		if err := s.EnqueueTask(s.NewSyncTask(blogConfig)); err != nil {
			slog.Warn("Failed to enqueue SyncBlogConfigTask", "blog", name, "error", err)
			continue
		}

		if !blogConfig.Settings.Enabled {
			slog.Debug("Blog disabled, skipping RenderFeedTask", "blog", name)
			continue
		}

		if err := s.EnqueueTask(s.NewRenderTask(blogConfig)); err != nil {
			slog.Warn("Failed to enqueue RenderFeedTask", "blog", name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	blogConfigs := s.configCache.GetEnabledConfigs()
	if len(blogConfigs) == 0 {
		slog.Debug("No enabled blog configurations found")
		return
	}

	slog.Debug("Processing enabled blog configurations for task scheduling", "count", len(blogConfigs))

	now := time.Now().UTC()
	for name, blogConfig := range blogConfigs {
		if !s.isDue(name, now) {
			continue
		}

		if err := s.EnqueueTask(s.NewRenderTask(blogConfig)); err != nil {
			slog.Debug("RenderFeedTask not enqueued", "blog", name, "error", err)
		}
	}
}

func (s *Scheduler) isDue(name string, now time.Time) bool {
	stored, err := s.feedRepo.GetFeed(name)
	if err != nil {
		slog.Warn("Failed to get feed from database, skipping", "blog", name, "error", err)
		return false
	}
	if stored == nil || stored.NextBuildAt == nil {
		return true
	}
	if stored.NextBuildAt.After(now) {
		slog.Debug("Blog not due for rebuild yet", "blog", name, "next_build_at", stored.NextBuildAt)
		return false
	}
	return true
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.release(task)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		s.release(task)
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := task.RetryDelay()

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "blog", task.GetBlogName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		select {
		case <-time.After(retryDelay):
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			return
		}

		if retryErr := s.EnqueueTask(task); retryErr != nil {
			slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
		}
	}()
}
