package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/rdf2rss/app/feed"
)

// Renderer turns a blog into a serialized feed document and reports how many
// items it holds.
type Renderer interface {
	Render(ctx context.Context, opts feed.Options) (string, int, error)
}

// RendererFactory builds a Renderer whose fetches are bounded by timeout.
// Every render task gets its own Renderer, so runs never share a graph.
type RendererFactory func(timeout time.Duration) Renderer

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to queue blog builds.
// Example usage:
//
//	scheduler := NewScheduler(configCache, feedRepo, newRenderer, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(scheduler.NewRenderTask(blogConfig))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	NewRenderTask(blogConfig *feed.Config) TaskInterface
	NewSyncTask(blogConfig *feed.Config) TaskInterface
}
