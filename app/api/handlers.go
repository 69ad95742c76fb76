package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rdf2rss/app/database"
	"github.com/lysyi3m/rdf2rss/app/feed"
	"github.com/lysyi3m/rdf2rss/app/tasks"
)

func NewHandler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		feedRepo:    feedRepo,
		configCache: configCache,
		scheduler:   scheduler,
		version:     version,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Debug("Blog configuration not found", "blog", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	stored, err := h.feedRepo.GetFeed(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "blog", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if stored == nil || !stored.IsBuilt() {
		c.Header("Retry-After", "60")
		c.String(http.StatusServiceUnavailable, "feed has not been built yet\n")
		return
	}

	c.Header("Content-Type", feed.ContentType(stored.Format))
	c.Header("X-Feed-Items", strconv.Itoa(stored.ItemCount))
	c.Header("X-Feed-Name", name)
	c.Header("X-Last-Updated", stored.BuiltAt.Format(time.RFC3339))

	c.String(http.StatusOK, stored.Document)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	} else {
		health["status"] = "degraded"
		slog.Warn("Health check could not count feeds", "error", err)
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	configs := h.configCache.GetConfigs()
	names := h.configCache.GetNames()

	blogs := make([]blogInfo, 0, len(names))
	for _, name := range names {
		stored, err := h.feedRepo.GetFeed(name)
		if err != nil {
			slog.Error("Database error", "operation", "get_feed", "blog", name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		blogs = append(blogs, newBlogInfo(configs[name], stored))
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": blogs,
		"total": len(blogs),
	})
}

func (h *Handler) APIGetFeedDetails(c *gin.Context) {
	name := c.Param("name")

	blogConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Blog configuration not found"})
		return
	}

	stored, err := h.feedRepo.GetFeed(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "blog", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, newBlogInfo(blogConfig, stored))
}

// APIRebuildFeed rereads the blog config from disk and queues a build.
func (h *Handler) APIRebuildFeed(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Blog configuration not found"})
		return
	}

	blogConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "blog", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	if !blogConfig.Settings.Enabled {
		c.JSON(http.StatusConflict, gin.H{"error": "Blog is disabled"})
		return
	}

	syncTask := h.scheduler.NewSyncTask(blogConfig)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "blog", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	renderTask := h.scheduler.NewRenderTask(blogConfig)
	if err := h.scheduler.EnqueueTask(renderTask); err != nil {
		if errors.Is(err, tasks.ErrAlreadyQueued) {
			c.JSON(http.StatusConflict, gin.H{"error": "Blog build already in progress"})
			return
		}
		slog.Error("Error enqueueing render task", "blog", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue render task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Configuration reloaded and rebuild enqueued",
		"feed": gin.H{
			"name": name,
			"url":  blogConfig.URL,
		},
		"tasks": []gin.H{
			{"id": syncTask.GetID(), "type": syncTask.GetType()},
			{"id": renderTask.GetID(), "type": renderTask.GetType()},
		},
	})
}

func newBlogInfo(blogConfig *feed.Config, stored *database.Feed) blogInfo {
	info := blogInfo{
		Name:            blogConfig.Name,
		URL:             blogConfig.URL,
		Keyword:         blogConfig.Keyword,
		Limit:           blogConfig.Limit,
		Format:          blogConfig.Format,
		Enabled:         blogConfig.Settings.Enabled,
		RefreshInterval: (time.Duration(blogConfig.Settings.RefreshInterval) * time.Second).String(),
	}

	if stored == nil {
		return info
	}

	info.Built = stored.IsBuilt()
	info.ItemCount = stored.ItemCount
	info.BuiltAt = formatTime(stored.BuiltAt)
	info.NextBuildAt = formatTime(stored.NextBuildAt)
	info.LastError = stored.LastError

	return info
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
