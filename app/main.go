package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rdf2rss/app/api"
	"github.com/lysyi3m/rdf2rss/app/cfg"
	"github.com/lysyi3m/rdf2rss/app/database"
	"github.com/lysyi3m/rdf2rss/app/feed"
	"github.com/lysyi3m/rdf2rss/app/fetch"
	"github.com/lysyi3m/rdf2rss/app/parser"
	"github.com/lysyi3m/rdf2rss/app/tasks"
)

const projectURL = "https://github.com/lucaswerkmeister/rdf2rss"

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	if appCfg.ShowVersion {
		fmt.Println("rdf2rss", appCfg.Version)
		return
	}

	setupLogger(appCfg.Debug)

	if appCfg.Serve {
		err = serve(appCfg)
	} else {
		err = generate(appCfg)
	}

	if err != nil {
		slog.Error("rdf2rss failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func userAgent(appCfg *cfg.Cfg) string {
	return cmp.Or(appCfg.UserAgent, fmt.Sprintf("rdf2rss/%s (%s)", appCfg.Version, projectURL))
}

// newRenderer wires one feed pipeline with its own fetcher and parser.
func newRenderer(httpClient *http.Client, ua string, timeout time.Duration, diag io.Writer) *feed.Pipeline {
	fetcher := fetch.NewHTTPFetcher(httpClient, ua, timeout)
	loader := parser.NewLoader(fetcher, parser.NewParser(fetcher))
	return feed.NewPipeline(loader, fetcher, diag)
}

func generate(appCfg *cfg.Cfg) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeout := time.Duration(appCfg.Timeout) * time.Second
	pipeline := newRenderer(&http.Client{}, userAgent(appCfg), timeout, os.Stderr)

	opts := feed.Options{
		Root:            appCfg.URL,
		Keyword:         appCfg.Keyword,
		Limit:           appCfg.Limit,
		ContentFallback: appCfg.ContentFallback,
		Readability:     appCfg.Readability,
		SanitizePolicy:  appCfg.SanitizePolicy,
		Verbose:         appCfg.Verbose,
		Format:          appCfg.Format,
	}

	start := time.Now()
	document, itemCount, err := pipeline.Render(ctx, opts)
	if err != nil {
		return err
	}

	if err := writeDocument(appCfg.File, document); err != nil {
		return err
	}

	slog.Debug("Feed generated", "url", appCfg.URL, "items", itemCount, "duration", time.Since(start))
	return nil
}

func writeDocument(path, document string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(os.Stdout, document)
		return err
	}

	if err := os.WriteFile(path, []byte(document+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}
	return nil
}

func serve(appCfg *cfg.Cfg) error {
	slog.Info("Starting rdf2rss server", "version", appCfg.Version)

	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Debug("Database ready", "path", appCfg.DBPath)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load blog configurations: %w", err)
	}
	slog.Info("Blog configurations loaded", "count", configCache.GetConfigCount(), "dir", appCfg.FeedsDir)

	feedRepo := database.NewFeedRepository(db)
	httpClient := &http.Client{}
	ua := userAgent(appCfg)

	scheduler := tasks.NewScheduler(configCache, feedRepo,
		func(timeout time.Duration) tasks.Renderer {
			return newRenderer(httpClient, ua, timeout, io.Discard)
		},
		time.Duration(appCfg.SchedulerInterval)*time.Second, appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(configCache, feedRepo, scheduler, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "workers", appCfg.WorkerCount)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return serveErr
}
