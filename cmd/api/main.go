package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/JPress-IEEE/Backend/cmd/api/router/v1"
	cacheAdapter "github.com/JPress-IEEE/Backend/internal/infrastructure/cache/adapter"
	cacheport "github.com/JPress-IEEE/Backend/internal/infrastructure/cache/port"
	"github.com/JPress-IEEE/Backend/internal/infrastructure/database"
	queueAdapter "github.com/JPress-IEEE/Backend/internal/infrastructure/queue/adapter"
	qport "github.com/JPress-IEEE/Backend/internal/infrastructure/queue/port"
	"github.com/JPress-IEEE/Backend/internal/infrastructure/realtime"
	chattask "github.com/JPress-IEEE/Backend/internal/pkg/chat/application/task"
	notiftask "github.com/JPress-IEEE/Backend/internal/pkg/notification/application/task"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found or could not be loaded", "error", err)
	}

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.NewPoolFromEnv(ctx)
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis-backed cache and task queue are optional: without them the API
	// still serves HTTP and websocket traffic, minus the conversation cache
	// and background delivery.
	var cache cacheport.Cache
	if rc, err := cacheAdapter.NewRedisAdapter(); err != nil {
		slog.Warn("cache disabled", "error", err)
	} else {
		cache = rc
		defer rc.Close()
	}

	var queue qport.Client
	if qc, err := queueAdapter.NewAsynqClientFromEnv(); err != nil {
		slog.Warn("task queue disabled", "error", err)
	} else {
		queue = qc
		defer qc.Close()
	}

	hub := realtime.NewHub()
	defer hub.Close()

	// Run the background worker in-process when the queue is available. The
	// hub doubles as presence checker, broadcaster and push target so queued
	// tasks reach the same live connections the websocket path does.
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	if queue != nil {
		srv, err := queueAdapter.NewAsynqServer()
		if err != nil {
			slog.Error("failed to start task server", "error", err)
			os.Exit(1)
		}
		notifier := notiftask.NewQueueNotifier(queue)
		chattask.RegisterSendMessageTask(srv, pool, hub, notifier, hub)
		notiftask.RegisterNotifyTask(srv, pool, hub)
		go func() {
			defer close(workerDone)
			if err := srv.Run(runCtx); err != nil {
				slog.Error("task server stopped", "error", err)
			}
		}()
	} else {
		close(workerDone)
	}

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, pool, hub, cache, queue)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	httpServer := &http.Server{Addr: addr, Handler: r}

	go func() {
		slog.Info("http server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-runCtx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}
	<-workerDone
}
