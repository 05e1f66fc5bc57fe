package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v7"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/Laisky/openrouter-mcp/catalog"
	"github.com/Laisky/openrouter-mcp/common/client"
	"github.com/Laisky/openrouter-mcp/common/config"
	"github.com/Laisky/openrouter-mcp/common/logger"
	"github.com/Laisky/openrouter-mcp/common/metrics"
	"github.com/Laisky/openrouter-mcp/controller"
	"github.com/Laisky/openrouter-mcp/mcp"
	"github.com/Laisky/openrouter-mcp/model"
	"github.com/Laisky/openrouter-mcp/monitor"
	"github.com/Laisky/openrouter-mcp/router"
)

func main() {
	_ = godotenv.Load()
	logger.SetupLogger()
	if config.DebugEnabled {
		logger.Logger.Info("running in debug mode")
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	client.Init()
	monitor.InitMonitoring()

	if err := model.InitDB(); err != nil {
		logger.Logger.Fatal("initialize database", zap.Error(err))
	}
	defer func() {
		if err := model.CloseDB(); err != nil {
			logger.Logger.Error("close database", zap.Error(err))
		}
	}()

	store := catalog.NewStore()
	fetcher := &instrumentedFetcher{
		inner: catalog.NewHTTPFetcher(config.CatalogURL, client.HTTPClient),
	}

	var cache *catalog.SnapshotCache
	if config.RedisConnString != "" {
		opt, err := redis.ParseURL(config.RedisConnString)
		if err != nil {
			logger.Logger.Fatal("REDIS_CONN_STRING set but invalid", zap.Error(err))
		}
		cache = catalog.NewSnapshotCache(redis.NewClient(opt), config.RedisKeyPrefix, config.CatalogMaxAge)
		logger.Logger.Info("redis snapshot cache enabled")
	}

	refresher := catalog.NewRefresher(store, fetcher,
		catalog.WithMaxAge(config.CatalogMaxAge),
		catalog.WithFetchTimeout(config.FetchTimeout),
		catalog.WithInterval(config.RefreshInterval),
		catalog.WithLogger(logger.Logger.Named("refresher")),
		catalog.WithOnPublish(func(snap *catalog.Snapshot) {
			metrics.GlobalRecorder.UpdateSnapshotStats(snap.Len(), snap.FetchedAt)
			persistSnapshot(snap, cache)
		}),
	)

	warmStart(store, cache)
	if refresher.State() != catalog.StateFresh {
		// Serve whatever we have while the first fetch runs.
		_, _ = refresher.Rebuild(context.Background(), false)
	}

	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	go refresher.Start(refreshCtx)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gmw.NewLoggerMiddleware(
		gmw.WithLevel(glog.LevelInfo.String()),
		gmw.WithLogger(logger.Logger.Named("gin")),
	))
	router.SetRouter(engine, controller.NewServer(store, refresher), mcp.NewServer(store, refresher))

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(config.Port),
		Handler: engine,
	}

	go func() {
		logger.Logger.Info("server started", zap.Int("port", config.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("server shutdown", zap.Error(err))
	}
}

// instrumentedFetcher wraps the HTTP fetcher with fetch metrics so the
// catalog package stays free of the metrics recorder.
type instrumentedFetcher struct {
	inner catalog.Fetcher
}

func (f *instrumentedFetcher) Fetch(ctx context.Context) ([]catalog.ModelRecord, error) {
	start := time.Now()
	records, err := f.inner.Fetch(ctx)
	metrics.GlobalRecorder.RecordCatalogFetch(start, err == nil)
	return records, err
}

// warmStart seeds the in-memory store before the first upstream fetch, so
// restarts answer immediately. Redis is preferred over SQLite because it
// may hold a snapshot from another instance that is newer than our own
// last write.
func warmStart(store *catalog.Store, cache *catalog.SnapshotCache) {
	if cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if snap, err := cache.Load(ctx); err != nil {
			logger.Logger.Warn("load snapshot from redis", zap.Error(err))
		} else if snap != nil {
			store.Publish(snap)
			logger.Logger.Info("warm start from redis",
				zap.Int("records", snap.Len()),
				zap.Time("fetched_at", snap.FetchedAt))
			return
		}
	}

	if model.DB == nil {
		return
	}
	snap, err := model.LoadSnapshot(model.DB)
	if err != nil {
		logger.Logger.Warn("load snapshot from database", zap.Error(err))
		return
	}
	if snap != nil {
		store.Publish(snap)
		logger.Logger.Info("warm start from database",
			zap.Int("records", snap.Len()),
			zap.Time("fetched_at", snap.FetchedAt))
	}
}

// persistSnapshot mirrors every published snapshot into the warm-start
// database and the optional redis cache. Failures are logged and skipped;
// persistence never blocks serving.
func persistSnapshot(snap *catalog.Snapshot, cache *catalog.SnapshotCache) {
	if model.DB != nil {
		if err := model.SaveSnapshot(model.DB, snap); err != nil {
			logger.Logger.Warn("persist snapshot to database", zap.Error(err))
		}
	}
	if cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cache.Store(ctx, snap); err != nil {
			logger.Logger.Warn("persist snapshot to redis", zap.Error(err))
		}
	}
}
