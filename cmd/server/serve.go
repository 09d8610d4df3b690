package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daystreak/api/internal/bootstrap"
	"github.com/daystreak/api/internal/config"
	"github.com/daystreak/api/internal/infra/cache"
	dbpkg "github.com/daystreak/api/internal/infra/db"
	"github.com/daystreak/api/internal/infra/queue"
	"github.com/daystreak/api/internal/modules/handler"
	"github.com/daystreak/api/internal/router"
	"github.com/daystreak/api/internal/scheduler"
	"github.com/daystreak/api/internal/telemetry"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the nightly recompute job",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// build dependency injection container
	inj := bootstrap.BuildContainer()

	cfg, err := do.Invoke[*config.Config](inj)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	db, err := do.Invoke[*gorm.DB](inj)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	rdb := do.MustInvoke[*redis.Client](inj)

	// Setup OpenTelemetry tracing (using configuration system)
	tp, err := telemetry.SetupTracing(cfg)
	if err != nil {
		log.Sugar().Warnw("failed to setup tracing, continuing without tracing", "err", err)
	} else if tp != nil {
		log.Sugar().Infow("OpenTelemetry tracing enabled", "endpoint", cfg.Telemetry.OtlpEndpoint)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Sugar().Errorw("failed to shutdown tracer", "err", err)
			}
		}()

		// Register GORM OpenTelemetry plugin after tracer provider is set
		if err := dbpkg.RegisterOpenTelemetryPlugin(db); err != nil {
			log.Sugar().Warnw("failed to register GORM OpenTelemetry plugin, continuing without database tracing", "err", err)
		} else {
			log.Sugar().Info("GORM OpenTelemetry plugin registered")
		}

		// Register Redis OpenTelemetry plugin after tracer provider is set
		if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
			log.Sugar().Warnw("failed to register Redis OpenTelemetry plugin, continuing without Redis tracing", "err", err)
		} else if rdb != nil {
			log.Sugar().Info("Redis OpenTelemetry plugin registered")
		}
	}

	if rdb == nil {
		log.Sugar().Warn("redis not configured, roadmap drafts are disabled")
	}
	pub, err := do.Invoke[*queue.Publisher](inj)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	if pub != nil {
		defer func() {
			_ = pub.Close()
			if conn := do.MustInvoke[*amqp.Connection](inj); conn != nil {
				_ = conn.Close()
			}
		}()
	}

	// nightly recompute
	if cfg.Scheduler.Enabled {
		sched := do.MustInvoke[*scheduler.Scheduler](inj)
		if _, err := sched.ScheduleRecompute(cfg.Scheduler.RecomputeAt); err != nil {
			return fmt.Errorf("schedule recompute: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		log.Sugar().Infow("nightly recompute scheduled", "at", cfg.Scheduler.RecomputeAt, "timezone", cfg.Location().String())
	}

	// init gin
	gin.SetMode(cfg.App.Env)

	engine := router.NewRouter(router.RouterDeps{
		Config:         cfg,
		Log:            log,
		TaskHandler:    do.MustInvoke[*handler.TaskHandler](inj),
		DayHandler:     do.MustInvoke[*handler.DayHandler](inj),
		ReportHandler:  do.MustInvoke[*handler.ReportHandler](inj),
		RoadmapHandler: do.MustInvoke[*handler.RoadmapHandler](inj),
	})

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{Addr: addr, Handler: engine}

	go func() {
		log.Sugar().Infow("starting http server", "addr", addr)
		log.Sugar().Infow("swagger url", "url", addr+"/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Sugar().Fatalw("listen error", "err", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Sugar().Errorw("server shutdown", "err", err)
	}
	log.Sugar().Info("server exited")
	return nil
}
