package bootstrap

import (
	"context"
	"time"

	"github.com/daystreak/api/internal/config"
	"github.com/daystreak/api/internal/infra/blob"
	"github.com/daystreak/api/internal/infra/cache"
	"github.com/daystreak/api/internal/infra/db"
	"github.com/daystreak/api/internal/infra/httpclient"
	"github.com/daystreak/api/internal/infra/logger"
	"github.com/daystreak/api/internal/infra/queue"
	"github.com/daystreak/api/internal/modules/handler"
	"github.com/daystreak/api/internal/modules/repo"
	"github.com/daystreak/api/internal/modules/service"
	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/daystreak/api/internal/scheduler"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildContainer registers every component lazily. Redis, RabbitMQ and S3 are
// optional: an empty address yields a nil client and the roadmap flow degrades
// (no drafts, no events, no archive) instead of failing.
func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg, do.MustInvoke[*zap.Logger](i))
		if err != nil {
			return nil, err
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(d); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		return cache.New(do.MustInvoke[*config.Config](i)), nil
	})

	// RabbitMQ connection and publisher
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.RabbitMQ.URL == "" {
			return nil, nil
		}
		return amqp.Dial(cfg.RabbitMQ.URL)
	})
	do.Provide(inj, func(i *do.Injector) (*queue.Publisher, error) {
		conn := do.MustInvoke[*amqp.Connection](i)
		if conn == nil {
			return nil, nil
		}
		cfg := do.MustInvoke[*config.Config](i)
		return queue.NewPublisher(conn, cfg.RabbitMQ.Queue, do.MustInvoke[*zap.Logger](i))
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})
	// get presign expire duration
	do.Provide(inj, func(i *do.Injector) (func() time.Duration, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return func() time.Duration {
			if cfg.S3.PresignExpireSec <= 0 {
				return 15 * time.Minute
			}
			return time.Duration(cfg.S3.PresignExpireSec) * time.Second
		}, nil
	})

	// AI
	do.Provide(inj, func(i *do.Injector) (*httpclient.GeminiClient, error) {
		return httpclient.NewGeminiClient(do.MustInvoke[*config.Config](i), do.MustInvoke[*zap.Logger](i)), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.DayRepo, error) {
		return repo.NewDayRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.TaskRepo, error) {
		return repo.NewTaskRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.RoadmapRepo, error) {
		return repo.NewRoadmapRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.StreakService, error) {
		return service.NewStreakService(do.MustInvoke[repo.DayRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.DayService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		loc := cfg.Location()
		return service.NewDayService(
			do.MustInvoke[repo.DayRepo](i),
			do.MustInvoke[service.StreakService](i),
			do.MustInvoke[*zap.Logger](i),
			func() datex.Date { return datex.Today(loc) },
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.TaskService, error) {
		return service.NewTaskService(do.MustInvoke[repo.TaskRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ReportService, error) {
		return service.NewReportService(do.MustInvoke[repo.DayRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.RoadmapService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		deps := service.RoadmapDeps{
			Repo:      do.MustInvoke[repo.RoadmapRepo](i),
			Generator: do.MustInvoke[*httpclient.GeminiClient](i),
			Log:       do.MustInvoke[*zap.Logger](i),
		}
		// nil pointers must not leak into the interfaces
		if rdb := do.MustInvoke[*redis.Client](i); rdb != nil {
			deps.Drafts = service.NewRedisDraftStore(rdb, cfg.DraftTTL())
		}
		if s3 := do.MustInvoke[*blob.S3Deps](i); s3 != nil {
			deps.Archiver = s3
		}
		if pub := do.MustInvoke[*queue.Publisher](i); pub != nil {
			deps.Events = pub
		}
		return service.NewRoadmapService(deps), nil
	})

	// Scheduler
	do.Provide(inj, func(i *do.Injector) (*scheduler.Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return scheduler.New(cfg.Location(), do.MustInvoke[service.DayService](i), do.MustInvoke[*zap.Logger](i)), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.TaskHandler, error) {
		return handler.NewTaskHandler(do.MustInvoke[service.TaskService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.DayHandler, error) {
		return handler.NewDayHandler(do.MustInvoke[service.DayService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ReportHandler, error) {
		return handler.NewReportHandler(do.MustInvoke[service.ReportService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.RoadmapHandler, error) {
		return handler.NewRoadmapHandler(do.MustInvoke[service.RoadmapService](i)), nil
	})

	return inj
}
