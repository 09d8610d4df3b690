package router

import (
	"net/http"

	_ "github.com/daystreak/api/docs"
	"github.com/daystreak/api/internal/config"
	"github.com/daystreak/api/internal/middleware"
	"github.com/daystreak/api/internal/modules/handler"
	"github.com/daystreak/api/internal/modules/serializer"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Config         *config.Config
	Log            *zap.Logger
	TaskHandler    *handler.TaskHandler
	DayHandler     *handler.DayHandler
	ReportHandler  *handler.ReportHandler
	RoadmapHandler *handler.RoadmapHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.Identity())

		tasks := v1.Group("/tasks")
		{
			tasks.GET("", d.TaskHandler.ListTasks)
			tasks.POST("", d.TaskHandler.CreateTask)
			tasks.PUT("/:task_id", d.TaskHandler.UpdateTask)
			tasks.DELETE("/:task_id", d.TaskHandler.DeleteTask)
		}

		day := v1.Group("/day")
		{
			day.GET("", d.DayHandler.GetDay)
			day.PUT("", d.DayHandler.SetDayStatus)
			day.POST("/recompute", d.DayHandler.RecomputeDay)

			day.GET("/streak", d.DayHandler.GetStreak)
			day.PUT("/streak", d.DayHandler.RecordDayStatus)

			report := day.Group("/productivity/status")
			{
				report.GET("/line-chart", d.ReportHandler.LineChart)
				report.GET("/pie-chart", d.ReportHandler.PieChart)
			}
		}

		roadmaps := v1.Group("/roadmaps")
		{
			roadmaps.POST("/generate", d.RoadmapHandler.GenerateRoadmap)
			roadmaps.POST("", d.RoadmapHandler.ConfirmRoadmap)
			roadmaps.GET("", d.RoadmapHandler.ListRoadmaps)
			roadmaps.GET("/:roadmap_id", d.RoadmapHandler.GetRoadmap)
			roadmaps.PUT("/:roadmap_id", d.RoadmapHandler.UpdateRoadmap)
			roadmaps.DELETE("/:roadmap_id", d.RoadmapHandler.DeleteRoadmap)
		}
	}
	return r
}
