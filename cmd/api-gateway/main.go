package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/obe-kurikulum-api/api/swagger"
	"github.com/noah-isme/obe-kurikulum-api/internal/handler"
	"github.com/noah-isme/obe-kurikulum-api/internal/middleware"
	"github.com/noah-isme/obe-kurikulum-api/internal/repository"
	"github.com/noah-isme/obe-kurikulum-api/internal/service"
	"github.com/noah-isme/obe-kurikulum-api/pkg/cache"
	"github.com/noah-isme/obe-kurikulum-api/pkg/config"
	"github.com/noah-isme/obe-kurikulum-api/pkg/database"
	"github.com/noah-isme/obe-kurikulum-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/obe-kurikulum-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/obe-kurikulum-api/pkg/middleware/requestid"
)

// @title OBE Kurikulum API
// @version 0.1.0
// @description Grading workbook service for outcome-based curriculum
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	store, closeStore, err := buildStore(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("store init failed", "driver", cfg.Store.Driver, "error", err)
	}
	defer closeStore()

	cacheRepo := buildCache(cfg, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Curriculum.CacheTTL, logr, cfg.Redis.Enabled)
	curriculumRepo := repository.NewCurriculumRepository(cfg.Backend)
	curriculumSvc := service.NewCurriculumService(curriculumRepo, cacheSvc, cfg.Curriculum, logr)
	workbookSvc := service.NewWorkbookService(store, curriculumSvc, metricsSvc, cfg.Workbook, logr)
	spreadsheetSvc := service.NewSpreadsheetService(workbookSvc, curriculumSvc, cfg.Export, logr)

	curriculumHandler := handler.NewCurriculumHandler(curriculumSvc)
	workbookHandler := handler.NewWorkbookHandler(workbookSvc)
	spreadsheetHandler := handler.NewSpreadsheetHandler(spreadsheetSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/status", metricsHandler.Status)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/courses", curriculumHandler.ListCourses)
		api.POST("/courses/refresh", curriculumHandler.Refresh)
		api.GET("/courses/:courseCode", curriculumHandler.GetCourse)
		api.GET("/courses/:courseCode/structure", curriculumHandler.GetStructure)
		api.GET("/grade-scale", curriculumHandler.GradeScale)

		api.GET("/workbooks", workbookHandler.Selections)
		api.POST("/workbooks/:courseCode", workbookHandler.Select)
		api.GET("/workbooks/:courseCode", workbookHandler.Get)
		api.DELETE("/workbooks/:courseCode", workbookHandler.Delete)
		api.POST("/workbooks/:courseCode/students", workbookHandler.AddStudents)
		api.PATCH("/workbooks/:courseCode/students/:studentKey", workbookHandler.UpdateStudent)
		api.DELETE("/workbooks/:courseCode/students/:studentKey", workbookHandler.RemoveStudent)
		api.PUT("/workbooks/:courseCode/weights", workbookHandler.SetWeight)
		api.GET("/workbooks/:courseCode/weights/summary", workbookHandler.WeightSummary)
		api.PUT("/workbooks/:courseCode/assessment-types", workbookHandler.UpdateAssessmentTypes)
		api.PUT("/workbooks/:courseCode/info", workbookHandler.UpdateCourseInfo)
		api.PUT("/workbooks/:courseCode/mode", workbookHandler.SwitchMode)
		api.GET("/workbooks/:courseCode/statistics", workbookHandler.Statistics)

		api.GET("/workbooks/:courseCode/template", spreadsheetHandler.Template)
		api.GET("/workbooks/:courseCode/export", spreadsheetHandler.Export)
		api.POST("/workbooks/:courseCode/import", spreadsheetHandler.Import)
		api.POST("/workbooks/:courseCode/import/confirm", spreadsheetHandler.ConfirmImport)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	workbookSvc.Flush(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}

// buildStore selects the workbook persistence driver.
func buildStore(cfg *config.Config, logr *zap.Logger) (service.SessionStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewPostgresStoreRepository(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, func() { _ = db.Close() }, nil
	default:
		repo, err := repository.NewFileStoreRepository(cfg.Store.Dir)
		if err != nil {
			return nil, nil, err
		}
		logr.Sugar().Infow("file store ready", "dir", cfg.Store.Dir)
		return repo, func() {}, nil
	}
}

// buildCache returns a Redis-backed cache repository, degrading to a no-op
// one when Redis is disabled or unreachable.
func buildCache(cfg *config.Config, logr *zap.Logger) *repository.CacheRepository {
	if !cfg.Redis.Enabled {
		return repository.NewCacheRepository(nil)
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		return repository.NewCacheRepository(nil)
	}
	return repository.NewCacheRepository(client)
}
