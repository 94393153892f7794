package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/madrasa-admission-api/api/swagger"
	"github.com/noah-isme/madrasa-admission-api/internal/handler"
	"github.com/noah-isme/madrasa-admission-api/internal/middleware"
	"github.com/noah-isme/madrasa-admission-api/internal/models"
	"github.com/noah-isme/madrasa-admission-api/internal/repository"
	"github.com/noah-isme/madrasa-admission-api/internal/service"
	"github.com/noah-isme/madrasa-admission-api/pkg/cache"
	"github.com/noah-isme/madrasa-admission-api/pkg/config"
	"github.com/noah-isme/madrasa-admission-api/pkg/database"
	"github.com/noah-isme/madrasa-admission-api/pkg/export"
	"github.com/noah-isme/madrasa-admission-api/pkg/logger"
	"github.com/noah-isme/madrasa-admission-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/madrasa-admission-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/madrasa-admission-api/pkg/middleware/requestid"
	"github.com/noah-isme/madrasa-admission-api/pkg/sequence"
	"github.com/noah-isme/madrasa-admission-api/pkg/storage"
)

// @title Madrasa Admission API
// @version 1.0.0
// @description Admission workflow engine and session renewals
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, status cache disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	admissionRepo := repository.NewAdmissionRepository(db)
	renewalRepo := repository.NewRenewalRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	academicRepo := repository.NewAcademicRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	var appMailer mailer.Mailer = mailer.NewLogMailer(logr)
	if cfg.Notifications.Enabled && cfg.Notifications.SendgridAPIKey != "" {
		appMailer = mailer.NewSendgridMailer(cfg.Notifications.SendgridAPIKey, cfg.Notifications.FromName, cfg.Notifications.FromEmail)
	}
	notificationSvc := service.NewNotificationService(appMailer, cfg.Notifications.QueueWorkers, logr)
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	numbers := sequence.NewClockGenerator(cfg.Admission.NumberPrefix, nil)
	rolls := sequence.NewClockGenerator(cfg.Admission.RollPrefix, nil)

	admissionSvc := service.NewAdmissionService(admissionRepo, numbers, rolls, validate, logr,
		service.WithStatusCache(cacheRepo, cfg.Admission.StatusCacheTTL),
		service.WithNotifier(notificationSvc),
		service.WithTransitionObserver(metricsSvc),
	)
	renewalSvc := service.NewRenewalService(renewalRepo, studentRepo, academicRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, logr)
	exportSvc := service.NewExportService(admissionRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	if cfg.Backup.Enabled {
		store, err := storage.NewLocalStorage(cfg.Backup.Dir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init backup storage", "error", err)
		}
		backupSvc := service.NewBackupService(renewalRepo, exportSvc, export.NewCSVExporter(), store, cfg.Backup.Interval, logr)
		go backupSvc.Run(ctx)
	}

	admissionHandler := handler.NewAdmissionHandler(admissionSvc, exportSvc)
	renewalHandler := handler.NewRenewalHandler(renewalSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public endpoints: applicants and guardians hold no accounts.
	api.POST("/admissions", admissionHandler.Submit)
	api.GET("/admissions/status/:number", admissionHandler.Status)
	api.POST("/renewals", renewalHandler.Submit)
	api.GET("/renewals/students/:rollNumber", renewalHandler.LookupStudent)

	staffRoles := []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleClerk}
	reviewRoles := []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin}

	staff := api.Group("")
	staff.Use(middleware.JWT(cfg.JWT.Secret))

	staff.GET("/admissions", middleware.RequireRoles(staffRoles...), admissionHandler.List)
	staff.GET("/admissions/export", middleware.RequireRoles(staffRoles...), admissionHandler.ExportCSV)
	staff.GET("/admissions/:id", middleware.RequireRoles(staffRoles...), admissionHandler.Get)
	staff.GET("/admissions/:id/admit-card", middleware.RequireRoles(staffRoles...), admissionHandler.AdmitCard)

	transitions := staff.Group("/admissions/:id")
	transitions.Use(middleware.RequireRoles(reviewRoles...))
	transitions.Use(middleware.Audit(auditRepo, models.AuditActionAdmissionTransition, "admission_application"))
	transitions.PATCH("/approve", admissionHandler.Approve)
	transitions.PATCH("/reject", admissionHandler.Reject)
	transitions.PATCH("/quran-test", admissionHandler.QuranTest)
	transitions.PATCH("/oral-test", admissionHandler.OralTest)
	transitions.PATCH("/written-admit", admissionHandler.WrittenAdmit)
	transitions.PATCH("/written-test", admissionHandler.WrittenTest)
	transitions.PATCH("/fully-approve", admissionHandler.FullyApprove)

	staff.GET("/renewals", middleware.RequireRoles(staffRoles...), renewalHandler.List)
	staff.GET("/renewals/:id", middleware.RequireRoles(staffRoles...), renewalHandler.Get)
	staff.PATCH("/renewals/:id/resolve",
		middleware.RequireRoles(reviewRoles...),
		middleware.Audit(auditRepo, models.AuditActionRenewalResolve, "renewal_application"),
		renewalHandler.Resolve,
	)

	staff.GET("/students", middleware.RequireRoles(staffRoles...), studentHandler.List)
	staff.GET("/students/:id", middleware.RequireRoles(staffRoles...), studentHandler.Get)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
