package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"content-control/internal/config"
	"content-control/internal/repository"
	"content-control/internal/server"
	"content-control/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	catalogRepo := repository.NewCatalogRepository(db)
	definitionRepo := repository.NewDefinitionRepository(db)
	occurrenceRepo := repository.NewOccurrenceRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)

	recurrenceSvc := service.NewRecurrenceService(definitionRepo, occurrenceRepo, log)
	importSvc := service.NewImportService(catalogRepo, definitionRepo, taskRepo, log)
	templateSvc := service.NewTemplateService(importSvc, log)
	kpiSvc := service.NewKPIService(occurrenceRepo, catalogRepo)
	reconcilerSvc := service.NewReconcilerService(definitionRepo, occurrenceRepo, log)

	var generator service.TextGenerator
	if cfg.GeminiAPIKey != "" {
		generator, err = service.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal("gemini", zap.Error(err))
		}
	} else {
		log.Warn("GEMINI_API_KEY not set; analysis endpoints will fail")
		generator = unavailableGenerator{}
	}
	analysisSvc := service.NewAnalysisService(analysisRepo, generator, log)

	sender := service.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	notifierSvc := service.NewNotifierService(occurrenceRepo, catalogRepo, sender, log)

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.ReconcileInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := reconcilerSvc.Run(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("reconcile", zap.Error(err))
		}
	}); err != nil {
		log.Fatal("schedule reconcile", zap.Error(err))
	}
	if cfg.SMTPHost != "" {
		if _, err := scheduler.ScheduleDaily(cfg.DigestTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if _, err := notifierSvc.SendProjectDigests(jobCtx, nil); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("daily digest", zap.Error(err))
			}
		}); err != nil {
			log.Fatal("schedule digest", zap.Error(err))
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(recurrenceSvc, importSvc, templateSvc, analysisSvc, notifierSvc, kpiSvc, catalogRepo, analysisRepo, log)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	log.Info("content control service started", zap.String("addr", cfg.HTTPAddr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped with error", zap.Error(err))
	}
	log.Info("shutdown complete")
}

// unavailableGenerator stands in when no API key is configured.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("gemini API key is not configured")
}
