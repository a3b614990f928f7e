package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/mbelyaev/jobtrack/internal/config"
	"github.com/mbelyaev/jobtrack/internal/httpserver"
	"github.com/mbelyaev/jobtrack/internal/logging"
	mw "github.com/mbelyaev/jobtrack/internal/middleware"
	"github.com/mbelyaev/jobtrack/internal/mykafka"
	"github.com/mbelyaev/jobtrack/internal/repo"
	"github.com/mbelyaev/jobtrack/internal/search"
	"github.com/mbelyaev/jobtrack/internal/service"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: db}

	var producer *mykafka.Producer
	if cfg.KafkaAddr != "" {
		producer = mykafka.NewProducer(cfg.KafkaAddr)
	}

	var indexer *search.Indexer
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		indexer = &search.Indexer{ES: es, Index: cfg.ESIndex}
	}

	authHandler := &httpserver.AuthHTTP{
		Svc: &service.AuthService{
			Repo:      gormRepo,
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.TokenTTL,
		},
		Producer: producer,
	}
	jobHandler := &httpserver.JobHTTP{
		Svc:      &service.JobService{Repo: gormRepo},
		Producer: producer,
		Indexer:  indexer,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(mw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: authHandler,
		JobHandler:  jobHandler,
		JWTSecret:   cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("jobtrack listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if producer != nil {
		_ = producer.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("jobtrack stopped")
}
