package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricing-service/internal/adapter/currencyfreaks"
	"pricing-service/internal/adapter/postgres"
	"pricing-service/internal/handler"
	"pricing-service/internal/service"
	"pricing-service/internal/usecase"
	"pricing-service/pkg/config"
	"pricing-service/pkg/logger"
	"pricing-service/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	log.Info("Starting app...")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// snapshot store is optional, quotes work from memory without it
	var repo postgres.RateRepository
	if cfg.Postgres.Enabled {
		dbPool, err := postgres.InitDBPool(*cfg, log)
		if err != nil {
			log.Fatalf("Failed to initialize db pool: %v", err)
		}
		defer dbPool.Close()

		if err := postgres.Migrate(context.Background(), dbPool); err != nil {
			log.Fatalf("Failed to migrate schema: %v", err)
		}
		repo = postgres.NewPostgresRepo(dbPool, log)
		log.Info("Initialized database pool")
	} else {
		log.Info("Postgres disabled, rate snapshots kept in memory")
	}

	// initialize adapters
	ratesClient := currencyfreaks.NewClient(cfg.Rates.APIURL, cfg.Rates.APIKey, log)
	log.Info("Initialized rates API client")

	// initialize service
	rateService := service.NewRateService(ratesClient, repo, service.RateOptions{
		DefaultRate:    cfg.Rates.DefaultRate,
		Markup:         cfg.Rates.Markup,
		CacheTTL:       cfg.Rates.CacheTTL,
		WarmupAttempts: cfg.Rates.WarmupAttempts,
	}, m, log)
	log.Info("Initialized service layer")

	// initialize usecase
	pricingUsecase := usecase.NewPricingUsecase(rateService, m, log)
	log.Info("Initialized usecase layer")

	pricingHandler := handler.NewPricingHandler(pricingUsecase, log)

	r := gin.Default()

	// cors middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	pricingHandler.Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// task sheduler
	c := cron.New()

	_, err = c.AddFunc(cfg.Rates.RefreshCron, func() {
		log.Info("Auto updating exchange rate...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := rateService.Refresh(ctx); err != nil {
			log.Errorf("Error updating exchange rate: %v", err)
		} else {
			log.Info("Successfully updated exchange rate")
		}
	})
	if err != nil {
		log.Fatalf("Error adding task to schedule: %v", err)
	}

	c.Start()
	log.Infof("Scheduler initialized, exchange rate refresh on %q", cfg.Rates.RefreshCron)

	go func() {
		log.Info("Warming up exchange rate...")
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := rateService.WarmUp(ctx); err != nil {
			log.Errorf("Error warming up exchange rate by server start, using %v: %v", rateService.Snapshot().Float(), err)
		} else {
			log.Info("Successfully warmed up exchange rate by server start")
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: r,
	}

	go func() {
		log.Infof("Server starting on port %s...", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Got shutdown signal...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Error server shutdown:", err)
	}
	log.Info("Server stopped")

	<-c.Stop().Done()
	log.Info("Scheduler stopped")

	log.Info("Gracefully shut down")
}
