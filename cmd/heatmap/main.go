package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vitos/liquidation_heatmap/internal/config"
	"github.com/vitos/liquidation_heatmap/internal/domain"
	"github.com/vitos/liquidation_heatmap/internal/infrastructure/exchange"
	"github.com/vitos/liquidation_heatmap/internal/infrastructure/logger"
	"github.com/vitos/liquidation_heatmap/internal/infrastructure/storage"
	"github.com/vitos/liquidation_heatmap/internal/usecase"
	"github.com/vitos/liquidation_heatmap/internal/web"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	// 4. Init Exchange (Binance futures ticker)
	binance := exchange.NewBinanceAdapter(cfg.Exchange.BaseURL, cfg.Exchange.RequestsPerSecond, cfg.Exchange.Timeout)

	// 5. Init Services
	prices := usecase.NewPriceService(binance, cfg.Assets, nil, log.Named("prices"))
	feed := usecase.NewSimulatedFeed(nil, cfg.Summary.Latency, cfg.Summary.FailureRate)

	// Validate already parsed these.
	defaultTF, _ := domain.ParseTimeframe(cfg.Heatmap.DefaultTimeframe)
	defaultView, _ := domain.ParseViewMode(cfg.Heatmap.DefaultView)
	summaryTF, _ := domain.ParseTimeframe(cfg.Summary.DefaultTimeframe)

	heatmaps := usecase.NewHeatmapService(usecase.HeatmapConfig{
		PriceSteps:       cfg.Heatmap.PriceSteps,
		TimeSteps:        cfg.Heatmap.TimeSteps,
		DefaultSymbol:    cfg.Heatmap.DefaultSymbol,
		DefaultTimeframe: defaultTF,
		DefaultView:      defaultView,
		SummaryTimeframe: summaryTF,
		NoticeTTL:        cfg.Summary.NoticeTTL,
		MaxAge:           cfg.Heatmap.UpdateInterval,
	}, prices, usecase.NewGridSynthesizer(nil), feed, store, log.Named("heatmap"))

	auth := usecase.NewAuthService(store, prices, usecase.AuthConfig{
		Secret:     []byte(cfg.Auth.JWTSecret),
		SessionTTL: cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, log.Named("auth"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Seed ranges from live prices before the first page load.
	for _, sym := range prices.Symbols() {
		if _, err := prices.Refresh(ctx, sym); err != nil {
			log.Error("Failed to load initial price", zap.String("symbol", sym), zap.Error(err))
		}
	}

	// 6. Init Web Server + Refresh Worker
	hub := web.NewHub(log.Named("ws"))
	server := web.NewServer(cfg.Server.Port, heatmaps, prices, auth, hub, log)
	worker := usecase.NewRefreshWorker(prices, heatmaps, hub, cfg.Heatmap.UpdateInterval, log.Named("worker"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		worker.Start(gctx)
		worker.Wait()
		return nil
	})
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
