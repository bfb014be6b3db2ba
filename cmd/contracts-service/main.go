package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nurpe/freight-market/internal/auth"
	"github.com/nurpe/freight-market/internal/catalog"
	"github.com/nurpe/freight-market/internal/clock"
	"github.com/nurpe/freight-market/internal/config"
	"github.com/nurpe/freight-market/internal/db"
	"github.com/nurpe/freight-market/internal/excel"
	"github.com/nurpe/freight-market/internal/finance"
	"github.com/nurpe/freight-market/internal/generator"
	httphandler "github.com/nurpe/freight-market/internal/http"
	"github.com/nurpe/freight-market/internal/http/middleware"
	"github.com/nurpe/freight-market/internal/logger"
	"github.com/nurpe/freight-market/internal/pdf"
	"github.com/nurpe/freight-market/internal/repository"
	"github.com/nurpe/freight-market/internal/service"
	"github.com/nurpe/freight-market/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	kv, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage).Msg("failed to open storage")
	}

	cat, err := catalog.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load contract catalog")
	}

	clk := clock.System{Location: cfg.Contracts.Location}
	calculator := finance.NewCalculator(finance.DefaultPolicy())
	contractGenerator := generator.New(cfg.Contracts.Seed, cat, calculator, clk, log)
	batchRepo := repository.NewBatchRepository(kv)

	contractService := service.NewContractService(batchRepo, contractGenerator, cat, clk, cfg.Contracts.WeekStart, log)
	exportService := service.NewExportService(contractService, excel.NewGenerator(), pdf.NewGenerator())

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, exportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().
		Str("addr", addr).
		Str("storage", cfg.Storage).
		Int64("seed", cfg.Contracts.Seed).
		Str("week_start", cfg.Contracts.WeekStart.String()).
		Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func openStore(cfg *config.Config, log zerolog.Logger) (storage.KV, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		database, err := db.New(cfg, log)
		if err != nil {
			return nil, err
		}
		return storage.NewPostgres(database), nil
	case config.StorageMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Str("collection", cfg.Mongo.Collection).Msg("connected to mongo")
		return storage.NewMongo(client, cfg.Mongo.Database, cfg.Mongo.Collection), nil
	default:
		log.Warn().Msg("using in-memory storage, batches are lost on restart")
		return storage.NewMemory(), nil
	}
}
