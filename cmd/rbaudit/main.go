package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vbonduro/rbaudit/internal/catalogue"
	"github.com/vbonduro/rbaudit/internal/codec"
	"github.com/vbonduro/rbaudit/internal/config"
	"github.com/vbonduro/rbaudit/internal/db"
	"github.com/vbonduro/rbaudit/internal/ledger"
	"github.com/vbonduro/rbaudit/internal/logging"
	"github.com/vbonduro/rbaudit/internal/metrics"
	"github.com/vbonduro/rbaudit/internal/persist"
	"github.com/vbonduro/rbaudit/internal/photostore"
	"github.com/vbonduro/rbaudit/internal/photostore/kv"
	"github.com/vbonduro/rbaudit/internal/photostore/local"
	s3store "github.com/vbonduro/rbaudit/internal/photostore/s3"
	"github.com/vbonduro/rbaudit/internal/registry"
	"github.com/vbonduro/rbaudit/internal/service"
	"github.com/vbonduro/rbaudit/internal/store"
	"github.com/vbonduro/rbaudit/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", zap.Error(err))
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}()

	gateway := store.NewStateStore(database)
	m := metrics.New()
	mirror := persist.NewMirror(gateway, logger, persist.WithRecorder(m))

	buildings := registry.New(mirror)
	cat := catalogue.New(mirror)
	assets := ledger.New(buildings, cat, mirror)

	photos, err := newPhotoStore(ctx, cfg, gateway, logger)
	if err != nil {
		logger.Error("failed to initialize photo store", zap.Error(err))
		return
	}

	svc := service.NewAuditService(buildings, cat, assets, codec.New(), photos, gateway, mirror, m, logger)
	if err := svc.Init(ctx); err != nil {
		logger.Warn("starting with partially restored state", zap.Error(err))
	}
	defer svc.Flush()

	server := web.NewServer(svc, m.Handler(), web.Options{
		ExportFilename: cfg.ExportFilename,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, logger)

	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

func newPhotoStore(ctx context.Context, cfg *config.Config, gateway persist.Gateway, logger *zap.Logger) (photostore.PhotoStore, error) {
	switch cfg.Photo.Backend {
	case "db":
		logger.Info("storing photos in the database")
		return kv.New(gateway), nil
	case "local":
		logger.Info("storing photos on disk", zap.String("path", cfg.Photo.LocalPath))
		ps, err := local.NewLocalPhotoStore(cfg.Photo.LocalPath, logger)
		if err != nil {
			return nil, err
		}
		return ps, nil
	case "s3":
		logger.Info("storing photos in s3", zap.String("bucket", cfg.Photo.Bucket), zap.String("endpoint", cfg.Photo.Endpoint))
		ps, err := s3store.New(ctx, s3store.Config{
			Bucket:          cfg.Photo.Bucket,
			Region:          cfg.Photo.Region,
			Endpoint:        cfg.Photo.Endpoint,
			PathStyle:       cfg.Photo.PathStyle,
			Prefix:          cfg.Photo.Prefix,
			AccessKeyID:     cfg.Photo.AccessKeyID,
			SecretAccessKey: cfg.Photo.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return ps, nil
	default:
		return nil, fmt.Errorf("unknown photo backend %q", cfg.Photo.Backend)
	}
}
