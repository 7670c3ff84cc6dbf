package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/face-gallery/internal/artifact"
	"github.com/kozaktomas/face-gallery/internal/config"
	"github.com/kozaktomas/face-gallery/internal/database"
	"github.com/kozaktomas/face-gallery/internal/database/bolt"
	"github.com/kozaktomas/face-gallery/internal/database/mariadb"
	"github.com/kozaktomas/face-gallery/internal/database/postgres"
	"github.com/kozaktomas/face-gallery/internal/extractor"
	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/kozaktomas/face-gallery/internal/logging"
	"github.com/kozaktomas/face-gallery/internal/notify"
	"github.com/rs/zerolog"
)

const extractorTimeout = 60 * time.Second

// services bundles everything a command needs to operate on the gallery.
type services struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    database.IdentityWriter
	migrator database.Migrator
	gallery  *gallery.Manager
	closers  []func() error
}

// Close releases resources in reverse order of acquisition.
func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.log.Warn().Err(err).Msg("error while closing")
		}
	}
}

// loadConfig reads configuration and builds the logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, logging.New(cfg.Log), nil
}

// openStore connects to the configured gallery store backend.
func openStore(ctx context.Context, cfg *config.DatabaseConfig) (database.IdentityWriter, database.Migrator, func() error, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		fmt.Printf("Connecting to PostgreSQL database...\n")
		pool, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		return postgres.NewIdentityRepository(pool), pool, pool.Close, nil
	case config.DriverMySQL:
		fmt.Printf("Connecting to MySQL database...\n")
		pool, err := mariadb.Open(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		return mariadb.NewIdentityRepository(pool), pool, pool.Close, nil
	case config.DriverBolt:
		store, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// openArtifacts builds the configured image artifact store.
func openArtifacts(cfg *config.StorageConfig) (gallery.ArtifactStore, error) {
	switch cfg.Backend {
	case config.StorageS3:
		store, err := artifact.NewS3Store(cfg.S3)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageDisk:
		store, err := artifact.NewDiskStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// openExtractor builds the configured embedding extractor and the
// embedding length it produces.
func openExtractor(cfg *config.EmbeddingConfig) (gallery.Extractor, int, func() error, error) {
	switch cfg.Backend {
	case config.EmbeddingDlib:
		d, err := extractor.NewDlib(cfg.ModelsDir)
		if err != nil {
			return nil, 0, nil, err
		}
		return d, extractor.DlibDim, d.Close, nil
	case config.EmbeddingHTTP:
		return extractor.NewHTTPClient(cfg.URL, extractorTimeout), cfg.Dim, nil, nil
	default:
		return nil, 0, nil, fmt.Errorf("unsupported embedding backend %q", cfg.Backend)
	}
}

// openAlerts connects the alert publisher, or returns a no-op one when
// alerts are not configured.
func openAlerts(cfg *config.AlertsConfig) (gallery.AlertPublisher, func() error, error) {
	if cfg.AMQPURL == "" {
		return notify.Nop{}, nil, nil
	}
	p, err := notify.DialAMQP(cfg.AMQPURL, cfg.Exchange, cfg.RoutingKey)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

// newServices opens every collaborator and builds the gallery manager.
func newServices(ctx context.Context) (*services, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &services{cfg: cfg, log: log}

	store, migrator, closeStore, err := openStore(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening gallery store: %w", err)
	}
	s.store, s.migrator = store, migrator
	s.closers = append(s.closers, closeStore)

	artifacts, err := openArtifacts(&cfg.Storage)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening artifact store: %w", err)
	}

	ext, dim, closeExt, err := openExtractor(&cfg.Embedding)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating embedding extractor: %w", err)
	}
	if closeExt != nil {
		s.closers = append(s.closers, closeExt)
	}

	alerts, closeAlerts, err := openAlerts(&cfg.Alerts)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("connecting alert publisher: %w", err)
	}
	if closeAlerts != nil {
		s.closers = append(s.closers, closeAlerts)
	}

	s.gallery, err = gallery.NewManager(gallery.Options{
		Store:        store,
		Artifacts:    artifacts,
		Extractor:    ext,
		Alerts:       alerts,
		Dim:          dim,
		MaxImageSize: cfg.Embedding.MaxImageSize,
		Log:          log,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// describeError turns a gallery error into a message for the terminal.
func describeError(err error) error {
	switch {
	case errors.Is(err, gallery.ErrNoFaceDetected):
		return errors.New("no face detected in the image")
	case errors.Is(err, gallery.ErrNotFound):
		return errors.New("identity not found")
	default:
		return err
	}
}
