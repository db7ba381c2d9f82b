package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecoimpact/carbonsim/internal/config"
	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/engine/cache"
	"github.com/ecoimpact/carbonsim/internal/logging"
	"github.com/ecoimpact/carbonsim/internal/metrics"
	"github.com/ecoimpact/carbonsim/internal/refdata"
)

// session holds what a simulation command needs: the effective config, the
// dataset, the engine and its collaborators.
type session struct {
	cfg     *config.Config
	data    *refdata.Dataset
	engine  *engine.Engine
	store   *cache.FileStore
	metrics *metrics.Recorder
	command string
	start   time.Time
}

// loadDataset returns the configured dataset or the embedded default.
func loadDataset(ctx context.Context, cfg *config.Config) (*refdata.Dataset, error) {
	log := logging.FromContext(ctx)
	if cfg.Data.Path == "" {
		return refdata.Default()
	}
	ds, err := refdata.Load(cfg.Data.Path)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("data_path", cfg.Data.Path).Msg("failed to load dataset")
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	log.Debug().Ctx(ctx).
		Str("data_path", cfg.Data.Path).
		Str("dataset", ds.Name()).
		Str("schema_version", ds.SchemaVersion()).
		Msg("dataset loaded")
	return ds, nil
}

// openCache opens the file store described by cfg.
func openCache(cfg *config.Config) (*cache.FileStore, error) {
	dir, err := cfg.CacheDirectory()
	if err != nil {
		return nil, err
	}
	store, err := cache.NewFileStore(dir, cfg.Cache.Enabled, cfg.Cache.TTLSeconds, cfg.Cache.MaxSizeMB)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return store, nil
}

// openSession builds the engine for cmd from the global configuration.
func openSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		data:    ds,
		metrics: metrics.New(),
		command: cmd.Name(),
		start:   time.Now(),
	}
	opts := []engine.Option{engine.WithMetrics(s.metrics)}

	if cfg.Cache.Enabled {
		store, cacheErr := openCache(cfg)
		if cacheErr != nil {
			logging.FromContext(ctx).Warn().Ctx(ctx).Err(cacheErr).Msg("result cache unavailable, continuing without it")
		} else {
			s.store = store
			opts = append(opts, engine.WithCache(store))
		}
	}

	s.engine, err = engine.NewFromDataset(ds, cfg.Projection.Options(), opts...)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}
	return s, nil
}

// close writes the metrics textfile, if configured, and logs the outcome.
// A metrics write failure is a warning, never a command failure.
func (s *session) close(ctx context.Context, err error) {
	log := logging.FromContext(ctx)
	if path := s.cfg.Metrics.Textfile; path != "" {
		if werr := s.metrics.WriteTextfile(path); werr != nil {
			log.Warn().Ctx(ctx).Err(werr).Str("path", path).Msg("failed to write metrics textfile")
		}
	}

	event := log.Info()
	if err != nil {
		event = log.Error().Err(err)
	}
	event.Ctx(ctx).
		Str("command", s.command).
		Dur("duration", time.Since(s.start)).
		Msg("command finished")
}

// outputFormat resolves the effective output format.
func outputFormat(cfg *config.Config) (engine.OutputFormat, error) {
	return engine.ParseOutputFormat(cfg.Output.DefaultFormat)
}
