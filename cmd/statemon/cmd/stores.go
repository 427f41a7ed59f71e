package cmd

import (
	"context"

	context2 "github.com/raybest4u/statemon/pkg/context"
	"github.com/raybest4u/statemon/pkg/core"
	"github.com/raybest4u/statemon/pkg/dlogger"
	"github.com/raybest4u/statemon/pkg/storage/kv"
	"github.com/raybest4u/statemon/pkg/storage/localfs"

	"github.com/spf13/afero"
)

// cmdStores opens the configured archive as context stores.
//
// Metadata and payloads share one backing store: archive paths keep
// the two namespaces apart. The returned closer releases the backend.
func cmdStores() (context2.Stores, func() error, error) {
	if err := config.validate(); err != nil {
		return nil, nil, err
	}
	switch config.Backend {
	case backendKV:
		store := kv.New(config.Archive)
		return context2.NewStores(store, store), store.Close, nil
	default:
		store := localfs.New(afero.NewBasePathFs(afero.NewOsFs(), config.Archive))
		noop := func() error { return nil }
		return context2.NewStores(store, store), noop, nil
	}
}

// restoreEngine loads the archive into a fresh engine
func restoreEngine(ctx context.Context, stores context2.Stores) (*core.Engine, error) {
	logger, err := dlogger.GetLogger(config.LogLevel)
	if err != nil {
		return nil, err
	}
	engineOpts := []core.EngineOption{
		core.Logger(logger),
		// the CLI is a reader: no background retention on its copy
		core.CleanupInterval(0),
		core.WithMetrics(flags.root.metrics),
	}
	archiveOpts := make([]core.ArchiveOption, 0, 1)
	if config.Concurrency > 0 {
		archiveOpts = append(archiveOpts, core.ArchiveConcurrency(config.Concurrency))
	}
	return core.Restore(ctx, stores, engineOpts, archiveOpts...)
}
