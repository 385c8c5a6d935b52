package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/questlog/internal/catalog"
	"github.com/roach88/questlog/internal/engine"
	"github.com/roach88/questlog/internal/game"
	"github.com/roach88/questlog/internal/journal"
	"github.com/roach88/questlog/internal/storage"
)

// App bundles the wired engine for one CLI invocation: key-value store,
// adapter, journal and the started game store.
type App struct {
	KV      *storage.BadgerKV
	Adapter *storage.Adapter
	Journal *journal.Journal
	Store   *game.Store
	Reducer *engine.Reducer
}

// openApp wires and starts the engine against the configured data dir.
// The journal is best effort: if it cannot be opened the app runs without
// one.
func openApp(ctx context.Context, opts *RootOptions) (*App, error) {
	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "create data directory", err)
	}

	kv, err := storage.OpenKV(storage.KVConfig{
		Dir:        filepath.Join(opts.DataDir, "kv"),
		SyncWrites: true,
		Logger:     slog.Default(),
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open storage", err)
	}

	adapter := storage.NewAdapter(kv, catalog.Achievements())
	reducer := engine.NewReducer(catalog.Achievements(), catalog.TotalSections(), catalog.DefaultSection)

	storeOpts := []game.StoreOption{}
	jnl, err := journal.Open(filepath.Join(opts.DataDir, "journal.db"))
	if err != nil {
		slog.Warn("journal unavailable, continuing without it", "error", err)
		jnl = nil
	} else {
		storeOpts = append(storeOpts, game.WithJournal(jnl))
		if last, err := jnl.LastSeq(ctx); err == nil {
			storeOpts = append(storeOpts, game.WithClock(engine.NewClockAt(last)))
		}
	}

	store := game.NewStore(reducer, adapter, storeOpts...)
	store.Start(ctx)

	return &App{
		KV:      kv,
		Adapter: adapter,
		Journal: jnl,
		Store:   store,
		Reducer: reducer,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.Journal != nil {
		if err := a.Journal.Close(); err != nil {
			slog.Warn("journal close failed", "error", err)
		}
	}
	if err := a.KV.Close(); err != nil {
		slog.Warn("storage close failed", "error", err)
	}
}
