// Command notely chats with your notes from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/notely-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/notely-cli/internal/adapters/driven/gateway"
	"github.com/custodia-labs/notely-cli/internal/adapters/driven/session/supabase"
	"github.com/custodia-labs/notely-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/notely-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/notely-cli/internal/adapters/driven/watcher/filesystem"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/core/services"
	"github.com/custodia-labs/notely-cli/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() { _ = logger.Sync() }()

	store, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: opening config:", err)
		return 1
	}

	svc, closeFn, err := wire(store)
	if err != nil {
		// Leave only the config commands usable so the user can fix it.
		fmt.Fprintln(os.Stderr, "Warning:", err)
		logger.Warn("%v", err)
		svc = &cli.Services{Config: store, SetupErr: err}
	}
	defer closeFn()

	cli.SetServices(svc)
	return cli.Execute(ctx)
}

// wire builds the adapters and core services from the resolved config.
func wire(store *file.ConfigStore) (*cli.Services, func(), error) {
	noop := func() {}

	cfg, err := file.LoadClientConfig(store, ".env")
	if err != nil {
		return nil, noop, fmt.Errorf("loading config: %w", err)
	}
	if cfg.LogFile != "" {
		if err := logger.SetLogFile(cfg.LogFile); err != nil {
			logger.Warn("log file %s: %v", cfg.LogFile, err)
		}
	}
	if cfg.SupabaseURL == "" {
		return nil, noop, fmt.Errorf("%s is not set, run `notely config set %s <url>`",
			file.KeySupabaseURL, file.KeySupabaseURL)
	}

	dir := filepath.Dir(store.Path())

	session, err := supabase.New(supabase.Config{
		URL:         cfg.SupabaseURL,
		AnonKey:     cfg.SupabaseAnonKey,
		SessionPath: filepath.Join(dir, supabase.SessionFileName),
	})
	if err != nil {
		return nil, noop, fmt.Errorf("loading session: %w", err)
	}

	client, err := gateway.NewClient(gateway.Config{
		BaseURL:           cfg.APIURL,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, session)
	if err != nil {
		return nil, noop, err
	}
	api := gateway.NewAPI(client, cfg.UploadTimeout)

	db, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return nil, noop, fmt.Errorf("opening upload history: %w", err)
	}
	history := db.UploadHistoryStore()

	threads := memory.NewThreadStore()
	settings := services.NewSettingsService(api, 0)

	return &cli.Services{
		Auth:     services.NewAuthService(session, threads, settings),
		Chat:     services.NewChatService(api, threads, session),
		Thread:   services.NewThreadService(api, threads),
		Upload:   services.NewUploadService(api, history),
		File:     services.NewFileService(api, history),
		Search:   services.NewSearchService(api),
		Settings: settings,
		APIKey:   services.NewAPIKeyService(api),
		Config:   store,
		NewWatcher: func(root string) driven.FileWatcher {
			return filesystem.New(root, filesystem.DefaultSettle)
		},
	}, func() { _ = db.Close() }, nil
}
