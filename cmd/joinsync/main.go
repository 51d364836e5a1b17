package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"joinsync/internal/config"
	"joinsync/internal/logging"
	"joinsync/internal/metrics"
	"joinsync/internal/reconcile"
	"joinsync/internal/sheets"
	"joinsync/internal/store"
	"joinsync/internal/tgbot"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewRegistry()
	err = run(ctx, cfg, logger, m)
	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if perr := m.Push(pushCtx, cfg.PushgatewayURL, "joinsync"); perr != nil {
			logger.Warnw("push metrics", "error", perr)
		}
		cancel()
	}
	if err != nil {
		logger.Errorw("sync process failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Infow("sync process finished")
}

func run(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger, m *metrics.Registry) error {
	logger.Infow("starting two-way sync", "store_driver", cfg.StoreDriver)

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Warnw("close store", "error", err)
		}
	}()

	sh, err := sheets.New(ctx, cfg.GoogleServiceAccountJSON, cfg.SpreadsheetID, cfg.SheetTitle)
	if err != nil {
		return fmt.Errorf("sheets: %w", err)
	}
	logger.Infow("opened review sheet", "spreadsheet_id", sh.SpreadsheetID(), "tab", sh.Tab())

	notifier, err := tgbot.New(cfg.TelegramToken, cfg.NotifyRatePerSec)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	logger.Infow("connected to telegram", "bot", notifier.BotName())

	r := reconcile.New(st, sh, notifier, reconcile.MessagesFromConfig(cfg.Messages), logger, m)
	_, err = r.Run(ctx)
	return err
}
