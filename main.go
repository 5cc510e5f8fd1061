package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/learnflow/internal/config"
	"github.com/example/learnflow/internal/database"
	"github.com/example/learnflow/internal/engine"
	"github.com/example/learnflow/internal/excel"
	"github.com/example/learnflow/internal/profile"
	"github.com/example/learnflow/internal/session"
)

func main() {
	importPath := flag.String("import", "", "import curriculum content from an .xlsx or .csv file and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer log.Sync()

	if err := database.Connect(); err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	contentRepo := database.NewContentRepository(nil)
	itemRepo := database.NewMemoryItemRepository(nil)

	if *importPath != "" {
		result, err := excel.ImportContent(excel.DefaultImportConfig(*importPath), contentRepo)
		if err != nil {
			log.Fatal("import failed", zap.Error(err))
		}
		log.Info("import finished",
			zap.Int("processed", result.TotalProcessed),
			zap.Int("created", result.Created),
			zap.Int("skipped", result.Skipped),
			zap.Strings("errors", result.Errors))
		return
	}

	profiles := profile.New(log,
		profile.WithItemWriter(itemRepo),
		profile.WithItemLoader(itemRepo),
	)
	sessions := session.NewManager(log,
		session.WithIdleTimeout(cfg.IdleTimeout),
		session.WithAdjustmentCooldown(cfg.AdjustmentCooldown),
	)
	sessions.StartSweeper()

	eng := engine.New(profiles, contentRepo, sessions, log)
	_ = eng // the serving layer registers its handlers against this

	log.Info("engine started",
		zap.String("db_type", cfg.DBType),
		zap.Duration("idle_timeout", cfg.IdleTimeout))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("shutting down", zap.String("signal", sig.String()))

	sessions.Shutdown()
	log.Info("engine stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
