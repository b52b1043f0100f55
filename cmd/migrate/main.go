package main

import (
	"log"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/backoffice-api/pkg/config"
	"github.com/noah-isme/backoffice-api/pkg/database"
	"github.com/noah-isme/backoffice-api/pkg/logger"
)

func main() {
	direction := flag.StringP("direction", "d", "up", "migration direction: up or down")
	flag.Parse()
	if flag.NArg() > 0 {
		*direction = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := database.Migrate(database.URL(cfg.Database), *direction); err != nil {
		logr.Fatal("migration failed", zap.String("direction", *direction), zap.Error(err))
	}
	logr.Info("migration complete", zap.String("direction", *direction), zap.String("database", cfg.Database.Name))
}
