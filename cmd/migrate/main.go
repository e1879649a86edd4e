package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"grievance/internal/pkg/logger"
	"grievance/internal/platform/config"
	"grievance/internal/platform/database"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	applied, err := database.Migrate(context.Background(), db)
	if err != nil {
		log.Fatal().Err(err).Strs("applied", applied).Msg("Migration failed")
	}

	if len(applied) == 0 {
		fmt.Println("Schema is up to date")
		return
	}
	fmt.Printf("Applied %d migration(s)\n", len(applied))
}
