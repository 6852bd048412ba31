// Command migrate creates the ledger tables and seeds the platform row.
package main

import (
	"context"

	"carbon-exchange/internal/application/platform"
	"carbon-exchange/internal/config"
	"carbon-exchange/internal/infrastructure/database"
	"carbon-exchange/internal/pkg/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	logging.Setup(cfg.LogLevel, cfg.IsProduction())

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("no database URL configured")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres open")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("auto migrate")
	}
	log.Info().Int("tables", len(database.Models())).Msg("schema migrated")

	st, err := (&platform.Service{DB: db}).Ensure(context.Background(), cfg.OwnerAddress, cfg.PlatformFeeBps, cfg.PlatformFeeCapBps)
	if err != nil {
		log.Fatal().Err(err).Msg("platform init (is OWNER_ADDRESS set?)")
	}
	log.Info().Str("owner", st.OwnerAddress).Int("fee_bps", st.FeeBps).Int("fee_cap_bps", st.FeeCapBps).Msg("platform ready")
}
