package main

import (
	"os"

	"todayiwatched/internal/config"
	"todayiwatched/internal/db"
	"todayiwatched/internal/feed"
	"todayiwatched/internal/logging"
	"todayiwatched/internal/router"
	"todayiwatched/internal/services"
	"todayiwatched/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Warn().Err(err).Msg("failed to read .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	gin.SetMode(cfg.GinMode)

	if cfg.SessionSecret == config.DefaultSessionSecret {
		logging.Warn().Msg("SESSION_SECRET is not set, using the built-in default")
	}

	st, err := openStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("backend", cfg.StoreBackend()).Msg("failed to open recommendation store")
	}

	if cfg.OMDbAPIKey == "" {
		logging.Warn().Msg("OMDB_API_KEY is not set, poster lookups will fail")
	}
	lookup := services.NewOMDbService(cfg.OMDbBaseURL, cfg.OMDbAPIKey, cfg.HTTPTimeout)

	registry, err := feed.NewRegistry(st, lookup, cfg.MaxSessions, cfg.SessionTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create visitor registry")
	}

	r, err := router.NewEngine(router.Options{
		Store:         st,
		Backend:       cfg.StoreBackend(),
		Lookup:        lookup,
		Registry:      registry,
		SessionSecret: cfg.SessionSecret,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build router")
	}

	logging.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend()).Msg("Today I Watched server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logging.Fatal().Err(err).Msg("server stopped")
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend() {
	case config.BackendPostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store.NewGorm(conn), nil
	case config.BackendPostgREST:
		return store.NewPostgREST(cfg.SupabaseURL, cfg.SupabaseKey, cfg.HTTPTimeout), nil
	default:
		logging.Warn().Msg("no DATABASE_URL or SUPABASE_URL configured, recommendations are kept in memory")
		return store.NewMemory(), nil
	}
}
