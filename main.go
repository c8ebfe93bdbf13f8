package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/config"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/httpserver"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/questions"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := questions.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load question pool")
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	srv := httpserver.New(store.NewSQLiteStore(db), db, cfg)
	log.Info().Str("port", cfg.Port).Str("version", questions.ContentVersion).Msg("starting cartoobscura server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
