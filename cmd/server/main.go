package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/example/settlement-planner/internal/api"
	"github.com/example/settlement-planner/internal/config"
	"github.com/example/settlement-planner/internal/planner"
	geoprov "github.com/example/settlement-planner/internal/providers/geo"
	"github.com/example/settlement-planner/internal/providers/llm"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	llmClient := llm.NewFromEnv()
	resolver := geoprov.NewNominatimResolver(cfg.ProviderTimeout, cfg.GeocodeCacheTTL, cfg.GeocodePacing, log)
	searcher := geoprov.NewOverpassSearcher(cfg.ProviderTimeout, cfg.GeocodeCacheTTL, cfg.GeocodePacing, log)

	pipeline, err := planner.New(cfg, llmClient, resolver, searcher, log)
	if err != nil {
		log.Error("planner init failed", "error", err)
		os.Exit(1)
	}

	server := api.NewServer(pipeline, log)
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(server.Routes())

	addr := ":" + cfg.Port
	log.Info("settlement planner listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
