package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/questkeep/internal/config"
	"github.com/dukerupert/questkeep/internal/database"
	"github.com/dukerupert/questkeep/internal/economy"
	"github.com/dukerupert/questkeep/internal/level"
	"github.com/dukerupert/questkeep/internal/logging"
	"github.com/dukerupert/questkeep/internal/server"
	"github.com/dukerupert/questkeep/internal/store"
	"github.com/dukerupert/questkeep/internal/streak"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	rules := economy.Rules{
		Multiplier: streak.Multiplier{
			MidStreak: cfg.MidStreak,
			MidFactor: cfg.MidFactor,
			TopStreak: cfg.TopStreak,
			TopFactor: cfg.TopFactor,
		},
		LevelCurve:    cfg.LevelCurve,
		BoxCost:       cfg.BoxCost,
		BoxPrizes:     cfg.BoxPrizes,
		PMCutoverHour: cfg.PMCutoverHour,
	}
	if rules.LevelCurve <= 0 {
		rules.LevelCurve = level.DefaultCurve
	}

	srv := server.New(store.NewSQLite(db), rules, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("questkeep running", "port", cfg.Port, "db", cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
