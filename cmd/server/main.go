package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chessrules/chess-server/internal/config"
	"github.com/chessrules/chess-server/internal/controller"
	"github.com/chessrules/chess-server/internal/service"
	"github.com/chessrules/chess-server/internal/store"
	"github.com/gofiber/fiber/v2/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	level, err := cfg.Level()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var gameStore service.GameStore
	if cfg.DBPath != "" {
		st, err := store.Open(ctx, cfg.DBPath)
		if err != nil {
			log.Fatalf("store: %v", err)
		}
		defer st.Close()
		gameStore = st
		log.Infof("persisting games to %s", cfg.DBPath)
	}

	// Initialize services
	gameManager := service.NewGameManager(cfg.TimeControl, gameStore)
	gameService := service.NewGameService(gameManager)
	go gameManager.RunMatchmaking(ctx, cfg.MatchmakingInterval)

	app := controller.NewApp(gameService, cfg.AllowOrigins)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("listening on %s", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Errorf("listen: %v", err)
	}
}
