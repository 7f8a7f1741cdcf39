package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lumpybrain/DedMult/internal/agent"
	"github.com/lumpybrain/DedMult/internal/config"
	"github.com/lumpybrain/DedMult/internal/engine"
	"github.com/lumpybrain/DedMult/internal/infrastructure/redis"
	"github.com/lumpybrain/DedMult/internal/network"
	"github.com/lumpybrain/DedMult/internal/server"
	"github.com/lumpybrain/DedMult/internal/version"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		logger.Log.WithError(err).Fatal("Server stopped with error")
	}
	logger.Log.Info("Done.")
}

func run() error {
	// 1. Конфигурация: окружение + флаги
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var showVersion bool
	flag.StringVar(&cfg.Game.MapPath, "map", cfg.Game.MapPath, "Path to galaxy map JSON (empty for the demo map)")
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "HTTP port")
	flag.IntVar(&cfg.Game.Bots, "bots", cfg.Game.Bots, "Number of built-in bots")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version.Current().String())
		return nil
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Log.WithFields(version.Current().Fields()).Info("Starting DedMult...")

	// 2. Ядро матча
	gameCfg, err := engine.ConfigFrom(cfg.Game)
	if err != nil {
		return err
	}
	if cfg.Game.Bots < 0 || cfg.Game.Bots >= gameCfg.MaxPlayers {
		return fmt.Errorf("bots must leave room for at least one human player, got %d", cfg.Game.Bots)
	}

	galaxy, err := engine.BuildGalaxy(cfg.Game.MapPath, gameCfg.ShipPower)
	if err != nil {
		return err
	}
	logger.Log.WithFields(logrus.Fields{
		"map":   cfg.Game.MapPath,
		"nodes": galaxy.Nodes.Len(),
	}).Info("Galaxy loaded")

	// 3. Зеркалирование итогов в Redis (необязательно)
	var publisher engine.Publisher
	rdb, err := redis.Connect(cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		pub := redis.NewPublisher(rdb, cfg.Redis.Channel)
		defer func() {
			if err := pub.Close(); err != nil {
				logger.Log.WithError(err).Warn("Failed to close Redis connection")
			}
		}()
		publisher = pub
	}

	hub := network.NewBroadcaster()
	session := engine.NewSession(gameCfg, galaxy, hub, publisher)

	// Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := session.Run(ctx); err != nil {
			return fmt.Errorf("session: %w", err)
		}
		// Сессия остановлена: без неё серверу делать нечего.
		stop()
		return nil
	})

	for i := 0; i < cfg.Game.Bots; i++ {
		bot := agent.NewBot(fmt.Sprintf("bot-%d", i+1), session, hub)
		g.Go(func() error {
			if err := bot.Run(ctx); err != nil && !errors.Is(err, engine.ErrSessionClosed) {
				return fmt.Errorf("%s: %w", bot.Name, err)
			}
			return nil
		})
	}

	// 4. Запуск сервера
	srv := server.New(session, hub, cfg.Server, cfg.RateLimit)
	g.Go(func() error {
		return srv.Run(ctx)
	})

	err = g.Wait()
	logger.Log.Info("Shutting down...")
	return err
}
