package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"photo-bot/config"
	"photo-bot/internal/container"
	"photo-bot/internal/infrastructure/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewLogger("production", "info").Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create bot")
	}

	c.Dispatcher.Start(ctx)
	c.Router.SetRunning(true)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.HTTP.Run(gctx) })
	g.Go(func() error { return c.Janitor.Run(gctx) })
	g.Go(func() error {
		if cfg.RunMode == config.RunModeWebhook {
			if err := c.Bot.SetWebhook(cfg.WebhookBaseURL); err != nil {
				return err
			}
			logger.Info().Str("mode", cfg.RunMode).Str("bot", c.Bot.Username()).Msg("bot is running")
			<-gctx.Done()
			return nil
		}
		logger.Info().Str("mode", cfg.RunMode).Str("bot", c.Bot.Username()).Msg("bot is running")
		return c.Bot.Run(gctx, c.Dispatcher)
	})

	err = g.Wait()
	c.Router.SetRunning(false)
	// Дорабатываем принятые события до выхода
	c.Dispatcher.Stop()

	if err != nil {
		logger.Error().Err(err).Msg("bot stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("bot stopped")
}
