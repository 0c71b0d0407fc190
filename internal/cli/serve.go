package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/sockdemon/gutterbot/internal/api"
	"github.com/sockdemon/gutterbot/internal/chat"
	"github.com/sockdemon/gutterbot/internal/config"
	"github.com/sockdemon/gutterbot/internal/dispatch"
	"github.com/sockdemon/gutterbot/internal/factory"
	"github.com/sockdemon/gutterbot/internal/services/mobs"
	redisstorage "github.com/sockdemon/gutterbot/internal/storage/redis"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot against a Twitch channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.TwitchUsername == "" || cfg.TwitchToken == "" || cfg.TwitchChannel == "" {
		return fmt.Errorf("TWITCH_USERNAME, TWITCH_TOKEN and TWITCH_CHANNEL are required")
	}

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		Combat:      cfg.Combat(),
		Cycle:       cfg.Cycle(),
		Spawner:     cfg.Spawner(),
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("creating application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Store.SeedPortals(ctx, mobs.DefaultPortals()); err != nil {
		return fmt.Errorf("seeding portal catalog: %w", err)
	}

	whisperer := chat.NewStreamElements(cfg.SteJWTToken, cfg.SteChannelID, logger)

	var dispatcher *dispatch.Dispatcher
	transport := chat.NewTwitch(chat.TwitchConfig{
		Username: cfg.TwitchUsername,
		Token:    cfg.TwitchToken,
		Channel:  cfg.TwitchChannel,
	}, logger, func(msg chat.Message) {
		dispatcher.Handle(ctx, msg)
	})

	dispatcher = dispatch.New(
		app.CombatResolver,
		app.CycleCoordinator,
		app.MobRegistry,
		app.MobSpawner,
		transport,
		whisperer,
		logger,
	)

	app.CycleCoordinator.SetAnnouncer(transport.Say)
	app.MobSpawner.SetAnnouncer(transport.Say)
	app.MobSpawner.Start()
	defer app.MobSpawner.Stop()

	// Recurring cycle trigger: reset the previous cycle, then open a new one
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.CycleCron, func() {
		logger.Info("starting new gutter cycle")
		app.CombatResolver.ClearAllTimeouts()
		app.CycleCoordinator.ResetCycle()
		transport.Say(app.CycleCoordinator.OpenCycle())
	}); err != nil {
		return fmt.Errorf("scheduling gutter cycle: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Admin/observability HTTP surface
	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = cfg.HTTPHost
	serverCfg.Port = cfg.HTTPPort
	server := api.NewServer(api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Store:       app.Store,
		Coordinator: app.CycleCoordinator,
		Registry:    app.MobRegistry,
	}), serverCfg, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Start()
	}()
	go func() {
		errCh <- transport.Connect()
	}()

	logger.Info("gutterbot is ready",
		slog.String("channel", cfg.TwitchChannel),
		slog.String("http_addr", server.Addr()),
	)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("fatal error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
	}

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := transport.Disconnect(context.Background()); err != nil {
		logger.Error("disconnect error", slog.String("error", err.Error()))
	}

	logger.Info("gutterbot stopped")
	return nil
}
