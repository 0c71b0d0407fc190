package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sockdemon/gutterbot/internal/chat"
	"github.com/sockdemon/gutterbot/internal/dispatch"
	"github.com/sockdemon/gutterbot/internal/factory"
	"github.com/sockdemon/gutterbot/internal/services/mobs"
)

func newConsoleCmd() *cobra.Command {
	var handle string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Run the game locally against stdin/stdout",
		Long: `console wires the full game against an in-memory store and a terminal
transport. Every line is a chat message from --handle with moderator
privileges; prefix a line with "someone: " to impersonate another user.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(handle)
		},
	}

	cmd.Flags().StringVar(&handle, "handle", "console_user", "handle to speak as")
	return cmd
}

func runConsole(handle string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	app, err := factory.New(factory.Config{
		Logger:      logger,
		StorageType: factory.StorageTypeMemory,
	})
	if err != nil {
		return fmt.Errorf("creating application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Store.SeedPortals(ctx, mobs.DefaultPortals()); err != nil {
		return fmt.Errorf("seeding portal catalog: %w", err)
	}

	console := chat.NewConsole(os.Stdout, handle)
	dispatcher := dispatch.New(
		app.CombatResolver,
		app.CycleCoordinator,
		app.MobRegistry,
		app.MobSpawner,
		console,
		console,
		logger,
	)

	app.CycleCoordinator.SetAnnouncer(console.Say)
	app.MobSpawner.SetAnnouncer(console.Say)

	fmt.Println("gutterbot console. Try !forceopen, then !join. Ctrl-D to quit.")
	return console.Run(ctx, os.Stdin, func(msg chat.Message) {
		dispatcher.Handle(ctx, msg)
	})
}
