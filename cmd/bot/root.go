package main

import (
	"fmt"

	"github.com/Freeeeeet/episode_shop_bot/internal/app"
	"github.com/Freeeeeet/episode_shop_bot/internal/config"
	"github.com/Freeeeeet/episode_shop_bot/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// commandContext конфиг и логгер, общие для всех команд
type commandContext struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (cc *commandContext) load() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		return err
	}

	cc.cfg = cfg
	cc.logger = logger
	return nil
}

func (cc *commandContext) close() {
	if cc.logger != nil {
		_ = cc.logger.Sync()
	}
}

func newRootCommand() *cobra.Command {
	cc := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "episode-shop-bot",
		Short:         "Telegram bot selling course episodes with manual payment review",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cc.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			cc.close()
		},
		// Без подкоманды запускается бот
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd, cc)
		},
	}

	rootCmd.AddCommand(newRunCommand(cc))
	rootCmd.AddCommand(newMigrateCommand(cc))
	rootCmd.AddCommand(newPurgeTokensCommand(cc))

	return rootCmd
}

func runBot(cmd *cobra.Command, cc *commandContext) error {
	cc.logger.Info("Starting episode shop bot",
		zap.String("environment", cc.cfg.Environment),
		zap.Int("token_length", len(cc.cfg.TelegramToken)))
	return app.Run(cmd.Context(), cc.cfg, cc.logger)
}

func newRunCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot, the watch HTTP server and background jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd, cc)
		},
	}
}

func newMigrateCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := app.OpenDatabase(cmd.Context(), cc.cfg, cc.logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator, err := app.NewMigrator(pool, migrations.FS, cc.logger)
			if err != nil {
				return err
			}
			defer migrator.Close()

			version, err := migrator.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database schema at version %d\n", version)
			return nil
		},
	}
}

func newPurgeTokensCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-tokens",
		Short: "Delete expired access tokens and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := app.OpenDatabase(cmd.Context(), cc.cfg, cc.logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := app.NewServices(pool, cc.cfg, cc.logger).Tokens.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired tokens\n", n)
			return nil
		},
	}
}
