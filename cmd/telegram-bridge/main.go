package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dpweb/dpweb/internal/app"
	"github.com/dpweb/dpweb/internal/telegram"
	"github.com/dpweb/dpweb/pkg/client"
	"github.com/dpweb/dpweb/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string
	flags := map[string]*pflag.Flag{}

	cmd := &cobra.Command{
		Use:   "telegram-bridge",
		Short: "Relay Telegram chats to the dpweb API",
		Long: `telegram-bridge polls the Telegram bot API and answers /register and /login
by calling the dpweb service endpoints with the Telegram shared key.

Environment Variables:
  DPWEB_TELEGRAM_BRIDGE_BOT_TOKEN   bot token issued by BotFather
  DPWEB_TELEGRAM_BRIDGE_SHARED_KEY  shared key of the Telegram microservice`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Load(app.LoadOptions{File: configFile, Flags: flags})
			if err != nil {
				return err
			}
			if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			defer logger.Sync() // best effort
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a YAML configuration file")
	cmd.Flags().String("api-url", "", "Base URL of the dpweb API")
	flags["telegram_bridge.api_url"] = cmd.Flags().Lookup("api-url")
	return cmd
}

// bridgeSettings resolves the bridge configuration. The shared key falls back
// to the one the server itself is configured with.
func bridgeSettings(cfg *app.Config) (app.TelegramBridgeConfig, error) {
	settings := cfg.TelegramBridge
	if settings.SharedKey == "" {
		settings.SharedKey = cfg.Microservices.Telegram.SharedKey
	}

	var errs error
	if settings.BotToken == "" {
		errs = multierr.Append(errs, errors.New("telegram_bridge.bot_token is required"))
	}
	if settings.SharedKey == "" {
		errs = multierr.Append(errs, errors.New("telegram_bridge.shared_key is required"))
	}
	if settings.APIURL == "" {
		errs = multierr.Append(errs, errors.New("telegram_bridge.api_url is required"))
	}
	return settings, errs
}

func run(ctx context.Context, cfg *app.Config) error {
	settings, err := bridgeSettings(cfg)
	if err != nil {
		return err
	}

	bot, err := tgbotapi.NewBotAPI(settings.BotToken)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	bot.Debug = settings.Debug

	api := client.New(settings.APIURL,
		client.WithTimeout(settings.Timeout),
		client.WithMicroservice(client.TelegramService, settings.SharedKey),
	)

	logger.Info("telegram bridge starting", zap.String("api_url", settings.APIURL))
	return telegram.NewBridge(telegram.NewClientBackend(api)).Run(ctx, bot)
}
