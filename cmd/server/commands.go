package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dpweb/dpweb/internal/app"
	iauth "github.com/dpweb/dpweb/internal/auth"
	"github.com/dpweb/dpweb/internal/services"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	"github.com/dpweb/dpweb/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configFile string
	flags      map[string]*pflag.Flag
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{flags: map[string]*pflag.Flag{}}

	root := &cobra.Command{
		Use:   "dpweb",
		Short: "dpweb backend server",
		Long: `dpweb serves the v1 API for users, invites and projects.

Examples:
  # Serve the API on a custom address
  dpweb start --ip 127.0.0.1:3000

  # Create an invite for a Normal user
  dpweb create-invite --reason "new teammate" --user-type Normal

Environment Variables:
  DPWEB_<SECTION>_<KEY>  overrides any configuration key, e.g. DPWEB_SERVER_ADDRESS`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to a YAML configuration file")
	root.PersistentFlags().String("database", "", "Path of the SQLite database file")
	opts.flags["database.path"] = root.PersistentFlags().Lookup("database")

	root.AddCommand(newStartCommand(opts), newCreateInviteCommand(opts))
	return root
}

func (o *rootOptions) load() (*app.Config, error) {
	cfg, err := app.Load(app.LoadOptions{File: o.configFile, Flags: o.flags})
	if err != nil {
		return nil, err
	}
	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	return cfg, nil
}

func newStartCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync() // best effort
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("ip", "", "Address to listen on, e.g. 0.0.0.0:3000")
	opts.flags["server.address"] = cmd.Flags().Lookup("ip")
	return cmd
}

func newCreateInviteCommand(opts *rootOptions) *cobra.Command {
	var (
		reason   string
		userType string
	)

	cmd := &cobra.Command{
		Use:   "create-invite",
		Short: "Create a single use invite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ty, err := v1.ParseUserTy(userType)
			if err != nil {
				return fmt.Errorf("--user-type must be one of %s: %w", userTyNames(), err)
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync() // best effort

			token, err := createInvite(cmd.Context(), cfg, ty, reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invite token: %s\n", token)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Why the invite was issued")
	cmd.Flags().StringVar(&userType, "user-type", v1.UserUnregistered.String(), "Type of the user created by the invite: "+userTyNames())
	return cmd
}

func userTyNames() string {
	names := make([]string, 0, len(v1.UserTys()))
	for _, ty := range v1.UserTys() {
		names = append(names, ty.String())
	}
	return strings.Join(names, ", ")
}

func createInvite(ctx context.Context, cfg *app.Config, ty v1.UserTy, reason string) (string, error) {
	log := logger.WithModule("bootstrap")

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return "", err
	}
	defer closeDatabase(db, log)

	tokens, err := iauth.NewTokenService(db, iauth.TokenConfig{})
	if err != nil {
		return "", err
	}
	invites, err := services.NewInviteService(db, tokens)
	if err != nil {
		return "", err
	}

	invite, err := invites.Create(ctx, ty, reason)
	if err != nil {
		return "", err
	}
	return invite.Invite, nil
}

func serve(ctx context.Context, cfg *app.Config) error {
	log := logger.WithModule("bootstrap")

	stack, err := bootstrapRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stack.Shutdown(context.Background(), log)

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           stack.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
