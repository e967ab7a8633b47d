// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/telekom/geomail/pkg/api"
	"github.com/telekom/geomail/pkg/config"
	"github.com/telekom/geomail/pkg/geolocation"
	"github.com/telekom/geomail/pkg/mail"
	"github.com/telekom/geomail/pkg/system"
	"github.com/telekom/geomail/pkg/version"
)

// ServeOptions are the process-level flags of the serve command.
type ServeOptions struct {
	Debug      bool
	ConfigPath string
	EnvFile    string
}

// NewRootCommand returns the geomail command with all subcommands attached.
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           version.Name,
		Short:         "Relay browser geolocation reports to a mailbox",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(NewServeCommand(), NewVersionCommand())
	return root
}

func NewServeCommand() *cobra.Command {
	opts := ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP relay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Serve(ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Debug, "debug", getEnvBool("GEOMAIL_DEBUG", false),
		"Enable debug logging and gin debug mode")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", getEnvString(config.EnvConfigPath, ""),
		"Path to an optional YAML config file (default ./config.yaml when present)")
	cmd.Flags().StringVar(&opts.EnvFile, "env-file", getEnvString("GEOMAIL_ENV_FILE", ".env"),
		"Dotenv file loaded before reading the environment; missing files are ignored")

	return cmd
}

// Serve wires configuration, logging, the mail transport and the HTTP server,
// then blocks until ctx is cancelled.
func Serve(ctx context.Context, opts ServeOptions) error {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	zl, err := system.NewLogger(opts.Debug, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	log := zl.Sugar()
	log.Infow("Starting geolocation relay", "version", version.GetBuildInfo().String())
	PrintConfig(cfg, log)

	if err := cfg.Validate(); err != nil {
		log.Errorw("Invalid configuration", "error", err)
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sender := mail.NewSender(cfg.Mail, log)
	notifier := geolocation.NewNotifier(sender, cfg.Mail, log)

	server, err := api.NewServer(zl, cfg, opts.Debug)
	if err != nil {
		return err
	}
	if err := server.RegisterAll([]api.APIController{
		geolocation.NewController(notifier, log),
	}); err != nil {
		return fmt.Errorf("registering controllers: %w", err)
	}

	return server.Listen(ctx)
}

// PrintConfig logs the effective configuration without secrets.
func PrintConfig(cfg config.Config, log *zap.SugaredLogger) {
	log.Infow("Configuration",
		"listen_address", cfg.Addr(),
		"tls", cfg.Server.TLSCertFile != "",
		"smtp_host", cfg.Mail.Host,
		"smtp_port", cfg.Mail.Port,
		"smtp_user", cfg.Mail.User,
		"smtp_password_set", cfg.Mail.Password != "",
		"smtp_insecure_skip_verify", cfg.Mail.InsecureSkipVerify,
		"sender", cfg.Mail.SenderAddress,
		"recipient", cfg.Mail.Recipient,
		"cors_allow_origins", cfg.CORS.AllowOrigins,
		"log_level", cfg.Log.Level,
	)
}

// getEnvString returns the value of an environment variable, or the provided default if not set.
func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvBool returns the value of an environment variable as a bool, or the provided default if not set.
// Valid true values are "true", "1", "yes" (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}
