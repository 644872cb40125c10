package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sweetshop/internal/apiclient"
	"sweetshop/internal/authsignal"
	"sweetshop/internal/config"
	"sweetshop/internal/credential"
	"sweetshop/internal/logging"
	"sweetshop/internal/navigation"
	"sweetshop/internal/notify"
	"sweetshop/internal/session"
	"sweetshop/internal/shell"
	"sweetshop/internal/storefront"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg   config.ClientConfig
		start string
		exec  []string
	)
	cmd := &cobra.Command{
		Use:           "sweetshop",
		Short:         "Terminal storefront for the Sweet Shop",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.LoadDotEnv()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := config.ClientFromEnv()
			flags := cmd.Flags()
			if !flags.Changed("api-url") {
				cfg.APIURL = env.APIURL
			}
			if !flags.Changed("token-file") {
				cfg.TokenFile = env.TokenFile
			}
			if !flags.Changed("timeout") {
				cfg.RequestTimeout = env.RequestTimeout
			}
			cfg.UnauthorizedCooldown = env.UnauthorizedCooldown
			return run(cmd.Context(), cfg, start, exec)
		},
	}
	cmd.Flags().StringVar(&cfg.APIURL, "api-url", "", "backend base URL (SWEETSHOP_API_URL)")
	cmd.Flags().StringVar(&cfg.TokenFile, "token-file", "", "where the session token is kept (SWEETSHOP_TOKEN_FILE)")
	cmd.Flags().DurationVar(&cfg.RequestTimeout, "timeout", 0, "per-request timeout")
	cmd.Flags().StringVar(&start, "open", navigation.PathCatalog, "route to open first")
	cmd.Flags().StringArrayVarP(&exec, "exec", "e", nil, "run these shell commands and exit")
	return cmd
}

func run(ctx context.Context, cfg config.ClientConfig, start string, exec []string) error {
	logger := logging.New("sweetshop")
	logger.Logger.SetOutput(os.Stderr)
	if os.Getenv("LOG_LEVEL") == "" {
		logger.Logger.SetLevel(logrus.WarnLevel)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds := credential.NewFile(cfg.TokenFile)
	bus := authsignal.NewBus()
	client, err := apiclient.New(apiclient.Config{
		BaseURL:     cfg.APIURL,
		HTTPClient:  &http.Client{Timeout: cfg.RequestTimeout},
		Credentials: creds,
		Signal:      bus,
		Cooldown:    cfg.UnauthorizedCooldown,
		Logger:      logger.WithField("layer", "api"),
	})
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	app := storefront.NewApp(storefront.Deps{
		API:       client,
		Session:   session.New(creds, session.NewJWTDecoder(), logger.WithField("layer", "session")),
		Signal:    bus,
		Navigator: navigation.New(start),
		Toasts:    notify.NewCenter(),
		Logger:    logger,
	})
	defer app.Close()

	sh := shell.New(app, os.Stdout, logger.WithField("layer", "shell"))
	if len(exec) > 0 {
		sh.Cycle(ctx)
		for _, line := range exec {
			if err := sh.Exec(ctx, line); err != nil {
				return nil
			}
		}
		return nil
	}
	return sh.Run(ctx, os.Stdin)
}
