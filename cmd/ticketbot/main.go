package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticketbot/internal/bus"
	"ticketbot/internal/channel"
	"ticketbot/internal/config"
	"ticketbot/internal/dispatch"
	"ticketbot/internal/domain"
	"ticketbot/internal/intake"
	"ticketbot/internal/metrics"
	"ticketbot/internal/route"
	"ticketbot/internal/sheets"

	"github.com/spf13/cobra"
)

var (
	version    = "0.3.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "ticketbot",
		Short: "ticketbot: conversational ticket intake for team chat",
		Long: "ticketbot watches configured channels, recognizes issue and requirement\n" +
			"reports by keyword and channel matching, and records them to a spreadsheet\n" +
			"either automatically (pasted tables) or through an interactive form.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.ticketbot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(runCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(configCmd())
	root.AddCommand(installDaemonCmd())
	root.AddCommand(uninstallDaemonCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists at %s", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	var console bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the intake bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(console)
		},
	}
	cmd.Flags().BoolVar(&console, "console", false, "dry-run against a local console instead of Slack")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ticketbot v%s\n", version)
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(resolveConfigPath()); err != nil {
				return err
			}
			fmt.Println("config is valid")
			return nil
		},
	})
	return cmd
}

func run(console bool) error {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config not found, using defaults", "path", cfgPath, "err", err)
		cfg = config.Defaults()
	}

	logger = newLogger(cfg.General)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	messageBus := bus.New(cfg.General.BusBuffer, logger)
	defer messageBus.Close()

	var transport domain.Transport
	if console {
		transport = channel.NewConsole(channel.ConsoleConfig{Logger: logger})
	} else {
		if !cfg.Slack.Enabled {
			return fmt.Errorf("slack is disabled in config; use --console for a local dry run")
		}
		transport = channel.NewSlack(channel.SlackConfig{
			BotToken: cfg.Slack.BotToken,
			AppToken: cfg.Slack.AppToken,
			Logger:   logger,
		})
	}

	sheetClient, err := sheets.New(ctx, cfg.Sheets.CredentialsPath, logger)
	if err != nil {
		return err
	}

	dispatcher := buildDispatcher(cfg, transport, sheetClient)

	if cfg.Metrics.Enabled {
		go serveMetrics(ctx, cfg.Metrics)
	}

	go dispatcher.Run(ctx, messageBus)

	logger.Info("ticketbot starting", "version", version, "transport", transport.Name(),
		"categories", len(cfg.Categories), "sheets_enabled", sheetClient.Enabled())

	if err := transport.Start(ctx, messageBus); err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	return nil
}

// buildDispatcher wires the router and one handler per category tag. When
// several config entries share a tag, the first entry's spreadsheet
// destination wins for that tag's handler.
func buildDispatcher(cfg *config.Config, transport domain.Transport, sheetClient domain.RowAppender) *dispatch.Dispatcher {
	links := intake.NewLinkCache(time.Duration(cfg.Intake.LinkTTLMinutes) * time.Minute)
	loc := cfg.General.Location()

	schemas := map[string]*intake.Schema{
		"issue":       intake.IssueSchema(),
		"requirement": intake.RequirementSchema(),
	}

	var handlers []*intake.Handler
	seen := make(map[string]bool)
	for _, cat := range cfg.Categories {
		schema, ok := schemas[cat.Tag]
		if !ok || seen[cat.Tag] {
			continue
		}
		seen[cat.Tag] = true
		handlers = append(handlers, intake.NewHandler(intake.HandlerOptions{
			Category:  cat,
			Schema:    schema,
			Messenger: transport,
			Sheets:    sheetClient,
			Links:     links,
			Logger:    logger,
			Intake:    cfg.Intake,
			Location:  loc,
		}))
	}

	return dispatch.New(dispatch.Options{
		Router:    route.New(cfg.Categories, logger),
		Handlers:  handlers,
		Messenger: transport,
		Directory: transport,
		Logger:    logger,
		Welcome:   cfg.Intake.WelcomeMessage,
	})
}

func serveMetrics(ctx context.Context, cfg config.MetricsConfig) {
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Endpoint, metrics.Collector.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", "addr", srv.Addr, "endpoint", cfg.Endpoint)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server failed", "err", err)
	}
}

func newLogger(general config.GeneralConfig) *slog.Logger {
	level := slog.LevelInfo
	switch general.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	out := os.Stderr
	if general.LogFile != "" {
		f, err := os.OpenFile(general.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Warn("cannot open log file, logging to stderr", "path", general.LogFile, "err", err)
		} else {
			out = f
		}
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}
