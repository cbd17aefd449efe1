package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iamgilwell/hemat/internal/access"
	"github.com/iamgilwell/hemat/internal/config"
	"github.com/iamgilwell/hemat/internal/content"
	"github.com/iamgilwell/hemat/internal/notification"
	"github.com/iamgilwell/hemat/internal/power"
	"github.com/iamgilwell/hemat/internal/publisher"
	"github.com/iamgilwell/hemat/internal/server"
)

var (
	serveAddr     string
	serveReadOnly bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the calculator, the AI analysis and the blog article routes.
Admin routes require a bearer token from access.admin_tokens.
Send SIGHUP to re-read access.read_only from the config file.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveReadOnly, "read-only", false, "reject admin writes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Global

	notifier, err := newNotifier(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer notifier.Close()
	logger := notifier.Logger()

	auditor, err := notification.NewAuditor(cfg.Notifications.AuditFile)
	if err != nil {
		return err
	}
	defer auditor.Close()

	store, err := content.NewStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := publisher.New(cfg.MQTT, logger)
	if err != nil {
		return err
	}
	defer events.Close()

	deps := server.Deps{
		Calculator: newCalculator(cfg, false),
		Metrics:    power.NewMetrics(),
		Articles:   store,
		Access:     access.NewManager(cfg.Access.AdminTokens, cfg.Access.ReadOnly || serveReadOnly),
		Auditor:    auditor,
		Events:     events,
		Logger:     logger,
	}
	if engine := newEngine(cfg, notifier); engine != nil {
		deps.Advisor = engine
	} else {
		logger.Warn("AI not configured, analysis and content generation are disabled")
	}
	if !deps.Access.Enabled() {
		logger.Warn("no admin tokens configured, admin routes will reject every request")
	}

	srv := server.New(deps, server.Options{
		Version:         Version,
		DefaultRate:     cfg.Calculator.DefaultRate,
		MinRate:         cfg.Calculator.MinRate,
		PageSize:        cfg.Content.PageSize,
		MaxPageSize:     cfg.Content.MaxPageSize,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	go watchAccessMode(cmd.Context(), deps.Access, serveReadOnly, logger)

	if err := srv.Run(cmd.Context(), addr); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}

// watchAccessMode reloads the read-only switch on SIGHUP until ctx ends.
func watchAccessMode(ctx context.Context, mgr *access.Manager, forced bool, logger *zap.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := reloadAccessMode(mgr, forced); err != nil {
				logger.Warn("config reload failed, access mode unchanged", zap.Error(err))
				continue
			}
			logger.Info("access mode reloaded", zap.String("mode", mgr.Mode().String()))
		}
	}
}

// reloadAccessMode reads the config again and applies access.read_only.
// --read-only keeps the server read-only whatever the file says.
func reloadAccessMode(mgr *access.Manager, forced bool) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	mode := access.ModeReadWrite
	if forced || cfg.Access.ReadOnly {
		mode = access.ModeReadOnly
	}
	mgr.SetMode(mode)
	return nil
}
