package notification

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iamgilwell/hemat/internal/power"
)

// Color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// Options configures a Notifier.
type Options struct {
	LogFile      string
	ColorEnabled bool
	Verbose      bool
	// Console receives human-readable output. Defaults to stdout.
	Console io.Writer
}

// Notifier handles terminal output and file logging.
type Notifier struct {
	mu           sync.Mutex
	logger       *zap.Logger
	logFile      *os.File
	console      io.Writer
	colorEnabled bool
}

// NewNotifier builds a zap logger that writes console lines and, when a log
// file is configured, JSON lines to that file.
func NewNotifier(opts Options) (*Notifier, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	consoleCfg := zap.NewProductionEncoderConfig()
	consoleCfg.TimeKey = "timestamp"
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	if opts.ColorEnabled {
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(console), level),
	}

	n := &Notifier{console: console, colorEnabled: opts.ColorEnabled}

	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		n.logFile = f

		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "timestamp"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(f), level))
	}

	n.logger = zap.New(zapcore.NewTee(cores...))
	return n, nil
}

// NewNop returns a Notifier that discards everything.
func NewNop() *Notifier {
	return &Notifier{logger: zap.NewNop(), console: io.Discard}
}

// Logger exposes the underlying structured logger for components.
func (n *Notifier) Logger() *zap.Logger {
	return n.logger
}

// Close flushes the logger and closes the log file.
func (n *Notifier) Close() {
	_ = n.logger.Sync()
	if n.logFile != nil {
		n.logFile.Close()
	}
}

func (n *Notifier) Info(msg string, fields ...zap.Field)  { n.logger.Info(msg, fields...) }
func (n *Notifier) Warn(msg string, fields ...zap.Field)  { n.logger.Warn(msg, fields...) }
func (n *Notifier) Error(msg string, fields ...zap.Field) { n.logger.Error(msg, fields...) }

// Debug logs a debug message (only if verbose).
func (n *Notifier) Debug(msg string, fields ...zap.Field) { n.logger.Debug(msg, fields...) }

// Calculation prints a one-line summary of a calculation and logs it.
func (n *Notifier) Calculation(source string, result power.Result, cost float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	total := power.FormatKWh(result.MonthlyTotalKWh)
	rupiah := power.FormatRupiah(cost)
	if n.colorEnabled {
		fmt.Fprintf(n.console, "%s[CALC]%s %-6s devices=%-3d %s%s%s %s%s%s\n",
			colorBold, colorReset, source, len(result.Devices),
			colorCyan, total, colorReset,
			colorGreen, rupiah, colorReset)
	} else {
		fmt.Fprintf(n.console, "[CALC] %-6s devices=%-3d %s %s\n", source, len(result.Devices), total, rupiah)
	}

	n.logger.Debug("calculation",
		zap.String("source", source),
		zap.Int("devices", len(result.Devices)),
		zap.Float64("monthly_kwh", result.MonthlyTotalKWh),
		zap.Float64("monthly_cost", cost))
}

// Excluded prints a warning for each device left out of a calculation.
func (n *Notifier) Excluded(warnings []power.Warning) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, w := range warnings {
		label := w.Name
		if label == "" {
			label = "#" + w.ID
		}
		if n.colorEnabled {
			fmt.Fprintf(n.console, "%s[SKIP]%s %s (%s)\n", colorYellow, colorReset, label, w.Reason)
		} else {
			fmt.Fprintf(n.console, "[SKIP] %s (%s)\n", label, w.Reason)
		}
	}
}

// FormatTimestamp formats a time for display.
func FormatTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
