package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iamgilwell/hemat/internal/config"
)

var (
	followLogs bool
	auditLogs  bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View Hemat log files",
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().BoolVar(&followLogs, "follow", false, "follow log output (like tail -f)")
	logsCmd.Flags().BoolVar(&auditLogs, "audit", false, "show the article audit trail instead")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg := config.Global
	path := cfg.Notifications.LogFile
	if auditLogs {
		path = cfg.Notifications.AuditFile
	}
	if path == "" {
		return fmt.Errorf("no log file configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	if _, err := io.Copy(out, f); err != nil {
		return err
	}
	if !followLogs {
		return nil
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "--- Following log output (Ctrl+C to stop) ---")

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-ticker.C:
			if _, err := io.Copy(out, f); err != nil {
				return err
			}
		}
	}
}
