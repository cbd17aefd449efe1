package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iamgilwell/hemat/internal/config"
	"github.com/iamgilwell/hemat/internal/content"
	"github.com/iamgilwell/hemat/internal/power"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and article store status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Global

	fmt.Println("╔══════════════════════════════════════════╗")
	fmt.Println("║     Hemat - Kalkulator Listrik Rumah     ║")
	fmt.Println("╚══════════════════════════════════════════╝")
	fmt.Println()

	fmt.Println("Calculator:")
	fmt.Printf("  Default Rate:   %s/kWh\n", power.FormatRupiah(cfg.Calculator.DefaultRate))
	fmt.Printf("  Minimum Rate:   %s/kWh\n", power.FormatRupiah(cfg.Calculator.MinRate))
	fmt.Printf("  Strict Hours:   %v\n", cfg.Calculator.StrictHoursValidation)
	fmt.Println()

	fmt.Println("AI:")
	fmt.Printf("  Enabled:        %v\n", cfg.AI.Enabled)
	fmt.Printf("  Model:          %s\n", cfg.Anthropic.Model)
	fmt.Printf("  API Key Set:    %v\n", cfg.Anthropic.APIKey != "")
	fmt.Printf("  Cache:          %d entries, TTL %s\n", cfg.AI.CacheSize, cfg.AI.CacheTTL)
	fmt.Println()

	fmt.Println("Server:")
	fmt.Printf("  Address:        %s\n", cfg.Server.Addr)
	fmt.Printf("  Admin Tokens:   %d configured\n", len(cfg.Access.AdminTokens))
	fmt.Printf("  Read Only:      %v\n", cfg.Access.ReadOnly)
	fmt.Printf("  MQTT:           %v", cfg.MQTT.Enabled)
	if cfg.MQTT.Enabled {
		fmt.Printf(" (%s, prefix %s)", cfg.MQTT.Broker, cfg.MQTT.TopicPrefix)
	}
	fmt.Println()
	fmt.Println()

	fmt.Println("Articles:")
	fmt.Printf("  Database:       %s\n", cfg.Database.Path)
	if _, err := os.Stat(cfg.Database.Path); err != nil {
		fmt.Println("  Not created yet")
		return nil
	}

	store, err := content.NewStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	for _, s := range []content.Status{content.StatusPublished, content.StatusDraft} {
		articles, err := store.List(ctx, s)
		if err != nil {
			return err
		}
		fmt.Printf("  %-15s %d\n", string(s)+":", len(articles))
	}
	return nil
}
