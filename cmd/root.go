package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/teaser-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "teaser-cli",
	Short: "Blind investment teaser profile builder",
	Long:  "Extracts financial series, KPIs, and narrative facts from uploaded company documents and public pages, merges them into one cited company profile, and anonymizes it for blind teaser use.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
