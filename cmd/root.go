package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-dashboard/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "housing-dashboard",
	Short: "Housing affordability dashboard core",
	Long:  "Loads rent, burden, MHA zoning and demographic datasets and keeps the map, tooltip, legend, stat block and charts in sync with one selection state.",
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
