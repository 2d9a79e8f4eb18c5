package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fuzzymatch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fuzzymatch",
	Short: "Entity resolution over tabular records",
	Long:  "Matches rows across two record sets or groups duplicates within one, using exact-match blocking plus tolerant and fuzzy column comparisons, parallelized across workers.",
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
