package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zorrokid/emulation-file-manager/internal/report"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show collection and sync status",
	Long: `Show a summary of the collection: entity counts, stored content
size, and the cloud sync state of every stored file.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	summary, err := report.GenerateSummaryReport(cat, viper.GetString("db"), viper.GetString("root"))
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	return summary.WriteText(os.Stdout)
}
