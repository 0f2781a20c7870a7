package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and backend status",
	Long: `Prints chunk and title counts for every content type, the configured
backends, and whether the embedding provider answers.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cmd.Println("[Backends]")
		cmd.Printf("  Store:     %s\n", settings.Store.Backend)
		cmd.Printf("  Catalog:   %s\n", settings.Catalog.Backend)
		cmd.Printf("  Embedding: %s (%s)\n", settings.Embedding.Provider.Description(), settings.Embedding.Model)
		if err := settingsService.ValidateEmbeddingConfig(); err != nil {
			cmd.Printf("  Provider:  %s\n", failureStyle(fmt.Sprintf("unreachable: %v", err)))
		} else {
			cmd.Println("  Provider:  reachable")
		}
		cmd.Println()
	}

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	statuses, err := catalogService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	cmd.Println("[Index]")
	for _, st := range statuses {
		cmd.Printf("  %-8s %6d chunks  %4d titles  (%s)\n",
			st.Partition, st.Chunks, st.Titles, st.Partition.Collection())
	}
	return nil
}
