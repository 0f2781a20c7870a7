package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/storage/yamlfile"
	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage known dungeon and quest titles",
	Long: `The catalog holds the canonical titles that subject names are matched
against. Ingestion adds each page title; import seeds titles from YAML.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list [type]",
	Short: "List titles of a content type",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogList,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [file.yaml]",
	Short: "Import titles from a YAML file",
	Long: `Imports titles from a YAML file keyed by content type:

  dungeon:
    - Manoir de Katrapat
  quest:
    - Le bouclier de Ragnarok

Titles already in the catalog are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	partition, ok := domain.ParsePartition(args[0])
	if !ok {
		return fmt.Errorf("%w: %q (valid: %v)", domain.ErrUnknownPartition, args[0], domain.PartitionNames())
	}

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	titles, err := catalogService.List(cmd.Context(), partition)
	if err != nil {
		return fmt.Errorf("failed to list titles: %w", err)
	}

	if len(titles) == 0 {
		cmd.Printf("No %s titles.\n", partition.EntityKind())
		return nil
	}
	for _, title := range titles {
		cmd.Println(title)
	}
	return nil
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	titles, err := yamlfile.Load(args[0])
	if err != nil {
		return err
	}

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	n, err := catalogService.Import(cmd.Context(), titles)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d titles from %s\n", n, args[0])
	return nil
}
