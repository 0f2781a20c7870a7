package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [type] [subject]",
	Short: "Match a subject name to a known title",
	Long: `Scores the subject against every title of the content type and prints
the best match with its similarity ratio (0-100).`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	partition, ok := domain.ParsePartition(args[0])
	if !ok {
		return fmt.Errorf("%w: %q (valid: %v)", domain.ErrUnknownPartition, args[0], domain.PartitionNames())
	}

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if resolverService == nil {
		return errors.New("resolver service not configured")
	}

	res, err := resolverService.Resolve(cmd.Context(), partition, args[1])
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	if !res.Matched {
		cmd.Println(failureStyle(fmt.Sprintf("No match for %q (best score %d)", res.Subject, res.Score)))
		return nil
	}

	cmd.Printf("%s %s\n", titleStyle(res.Title), scoreStyle(fmt.Sprintf("(score %d)", res.Score)))
	return nil
}
