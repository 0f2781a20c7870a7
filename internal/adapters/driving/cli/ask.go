package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askSubject string

var askCmd = &cobra.Command{
	Use:   "ask [type] [question]",
	Short: "Answer a question from the guides",
	Long: `Retrieves the relevant guide sections and asks the configured LLM to
answer from them. Requires an LLM provider (see 'dpln settings').`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSubject, "subject", "s", "", "dungeon or quest name to scope the search")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	answer, err := answerService.Answer(cmd.Context(), args[0], args[1], askSubject)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer)
	return nil
}
