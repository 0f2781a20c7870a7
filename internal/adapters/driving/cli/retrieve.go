package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

var (
	retrieveSubject string
	retrieveJSON    bool
	retrieveFull    bool
)

var (
	titleStyle   = color.New(color.FgGreen, color.Bold).SprintFunc()
	scoreStyle   = color.New(color.FgCyan).SprintFunc()
	failureStyle = color.New(color.FgYellow, color.Bold).SprintFunc()
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [type] [query]",
	Short: "Retrieve guide sections for a query",
	Long: `Retrieves the guide sections closest to the query within a content
type (dungeon or quest).

With --subject, the name is matched to the closest known title and only
that title's sections are searched. If no title is close enough, a
message naming the subject is printed instead of results.`,
	Args: cobra.ExactArgs(2),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().StringVarP(&retrieveSubject, "subject", "s", "", "dungeon or quest name to scope the search")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output the tool documents as JSON")
	retrieveCmd.Flags().BoolVar(&retrieveFull, "full", false, "print full section text")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	result, err := retrievalService.Retrieve(cmd.Context(), args[0], args[1], retrieveSubject)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		data, err := json.MarshalIndent(result.Documents(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputResult(cmd, result)
	return nil
}

func outputResult(cmd *cobra.Command, result domain.Result) {
	if result.IsErr() {
		cmd.Println(failureStyle(result.Message()))
		return
	}

	chunks := result.Chunks()
	if len(chunks) == 0 {
		cmd.Println("No results found.")
		return
	}

	for i, sc := range chunks {
		cmd.Printf("  [%d] %s %s\n", i+1, titleStyle(sc.Chunk.Title), scoreStyle(fmt.Sprintf("(%.2f)", sc.Score)))
		if url := sc.Chunk.MetadataString(domain.MetaURL); url != "" {
			cmd.Printf("      %s\n", url)
		}
		cmd.Printf("      %s\n", snippet(sc.Chunk.Text, retrieveFull))
		cmd.Println()
	}
}

// snippet drops the "Source:" prefix line and keeps the first heading and
// line of text unless full is set.
func snippet(text string, full bool) string {
	body := text
	if strings.HasPrefix(body, "Source: ") {
		if _, rest, ok := strings.Cut(body, "\n\n"); ok {
			body = rest
		}
	}
	if full {
		return strings.ReplaceAll(body, "\n", "\n      ")
	}

	var kept []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
		if len(kept) == 2 {
			break
		}
	}
	return strings.Join(kept, " | ")
}
