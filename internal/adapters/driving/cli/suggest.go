package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

var (
	suggestType  string
	suggestLimit int
	suggestJSON  bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [prefix]",
	Short: "Get typeahead completions",
	Long: `Returns completions for a partial query: case numbers,
canonical citations, statute sections and judge names.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestType, "type", "t", domain.SuggestAuto,
		"suggestion type: auto, case, citation, section or judge")
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 10, "maximum number of suggestions")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	suggestions, err := searchService.Suggest(cmd.Context(), args[0], suggestType, suggestLimit)
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	if suggestJSON {
		data, err := json.MarshalIndent(suggestions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal suggestions: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(suggestions) == 0 {
		cmd.Println("No suggestions.")
		return nil
	}
	for _, s := range suggestions {
		if s.AdditionalInfo != "" {
			cmd.Printf("  %-30s %-10s %s\n", s.Value, s.Type, s.AdditionalInfo)
		} else {
			cmd.Printf("  %-30s %s\n", s.Value, s.Type)
		}
	}
	return nil
}
