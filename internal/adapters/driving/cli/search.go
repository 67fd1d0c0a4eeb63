package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

var (
	searchLimit     int
	searchOffset    int
	searchMode      string
	searchJSON      bool
	searchFacets    bool
	searchHighlight bool
	searchCourt     string
	searchStatus    string
	searchJudge     string
	searchCaseType  string
	searchSection   string
	searchCitation  string
	searchYearFrom  int
	searchYearTo    int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed case law",
	Long: `Performs hybrid search across all indexed judgments.
Combines keyword (BM25) and semantic (vector) retrieval, with
citation-aware handling of queries like "PPC 302" or "W.P. 123/2024".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "results to skip")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "hybrid", "search mode: lexical, semantic or hybrid")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchFacets, "facets", false, "include facet counts")
	searchCmd.Flags().BoolVar(&searchHighlight, "highlight", true, "highlight matched terms in snippets")
	searchCmd.Flags().StringVar(&searchCourt, "court", "", "filter by court")
	searchCmd.Flags().StringVar(&searchStatus, "status", "", "filter by case status")
	searchCmd.Flags().StringVar(&searchJudge, "judge", "", "filter by judge")
	searchCmd.Flags().StringVar(&searchCaseType, "case-type", "", "filter by case type")
	searchCmd.Flags().StringVar(&searchSection, "section", "", "filter by statute section (e.g. 302)")
	searchCmd.Flags().StringVar(&searchCitation, "citation", "", "filter by canonical citation (e.g. ppc:302)")
	searchCmd.Flags().IntVar(&searchYearFrom, "year-from", 0, "earliest decision year")
	searchCmd.Flags().IntVar(&searchYearTo, "year-to", 0, "latest decision year")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	opts := domain.SearchOptions{
		Mode:   domain.ParseMode(searchMode),
		Offset: searchOffset,
		Limit:  searchLimit,
		Filters: domain.Filters{
			Court:    searchCourt,
			Status:   searchStatus,
			Judge:    searchJudge,
			CaseType: searchCaseType,
			Section:  searchSection,
			Citation: searchCitation,
			YearFrom: searchYearFrom,
			YearTo:   searchYearTo,
		},
		ReturnFacets: searchFacets,
		Highlight:    searchHighlight && !searchJSON,
	}

	resp, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return printSearchResults(cmd, resp)
}

func printSearchResults(cmd *cobra.Command, resp *domain.SearchResponse) error {
	for _, w := range resp.Warnings {
		color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
	}

	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	cmd.Printf("Found %d case(s) in %dms:\n\n", resp.Pagination.Total, resp.Stats.LatencyMS)
	for i := range resp.Results {
		r := &resp.Results[i]

		bold.Fprintf(cmd.OutOrStdout(), "  [%d] %s", r.Rank, r.CaseNumber)
		cmd.Printf("  %s (%.3f)\n", r.Title, r.FinalScore)

		line := r.Court
		if r.Status != "" {
			line += " | " + r.Status
		}
		if !r.DecisionDate.IsZero() {
			line += " | decided " + r.DecisionDate.Format("2006-01-02")
		}
		dim.Fprintf(cmd.OutOrStdout(), "      %s\n", line)

		for _, snip := range r.Snippets {
			cmd.Printf("      %s\n", renderSnippet(snip.Text))
		}
		cmd.Println()
	}

	if len(resp.Facets) > 0 {
		printFacets(cmd, resp.Facets)
	}
	if resp.Pagination.HasNext {
		dim.Fprintf(cmd.OutOrStdout(), "more results available, use --offset %d\n",
			resp.Pagination.Offset+resp.Pagination.Limit)
	}
	return nil
}

func printFacets(cmd *cobra.Command, facetMap map[domain.FacetType][]domain.FacetValue) {
	cmd.Println("Facets:")
	for _, ft := range domain.AllFacetTypes {
		values := facetMap[ft]
		if len(values) == 0 {
			continue
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = fmt.Sprintf("%s (%d)", v.Value, v.Count)
		}
		cmd.Printf("  %-10s %s\n", ft, strings.Join(parts, ", "))
	}
	cmd.Println()
}

// renderSnippet converts <em> highlight markers to terminal colours.
func renderSnippet(text string) string {
	hl := color.New(color.FgCyan, color.Bold)
	var b strings.Builder
	for {
		start := strings.Index(text, "<em>")
		if start < 0 {
			b.WriteString(text)
			return b.String()
		}
		end := strings.Index(text[start:], "</em>")
		if end < 0 {
			b.WriteString(text)
			return b.String()
		}
		end += start
		b.WriteString(text[:start])
		b.WriteString(hl.Sprint(text[start+len("<em>") : end]))
		text = text[end+len("</em>"):]
	}
}
