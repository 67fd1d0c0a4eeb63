package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/logger"
)

var loadCmd = &cobra.Command{
	Use:   "load [file.json]",
	Short: "Load case records from a JSON file",
	Long: `Loads court case records exported by the scraping pipeline.
The file holds a JSON array of case objects. Existing cases with the
same ID are updated; run 'courtsearch index build' afterwards to make
the new cases searchable.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

// loadRecord is the JSON shape produced by the scraping pipeline.
type loadRecord struct {
	ID              int64    `json:"id"`
	CaseNumber      string   `json:"case_number"`
	Title           string   `json:"title"`
	Parties         []string `json:"parties"`
	Court           string   `json:"court"`
	Status          string   `json:"status"`
	Judge           string   `json:"judge"`
	CaseType        string   `json:"case_type"`
	InstitutionDate string   `json:"institution_date"`
	DecisionDate    string   `json:"decision_date"`
	Text            string   `json:"text"`
	PageBreaks      []int    `json:"page_breaks"`
}

func runLoad(cmd *cobra.Command, args []string) error {
	if caseStore == nil {
		return errors.New("case store not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var records []loadRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	loaded := 0
	for i := range records {
		rec, err := records[i].toDomain()
		if err != nil {
			logger.Warn("skipping record %d: %v", i, err)
			continue
		}
		if err := caseStore.SaveCase(cmd.Context(), rec); err != nil {
			return fmt.Errorf("saving case %d: %w", rec.ID, err)
		}
		loaded++
	}

	cmd.Printf("Loaded %d case(s) from %s\n", loaded, args[0])
	if loaded > 0 {
		cmd.Println("Run 'courtsearch index build' to make them searchable.")
	}
	return nil
}

func (r *loadRecord) toDomain() (*domain.CaseRecord, error) {
	if r.ID == 0 {
		return nil, errors.New("missing case id")
	}
	if r.CaseNumber == "" {
		return nil, errors.New("missing case number")
	}

	rec := &domain.CaseRecord{
		ID:         r.ID,
		CaseNumber: r.CaseNumber,
		Title:      r.Title,
		Parties:    r.Parties,
		Court:      r.Court,
		Status:     r.Status,
		Judge:      r.Judge,
		CaseType:   r.CaseType,
		Text:       r.Text,
		PageBreaks: r.PageBreaks,
		UpdatedAt:  time.Now().UTC(),
	}

	var err error
	if rec.InstitutionDate, err = parseDate(r.InstitutionDate); err != nil {
		return nil, fmt.Errorf("institution_date: %w", err)
	}
	if rec.DecisionDate, err = parseDate(r.DecisionDate); err != nil {
		return nil, fmt.Errorf("decision_date: %w", err)
	}
	return rec, nil
}

// parseDate accepts the pipeline's date formats. Empty means unknown.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "02-01-2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
