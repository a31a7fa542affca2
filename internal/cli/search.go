package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikhilbhat/courtwatch/internal/models"
)

var (
	searchState    string
	searchCourt    string
	searchCNR      string
	searchCaseType string
	searchNumber   string
	searchDiary    string
	searchParty    string
	searchYear     string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a one-off portal search and print the case record",
	Long: `Search the portal by exactly one of: record number (--cnr), case
number (--case-type with --number and --year), diary number (--diary
with --year) or party name (--party).

Examples:
  courtwatch search --cnr HCBM010012342024
  courtwatch search --case-type "WP" --number 1234 --year 2024
  courtwatch search --diary 4281 --year 2024
  courtwatch search --party "sharma" --year 2024 --state 3`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchState, "state", "", "portal state code (default from config)")
	searchCmd.Flags().StringVar(&searchCourt, "court", "", "portal court code (default from config)")
	searchCmd.Flags().StringVar(&searchCNR, "cnr", "", "16-character case record number")
	searchCmd.Flags().StringVar(&searchCaseType, "case-type", "", "case type for case-number search")
	searchCmd.Flags().StringVar(&searchNumber, "number", "", "case number for case-number search")
	searchCmd.Flags().StringVar(&searchDiary, "diary", "", "diary number for docket search")
	searchCmd.Flags().StringVar(&searchParty, "party", "", "litigant name for party search")
	searchCmd.Flags().StringVar(&searchYear, "year", "", "registration year")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the record as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	court, err := resolveCourt(searchState, searchCourt)
	if err != nil {
		return err
	}

	query, err := buildQuery(court)
	if err != nil {
		return err
	}

	record, attempts, err := pl.Search(context.Background(), query)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	printRecord(record)
	if verbose {
		fmt.Printf("\n(%d captcha attempt(s))\n", attempts)
	}
	return nil
}

func buildQuery(court models.Court) (models.Query, error) {
	switch {
	case searchCNR != "":
		return models.CNRQuery{Bench: court, CNR: searchCNR}, nil
	case searchCaseType != "" || searchNumber != "":
		return models.CaseNumberQuery{
			Bench:      court,
			CaseType:   searchCaseType,
			CaseNumber: searchNumber,
			Year:       searchYear,
		}, nil
	case searchDiary != "":
		return models.DocketQuery{Bench: court, DocketNumber: searchDiary, Year: searchYear}, nil
	case searchParty != "":
		return models.PartyNameQuery{Bench: court, Name: searchParty, Year: searchYear}, nil
	default:
		return nil, fmt.Errorf("one of --cnr, --case-type/--number, --diary or --party is required")
	}
}

func resolveCourt(state, court string) (models.Court, error) {
	if state == "" {
		state = cfg.StateCode
	}
	if court == "" {
		court = cfg.CourtCode
	}
	return models.LookupCourt(state, court)
}

func printRecord(rec *models.CaseRecord) {
	fmt.Printf("%s  %s\n", rec.CNR, rec.CaseNumber)
	fmt.Printf("Court:    %s\n", rec.Court.Name)
	if rec.Status != "" {
		fmt.Printf("Status:   %s\n", rec.Status)
	}
	if rec.Coram != "" {
		fmt.Printf("Coram:    %s\n", rec.Coram)
	}
	if next := rec.NextHearingDate(); next != "" {
		fmt.Printf("Next:     %s\n", next)
	}

	if len(rec.Parties) > 0 {
		fmt.Println("\nParties:")
		for _, p := range rec.Parties {
			if p.Advocate != "" {
				fmt.Printf("  [%s] %s (adv. %s)\n", p.Role, p.Name, p.Advocate)
			} else {
				fmt.Printf("  [%s] %s\n", p.Role, p.Name)
			}
		}
	}

	if len(rec.Hearings) > 0 {
		fmt.Printf("\nHearings (%d):\n", len(rec.Hearings))
		for _, h := range rec.Hearings {
			fmt.Printf("  %-12s %-30s %s\n", h.Date, h.Judge, h.Purpose)
		}
	}

	if len(rec.Orders) > 0 {
		fmt.Printf("\nOrders (%d):\n", len(rec.Orders))
		for _, o := range rec.Orders {
			fmt.Printf("  %-12s %-30s %s\n", o.Date, o.Judge, o.Filename)
		}
	}
}
