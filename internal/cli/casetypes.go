package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikhilbhat/courtwatch/internal/portal"
)

var (
	typesState string
	typesCourt string
)

var caseTypesCmd = &cobra.Command{
	Use:   "case-types",
	Short: "List the case types registered for a bench",
	Long: `Case-types enumerates a bench's case-type codes straight off the
portal. The CODE column is what search --case-type expects.`,
	RunE: runCaseTypes,
}

var actTypesCmd = &cobra.Command{
	Use:   "act-types [query]",
	Short: "List the acts a bench accepts act-wise searches for",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runActTypes,
}

func init() {
	for _, cmd := range []*cobra.Command{caseTypesCmd, actTypesCmd} {
		cmd.Flags().StringVar(&typesState, "state", "", "portal state code (default from config)")
		cmd.Flags().StringVar(&typesCourt, "court", "", "portal court code (default from config)")
	}
}

func runCaseTypes(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	sess, err := dialBench(ctx)
	if err != nil {
		return err
	}

	types, err := sess.CaseTypes(ctx)
	if err != nil {
		return fmt.Errorf("list case types: %w", err)
	}

	fmt.Printf("%-6s %s\n", "CODE", "CASE TYPE")
	for _, t := range types {
		fmt.Printf("%-6s %s\n", t.Code, t.Description)
	}
	return nil
}

func runActTypes(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	ctx := context.Background()
	sess, err := dialBench(ctx)
	if err != nil {
		return err
	}

	types, err := sess.ActTypes(ctx, query)
	if err != nil {
		return fmt.Errorf("list act types: %w", err)
	}

	fmt.Printf("%-6s %s\n", "CODE", "ACT")
	for _, t := range types {
		fmt.Printf("%-6s %s\n", t.Code, t.Description)
	}
	return nil
}

// dialBench opens a portal session on the bench named by the shared
// state/court flags, defaulting to the configured bench.
func dialBench(ctx context.Context) (*portal.Session, error) {
	court, err := resolveCourt(typesState, typesCourt)
	if err != nil {
		return nil, err
	}
	sess, err := portalClient.NewSession(ctx, court)
	if err != nil {
		return nil, fmt.Errorf("open portal session: %w", err)
	}
	return sess, nil
}
