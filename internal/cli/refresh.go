package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikhilbhat/courtwatch/internal/models"
	"github.com/nikhilbhat/courtwatch/internal/store"
)

var (
	refreshForce bool
	refreshState string
	refreshCourt string
)

var refreshCmd = &cobra.Command{
	Use:   "refresh <cnr>",
	Short: "Re-acquire one case and report what changed",
	Long: `Refresh re-runs the acquisition for a single case record number and
compares the result against the version last stored. The case is
enrolled for future bulk refreshes if it was not tracked yet.

Examples:
  courtwatch refresh HCBM010012342024
  courtwatch refresh HCBM010012342024 --force
  courtwatch refresh GAHC010043212023 --state 6 --court 2`,
	Args: cobra.ExactArgs(1),
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVarP(&refreshForce, "force", "f", false, "store the record even when unchanged")
	refreshCmd.Flags().StringVar(&refreshState, "state", "", "portal state code (default from config)")
	refreshCmd.Flags().StringVar(&refreshCourt, "court", "", "portal court code (default from config)")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var (
		outcome models.RefreshOutcome
		err     error
	)
	if refreshState != "" || refreshCourt != "" {
		court, cerr := resolveCourt(refreshState, refreshCourt)
		if cerr != nil {
			return cerr
		}
		cnr, ok := models.NormalizeCNR(args[0])
		if !ok {
			return fmt.Errorf("malformed CNR %q", args[0])
		}
		outcome, err = pl.RefreshTracked(ctx, store.TrackedCase{CNR: cnr, Court: court}, refreshForce)
	} else {
		outcome, err = pl.Refresh(ctx, args[0], refreshForce)
	}
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	printOutcome(outcome)
	return nil
}

func printOutcome(o models.RefreshOutcome) {
	switch o.Kind {
	case models.OutcomeCreated:
		fmt.Printf("%s: first acquisition stored (fingerprint %s)\n", o.CNR, shortPrint(o.New))
	case models.OutcomeUnchanged:
		fmt.Printf("%s: unchanged\n", o.CNR)
	case models.OutcomeUpdated:
		fmt.Printf("%s: updated (%s -> %s)\n", o.CNR, shortPrint(o.Old), shortPrint(o.New))
	default:
		fmt.Printf("%s: failed (%s): %s\n", o.CNR, o.ErrKind, o.Detail)
	}
	if verbose {
		fmt.Printf("(%d captcha attempt(s))\n", o.CaptchaAttempts)
	}
}

func shortPrint(fp *models.Fingerprint) string {
	if fp == nil {
		return "?"
	}
	return fp.String()[:12]
}
