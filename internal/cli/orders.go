package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nikhilbhat/courtwatch/internal/models"
	"github.com/nikhilbhat/courtwatch/internal/store"
)

var ordersDir string

var ordersCmd = &cobra.Command{
	Use:   "orders <cnr>",
	Short: "Download the order and judgment PDFs of a stored case",
	Long: `Orders fetches the documents linked from a case's order table, using
the record stored by a previous search or refresh. Each document is
written to the output directory under its portal filename.`,
	Args: cobra.ExactArgs(1),
	RunE: runOrders,
}

func init() {
	ordersCmd.Flags().StringVarP(&ordersDir, "output", "o", ".", "directory to write documents to")
}

func runOrders(cmd *cobra.Command, args []string) error {
	cnr, ok := models.NormalizeCNR(args[0])
	if !ok {
		return fmt.Errorf("malformed CNR %q", args[0])
	}

	ctx := context.Background()
	rec, err := caseStore.GetRecord(ctx, cnr)
	if err != nil {
		if errors.Is(err, store.ErrNotTracked) {
			return fmt.Errorf("case %s is not stored yet; run refresh first", cnr)
		}
		return fmt.Errorf("load record: %w", err)
	}

	var orders []models.Order
	for _, o := range rec.Orders {
		if o.Filename != "" {
			orders = append(orders, o)
		}
	}
	if len(orders) == 0 {
		fmt.Printf("%s: no downloadable orders\n", cnr)
		return nil
	}

	sess, err := portalClient.NewSession(ctx, rec.Court)
	if err != nil {
		return fmt.Errorf("open portal session: %w", err)
	}

	if err := os.MkdirAll(ordersDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	failed := 0
	for _, o := range orders {
		data, err := sess.DownloadOrder(ctx, rec, o)
		if err != nil {
			failed++
			fmt.Printf("  %s: %v\n", o.Filename, err)
			continue
		}
		name := filepath.Join(ordersDir, filepath.Base(o.Filename))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			failed++
			fmt.Printf("  %s: %v\n", o.Filename, err)
			continue
		}
		fmt.Printf("  %s (%d bytes)\n", name, len(data))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(orders))
	}
	return nil
}
