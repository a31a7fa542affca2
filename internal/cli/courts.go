package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nikhilbhat/courtwatch/internal/models"
)

var courtsCmd = &cobra.Command{
	Use:   "courts",
	Short: "List the high-court benches the portal serves",
	RunE: func(cmd *cobra.Command, args []string) error {
		courts := models.Courts()
		sort.Slice(courts, func(i, j int) bool {
			a, _ := strconv.Atoi(courts[i].StateCode)
			b, _ := strconv.Atoi(courts[j].StateCode)
			if a != b {
				return a < b
			}
			return courts[i].CourtCode < courts[j].CourtCode
		})

		fmt.Printf("%-6s %-6s %s\n", "STATE", "COURT", "BENCH")
		for _, c := range courts {
			court := c.CourtCode
			if court == "" {
				court = "1"
			}
			fmt.Printf("%-6s %-6s %s\n", c.StateCode, court, c.Name)
		}
		return nil
	},
}
