package cli

import (
	"github.com/spf13/cobra"

	"github.com/ecinar/route-tracker/internal/visit"
)

func newVisitsCmd() *cobra.Command {
	var (
		today  bool
		status string
	)

	cmd := &cobra.Command{
		Use:   "visits",
		Short: "List your visits",
		Long:  "Show planned and past visits, optionally filtered to today or by status.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAPIClient()

			var visits []*visit.Visit
			var err error
			if today {
				visits, err = c.TodayVisits(cmd.Context())
			} else {
				visits, err = c.ListVisits(cmd.Context(), status)
			}
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(visits)
			}
			return printVisitTable(visits)
		},
	}

	cmd.Flags().BoolVar(&today, "today", false, "only today's visits")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (planned|in-progress|completed|cancelled)")

	return cmd
}
