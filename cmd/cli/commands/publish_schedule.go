package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// PublishScheduleCmd creates the publishSchedule command
func PublishScheduleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publishSchedule",
		Short: "Publish the schedule for a date range to the rota sheet",
		Long: `Writes every active shift in the range to a tab of the configured rota spreadsheet.
Re-publishing the same range rewrites the tab and keeps any notes typed against each shift.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readRange(cmd.Flags())
			if err != nil {
				return err
			}
			app.Logger.Debug("publishSchedule command",
				zap.String("from", r.From),
				zap.String("to", r.To),
				zap.String("site", r.SiteID))

			if app.Sheets == nil {
				return services.ErrNoRotaSheet
			}

			schedule, err := services.PublishSchedule(app.Ctx, app.Database, app.Sheets, app.Deps(), r)
			if err != nil {
				return err
			}

			unfilled := 0
			for _, row := range schedule.Rows {
				if row.Guard == "" {
					unfilled++
				}
			}

			fmt.Printf("\n✓ Published %d shifts (%s to %s)\n", len(schedule.Rows), r.From, r.To)
			if unfilled > 0 {
				fmt.Printf("⚠️  %d shifts are unfilled\n", unfilled)
			}
			return nil
		},
	}

	addRangeFlags(cmd.Flags())
	return cmd
}
