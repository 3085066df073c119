package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// OpenShiftsCmd creates the openShifts command
func OpenShiftsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "openShifts <guardID>",
		Short: "List open shifts scored for a guard, best match first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guardID := args[0]
			eligibleOnly, _ := cmd.Flags().GetBool("eligible-only")

			app.Logger.Debug("openShifts command",
				zap.String("guard_id", guardID),
				zap.Bool("eligible_only", eligibleOnly))

			scored, err := services.ScoreOpenShifts(app.Ctx, app.Database, app.Deps(), guardID)
			if err != nil {
				return err
			}

			if len(scored) == 0 {
				fmt.Println("No open shifts found.")
				return nil
			}

			fmt.Printf("\n%-36s  %-10s  %-11s  %-15s  %5s  %s\n", "Shift", "Date", "Time", "Site", "Score", "Level")
			fmt.Println("------------------------------------  ----------  -----------  ---------------  -----  ------------------")

			shown := 0
			for _, s := range scored {
				if eligibleOnly && !s.Result.Eligible {
					continue
				}
				shown++

				marker := " "
				if !s.Result.Eligible {
					marker = "✗"
				}
				fmt.Printf("%-36s  %-10s  %-5s-%-5s  %-15s  %4d%s  %s\n",
					s.Shift.ID, s.Shift.Date, s.Shift.StartTime, s.Shift.EndTime,
					s.Shift.SiteID, s.Result.Score, marker, s.Result.RecommendationLevel)

				for _, reason := range s.Result.Reasons {
					fmt.Printf("      %s\n", reason)
				}
			}
			fmt.Printf("\n%d shifts shown\n", shown)

			return nil
		},
	}

	cmd.Flags().Bool("eligible-only", false, "Hide shifts the guard is not eligible for")

	return cmd
}
