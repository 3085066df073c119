package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/conflicts"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// ValidateShiftCmd creates the validateShift command
func ValidateShiftCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validateShift <shiftID> <guardID>",
		Short: "Check a guard against a shift for conflicts without assigning them",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shiftID, guardID := args[0], args[1]
			strict, _ := cmd.Flags().GetBool("strict")
			skip, _ := cmd.Flags().GetStringSlice("skip")

			options := app.Cfg.EngineOptions()
			if strict {
				options.StrictMode = true
			}
			for _, group := range skip {
				switch conflicts.RuleGroup(group) {
				case conflicts.GroupFatigue:
					options.Fatigue = false
				case conflicts.GroupClient:
					options.ClientRules = false
				case conflicts.GroupRegulatory:
					options.Regulatory = false
				case conflicts.GroupQuality:
					options.Quality = false
				default:
					return fmt.Errorf("unknown rule group %q", group)
				}
			}

			app.Logger.Debug("validateShift command",
				zap.String("shift_id", shiftID),
				zap.String("guard_id", guardID),
				zap.Bool("strict", options.StrictMode),
				zap.Strings("skip", skip))

			result, err := services.ValidateAssignment(app.Ctx, app.Database, app.Database, app.Deps(), shiftID, guardID, options)
			if err != nil {
				return err
			}

			report := result.Report
			fmt.Printf("\nShift %s on %s %s-%s at %s\n", result.Shift.ID, result.Shift.Date,
				result.Shift.StartTime, result.Shift.EndTime, result.Shift.SiteID)
			fmt.Printf("Guard %s (%s)\n\n", result.Guard.Name, result.Guard.ID)

			if report.Valid {
				fmt.Println("✓ Assignment is valid")
			} else {
				fmt.Println("✗ Assignment is blocked")
			}
			fmt.Printf("Fatigue: %s (score %d)\n\n", report.FatigueRisk, report.FatigueScore)

			printConflicts("Blocking", report.Conflicts.Blocking)
			printConflicts("Critical", report.Conflicts.Critical)
			printConflicts("Warnings", report.Conflicts.Warnings)
			printConflicts("Info", report.Conflicts.Info)
			printConflicts("Recommendations", report.Conflicts.Recommendations)

			if report.Summary.Total == 0 {
				fmt.Println("No conflicts found.")
			}

			return nil
		},
	}

	cmd.Flags().Bool("strict", false, "Treat critical findings as blocking")
	cmd.Flags().StringSlice("skip", nil, "Rule groups to skip (fatigue, client, regulatory, quality)")

	return cmd
}

func printConflicts(title string, found []conflicts.Conflict) {
	if len(found) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", title, len(found))
	for _, c := range found {
		fmt.Printf("  - [%s] %s\n", c.Type, c.Message)
	}
	fmt.Println()
}
