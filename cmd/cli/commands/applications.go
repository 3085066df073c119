package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/applications"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// ApplyCmd creates the apply command
func ApplyCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <guardID> <shiftID>",
		Short: "Apply for an open shift on a guard's behalf",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			guardID, shiftID := args[0], args[1]
			message, _ := cmd.Flags().GetString("message")

			app.Logger.Debug("apply command",
				zap.String("guard_id", guardID),
				zap.String("shift_id", shiftID))

			application, err := services.ApplyForShift(app.Ctx, app.Database, app.Deps(), guardID, shiftID, message)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Application %s created\n\n", application.ID)
			printApplication(*application)

			return nil
		},
	}

	cmd.Flags().String("message", "", "Message to the reviewer")

	return cmd
}

// ApproveCmd creates the approve command
func ApproveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <applicationID>",
		Short: "Approve an application and assign the guard to the shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewer, err := reviewerFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")

			app.Logger.Debug("approve command",
				zap.String("application_id", args[0]),
				zap.String("reviewer", reviewer.ID))

			result, err := services.ApproveApplication(app.Ctx, app.Database, app.Deps(), args[0], reviewer, notes)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Application %s approved\n\n", result.Application.ID)
			printApplication(result.Application)
			fmt.Printf("Shift %s is now %s\n", result.Shift.ID, result.Shift.Status)

			if len(result.AutoRejected) > 0 {
				fmt.Printf("\nRejected %d other applications:\n", len(result.AutoRejected))
				for _, r := range result.AutoRejected {
					fmt.Printf("  ✗ %s (%s)\n", r.GuardName, r.ID)
				}
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("reviewer", "", "Reviewer id (required)")
	cmd.Flags().String("reviewer-name", "", "Reviewer display name")
	cmd.Flags().String("notes", "", "Review notes")

	return cmd
}

// RejectCmd creates the reject command
func RejectCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reject <applicationID>",
		Short: "Reject a pending application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewer, err := reviewerFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")

			app.Logger.Debug("reject command",
				zap.String("application_id", args[0]),
				zap.String("reviewer", reviewer.ID))

			rejected, err := services.RejectApplication(app.Ctx, app.Database, app.Deps(), args[0], reviewer, reason)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Application %s rejected\n\n", rejected.ID)
			printApplication(*rejected)

			return nil
		},
	}

	cmd.Flags().String("reviewer", "", "Reviewer id (required)")
	cmd.Flags().String("reviewer-name", "", "Reviewer display name")
	cmd.Flags().String("reason", "", "Reason shown to the guard")

	return cmd
}

// WithdrawCmd creates the withdraw command
func WithdrawCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <applicationID>",
		Short: "Withdraw a pending application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("withdraw command", zap.String("application_id", args[0]))

			withdrawn, err := services.WithdrawApplication(app.Ctx, app.Database, app.Deps(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Application %s withdrawn\n", withdrawn.ID)
			return nil
		},
	}
}

// ExpireApplicationsCmd creates the expireApplications command
func ExpireApplicationsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "expireApplications",
		Short: "Expire pending applications older than the configured expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("expireApplications command")

			expired, err := services.ExpireApplications(app.Ctx, app.Database, app.Deps())
			if err != nil {
				return err
			}

			if len(expired) == 0 {
				fmt.Println("No applications to expire.")
				return nil
			}

			fmt.Printf("\nExpired %d applications:\n", len(expired))
			for _, a := range expired {
				fmt.Printf("  %s  %-20s  shift %s (applied %s)\n", a.ID, a.GuardName, a.ShiftID,
					a.AppliedAt.In(app.Cfg.Location()).Format("2006-01-02 15:04"))
			}
			fmt.Println()

			return nil
		},
	}
}

func printApplication(a applications.Application) {
	fmt.Printf("Guard:  %s (%s)\n", a.GuardName, a.GuardID)
	fmt.Printf("Shift:  %s on %s %s-%s\n", a.ShiftID, a.ShiftDetails.Date, a.ShiftDetails.StartTime, a.ShiftDetails.EndTime)
	fmt.Printf("Status: %s\n", a.Status)
	if a.Eligibility != nil {
		fmt.Printf("Score:  %d/%d (%s)\n", a.Eligibility.Score, a.Eligibility.MaxScore, a.Eligibility.RecommendationLevel)
		for _, reason := range a.Eligibility.Reasons {
			fmt.Printf("        %s\n", reason)
		}
	}
	if a.RejectionReason != "" {
		fmt.Printf("Reason: %s\n", a.RejectionReason)
	}
	fmt.Println()
}
