package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/bulk"
	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// DeleteShiftsCmd creates the deleteShifts command
func DeleteShiftsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deleteShifts",
		Short: "Delete the shifts in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readRange(cmd.Flags())
			if err != nil {
				return err
			}
			guardID, _ := cmd.Flags().GetString("guard")
			statuses, _ := cmd.Flags().GetStringSlice("status")
			includeProtected, _ := cmd.Flags().GetBool("include-protected")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			criteria := bulk.DeleteCriteria{
				From:             r.From,
				To:               r.To,
				SiteID:           r.SiteID,
				GuardID:          guardID,
				IncludeProtected: includeProtected,
			}
			for _, s := range statuses {
				status := model.ShiftStatus(s)
				if !status.IsValid() {
					return fmt.Errorf("unknown shift status %q", s)
				}
				criteria.Statuses = append(criteria.Statuses, status)
			}

			app.Logger.Debug("deleteShifts command",
				zap.String("from", r.From),
				zap.String("to", r.To),
				zap.Bool("dry_run", dryRun))

			selected, err := services.BulkDeleteShifts(app.Ctx, app.Database, app.Deps(), criteria, dryRun)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Printf("\nDry run: %d shifts would be deleted\n\n", len(selected))
			} else {
				fmt.Printf("\n✓ Deleted %d shifts\n\n", len(selected))
			}
			printShifts(selected)

			return nil
		},
	}

	addRangeFlags(cmd.Flags())
	cmd.Flags().String("guard", "", "Only delete shifts assigned to this guard")
	cmd.Flags().StringSlice("status", nil, "Only delete shifts in these statuses")
	cmd.Flags().Bool("include-protected", false, "Also delete completed and locked shifts")
	cmd.Flags().Bool("dry-run", false, "Show what would be deleted without deleting")

	return cmd
}

// CopyShiftsCmd creates the copyShifts command
func CopyShiftsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copyShifts <targetFrom>",
		Short: "Copy the shifts in a date range to start on another date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readRange(cmd.Flags())
			if err != nil {
				return err
			}
			clearAssignment, _ := cmd.Flags().GetBool("clear-guards")

			options := bulk.CopyOptions{
				SourceFrom:      r.From,
				SourceTo:        r.To,
				TargetFrom:      args[0],
				SiteID:          r.SiteID,
				ClearAssignment: clearAssignment,
			}

			app.Logger.Debug("copyShifts command",
				zap.String("source_from", options.SourceFrom),
				zap.String("source_to", options.SourceTo),
				zap.String("target_from", options.TargetFrom))

			copies, err := services.BulkCopyShifts(app.Ctx, app.Database, app.Deps(), options)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Copied %d shifts as drafts\n\n", len(copies))
			printShifts(copies)

			return nil
		},
	}

	addRangeFlags(cmd.Flags())
	cmd.Flags().Bool("clear-guards", false, "Leave the copies unassigned")

	return cmd
}

// RecurringShiftsCmd creates the recurringShifts command
func RecurringShiftsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurringShifts",
		Short: "Create shifts from a recurrence pattern or a named config template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			templateName, _ := flags.GetString("template")
			from, _ := flags.GetString("from")
			to, _ := flags.GetString("to")

			var shifts []model.Shift
			var err error

			if templateName != "" {
				app.Logger.Debug("recurringShifts command", zap.String("template", templateName))
				shifts, err = services.CreateShiftsFromTemplate(app.Ctx, app.Database, app.Deps(), templateName, from, to)
			} else {
				frequency, _ := flags.GetString("frequency")
				interval, _ := flags.GetInt("interval")
				days, _ := flags.GetIntSlice("days")
				dayOfMonth, _ := flags.GetInt("day-of-month")
				exclude, _ := flags.GetStringSlice("exclude")
				start, _ := flags.GetString("start")
				end, _ := flags.GetString("end")
				site, _ := flags.GetString("site")
				siteName, _ := flags.GetString("site-name")
				payRate, _ := flags.GetFloat64("pay-rate")

				template := model.Shift{
					StartTime: start,
					EndTime:   end,
					SiteID:    site,
					SiteName:  siteName,
					PayRate:   payRate,
				}
				pattern := bulk.RecurrencePattern{
					Frequency:  bulk.Frequency(frequency),
					Interval:   interval,
					DaysOfWeek: days,
					DayOfMonth: dayOfMonth,
					StartDate:  from,
					EndDate:    to,
					Exclusions: exclude,
				}

				app.Logger.Debug("recurringShifts command",
					zap.String("frequency", frequency),
					zap.String("from", from),
					zap.String("to", to))
				shifts, err = services.CreateRecurringShifts(app.Ctx, app.Database, app.Deps(), template, pattern)
			}
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Created %d draft shifts\n\n", len(shifts))
			printShifts(shifts)

			return nil
		},
	}

	cmd.Flags().String("template", "", "Named recurring template from the config file")
	cmd.Flags().String("from", "", "First date (YYYY-MM-DD, required)")
	cmd.Flags().String("to", "", "Last date (YYYY-MM-DD, required)")
	cmd.Flags().String("frequency", "weekly", "daily, weekly, biweekly or monthly")
	cmd.Flags().Int("interval", 1, "Repeat every n periods (ignored for biweekly)")
	cmd.Flags().IntSlice("days", nil, "Weekdays for weekly patterns, 0=Sunday")
	cmd.Flags().Int("day-of-month", 0, "Day for monthly patterns")
	cmd.Flags().StringSlice("exclude", nil, "Dates to skip")
	cmd.Flags().String("start", "", "Shift start time (HH:MM)")
	cmd.Flags().String("end", "", "Shift end time (HH:MM)")
	cmd.Flags().String("site", "", "Site id")
	cmd.Flags().String("site-name", "", "Site name")
	cmd.Flags().Float64("pay-rate", 0, "Hourly pay rate")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	return cmd
}

// AssignShiftsCmd creates the assignShifts command
func AssignShiftsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assignShifts <shiftID=guardID>...",
		Short: "Assign guards to shifts in one batch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments := make([]bulk.Assignment, 0, len(args))
			for _, arg := range args {
				shiftID, guardID, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("assignment must be shiftID=guardID, got: %s", arg)
				}
				assignments = append(assignments, bulk.Assignment{ShiftID: shiftID, GuardID: guardID})
			}

			app.Logger.Debug("assignShifts command", zap.Int("assignments", len(assignments)))

			result, err := services.BulkAssignGuards(app.Ctx, app.Database, app.Deps(), assignments)
			if err != nil {
				return err
			}

			printResult("Assigned", result)
			return nil
		},
	}
}

// PublishShiftsCmd creates the publishShifts command
func PublishShiftsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publishShifts",
		Short: "Publish every draft shift in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readRange(cmd.Flags())
			if err != nil {
				return err
			}

			app.Logger.Debug("publishShifts command", zap.String("from", r.From), zap.String("to", r.To))

			result, err := services.BulkPublishShifts(app.Ctx, app.Database, app.Deps(), r)
			if err != nil {
				return err
			}

			printResult("Published", result)
			return nil
		},
	}

	addRangeFlags(cmd.Flags())

	return cmd
}

// CancelShiftsCmd creates the cancelShifts command
func CancelShiftsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancelShifts",
		Short: "Cancel every shift in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readRange(cmd.Flags())
			if err != nil {
				return err
			}

			app.Logger.Debug("cancelShifts command", zap.String("from", r.From), zap.String("to", r.To))

			result, err := services.BulkCancelShifts(app.Ctx, app.Database, app.Deps(), r)
			if err != nil {
				return err
			}

			printResult("Cancelled", result)
			return nil
		},
	}

	addRangeFlags(cmd.Flags())

	return cmd
}

// AutoFillCmd creates the autoFill command
func AutoFillCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoFill",
		Short: "Assign the best eligible guard to each unassigned shift in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readRange(cmd.Flags())
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			app.Logger.Debug("autoFill command",
				zap.String("from", r.From),
				zap.String("to", r.To),
				zap.Bool("dry_run", dryRun))

			result, err := services.AutoFillShifts(app.Ctx, app.Database, app.Deps(), r, dryRun)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Println("\nDry run: nothing was saved")
			}
			printResult("Filled", result)
			return nil
		},
	}

	addRangeFlags(cmd.Flags())
	cmd.Flags().Bool("dry-run", false, "Show proposed assignments without saving them")

	return cmd
}

// ReportCmd creates the report command
func ReportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise the shifts in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readRange(cmd.Flags())
			if err != nil {
				return err
			}

			app.Logger.Debug("report command", zap.String("from", r.From), zap.String("to", r.To))

			report, err := services.GenerateShiftReport(app.Ctx, app.Database, app.Deps(), r)
			if err != nil {
				return err
			}

			fmt.Printf("\nShift report %s to %s\n\n", report.From, report.To)
			fmt.Printf("Total shifts:    %d\n", report.TotalShifts)
			fmt.Printf("Total hours:     %.2f\n", report.TotalHours)
			fmt.Printf("Assigned shifts: %d\n", report.AssignedShifts)
			fmt.Printf("Fill rate:       %.1f%%\n\n", report.FillRate)

			printCounts("By status", statusCounts(report.ByStatus))
			printCounts("By site", report.BySite)
			printCounts("By guard", report.ByGuard)

			return nil
		},
	}

	addRangeFlags(cmd.Flags())

	return cmd
}

func printShifts(shifts []model.Shift) {
	for _, s := range shifts {
		guard := s.GuardID
		if guard == "" {
			guard = "—"
		}
		fmt.Printf("  %-36s  %s  %s-%s  %-15s  %-10s  %s\n", s.ID, s.Date, s.StartTime, s.EndTime, s.SiteID, s.Status, guard)
	}
	if len(shifts) > 0 {
		fmt.Println()
	}
}

func printResult(verb string, result *bulk.Result) {
	fmt.Printf("\n✓ %s %d shifts\n", verb, len(result.Shifts))
	if len(result.Shifts) > 0 {
		fmt.Println()
		printShifts(result.Shifts)
	}

	if len(result.Failed) > 0 {
		fmt.Printf("⚠️  %d shifts failed:\n", len(result.Failed))
		for _, f := range result.Failed {
			fmt.Printf("  ✗ %s: %s\n", f.ID, f.Reason)
		}
		fmt.Println()
	}
}

func statusCounts(byStatus map[model.ShiftStatus]int) map[string]int {
	counts := make(map[string]int, len(byStatus))
	for status, n := range byStatus {
		counts[string(status)] = n
	}
	return counts
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %-36s %d\n", k, counts[k])
	}
	fmt.Println()
}
