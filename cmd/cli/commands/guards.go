package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/internal/config"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// ImportGuardsCmd creates the importGuards command
func ImportGuardsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importGuards <roster.yaml>",
		Short: "Insert or update guards from a roster file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("importGuards command", zap.String("path", args[0]))

			guards, err := config.LoadRosterFromPath(args[0])
			if err != nil {
				return err
			}

			saved, err := services.ImportGuards(app.Ctx, app.Database, app.Deps(), guards)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Imported %d guards\n", saved)
			return nil
		},
	}
}

// ListGuardsCmd creates the listGuards command
func ListGuardsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listGuards",
		Short: "List every guard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("listGuards command")

			guards, err := app.Database.ListGuards(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list guards: %w", err)
			}

			if len(guards) == 0 {
				fmt.Println("No guards found.")
				return nil
			}

			fmt.Printf("\n%-36s  %-25s  %-12s  %s\n", "ID", "Name", "License", "Email")
			fmt.Println("------------------------------------  -------------------------  ------------  -----------------------")
			for _, g := range guards {
				license := g.LicenseExpiry
				if license == "" {
					license = "—"
				}
				fmt.Printf("%-36s  %-25s  %-12s  %s\n", g.ID, g.Name, license, g.Email)
			}
			fmt.Printf("\nTotal: %d guards\n", len(guards))

			return nil
		},
	}
}

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("migrate command")

			applied, err := app.Database.RunMigrations(app.Ctx)
			if err != nil {
				for _, name := range applied {
					fmt.Printf("✓ %s\n", name)
				}
				return err
			}

			if len(applied) == 0 {
				fmt.Println("✓ Schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Printf("✓ %s\n", name)
			}
			fmt.Printf("\n✓ Applied %d migrations\n", len(applied))
			return nil
		},
	}
}
