package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/cmd/cli/commands"
	"github.com/jakechorley/guard-rota/internal/config"
	"github.com/jakechorley/guard-rota/pkg/audit"
	"github.com/jakechorley/guard-rota/pkg/clients/gmailclient"
	"github.com/jakechorley/guard-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/guard-rota/pkg/metrics"
	"github.com/jakechorley/guard-rota/pkg/postgres"
	"github.com/jakechorley/guard-rota/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "guard-rota",
		Short: "Guard Rota CLI - Schedule security guard shifts",
		Long:  `A CLI tool for validating assignments, scoring guard eligibility, reviewing shift applications and managing shifts in bulk.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdown()
		},
		SilenceUsage: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.ImportGuardsCmd(app))
	rootCmd.AddCommand(commands.ListGuardsCmd(app))
	rootCmd.AddCommand(commands.ValidateShiftCmd(app))
	rootCmd.AddCommand(commands.OpenShiftsCmd(app))
	rootCmd.AddCommand(commands.ApplyCmd(app))
	rootCmd.AddCommand(commands.ApproveCmd(app))
	rootCmd.AddCommand(commands.RejectCmd(app))
	rootCmd.AddCommand(commands.WithdrawCmd(app))
	rootCmd.AddCommand(commands.ExpireApplicationsCmd(app))
	rootCmd.AddCommand(commands.DeleteShiftsCmd(app))
	rootCmd.AddCommand(commands.CopyShiftsCmd(app))
	rootCmd.AddCommand(commands.RecurringShiftsCmd(app))
	rootCmd.AddCommand(commands.AssignShiftsCmd(app))
	rootCmd.AddCommand(commands.PublishShiftsCmd(app))
	rootCmd.AddCommand(commands.CancelShiftsCmd(app))
	rootCmd.AddCommand(commands.AutoFillCmd(app))
	rootCmd.AddCommand(commands.ReportCmd(app))
	rootCmd.AddCommand(commands.PublishScheduleCmd(app))

	if err := rootCmd.Execute(); err != nil {
		shutdown()
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, audit and metrics, plus the Google clients when configured
func initApp() error {
	var err error
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	// Connect to the database
	app.Logger.Info("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Database = database
	app.Logger.Info("Database connected successfully")

	app.Audit = audit.NewLogger(database, app.Logger, audit.Mode(app.Cfg.Audit))
	app.Metrics = metrics.New()

	notify := app.Cfg.Notifications.Enabled
	publish := app.Cfg.Publishing.RotaSheetID != ""
	if !notify && !publish {
		app.Logger.Debug("Notifications and publishing disabled")
		return nil
	}

	// Load OAuth client configuration
	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	if notify {
		// Initialize gmail client
		app.Logger.Info("Initializing gmail client")
		gmailClient, err := gmailclient.NewClient(app.Ctx, oauthCfg, app.Cfg.Notifications, env)
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
		app.Notifier = gmailClient
		app.Logger.Debug("Gmail client initialized successfully")
	}

	if publish {
		// Initialize sheets client
		app.Logger.Info("Initializing sheets client")
		sheetsClient, err := sheetsclient.NewClient(app.Ctx, oauthCfg, env)
		if err != nil {
			return fmt.Errorf("failed to create sheets client: %w", err)
		}
		app.Sheets = sheetsClient
		app.Logger.Debug("Sheets client initialized successfully")
	}

	return nil
}

// shutdown flushes metrics, closes the database and syncs the logger. Safe to call twice.
func shutdown() {
	if app.Metrics != nil && app.Cfg != nil {
		if err := app.Metrics.WriteToTextfile(app.Cfg.MetricsTextfile); err != nil && app.Logger != nil {
			app.Logger.Warn("Failed to write metrics", zap.Error(err))
		}
		app.Metrics = nil
	}
	if app.Database != nil {
		app.Database.Close()
		app.Database = nil
	}
	if app.Logger != nil {
		app.Logger.Sync()
	}
}
