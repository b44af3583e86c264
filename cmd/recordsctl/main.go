package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/localnerve/medrecords/internal/attachments"
	"github.com/localnerve/medrecords/internal/config"
	"github.com/localnerve/medrecords/internal/database"
	"github.com/localnerve/medrecords/internal/logging"
	"github.com/localnerve/medrecords/internal/schema"
	"github.com/localnerve/medrecords/internal/services"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "recordsctl",
		Short:         "Administration of the medical records service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return nil
			}
			return godotenv.Load(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "f", "", "path to a .env file applied before the environment is read")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(initDirsCmd())
	rootCmd.AddCommand(schemaCmd())
	rootCmd.AddCommand(sweepCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "recordsctl:", err)
		stop()
		os.Exit(1)
	}
}

// setup loads the configuration and the logger every command needs
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or extend every table with the schema owning account",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			db, err := database.ConnectAdmin(cfg, log)
			if err != nil {
				return err
			}
			defer func() { err = errs.Combine(err, database.Close(db)) }()

			if err := database.AutoMigrate(db.WithContext(cmd.Context())); err != nil {
				return errs.New("migration failed: %v", err)
			}
			log.Info("migration complete", zap.Int("section_tables", len(schema.Sections())))
			return nil
		},
	}
}

func initDirsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-dirs",
		Short: "Prepare the storage of every attachment slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			store, err := attachments.New(cmd.Context(), cfg.Attachments, log)
			if err != nil {
				return err
			}
			if err := store.Prepare(cmd.Context()); err != nil {
				return err
			}
			log.Info("attachment storage ready", zap.String("driver", cfg.Attachments.Driver))
			return nil
		},
	}
}

// dialects maps DB_TYPE values to the dialect names of the section DDL
var dialects = map[string]string{
	"mysql":      "mysql",
	"mariadb":    "mysql",
	"postgres":   "postgres",
	"postgresql": "postgres",
	"sqlite":     "sqlite",
	"sqlserver":  "sqlserver",
	"mssql":      "sqlserver",
}

func schemaCmd() *cobra.Command {
	var dialect string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the DDL of every section table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, ok := dialects[dialect]
			if !ok {
				return errs.New("unsupported dialect %q", dialect)
			}
			out := cmd.OutOrStdout()
			for _, stmt := range schema.DDL(name) {
				fmt.Fprintf(out, "%s;\n\n", stmt)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dialect, "dialect", "mysql", "mysql, mariadb, postgres, sqlite or sqlserver")
	return cmd
}

func sweepCmd() *cobra.Command {
	var (
		dryRun bool
		minAge time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sweep-orphans",
		Short: "Find stored files no record references, and remove them with --dry-run=false",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			db, err := database.Connect(cfg, log)
			if err != nil {
				return err
			}
			defer func() { err = errs.Combine(err, database.Close(db)) }()

			store, err := attachments.New(cmd.Context(), cfg.Attachments, log)
			if err != nil {
				return err
			}

			report, err := services.SweepOrphans(cmd.Context(), db, store, dryRun, minAge, log)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "only report orphaned files")
	cmd.Flags().DurationVar(&minAge, "min-age", time.Hour, "skip files modified more recently than this")
	return cmd
}
