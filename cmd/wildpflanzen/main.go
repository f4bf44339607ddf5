package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"
	"github.com/wildpflanzen/wildpflanzen/internal/config"
	"github.com/wildpflanzen/wildpflanzen/internal/loader"
	"github.com/wildpflanzen/wildpflanzen/internal/logger"
	"github.com/wildpflanzen/wildpflanzen/internal/season"
	"github.com/wildpflanzen/wildpflanzen/internal/store"
	"github.com/wildpflanzen/wildpflanzen/internal/store/sqlite"
)

var (
	version = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}
)

// cli carries what the subcommands share once the root command has resolved
// configuration and logging.
type cli struct {
	cfg *config.Config
	log logger.Logger

	dir      string
	logLevel string
	logFile  string
	env      string

	month    int
	category string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	c := &cli{log: logger.Default}
	err := newRootCmd(c).ExecuteContext(ctx)
	stop()
	if err != nil {
		c.log.Error("%v", err)
		c.sync()
		os.Exit(1)
	}
	c.sync()
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "wildpflanzen",
		Short:             "Build and query the wildpflanzen SQLite database",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	// Global flags; environment and .env supply the defaults
	rootCmd.PersistentFlags().StringVar(&c.dir, "dir", "", "base directory with schema.sql and inserts.sql (env "+config.EnvDir+", default \".\")")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error (env "+config.EnvLogLevel+", default info)")
	rootCmd.PersistentFlags().StringVar(&c.logFile, "log-file", "", "write logs to a rotated file instead of stderr (env "+config.EnvLogFile+")")
	rootCmd.PersistentFlags().StringVar(&c.env, "env", "", "dev or prod log format (env "+config.EnvEnv+", default dev)")

	// db command group
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	dbCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the database from schema.sql and inserts.sql",
		Args:  cobra.NoArgs,
		RunE:  c.runDBCreate,
	}
	dbVerifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Report database state, size and row counts",
		Args:  cobra.NoArgs,
		RunE:  c.runDBVerify,
	}
	dbCmd.AddCommand(dbCreateCmd, dbVerifyCmd)

	seasonCmd := &cobra.Command{
		Use:   "season",
		Short: "List plants that are ripe in a month",
		Args:  cobra.NoArgs,
		RunE:  c.runSeason,
	}
	seasonCmd.Flags().IntVar(&c.month, "month", 0, "month 1-12 (default current month)")
	seasonCmd.Flags().StringVar(&c.category, "category", "all", "fruits, herbs, nuts or all")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}

	rootCmd.AddCommand(dbCmd, seasonCmd, versionCmd)
	return rootCmd
}

// setup loads configuration, applies flag overrides and builds the logger.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Dir = c.dir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = c.logFile
	}
	if flags.Changed("env") {
		cfg.Env = c.env
	}

	c.cfg = cfg
	c.log = logger.NewZapLogger(logger.Options{
		Level: cfg.LogLevel,
		Env:   cfg.Env,
		File:  cfg.LogFile,
	})
	c.log.Debug("base directory %s", cfg.Dir)
	return nil
}

func (c *cli) sync() {
	if zl, ok := c.log.(*logger.ZapLogger); ok {
		zl.Sync()
	}
}

// --- DB commands ---

func (c *cli) runDBCreate(cmd *cobra.Command, args []string) error {
	path, err := loader.New(c.log).Run(cmd.Context(), c.cfg.Dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}

func (c *cli) runDBVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	dbPath := store.GetDBPath(c.cfg.Dir)

	exists, err := store.CheckExists(c.cfg.Dir)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintf(out, "database: %s\nstate:    %s\n", dbPath, store.StateMissing)
		return fmt.Errorf("no database at %s, run 'wildpflanzen db create'", dbPath)
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		return fmt.Errorf("failed to stat database: %w", err)
	}

	st := sqlite.NewReadOnly(dbPath)
	if err := st.Open(ctx); err != nil {
		return err
	}
	defer st.Close()

	state, err := st.CheckState(ctx)
	if err != nil {
		return err
	}
	tables, err := st.Tables(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "database: %s\n", dbPath)
	fmt.Fprintf(out, "state:    %s\n", state)
	fmt.Fprintf(out, "size:     %s\n", humanize.Bytes(uint64(info.Size())))
	fmt.Fprintf(out, "modified: %s\n", humanize.Time(info.ModTime()))
	for _, t := range tables {
		fmt.Fprintf(out, "  %-20s %s rows\n", t.Name, humanize.Comma(t.Rows))
	}
	return nil
}

// --- season ---

func (c *cli) runSeason(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	month := c.month
	if !cmd.Flags().Changed("month") {
		month = int(time.Now().Month())
	}
	if season.MonthName(month) == "" {
		return fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	categories, err := season.ParseCategory(c.category)
	if err != nil {
		return err
	}

	exists, err := store.CheckExists(c.cfg.Dir)
	if err != nil {
		return err
	}
	dbPath := store.GetDBPath(c.cfg.Dir)
	if !exists {
		return fmt.Errorf("no database at %s, run 'wildpflanzen db create'", dbPath)
	}

	st := sqlite.NewReadOnly(dbPath)
	if err := st.Open(ctx); err != nil {
		return err
	}
	defer st.Close()

	items, err := season.Load(ctx, st.DB(), categories...)
	if err != nil {
		return err
	}
	ripe := season.ForMonth(items, month)
	c.log.Debug("%d of %d items ripe in month %d", len(ripe), len(items), month)

	if len(ripe) == 0 {
		fmt.Fprintf(out, "Keine Funde im %s.\n", season.MonthName(month))
		return nil
	}
	fmt.Fprintf(out, "Reif im %s:\n\n", season.MonthName(month))
	return season.Render(out, ripe)
}
