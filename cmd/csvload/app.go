package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"csvload/internal/config"
	"csvload/internal/loader"
	"csvload/internal/parser/csv"
	"csvload/internal/probe"
	"csvload/internal/sqlgen"
	"csvload/internal/storage"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
	exitConfig  = 10
	exitConnect = 11
	exitInput   = 12
	exitSchema  = 13
	exitRows    = 14
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

// appDeps are the side-effecting collaborators of runMain. Tests replace them.
type appDeps struct {
	loadDotEnv  func(path string) error
	loadConfig  func(cfgFile string, flags *pflag.FlagSet) (*config.Config, error)
	getenv      func(string) string
	newSource   func(location string, opts csv.Options) (loader.Source, error)
	openSession func(ctx context.Context, cfg storage.Config) (storage.Session, error)
	initMetrics func(ctx context.Context, m config.MetricsConfig) (func(), error)
}

func defaultDeps() appDeps {
	return appDeps{
		loadDotEnv: config.LoadDotEnv,
		loadConfig: config.Load,
		getenv:     os.Getenv,
		newSource: func(location string, opts csv.Options) (loader.Source, error) {
			src, err := csv.NewSource(location, opts)
			if err != nil {
				return nil, err
			}
			return src, nil
		},
		openSession: storage.Open,
		initMetrics: initMetrics,
	}
}

// runMain executes the CLI and returns the process exit code.
func runMain(ctx context.Context, args []string, stdout, stderr io.Writer, deps appDeps) int {
	root := newRootCmd(stdout, stderr, deps)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	// Anything cobra reports itself (unknown flag or command, bad argument
	// count) is a usage error.
	code := exitUsage
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
	}
	fmt.Fprintf(stderr, "csvload: %v\n", err)
	if code == exitUsage {
		fmt.Fprintln(stderr, "Run 'csvload --help' for usage.")
	}
	return code
}

type app struct {
	deps    appDeps
	stdout  io.Writer
	stderr  io.Writer
	cfgFile string
	envFile string
	asJSON  bool
}

func newRootCmd(stdout, stderr io.Writer, deps appDeps) *cobra.Command {
	a := &app{deps: deps, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "csvload",
		Short: "Load a delimited file of unknown schema into a database table",
		Long: `csvload samples a delimited file, infers one type per column
(boolean, integer, float, date or text), recreates the destination table and
inserts every row inside a single transaction.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			return exitWith(exitUsage, errors.New("a command is required (load or probe)"))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (YAML or JSON)")
	pf.StringVar(&a.envFile, "env-file", "", "dotenv file to load (default: ./.env when present)")
	pf.String("table", "", "destination table, optionally schema-qualified (default csv_data)")
	pf.Int("sample-limit", 0, "rows sampled for type inference (default 100)")
	pf.String("storage", "", "storage kind: postgres|sqlite|mssql|duckdb (default postgres)")
	pf.String("dsn", "", "connection string for the storage backend")
	pf.String("header", "", "first row is a header: auto|true|false (default auto)")
	pf.String("comma", "", `field delimiter: one character, "tab", or "auto" (default ",")`)
	pf.String("encoding", "", "input charset, e.g. utf-8, latin1, windows-1250 (default utf-8)")
	pf.Bool("lazy-quotes", false, "accept bare quotes inside unquoted fields")
	pf.String("metrics-backend", "", "metrics backend: none|datadog (default none)")
	pf.BoolP("verbose", "v", false, "debug logging")

	_ = root.RegisterFlagCompletionFunc("storage", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return storage.Kinds(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc("header", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "true", "false"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(a.newLoadCmd(), a.newProbeCmd())
	return root
}

func (a *app) newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load [file|url|-]",
		Short: "Infer a schema and load every row into the destination table",
		Long: `Load samples the input, drops and recreates the destination table, then
inserts every row in one transaction. Any failing row rolls the whole load
back; the recreated (empty) table is kept.`,
		Example: `  csvload load people.csv --storage sqlite --dsn people.db
  PGHost=db PGPort=5432 PGDBName=imports PGUser=loader PGPW=secret csvload load people.csv
  curl -s https://example.com/people.csv | csvload load - --table staging.people`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runLoad,
	}
}

func (a *app) newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe [file|url|-]",
		Short: "Show the inferred columns and the DDL load would run, without a database",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runProbe,
	}
	cmd.Flags().BoolVar(&a.asJSON, "json", false, "print the plan as JSON instead of a table")
	return cmd
}

func (a *app) runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, log, err := a.setup(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.ResolveDSN(a.deps.getenv); err != nil {
		return exitWith(exitConfig, err)
	}
	if err := a.validate(config.ValidateConfig(*cfg, true)); err != nil {
		return err
	}

	src, err := a.source(cfg)
	if err != nil {
		return err
	}

	cleanup, err := a.deps.initMetrics(ctx, cfg.Metrics)
	if err != nil {
		return exitWith(exitConfig, fmt.Errorf("init metrics: %w", err))
	}
	defer cleanup()

	sess, err := a.deps.openSession(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: cfg.Storage.DSN})
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedKind) {
			return exitWith(exitConfig, err)
		}
		return exitWith(exitConnect, err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn("close session", "err", err)
		}
	}()

	l := &loader.Loader{
		Table:       cfg.Storage.Table,
		SampleLimit: cfg.Load.SampleLimit,
		Logger:      log,
	}
	res, err := l.Load(ctx, sess, src)
	if err != nil {
		return exitWith(loadExitCode(err), err)
	}

	fmt.Fprintf(a.stdout, "loaded %d rows into %s (%d columns)\n", res.Rows, res.Table, len(res.Columns))
	return nil
}

func (a *app) runProbe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, log, err := a.setup(cmd, args)
	if err != nil {
		return err
	}

	// probe never connects, so a missing DSN is not an issue here.
	var issues []config.Issue
	for _, is := range config.ValidateConfig(*cfg, true) {
		if is.Path != "storage.dsn" {
			issues = append(issues, is)
		}
	}
	if err := a.validate(issues); err != nil {
		return err
	}

	d, err := sqlgen.DialectFor(storage.NormalizeKind(cfg.Storage.Kind))
	if err != nil {
		return exitWith(exitConfig, err)
	}
	src, err := a.source(cfg)
	if err != nil {
		return err
	}

	l := &loader.Loader{
		Table:       cfg.Storage.Table,
		SampleLimit: cfg.Load.SampleLimit,
		Logger:      log,
	}
	plan, err := l.Plan(ctx, src, d)
	if err != nil {
		return exitWith(loadExitCode(err), err)
	}

	if a.asJSON {
		return writePlanJSON(a.stdout, src.Name(), d, plan)
	}

	fmt.Fprintf(a.stdout, "source: %s (%d rows sampled, %d columns)\n", src.Name(), plan.Sampled, len(plan.Columns))
	probe.WriteReport(a.stdout, plan.Profiles)
	fmt.Fprintf(a.stdout, "\n-- %s DDL\n%s\n", d.Name(), plan.DDL.String())
	return nil
}

// planJSON is the machine-readable form of a probe run. Column types render
// through SemanticType.MarshalText.
type planJSON struct {
	Source  string                `json:"source"`
	Table   string                `json:"table"`
	Dialect string                `json:"dialect"`
	Sampled int                   `json:"sampled"`
	Columns []probe.ColumnProfile `json:"columns"`
	DDL     []string              `json:"ddl"`
}

func writePlanJSON(w io.Writer, source string, d sqlgen.Dialect, plan *loader.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(planJSON{
		Source:  source,
		Table:   plan.Table,
		Dialect: d.Name(),
		Sampled: plan.Sampled,
		Columns: plan.Profiles,
		DDL:     plan.DDL.Statements,
	}); err != nil {
		return exitWith(exitFailure, fmt.Errorf("write plan: %w", err))
	}
	return nil
}

// setup loads .env and the layered config, applies the positional input and
// builds the run logger.
func (a *app) setup(cmd *cobra.Command, args []string) (*config.Config, *slog.Logger, error) {
	if err := a.deps.loadDotEnv(a.envFile); err != nil {
		return nil, nil, exitWith(exitConfig, err)
	}

	cfg, err := a.deps.loadConfig(a.cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, exitWith(exitConfig, err)
	}
	if len(args) == 1 {
		cfg.Source.Path = args[0]
	}
	if strings.TrimSpace(cfg.Source.Path) == "" {
		return nil, nil, exitWith(exitUsage, fmt.Errorf("usage: csvload %s [file|url|-] (or set source.path)", cmd.Name()))
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	return cfg, log, nil
}

// validate prints every issue and fails when any of them is an error.
func (a *app) validate(issues []config.Issue) error {
	for _, is := range issues {
		fmt.Fprintln(a.stderr, is.String())
	}
	if config.HasErrors(issues) {
		return exitWith(exitConfig, errors.New("configuration is invalid"))
	}
	return nil
}

func (a *app) source(cfg *config.Config) (loader.Source, error) {
	opts, err := csv.OptionsFrom(cfg.Parser.Options)
	if err != nil {
		return nil, exitWith(exitConfig, err)
	}
	src, err := a.deps.newSource(cfg.Source.Path, opts)
	if err != nil {
		if errors.Is(err, csv.ErrInvalidOption) {
			return nil, exitWith(exitConfig, err)
		}
		return nil, exitWith(exitInput, err)
	}
	return src, nil
}

func loadExitCode(err error) int {
	switch {
	case errors.Is(err, loader.ErrInput):
		return exitInput
	case errors.Is(err, loader.ErrSchemaExecution):
		return exitSchema
	case errors.Is(err, loader.ErrRowExecution), errors.Is(err, loader.ErrTransaction):
		return exitRows
	}
	return exitFailure
}
