package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"sqlcheck/internal/auditor"
	"sqlcheck/internal/config"
	"sqlcheck/internal/extractor"
	"sqlcheck/internal/logger"
	"sqlcheck/internal/model"
	"sqlcheck/internal/reporter"
	"sqlcheck/internal/scanner"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// errFindings makes the process exit non-zero without printing anything else.
var errFindings = errors.New("anti-patterns found")

// embeddedSQLExts are scanned for SQL string literals rather than parsed as SQL.
var embeddedSQLExts = []string{"go", "py", "java", "cpp", "c", "cs", "js", "ts", "rb", "php"}

func newRootCmd(v *viper.Viper) (*cobra.Command, error) {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqlcheck [flags] [path...]",
		Short: "Detect SQL anti-patterns",
		Long: `sqlcheck reads SQL statements from files, directories or stdin and
reports common anti-patterns in logical and physical database design,
queries and application code, graded by risk.

With no path, or with "-", SQL is read from stdin.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ReadConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, v, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sqlcheck.yaml or ./.sqlcheck.yaml)")
	pf.IntP(config.KeyRiskLevel, "r", int(model.TierAll), "risk level: 1 all, 2 medium and high, 3 high only")
	pf.Bool(config.KeyDebug, false, "enable debug logging")
	pf.StringSlice(config.KeyDisable, nil, "rule ids to disable")

	f := rootCmd.Flags()
	f.BoolP(config.KeyVerbose, "v", false, "show statements and rule explanations")
	f.Bool(config.KeyColor, !color.NoColor, "colourize console output")
	f.Bool("no-color", false, "disable colour")
	f.StringP(config.KeyOutput, "o", string(reporter.FormatText), "output format (text, json, yaml)")
	f.StringSliceP(config.KeyExclude, "e", []string{".git", "vendor", "node_modules"}, "gitignore-style patterns to exclude from scan")
	f.IntP(config.KeyJobs, "j", 4, "number of concurrent workers")
	f.Bool(config.KeyFailOnError, false, "exit with status 1 when high risk findings exist")
	f.Bool(config.KeyFailOnWarning, false, "exit with status 1 when medium or high risk findings exist")

	if err := bindFlags(v, pf, config.KeyRiskLevel, config.KeyDebug, config.KeyDisable); err != nil {
		return nil, err
	}
	if err := bindFlags(v, f,
		config.KeyVerbose, config.KeyColor, config.KeyOutput, config.KeyExclude,
		config.KeyJobs, config.KeyFailOnError, config.KeyFailOnWarning,
	); err != nil {
		return nil, err
	}

	rootCmd.AddCommand(newRulesCmd(v))
	return rootCmd, nil
}

// bindFlags binds each named flag to the viper key of the same name.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		if err := v.BindPFlag(name, fs.Lookup(name)); err != nil {
			return errors.Wrapf(err, "bind flag %s", name)
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd, err := newRootCmd(config.New())
	if err == nil {
		err = rootCmd.ExecuteContext(ctx)
	}
	stop()
	if err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func loadSettings(cmd *cobra.Command, v *viper.Viper) (*config.Settings, error) {
	catalog, err := auditor.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	settings, err := config.Load(v, catalog)
	if err != nil {
		return nil, err
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		settings.Config.Color = false
	}
	logger.Setup(cmd.ErrOrStderr(), settings.Debug, settings.Config.Color)
	return settings, nil
}

func runCheck(cmd *cobra.Command, v *viper.Viper, args []string) error {
	settings, err := loadSettings(cmd, v)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	slog.Debug("starting check", "args", args, "risk_level", int(settings.Config.MinRisk), "rules", settings.Catalog.Len())

	mgr := extractor.NewManager()
	embedded := extractor.NewRegexExtractor()
	for _, ext := range embeddedSQLExts {
		mgr.Register(ext, embedded)
	}

	stmts, err := collectStatements(ctx, cmd.InOrStdin(), mgr, settings, args)
	if err != nil {
		return err
	}
	slog.Debug("statements collected", "count", len(stmts))

	engine, err := auditor.NewAuditor(settings.Catalog, settings.Config)
	if err != nil {
		return err
	}
	report, err := engine.AuditParallel(ctx, stmts, settings.Jobs)
	if err != nil {
		return err
	}

	rpt, err := reporter.New(settings.Format, cmd.OutOrStdout(), settings.Config)
	if err != nil {
		return err
	}
	if err := rpt.Report(report); err != nil {
		return err
	}

	return exitStatus(settings, report.Summary)
}

func collectStatements(ctx context.Context, stdin io.Reader, mgr *extractor.Manager, settings *config.Settings, args []string) ([]model.Statement, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		slog.Debug("reading SQL from stdin")
		return mgr.ExtractReader("", stdin)
	}

	walker := scanner.NewFileWalker(mgr.Extensions(), settings.Excludes)
	targets, walkErrs := walker.Walk(ctx, args...)

	pool := scanner.NewWorkerPool(settings.Jobs, mgr.Extract)
	results := scanner.Collect(pool.Start(ctx, targets))

	var failed error
	for err := range walkErrs {
		slog.Error("scan failed", logger.Error(err))
		if failed == nil {
			failed = err
		}
	}
	if failed != nil {
		return nil, failed
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "scan cancelled")
	}

	for _, res := range results {
		if res.Error != nil {
			slog.Warn("skipping file", "file", res.File, logger.Error(res.Error))
			continue
		}
		slog.Debug("extracted", "file", res.File, "statements", len(res.Statements))
	}
	return scanner.Statements(results), nil
}

func exitStatus(settings *config.Settings, s model.Summary) error {
	if settings.FailOnError && s.ByRisk[model.RiskError] > 0 {
		return errFindings
	}
	if settings.FailOnWarning && s.ByRisk[model.RiskError]+s.ByRisk[model.RiskWarning] > 0 {
		return errFindings
	}
	return nil
}
