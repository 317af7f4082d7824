// Package main implements topngx, top for NGINX access logs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/topngx/topngx/internal/config"
	"github.com/topngx/topngx/internal/nginx"
	"github.com/topngx/topngx/internal/processor"
	"github.com/topngx/topngx/pkg/types"
)

var (
	cfgFile string

	// Flag values; merged over file and environment configuration in
	// loadConfig. cfg is the effective configuration for the run.
	flagOpts = config.Default()
	cfg      *config.Config

	queryFields []string
	queryText   string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "topngx",
	Short: "top for NGINX",
	Long: `topngx parses an NGINX access log with a named or custom log format,
accumulates the extracted fields in an in-memory relation, and reports
aggregate statistics, refreshing them like top while the log grows.

Run without a subcommand for the default per-group report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}

		zapCfg := zap.NewProductionConfig()
		if cfg.Verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, queries := processor.DefaultQueries(processor.Options{
			GroupBy: cfg.GroupBy,
			Having:  cfg.Having,
			OrderBy: cfg.OrderBy,
			Limit:   cfg.Limit,
		})
		return run(cmd.Context(), fields, queries)
	},
}

var avgCmd = &cobra.Command{
	Use:   "avg [fields]",
	Short: "Print the average of the given fields",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args, []string{processor.AvgQuery(args)})
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "List the available fields as well as the access log and format being used",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo(cmd)
	},
}

var printCmd = &cobra.Command{
	Use:   "print [fields]",
	Short: "Print out the supplied fields with the given limit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args, []string{processor.PrintQuery(args)})
	},
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Supply a custom query",
	Long: `Runs a custom SQL query against the accumulated relation. The relation
is a table named log whose columns are the supplied fields. You
typically will want to use your shell to quote the query.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), queryFields, []string{queryText})
	},
}

var sumCmd = &cobra.Command{
	Use:   "sum [fields]",
	Short: "Compute the sum of the given fields",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args, []string{processor.SumQuery(args)})
	},
}

var topCmd = &cobra.Command{
	Use:   "top [fields]",
	Short: "Find the top values for the given fields",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args, processor.TopQueries(args, cfg.Limit))
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "path to configuration file (YAML or JSON)")
	pf.StringVarP(&flagOpts.AccessLog, "access-log", "a", flagOpts.AccessLog, "the access log to parse (default: standard input)")
	pf.StringVarP(&flagOpts.Format, "format", "f", flagOpts.Format, "the specific log format with which to parse")
	pf.StringVarP(&flagOpts.GroupBy, "group-by", "g", flagOpts.GroupBy, "group by this variable")
	pf.Uint64VarP(&flagOpts.Having, "having", "w", flagOpts.Having, "having clause")
	pf.DurationVarP(&flagOpts.Interval, "interval", "t", flagOpts.Interval, "refresh the statistics using this interval")
	pf.Uint64VarP(&flagOpts.Limit, "limit", "l", flagOpts.Limit, "the number of records to limit for each query")
	pf.BoolVarP(&flagOpts.NoFollow, "no-follow", "n", flagOpts.NoFollow, "do not tail the log file and only report what is currently there")
	pf.StringVarP(&flagOpts.OrderBy, "order-by", "o", flagOpts.OrderBy, "order of output for the default queries")
	pf.BoolVarP(&flagOpts.Verbose, "verbose", "v", false, "enable debug logging")

	queryCmd.Flags().StringSliceVar(&queryFields, "fields", nil, "a comma separated list of field names")
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "the supplied query")
	_ = queryCmd.MarkFlagRequired("fields")
	_ = queryCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(avgCmd, infoCmd, printCmd, queryCmd, sumCmd, topCmd)
}

// loadConfig layers configuration: file, then environment, then any
// flags set on the command line.
func loadConfig(cmd *cobra.Command) error {
	base := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return err
		}
		base = loaded
	}

	config.LoadFromEnv(base)

	flags := cmd.Flags()
	if flags.Changed("access-log") {
		base.AccessLog = flagOpts.AccessLog
	}
	if flags.Changed("format") {
		base.Format = flagOpts.Format
	}
	if flags.Changed("group-by") {
		base.GroupBy = flagOpts.GroupBy
	}
	if flags.Changed("having") {
		base.Having = flagOpts.Having
	}
	if flags.Changed("interval") {
		base.Interval = flagOpts.Interval
	}
	if flags.Changed("limit") {
		base.Limit = flagOpts.Limit
	}
	if flags.Changed("no-follow") {
		base.NoFollow = flagOpts.NoFollow
	}
	if flags.Changed("order-by") {
		base.OrderBy = flagOpts.OrderBy
	}
	if flags.Changed("verbose") {
		base.Verbose = flagOpts.Verbose
	}

	if err := base.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = base
	return nil
}

// runInfo prints the access log, format, and queryable variables.
func runInfo(cmd *cobra.Command) error {
	template, err := nginx.Resolve(cfg.Format)
	if err != nil {
		return err
	}

	accessLog := cfg.AccessLog
	if accessLog == "" {
		accessLog = "STDIN"
	}

	available := append(template.Variables(), types.DerivedFields()...)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "access log file: %s\n", accessLog)
	fmt.Fprintf(out, "access log format: %s\n", cfg.Format)
	fmt.Fprintf(out, "available variables to query: %s\n", strings.Join(available, ", "))
	fmt.Fprintf(out, "known log format variables: %s\n", strings.Join(nginx.KnownNames(), ", "))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
