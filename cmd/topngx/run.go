package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/topngx/topngx/internal/nginx"
	"github.com/topngx/topngx/internal/processor"
	"github.com/topngx/topngx/internal/report"
	"github.com/topngx/topngx/internal/source"
	"github.com/topngx/topngx/pkg/types"
)

// resolveAccessLog picks the input source: the configured log, or
// standard input when it is a pipe.
func resolveAccessLog() (string, error) {
	if cfg.AccessLog != "" {
		return cfg.AccessLog, nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return source.Stdin, nil
	}
	return "", fmt.Errorf("STDIN is a TTY")
}

// followable reports whether the access log supports tailing. Standard
// input, S3 objects, and compressed archives are single-pass.
func followable(accessLog string) bool {
	if accessLog == source.Stdin || strings.HasPrefix(accessLog, "s3://") {
		return false
	}
	return !strings.HasSuffix(accessLog, ".gz") && !strings.HasSuffix(accessLog, ".sz")
}

// run drives one invocation: compile the format, accumulate records,
// and report. File sources are followed until interrupted unless
// --no-follow is set.
func run(ctx context.Context, fields, queries []string) error {
	sugar := logger.Sugar()

	accessLog, err := resolveAccessLog()
	if err != nil {
		return err
	}
	sugar.Infow("parsing access log", "access_log", accessLog, "format", cfg.Format)

	template, err := nginx.Resolve(cfg.Format)
	if err != nil {
		return err
	}
	pattern, err := nginx.Compile(template)
	if err != nil {
		return err
	}

	proc, err := processor.New(fields, queries, logger)
	if err != nil {
		return err
	}
	defer proc.Close()

	if !cfg.NoFollow && followable(accessLog) {
		return follow(ctx, accessLog, pattern, proc)
	}
	return singlePass(ctx, accessLog, pattern, proc)
}

// singlePass reads the whole source once, then reports.
func singlePass(ctx context.Context, accessLog string, pattern *nginx.CompiledPattern, proc *processor.Processor) error {
	rc, err := source.Open(ctx, accessLog, cfg.S3)
	if err != nil {
		return err
	}
	defer rc.Close()

	var records []types.Record
	err = source.EachLine(rc, func(line string) error {
		if record, ok := nginx.Extract(line, pattern, proc.Fields); ok {
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := proc.Process(ctx, records); err != nil {
		return err
	}

	results, err := proc.Report(ctx)
	if err != nil {
		return err
	}
	return report.Render(os.Stdout, results)
}

// follow tails the log file, appending new records to the relation and
// replacing the report on every refresh interval.
func follow(ctx context.Context, accessLog string, pattern *nginx.CompiledPattern, proc *processor.Processor) error {
	follower := source.NewFollower(accessLog, cfg.Interval)
	return follower.Run(ctx, func(lines []string) error {
		var records []types.Record
		for _, line := range lines {
			if record, ok := nginx.Extract(line, pattern, proc.Fields); ok {
				records = append(records, record)
			}
		}

		if err := proc.Process(ctx, records); err != nil {
			return err
		}

		results, err := proc.Report(ctx)
		if err != nil {
			return err
		}

		report.Clear(os.Stdout)
		return report.Render(os.Stdout, results)
	})
}
