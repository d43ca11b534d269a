package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"epgmerge/config"
	"epgmerge/epg"
	"epgmerge/logging"
	"epgmerge/source"
)

type runOptions struct {
	input    string
	output   string
	logFile  string
	tzPolicy string
	tzRegion string
}

func newRunOptions(ctx *commandContext) *runOptions {
	opts := &runOptions{}
	ctx.override(opts.apply)
	return opts
}

func (o *runOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.input, "input", "", "Source list file (one URL per line)")
	flags.StringVar(&o.output, "output", "", "Merged EPG destination")
	flags.StringVar(&o.logFile, "log", "", "Append-only error log file")
	flags.StringVar(&o.tzPolicy, "tz-policy", "", "Timestamp normalization policy (utc or regional)")
	flags.StringVar(&o.tzRegion, "tz-region", "", "IANA region used by the regional policy")
}

func (o *runOptions) apply(cfg *config.Config) {
	if v := strings.TrimSpace(o.input); v != "" {
		cfg.Paths.Input = v
	}
	if v := strings.TrimSpace(o.output); v != "" {
		cfg.Paths.Output = v
		cfg.Paths.Lock = ""
	}
	if v := strings.TrimSpace(o.logFile); v != "" {
		cfg.Paths.Log = v
	}
	if v := strings.TrimSpace(o.tzPolicy); v != "" {
		cfg.Timezone.Policy = v
	}
	if v := strings.TrimSpace(o.tzRegion); v != "" {
		cfg.Timezone.Region = v
	}
}

func newRunCommand(ctx *commandContext, opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch every source and write the merged EPG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, ctx)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runMerge(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	logger, closer, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: stderr,
		LogFile: cfg.Paths.Log,
		NoColor: !shouldColorize(stderr),
		RunID:   uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closer.Close()

	lock := flock.New(cfg.Paths.Lock)
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.Lock), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		logger.Error().Str("lock", cfg.Paths.Lock).Msg("another run holds the lock, nothing written")
		return nil
	}
	defer func() {
		if err := os.Remove(cfg.Paths.Lock); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("lock", cfg.Paths.Lock).Msg("failed to remove lock file")
		}
		if err := lock.Unlock(); err != nil {
			logger.Warn().Err(err).Str("lock", cfg.Paths.Lock).Msg("failed to release lock")
		}
	}()

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := epg.NewGenerator(cfg, source.NewFetcher(cfg), logger)
	report, err := gen.Run(runCtx)
	return finishRun(cmd, logger, report, err)
}

func finishRun(cmd *cobra.Command, logger zerolog.Logger, report *epg.Report, err error) error {
	var missing *source.MissingInputError
	switch {
	case errors.As(err, &missing):
		fmt.Fprintf(cmd.ErrOrStderr(), "Source list %s not found; create it with one URL per line.\n", missing.Path)
		return nil
	case errors.Is(err, context.Canceled):
		logger.Warn().Msg("stopped before all sources were processed")
		return nil
	case err != nil:
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderReport(report))
	if report.ValidationErr != nil {
		fmt.Fprintf(out, "Warning: %s failed validation and was kept for inspection.\n", report.OutputPath)
	}
	return nil
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
