package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ygrebnov/fibers/config"
	"github.com/ygrebnov/fibers/input"
	"github.com/ygrebnov/fibers/logging"
	"github.com/ygrebnov/fibers/metrics"
	"github.com/ygrebnov/fibers/mr"
	"github.com/ygrebnov/fibers/stage"
)

const (
	CmdRun          = "run"
	FlagSpec        = "spec"
	FlagWorkers     = "workers"
	FlagShards      = "shards"
	FlagBatchSize   = "batch-size"
	FlagStopOnError = "stop-on-error"
	FlagTop         = "top"
	FlagMetrics     = "metrics"
	FlagLogLevel    = "log-level"
	FlagLogDev      = "log-dev"
)

type runOptions struct {
	specPath    string
	workers     uint
	shards      uint32
	batchSize   uint
	stopOnError bool
	top         int
	metrics     bool
	logLevel    string
	logDev      bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wordfreq",
		Short: "Count word frequencies over a set of inputs in parallel",
		Long: `wordfreq runs a single map stage over the inputs listed in a YAML specification
and prints the most frequent words together with the aggregated stage metrics.

Configuration is read from the environment (MR_WORKERS, MR_SHARDS, MR_BATCH_SIZE,
MR_STOP_ON_ERROR, LOG_LEVEL, LOG_DEV, FETCH_RETRY_MAX, FETCH_RETRY_WAIT_MIN,
FETCH_RETRY_WAIT_MAX, FETCH_RATE_LIMIT); flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   CmdRun,
		Short: "Run the word frequency stage over an input specification",
		Example: `  wordfreq run --spec inputs.yaml
  wordfreq run --spec inputs.yaml --workers 4 --top 20 --metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, &opts)
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.specPath, FlagSpec, "", "path to the YAML input specification")
	f.UintVar(&opts.workers, FlagWorkers, 0, "maximum number of inputs processed at once (0: one per input)")
	f.Uint32Var(&opts.shards, FlagShards, 1, "number of output shards")
	f.UintVar(&opts.batchSize, FlagBatchSize, 256, "lines handed to the mapper at once")
	f.BoolVar(&opts.stopOnError, FlagStopOnError, false, "cancel remaining inputs after the first failure")
	f.IntVar(&opts.top, FlagTop, 10, "number of most frequent words to print (0: all)")
	f.BoolVar(&opts.metrics, FlagMetrics, false, "print collected Prometheus metrics")
	f.StringVar(&opts.logLevel, FlagLogLevel, "", "log level (debug, info, warn, error)")
	f.BoolVar(&opts.logDev, FlagLogDev, false, "human readable development logging")
	_ = cmd.MarkFlagRequired(FlagSpec)

	return cmd
}

// applyFlags overrides environment configuration with the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *runOptions) {
	f := cmd.Flags()
	if f.Changed(FlagWorkers) {
		cfg.Stage.Workers = opts.workers
	}
	if f.Changed(FlagShards) {
		cfg.Stage.Shards = opts.shards
	}
	if f.Changed(FlagBatchSize) {
		cfg.Stage.BatchSize = opts.batchSize
	}
	if f.Changed(FlagStopOnError) {
		cfg.Stage.StopOnError = opts.stopOnError
	}
	if f.Changed(FlagLogLevel) {
		cfg.Logging.Level = opts.logLevel
	}
	if f.Changed(FlagLogDev) {
		cfg.Logging.Development = opts.logDev
	}
}

func run(ctx context.Context, out, errOut io.Writer, cfg *config.Config, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	logCfg.Level = cfg.Logging.Level
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	spec, err := input.LoadSpec(opts.specPath)
	if err != nil {
		return err
	}

	opener, err := input.NewOpener(
		input.WithRetry(cfg.Fetch.RetryMax, cfg.Fetch.RetryWaitMin, cfg.Fetch.RetryWaitMax),
		input.WithRateLimit(cfg.Fetch.RateLimit),
	)
	if err != nil {
		return err
	}

	var (
		reg      *prometheus.Registry
		provider metrics.Provider = metrics.NewNoopProvider()
	)
	if opts.metrics {
		reg = prometheus.NewRegistry()
		provider = metrics.NewPrometheusProvider(reg, "wordfreq")
	}

	exec, err := mr.NewOperatorExecutor(mr.WithLogger(logger), mr.WithMetrics(provider))
	if err != nil {
		return err
	}

	stageOpts := []stage.Option{
		stage.WithOpener(opener),
		stage.WithLogger(logger),
		stage.WithMetrics(provider),
		stage.WithShards(cfg.Stage.Shards),
		stage.WithBatchSize(cfg.Stage.BatchSize),
	}
	if cfg.Stage.Workers > 0 {
		stageOpts = append(stageOpts, stage.WithMaxWorkers(cfg.Stage.Workers))
	}
	if cfg.Stage.StopOnError {
		stageOpts = append(stageOpts, stage.WithStopOnError())
	}

	st, err := stage.New(exec, countWords, stageOpts...)
	if err != nil {
		return err
	}

	logger.Info("stage starting", zap.String("name", spec.Name), zap.Int("inputs", len(spec.Inputs)))
	rep, runErr := st.Run(ctx, nil, spec.Inputs)

	printReport(out, spec.Name, rep, opts.top)
	if reg != nil {
		if err := printMetricFamilies(out, reg); err != nil {
			return err
		}
	}

	if runErr != nil {
		for _, e := range stage.InputErrors(runErr) {
			fmt.Fprintf(errOut, "%v\n", e)
		}
		return fmt.Errorf("%d of %d inputs failed", rep.Failed+rep.Skipped, len(spec.Inputs))
	}
	return nil
}

func printReport(w io.Writer, name string, rep stage.Report, top int) {
	if name == "" {
		name = "wordfreq"
	}
	fmt.Fprintf(w, "stage %s: %d inputs, %d failed, %d skipped, %d records, %d parse errors\n",
		name, rep.Inputs, rep.Failed, rep.Skipped, rep.Items, rep.ParseErrors)

	words := rep.FreqMaps[freqMapWords]
	fmt.Fprintf(w, "\nwords (%d distinct, %d total):\n", len(words), words.Sum())
	for _, e := range words.Top(top) {
		fmt.Fprintf(w, "  %-24s %d\n", e.Key, e.Count)
	}

	fmt.Fprintln(w, "\nmetrics:")
	for _, k := range slices.Sorted(maps.Keys(rep.Metrics)) {
		fmt.Fprintf(w, "  %-24s %d\n", k, rep.Metrics[k])
	}
}

func printMetricFamilies(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	fmt.Fprintln(w, "\nprometheus:")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(w, "  %s%s %s\n", mf.GetName(), labels(m), value(mf.GetType(), m))
		}
	}
	return nil
}

func labels(m *dto.Metric) string {
	if len(m.GetLabel()) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func value(t dto.MetricType, m *dto.Metric) string {
	switch t {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%g", m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return fmt.Sprintf("%g", m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return fmt.Sprintf("count=%d sum=%g", h.GetSampleCount(), h.GetSampleSum())
	default:
		return "?"
	}
}
