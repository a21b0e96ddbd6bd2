package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Andrej220/go-utils/pqueue"
	"github.com/Andrej220/go-utils/pqueue/internal/config"
	"github.com/Andrej220/go-utils/pqueue/internal/instrument"
	"github.com/Andrej220/go-utils/pqueue/internal/logging"
)

type runFlags struct {
	count           int
	producers       int
	consumers       int
	sleep           time.Duration
	capacity        int
	rate            float64
	burst           int
	spreadRemainder bool
	pin             bool
	logLevel        string
	logFormat       string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Produce, prioritize and consume items, then report time and memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg, &f)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			opts, err := cfg.Options()
			if err != nil {
				return err
			}
			runCtx := pqueue.WithLogger(cmd.Context(), logger)

			sampler := instrument.Start(0)
			logger.Warn("start measuring time")
			rep, runErr := pqueue.Run(runCtx, opts)
			sample := sampler.Stop()
			logger.Warn("finished measuring time", zap.Duration("elapsed", sample.Elapsed()))
			logger.Error("run summary",
				zap.String("memory", sample.String()),
				zap.Int("produced", rep.Produced),
				zap.Int("consumed", rep.Consumed),
			)

			fmt.Fprintln(cmd.OutOrStdout(), renderReport(rep, sample))
			return runErr
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.count, "count", pqueue.DefaultTotalItems, "Number of items to publish")
	flags.IntVar(&f.producers, "producers", pqueue.DefaultProducers, "How many producers to create")
	flags.IntVar(&f.consumers, "consumers", pqueue.DefaultConsumers, "How many consumers to create")
	flags.DurationVarP(&f.sleep, "sleep", "s", pqueue.DefaultConsumerDelay, "Delay between producing and consuming")
	flags.IntVar(&f.capacity, "capacity", 0, "Channel capacity (0 means --count)")
	flags.Float64Var(&f.rate, "rate", 0, "Per-producer puts per second (0 disables pacing)")
	flags.IntVar(&f.burst, "burst", 0, "Token bucket burst used with --rate")
	flags.BoolVar(&f.spreadRemainder, "spread-remainder", false, "Give leftover items to the first producers instead of dropping them")
	flags.BoolVar(&f.pin, "pin", false, "Pin consumers to CPUs (Linux only)")
	flags.StringVarP(&f.logLevel, "log-level", "l", "warning", "Log level (debug, info, warning, error)")
	flags.StringVar(&f.logFormat, "log-format", "console", "Log format (console, json)")

	return cmd
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, f *runFlags) {
	flags := cmd.Flags()
	if flags.Changed("count") {
		cfg.Run.TotalItems = f.count
	}
	if flags.Changed("producers") {
		cfg.Run.Producers = f.producers
	}
	if flags.Changed("consumers") {
		cfg.Run.Consumers = f.consumers
	}
	if flags.Changed("sleep") {
		cfg.Run.ConsumerDelay = f.sleep.String()
	}
	if flags.Changed("capacity") {
		cfg.Run.Capacity = f.capacity
	}
	if flags.Changed("rate") {
		cfg.Run.ProduceRate = f.rate
	}
	if flags.Changed("burst") {
		cfg.Run.ProduceBurst = f.burst
	}
	if flags.Changed("spread-remainder") {
		cfg.Run.SpreadRemainder = f.spreadRemainder
	}
	if flags.Changed("pin") {
		cfg.Run.PinConsumers = f.pin
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
}

func renderReport(rep pqueue.Report, s instrument.Sample) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRows([]table.Row{
		{"run id", rep.RunID.String()},
		{"expected", rep.Expected},
		{"produced", rep.Produced},
		{"consumed", rep.Consumed},
		{"dropped by split", rep.Dropped},
		{"peak pending", rep.PeakPending},
		{"remaining", rep.Remaining},
		{"time spent", fmt.Sprintf("%.2fsec", s.Elapsed().Seconds())},
		{"heap", humanize.IBytes(s.HeapAlloc)},
		{"peak heap", humanize.IBytes(s.PeakHeapAlloc)},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft}})
	return tw.Render()
}
