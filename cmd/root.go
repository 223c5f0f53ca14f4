package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/ossim/sim"
	"github.com/inference-sim/ossim/sim/scenario"
	"github.com/inference-sim/ossim/sim/trace"
)

var (
	logLevel   string // Log verbosity level
	eventsPath string // JSONL event output; "-" for stdout
	logEvents  bool   // Mirror every engine event into the log at debug level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ossim",
	Short: "Step-driven simulators for page replacement, CPU scheduling and mutual exclusion",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runSpec drives spec, prints the report and trace summary to out, and
// writes events as JSON lines when --events is set.
func runSpec(spec *scenario.Spec, out io.Writer) error {
	rec := trace.NewRecorder()
	sinks := sim.MultiSink{rec}
	if logEvents {
		sinks = append(sinks, sim.LogSink{Level: logrus.DebugLevel})
	}

	var jsonl *trace.JSONLinesSink
	var eventsFile io.Closer
	if eventsPath != "" {
		w := out
		if eventsPath != "-" {
			f, err := os.Create(eventsPath)
			if err != nil {
				return fmt.Errorf("opening events file: %w", err)
			}
			eventsFile = f
			w = f
		}
		jsonl = trace.NewJSONLinesSink(w)
		sinks = append(sinks, jsonl)
	}

	report, err := scenario.Run(spec, sinks)
	if jsonl != nil {
		if ferr := finishEvents(jsonl, eventsFile); ferr != nil && err == nil {
			err = ferr
		}
	}
	if err != nil {
		return err
	}
	if jsonl != nil {
		logrus.Infof("wrote %d events to %s", jsonl.Written(), eventsPath)
	}

	report.Print(out)
	printSummary(out, trace.Summarize(rec))
	return nil
}

// finishEvents reports the first write error of the events sink, then
// closes the events file when there is one.
func finishEvents(jsonl *trace.JSONLinesSink, f io.Closer) error {
	err := jsonl.Err()
	if err != nil {
		err = fmt.Errorf("writing events: %w", err)
	}
	if f != nil {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing events file: %w", cerr)
		}
	}
	return err
}

func printSummary(out io.Writer, s *trace.Summary) {
	fmt.Fprintln(out, "=== Trace Summary ===")
	fmt.Fprintf(out, "Total Events         : %d\n", s.TotalEvents)
	for _, e := range []sim.EngineKind{sim.EnginePaging, sim.EngineScheduling, sim.EngineMutex} {
		if n := s.ByEngine[e]; n > 0 {
			fmt.Fprintf(out, "  %-19s: %d\n", e, n)
		}
	}
	fmt.Fprintf(out, "Event Digest         : %016x\n", s.Digest)
}

// init sets up persistent flags
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&eventsPath, "events", "", "Write engine events as JSON lines to this file (\"-\" for stdout)")
	rootCmd.PersistentFlags().BoolVar(&logEvents, "log-events", false, "Also log every engine event at debug level")
}
