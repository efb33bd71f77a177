package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stof/doc"
	"stof/graph"
	"stof/internal/history"
	"stof/value"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stof",
		Short: "Stof document runner",
		Long:  "Run and test Stof documents: the unified data-and-behavior graph runtime.",
	}

	var format string
	var uuidIDs bool
	runCmd := &cobra.Command{
		Use:   "run <file.stof>",
		Short: "Import a document and run its main-attributed functions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0], format, uuidIDs)
		},
	}
	runCmd.Flags().StringVarP(&format, "format", "f", "", "document format (inferred from extension if omitted)")
	runCmd.Flags().BoolVar(&uuidIDs, "uuid-ids", false, "allocate node/data ids from uuid.v4 instead of the default sequential counter")

	var testFormat string
	var testUUIDIDs bool
	testCmd := &cobra.Command{
		Use:   "test <file.stof>",
		Short: "Import a document and run its test-attributed functions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return testFile(args[0], testFormat, testUUIDIDs)
		},
	}
	testCmd.Flags().StringVarP(&testFormat, "format", "f", "", "document format (inferred from extension if omitted)")
	testCmd.Flags().BoolVar(&testUUIDIDs, "uuid-ids", false, "allocate node/data ids from uuid.v4 instead of the default sequential counter")

	rootCmd.AddCommand(runCmd, testCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}

func newGraph(uuidIDs bool) *graph.Graph {
	if uuidIDs {
		return graph.NewWithAllocator(graph.WithUUIDIDs())
	}
	return graph.New()
}

func runFile(path, format string, uuidIDs bool) error {
	d, err := doc.FromFileWithGraph(newGraph(uuidIDs), path, format)
	if err != nil {
		return fmt.Errorf("%s", err.Error())
	}
	summary, rerr := d.Run(nil)
	if rerr != nil {
		return fmt.Errorf("%s", rerr.Error())
	}
	ran, _ := summary.MapRef().Get(value.Str("ran"))
	failed, _ := summary.MapRef().Get(value.Str("failed"))
	if failed.I > 0 {
		fmt.Printf("%s %d/%d functions failed\n", red("✗"), failed.I, ran.I)
		os.Exit(1)
	}
	fmt.Printf("%s ran %d function(s)\n", green("✓"), ran.I)
	return nil
}

func testFile(path, format string, uuidIDs bool) error {
	d, err := doc.FromFileWithGraph(newGraph(uuidIDs), path, format)
	if err != nil {
		return fmt.Errorf("%s", err.Error())
	}
	started := time.Now()
	report, rerr := d.RunTests(false, 0, false)
	elapsed := time.Since(started)
	if rerr != nil {
		return fmt.Errorf("%s", rerr.Error())
	}

	for _, r := range report.Results {
		if r.Ok {
			line := fmt.Sprintf("%s %s", green("ok"), r.Path)
			if r.Profiled {
				line += fmt.Sprintf(" %s", yellow(fmt.Sprintf("(%d iters, %dns/op)", r.Iters, r.NsPerOp)))
			}
			fmt.Println(line)
			continue
		}
		fmt.Printf("%s %s\n", red("failed"), r.Path)
		if r.Message != "" {
			fmt.Printf("  %s\n", r.Message)
		}
	}

	fmt.Printf("%s %s. %d passed; %d failed; finished in %s\n",
		bold("test result:"), testStatus(report.Failed), report.Passed, report.Failed, elapsed)

	if err := recordHistory(path, report, elapsed); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", yellow("warning: could not record test history:"), err)
	}

	if report.Failed > 0 {
		os.Exit(1)
	}
	return nil
}

// recordHistory persists this run's summary to the per-project sqlite
// history store, best-effort: a history write failure never fails the
// test run itself.
func recordHistory(docPath string, report *doc.TestReport, elapsed time.Duration) error {
	store, err := history.Open(history.DefaultPath())
	if err != nil {
		return err
	}
	defer store.Close()

	run := &history.Run{
		DocPath:  docPath,
		RanAt:    time.Now(),
		Passed:   report.Passed,
		Failed:   report.Failed,
		Duration: elapsed,
	}
	for _, r := range report.Results {
		run.Results = append(run.Results, history.Result{
			Path:      r.Path,
			Ok:        r.Ok,
			Message:   r.Message,
			NsElapsed: r.Duration.Nanoseconds(),
		})
	}
	return store.Record(run)
}

func testStatus(failed int) string {
	if failed > 0 {
		return red("failed")
	}
	return green("ok")
}
