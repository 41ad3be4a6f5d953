// Package main is the dagscheduler CLI entry point: a single binary
// that takes one positional workflow-document path argument, loads it,
// builds the DAG, logs its string form, runs the scheduler to
// completion, and exits 0 on success (spec.md §6.3). Grounded on the
// teacher's cmd/streamy/root.go + main.go cobra wiring, trimmed to the
// spec's single-argument contract — everything else the teacher's CLI
// does (dashboard, apply/verify subcommands, dry-run) is out of scope.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dagscheduler/dagscheduler/internal/dag"
	"github.com/dagscheduler/dagscheduler/internal/loader"
	"github.com/dagscheduler/dagscheduler/internal/logging"
	"github.com/dagscheduler/dagscheduler/internal/scheduler"
)

const schemaSample = `DAG:
  Title: <optional string>
  Configuration: <optional nested document>
  Vertices:
    - Vertex:
        Name: <optional string>
        UUID: <required canonical identifier string>
        Task:
          Name: <optional string>
          InitialInputs: <optional nested document>
          Configuration: <optional nested document>
          Callback:
            LibraryName: <required string>
            SymbolName: <required string>
            Type: <Function | Plugin>
          Stages:
            - Name: <optional string>
              LibraryName: <required string>
              SymbolName: <required string>
  Connections:
    - Connection:
        From: <identifier string of an existing vertex>
        To:   <identifier string of an existing vertex>`

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "dagscheduler <workflow-file>",
		Short:         "Loads a workflow document, builds its DAG, and runs it to completion",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd.Context(), args[0], verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level logging")
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), cmd.Short)
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "Usage: dagscheduler <workflow-file>")
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "Expected document schema:")
		fmt.Fprintln(cmd.OutOrStdout(), schemaSample)
	})

	return cmd
}

func runWorkflow(ctx context.Context, path string, verbose bool) error {
	level := "info"
	if verbose {
		level = "debug"
	}
	log, err := logging.New(logging.Options{Tag: "dagscheduler", Level: level})
	if err != nil {
		return err
	}

	l := loader.New(nil)
	d, err := l.LoadFile(path)
	if err != nil {
		log.Error("failed to load workflow", "path", path, "error", err)
		return err
	}
	log.Info("loaded workflow", "dag", d.String(), "vertices", d.VertexCount(), "edges", d.EdgeCount())

	sched := scheduler.New(log.With("component", "scheduler"))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sched.Startup(runCtx) }()

	err = dag.ProcessDAG(d, func(batch []*dag.Vertex) error {
		for _, v := range batch {
			if t := v.Task(); t != nil {
				sched.QueueTask(t)
			}
		}
		return nil
	})

	// ProcessDAG only enqueues; it does not block on the scheduler
	// actually running those tasks (internal/dag/algorithms.go's own
	// doc comment says so explicitly). Wait for every queued task to
	// finish before shutting the scheduler down, so the CLI's success
	// log and exit code reflect real completion, not just enqueueing.
	if err == nil {
		err = sched.Wait(runCtx)
	}

	sched.Shutdown()
	cancel()
	<-done

	if err != nil {
		log.Error("failed to process workflow", "error", err)
		return err
	}

	log.Info("workflow processed successfully")
	return nil
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
