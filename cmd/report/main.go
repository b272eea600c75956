// Command report runs the read-only SQL reports over a loaded store.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"healthetl/internal/cli"
	"healthetl/internal/config"
	"healthetl/internal/report"
	"healthetl/internal/schema"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "report",
		Short:        "Query the healthcare and doctors tables",
		SilenceUsage: true,
	}
	cli.StorageFlags(root)
	root.PersistentFlags().String("output-dir", "", "directory for <name>_results.csv files")

	runCmd := &cobra.Command{
		Use:       "run NAME",
		Short:     "Run one report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: report.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd, func(ctx context.Context, r *report.Runner, p config.Pipeline, out io.Writer) error {
				res, err := r.Run(ctx, args[0])
				if err != nil {
					return err
				}
				report.Render(out, res)
				return nil
			})
		},
	}
	runCmd.Flags().String("condition", "", "medical condition for by_condition")

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "Run every report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd, func(ctx context.Context, r *report.Runner, p config.Pipeline, out io.Writer) error {
				results, err := r.RunAll(ctx, report.Names(), p.Report.Concurrency)
				if err != nil {
					return err
				}
				for _, res := range results {
					report.Render(out, res)
					fmt.Fprintln(out)
				}
				return nil
			})
		},
	}
	allCmd.Flags().String("condition", "", "medical condition for by_condition")
	allCmd.Flags().Int("concurrency", 0, "reports run at once")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the available reports",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			report.RenderList(cmd.OutOrStdout())
		},
	}

	root.AddCommand(runCmd, allCmd, listCmd)
	return root
}

func withRunner(cmd *cobra.Command, fn func(context.Context, *report.Runner, config.Pipeline, io.Writer) error) error {
	env, err := cli.Setup(cmd, "report")
	if err != nil {
		return err
	}
	defer env.Close()
	p, log := env.Pipeline, env.Log

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, stopTracing, err := cli.StartTracing(ctx, "healthetl-report", p, log)
	if err != nil {
		return err
	}
	defer stopTracing()

	db, err := report.Open(ctx, p.Storage.Kind, p.Storage.DB.DSN)
	if err != nil {
		log.Error().Err(err).Msg("open store failed")
		return err
	}
	defer db.Close()

	if p.Report.OutputDir != "" {
		if err := os.MkdirAll(p.Report.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	r := &report.Runner{
		DB:        db,
		Contract:  schema.Healthcare().WithTable(p.Storage.DB.Table),
		Params:    report.Params{Condition: p.Report.Condition},
		OutputDir: p.Report.OutputDir,
		Log:       log,
		Tracer:    tp.Tracer(),
	}
	if err := fn(ctx, r, p, cmd.OutOrStdout()); err != nil {
		log.Error().Err(err).Msg("report failed")
		return err
	}
	return nil
}
