// Command etl loads the healthcare billing CSV into the configured store.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"healthetl/internal/cli"
	"healthetl/internal/config"
	"healthetl/internal/pipeline"

	// every backend is linked; the config picks one.
	_ "healthetl/internal/storage/all"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "etl",
		Short:        "Clean the healthcare billing CSV and load it in batches",
		SilenceUsage: true,
	}
	root.AddCommand(runCmd(), validateCmd())
	return root
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
	cli.StorageFlags(cmd)
	f := cmd.Flags()
	f.String("source", "", "input CSV path")
	f.String("source-kind", "", "input location: file, s3 or http")
	f.String("source-url", "", "input CSV URL for the http source")
	f.Int("batch-size", 0, "rows per batch")
	f.String("dedupe", "", "duplicate policy: exact or key")
	f.String("inverted-dates", "", "inverted stay repair: next_day or same_day")
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			p, err := config.Load(path, cmd.Flags())
			if err != nil {
				return err
			}
			if cli.PrintIssues(cmd.ErrOrStderr(), config.ValidatePipeline(p)) {
				return fmt.Errorf("configuration is invalid: %s", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid: %s\n", path)
			return nil
		},
	}
	cli.StorageFlags(cmd)
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	env, err := cli.Setup(cmd, "etl")
	if err != nil {
		return err
	}
	defer env.Close()
	p, log := env.Pipeline, env.Log

	if cli.PrintIssues(cmd.ErrOrStderr(), config.ValidatePipeline(p)) {
		log.Error().Msg("configuration is invalid")
		return errors.New("configuration is invalid")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, stopTracing, err := cli.StartTracing(ctx, "healthetl-etl", p, log)
	if err != nil {
		return err
	}
	defer stopTracing()

	rec, flush := cli.NewRecorder(p, log)
	defer flush()

	d, release, err := pipeline.Build(ctx, p, log, tp.Tracer(), rec)
	if err != nil {
		log.Error().Err(err).Msg("pipeline setup failed")
		return err
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn().Err(err).Msg("release run lock")
		}
	}()

	sum, err := d.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("pipeline failed")
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "loaded %d rows in %d batches (%s)\n",
		sum.RowsWritten, sum.Batches, sum.Elapsed.Truncate(time.Millisecond))
	return nil
}
