// Command seeddoctors creates and fills the doctors reference table.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"healthetl/internal/cli"
	"healthetl/internal/reference"
	"healthetl/internal/schema"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "seeddoctors",
		Short:        "Seed the doctors table joined by the reports",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         seed,
	}
	cli.StorageFlags(cmd)
	cmd.Flags().String("file", "", "doctors CSV (doctor_name,specialty); built-in list when empty")
	return cmd
}

func seed(cmd *cobra.Command, _ []string) error {
	env, err := cli.Setup(cmd, "seeddoctors")
	if err != nil {
		return err
	}
	defer env.Close()
	p, log := env.Pipeline, env.Log

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doctors := reference.DefaultDoctors
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		if doctors, err = reference.LoadFile(path); err != nil {
			log.Error().Err(err).Msg("load doctors file")
			return err
		}
	}
	kind, dsn := p.Storage.Kind, p.Storage.DB.DSN
	db, err := reference.Open(ctx, kind, dsn, log)
	if err != nil {
		log.Error().Err(err).Str("dsn", dsn).Msg("open store failed")
		return err
	}
	defer reference.Close(db)
	log.Info().Str("storage", kind).Msg("connected to database")

	n, err := reference.Seed(ctx, db, doctors)
	if err != nil {
		log.Error().Err(err).Msg("seed failed")
		return err
	}
	log.Info().Int64("inserted", n).Int("offered", len(doctors)).Msg("doctors seeded")

	all, err := reference.List(ctx, db)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Inserted %d records into %s table.\n\n", n, schema.DoctorsTable)
	reference.Render(out, all)
	return nil
}
