package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/uhppoted/uhppoted-app-sheetsdb/db"
	"github.com/uhppoted/uhppoted-app-sheetsdb/reconcile"
)

var ShowCmd = Show{}

// Show prints the current contents of the database table as TSV.
type Show struct {
	driver string
	dsn    string
	table  string
	file   string
	out    io.Writer
}

func (cmd *Show) Command() *cobra.Command {
	c := &cobra.Command{
		Use:     "show",
		Short:   "Displays the contents of the database table",
		Example: `  uhppoted-app-sheetsdb show --driver sqlite --dsn hr.db --table empleados`,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cmd.out = c.OutOrStdout()
			return cmd.Execute(c.Context())
		},
	}

	c.Flags().StringVar(&cmd.driver, "driver", cmd.driver, "Database driver ('pgx' or 'sqlite') [DB_DRIVER]")
	c.Flags().StringVar(&cmd.dsn, "dsn", cmd.dsn, "Database connection string [DB_DSN]")
	c.Flags().StringVar(&cmd.table, "table", cmd.table, "Database table, optionally schema qualified [DB_TABLE]")
	c.Flags().StringVar(&cmd.file, "file", cmd.file, "TSV file for the table contents. Defaults to the console")

	return c
}

func (cmd *Show) Execute(ctx context.Context) error {
	driver := env(cmd.driver, "DB_DRIVER")
	dsn := env(cmd.dsn, "DB_DSN")
	table := env(cmd.table, "DB_TABLE")

	if driver == "" {
		driver = "pgx"
	}

	if dsn == "" {
		return fmt.Errorf("%w: --dsn is a required option", reconcile.ErrConfigurationMissing)
	}

	if table == "" {
		return fmt.Errorf("%w: --table is a required option", reconcile.ErrConfigurationMissing)
	}

	store, err := db.Open(ctx, driver, dsn)
	if err != nil {
		return err
	}

	defer store.Close()

	snapshot, err := store.Snapshot(ctx, table)
	if err != nil {
		return err
	}

	if cmd.file != "" {
		return save(cmd.file, func(w io.Writer) error { return tableToTSV(w, snapshot) })
	}

	out := cmd.out
	if out == nil {
		out = os.Stdout
	}

	return tableToTSV(out, snapshot)
}
