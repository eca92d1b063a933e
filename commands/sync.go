package commands

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zeebo/blake3"

	"github.com/uhppoted/uhppoted-app-sheetsdb/db"
	"github.com/uhppoted/uhppoted-app-sheetsdb/lock"
	"github.com/uhppoted/uhppoted-app-sheetsdb/log"
	"github.com/uhppoted/uhppoted-app-sheetsdb/reconcile"
)

var SyncCmd = Sync{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: "",
		url:         "",
	},

	area:         "",
	driver:       "",
	dsn:          "",
	table:        "",
	statusColumn: reconcile.DefaultStatusColumn,
	idColumn:     reconcile.DefaultIDColumn,
	percentages:  []string{},
	logRetention: 30,
}

// Sync runs a single sync pass from a worksheet to a database table.
type Sync struct {
	command
	area          string
	driver        string
	dsn           string
	table         string
	statusColumn  string
	idColumn      string
	percentages   []string
	replace       bool
	skipUnchanged bool
	logRange      string
	logRetention  int
	lockfile      string
	snapshot      string
}

func (cmd *Sync) Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "sync",
		Short: "Synchronises a Google Sheets worksheet with a database table",
		Long: `Reads the worksheet range, inserts rows with a blank or '0' status into the database table,
updates rows with a '2' status and then marks the rows written with a '1' status.`,
		Example: `  uhppoted-app-sheetsdb sync --credentials credentials.json \
                             --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \
                             --range "Empleados!A1:Z100" \
                             --driver pgx --dsn "postgres://sync@localhost/hr" --table empleados \
                             --percentages Valor`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Execute(c.Context())
		},
	}

	cmd.flags(c.Flags())

	c.Flags().StringVar(&cmd.area, "range", cmd.area, "Worksheet range, including the header row e.g. 'Empleados!A1:Z100' [SHEETS_RANGE]")
	c.Flags().StringVar(&cmd.driver, "driver", cmd.driver, "Database driver ('pgx' or 'sqlite') [DB_DRIVER]")
	c.Flags().StringVar(&cmd.dsn, "dsn", cmd.dsn, "Database connection string [DB_DSN]")
	c.Flags().StringVar(&cmd.table, "table", cmd.table, "Database table, optionally schema qualified [DB_TABLE]")
	c.Flags().StringVar(&cmd.statusColumn, "status-column", cmd.statusColumn, "Worksheet status column")
	c.Flags().StringVar(&cmd.idColumn, "id-column", cmd.idColumn, "Worksheet identifier column used to match updated rows")
	c.Flags().StringSliceVar(&cmd.percentages, "percentages", cmd.percentages, "Columns with percentage values to store as fractions")
	c.Flags().BoolVar(&cmd.replace, "replace", cmd.replace, "Replaces the table contents with every worksheet row")
	c.Flags().BoolVar(&cmd.skipUnchanged, "skip-unchanged", cmd.skipUnchanged, "Skips the database if the worksheet is unchanged since the last sync")
	c.Flags().StringVar(&cmd.logRange, "log-range", cmd.logRange, "Worksheet range for the sync log e.g. 'Log!A1:G'")
	c.Flags().IntVar(&cmd.logRetention, "log-retention", cmd.logRetention, "Days to keep sync log entries")
	c.Flags().StringVar(&cmd.lockfile, "lockfile", cmd.lockfile, "Lockfile that prevents overlapping syncs")
	c.Flags().StringVar(&cmd.snapshot, "snapshot", cmd.snapshot, "TSV file for the table contents after a sync")

	return c
}

func (cmd *Sync) Execute(ctx context.Context) error {
	driver := env(cmd.driver, "DB_DRIVER")
	dsn := env(cmd.dsn, "DB_DSN")

	if driver == "" {
		driver = "pgx"
	}

	if dsn == "" {
		return fmt.Errorf("%w: --dsn is a required option", reconcile.ErrConfigurationMissing)
	}

	if cmd.lockfile != "" {
		l, err := lock.Acquire(cmd.lockfile)
		if err != nil {
			return err
		}

		defer l.Release()
	}

	sheet, id, err := cmd.spreadsheet(ctx)
	if err != nil {
		return err
	}

	cfg := reconcile.Config{
		Spreadsheet:  id,
		Range:        env(cmd.area, "SHEETS_RANGE"),
		Table:        env(cmd.table, "DB_TABLE"),
		StatusColumn: cmd.statusColumn,
		IDColumn:     cmd.idColumn,
		Percentages:  cmd.percentages,
		Replace:      cmd.replace,
	}

	if cfg.Range == "" {
		cfg.Range = reconcile.DefaultRange
	}

	digest := filepath.Join(cmd.workdir, digestFile(cfg))

	if cmd.skipUnchanged {
		cfg.Previous = loadDigest(digest)
	}

	connect := func(ctx context.Context) (reconcile.Store, error) {
		store, err := db.Open(ctx, driver, dsn)
		if err != nil {
			return nil, err
		}

		return store, nil
	}

	result, err := reconcile.Sync(ctx, cfg, sheet, connect)

	log.Infof("%v", summary(result))

	if cmd.skipUnchanged && (result.Outcome == reconcile.Success || result.Outcome == reconcile.Unchanged) {
		if err := storeDigest(digest, result.Digest); err != nil {
			log.Warnf("unable to save worksheet digest (%v)", err)
		}
	}

	if cmd.snapshot != "" && result.Snapshot != nil {
		if err := save(cmd.snapshot, func(w io.Writer) error { return tableToTSV(w, result.Snapshot) }); err != nil {
			log.Warnf("unable to save table snapshot to %v (%v)", cmd.snapshot, err)
		} else {
			log.Infof("saved %v snapshot to %v", cfg.Table, cmd.snapshot)
		}
	}

	if cmd.logRange != "" {
		if err := updateLogSheet(ctx, sheet, id, cmd.logRange, result); err != nil {
			log.Warnf("unable to update log worksheet (%v)", err)
		} else if cmd.logRetention > 0 {
			if err := pruneLogSheet(ctx, sheet, id, cmd.logRange, cmd.logRetention); err != nil {
				log.Warnf("unable to prune log worksheet (%v)", err)
			}
		}
	}

	return err
}

// digestFile names the digest file for a spreadsheet/range/table combination.
func digestFile(cfg reconcile.Config) string {
	key := strings.Join([]string{cfg.Spreadsheet, cfg.Range, cfg.Table}, "\x1f")
	hash := blake3.Sum256([]byte(key))

	return fmt.Sprintf("%x.digest", hash[:8])
}

func loadDigest(file string) []byte {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil
	}

	digest, err := hex.DecodeString(strings.TrimSpace(string(b)))
	if err != nil {
		log.Warnf("ignoring invalid worksheet digest in %v", file)
		return nil
	}

	return digest
}

func storeDigest(file string, digest []byte) error {
	if len(digest) == 0 {
		return nil
	}

	return save(file, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%x\n", digest)
		return err
	})
}
