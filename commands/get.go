package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/uhppoted/uhppoted-app-sheetsdb/log"
	"github.com/uhppoted/uhppoted-app-sheetsdb/reconcile"
	"github.com/uhppoted/uhppoted-app-sheetsdb/table"
)

var GetCmd = Get{
	command: command{
		workdir: DEFAULT_WORKDIR,
	},

	area: "",
	file: time.Now().Format("2006-01-02T150405.tsv"),
}

// Get downloads a worksheet range to a TSV file.
type Get struct {
	command
	area string
	file string
}

func (cmd *Get) Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "get",
		Short: "Downloads a worksheet range to a TSV file",
		Example: `  uhppoted-app-sheetsdb --debug get --credentials "credentials.json" \
                                    --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \
                                    --range "Empleados!A1:Z" \
                                    --file "empleados.tsv"`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Execute(c.Context())
		},
	}

	cmd.flags(c.Flags())

	c.Flags().StringVar(&cmd.area, "range", cmd.area, "Worksheet range e.g. 'Empleados!A1:Z' [SHEETS_RANGE]")
	c.Flags().StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to '<yyyy-mm-ddTHHmmss>.tsv'")

	return c
}

func (cmd *Get) Execute(ctx context.Context) error {
	area := env(cmd.area, "SHEETS_RANGE")

	if area == "" {
		return fmt.Errorf("%w: --range is a required option", reconcile.ErrConfigurationMissing)
	}

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("%w: --file is a required option", reconcile.ErrConfigurationMissing)
	}

	sheet, id, err := cmd.spreadsheet(ctx)
	if err != nil {
		return err
	}

	log.Debugf("spreadsheet:%s  range:%s", id, area)

	rows, err := sheet.Read(ctx, id, area)
	if err != nil {
		return err
	}

	t, err := table.MakeTable(rows)
	if err != nil {
		return err
	} else if len(t.Header) == 0 {
		return reconcile.ErrSourceEmpty
	}

	if err := save(cmd.file, func(w io.Writer) error { return tableToTSV(w, t) }); err != nil {
		return fmt.Errorf("error creating TSV file (%w)", err)
	}

	log.Infof("retrieved %v records from %v to file %s", len(t.Records), area, cmd.file)

	return nil
}
