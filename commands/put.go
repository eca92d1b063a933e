package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uhppoted/uhppoted-app-sheetsdb/log"
	"github.com/uhppoted/uhppoted-app-sheetsdb/reconcile"
	"github.com/uhppoted/uhppoted-app-sheetsdb/table"
)

var PutCmd = Put{
	command: command{
		workdir: DEFAULT_WORKDIR,
	},
}

// Put uploads a TSV file to a worksheet, starting at the top left of the range.
type Put struct {
	command
	area string
	file string
}

func (cmd *Put) Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "put",
		Short: "Uploads a TSV file to a worksheet range",
		Example: `  uhppoted-app-sheetsdb put --credentials "credentials.json" \
                            --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \
                            --range "Empleados!A1" \
                            --file "empleados.tsv"`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Execute(c.Context())
		},
	}

	cmd.flags(c.Flags())

	c.Flags().StringVar(&cmd.area, "range", cmd.area, "Worksheet range e.g. 'Empleados!A1' [SHEETS_RANGE]")
	c.Flags().StringVar(&cmd.file, "file", cmd.file, "TSV file")

	return c
}

func (cmd *Put) Execute(ctx context.Context) error {
	area := env(cmd.area, "SHEETS_RANGE")

	if area == "" {
		return fmt.Errorf("%w: --range is a required option", reconcile.ErrConfigurationMissing)
	}

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("%w: --file is a required option", reconcile.ErrConfigurationMissing)
	}

	if _, err := table.ParseRange(area); err != nil {
		return fmt.Errorf("%w: %v", reconcile.ErrConfigurationInvalid, err)
	}

	f, err := os.Open(cmd.file)
	if err != nil {
		return err
	}

	defer f.Close()

	rows, err := tsvToRows(f)
	if err != nil {
		return fmt.Errorf("Invalid TSV file (%w)", err)
	}

	if _, err := table.MakeTable(rows); err != nil {
		return fmt.Errorf("Invalid TSV file (%w)", err)
	}

	sheet, id, err := cmd.spreadsheet(ctx)
	if err != nil {
		return err
	}

	if err := sheet.Update(ctx, id, area, rows); err != nil {
		return err
	}

	log.Infof("uploaded TSV file %v to %v", cmd.file, area)

	return nil
}
