package reconcile

import (
	"fmt"
	"strings"
)

const (
	DefaultRange        = "A1:Z100"
	DefaultStatusColumn = "DB"
	DefaultIDColumn     = "ID"
)

// Config is the complete configuration for a sync pass. It is constructed once by the
// caller and never read from the environment by the pass itself.
type Config struct {
	Spreadsheet  string   // spreadsheet ID (Google Sheets) or workbook path (Excel)
	Range        string   // A1 range including the header row e.g. 'Employees!A1:Z100'
	Table        string   // target table, optionally schema qualified
	StatusColumn string   // status marker column, conventionally 'DB'
	IDColumn     string   // update key column, conventionally 'ID'
	Percentages  []string // columns with percentage formatted values e.g. 'Valor'
	Replace      bool     // clear the table and insert every row
	Previous     []byte   // digest of the range after the previous pass, if any
}

// Validate checks that all the required configuration is present, filling in defaults
// for the status and identifier columns and the range.
func (c *Config) Validate() error {
	missing := []string{}

	if strings.TrimSpace(c.Spreadsheet) == "" {
		missing = append(missing, "spreadsheet")
	}

	if strings.TrimSpace(c.Table) == "" {
		missing = append(missing, "table")
	}

	if len(missing) > 0 {
		return fail("config", ErrConfigurationMissing, fmt.Errorf("%v", strings.Join(missing, ", ")))
	}

	if strings.TrimSpace(c.Range) == "" {
		c.Range = DefaultRange
	}

	if strings.TrimSpace(c.StatusColumn) == "" {
		c.StatusColumn = DefaultStatusColumn
	}

	if strings.TrimSpace(c.IDColumn) == "" {
		c.IDColumn = DefaultIDColumn
	}

	return nil
}
