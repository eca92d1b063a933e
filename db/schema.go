package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Schema is the target table inferred from a worksheet header: the table name (optionally
// schema qualified e.g. 'public.empleados') and the lower-cased column names. Every column
// is TEXT.
type Schema struct {
	Table   string
	Columns []string
}

// NewSchema infers the target table schema from a worksheet header.
func NewSchema(name string, header []string) Schema {
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = column(h)
	}

	return Schema{
		Table:   strings.TrimSpace(name),
		Columns: columns,
	}
}

// Index returns the index of the named column.
func (s Schema) Index(name string) (int, bool) {
	k := column(name)
	for i, c := range s.Columns {
		if c == k {
			return i, true
		}
	}

	return -1, false
}

func (s Schema) validate() error {
	if s.Table == "" {
		return fmt.Errorf("missing table name")
	}

	if len(s.Columns) == 0 {
		return fmt.Errorf("table '%v' has no columns", s.Table)
	}

	return nil
}

func (s Schema) create() string {
	columns := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		columns[i] = fmt.Sprintf("%v TEXT", quote(c))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %v (%v)", identifier(s.Table), strings.Join(columns, ", "))
}

func column(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func identifier(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}

func quote(column string) string {
	return pgx.Identifier{column}.Sanitize()
}
