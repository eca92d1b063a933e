package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/uhppoted/uhppoted-app-sheetsdb/table"
)

// Snapshot returns the current contents of the table. NULL values are returned as blank
// strings.
func (s *Store) Snapshot(ctx context.Context, name string) (*table.Table, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("missing table name")
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %v", identifier(strings.TrimSpace(name))))
	if err != nil {
		return nil, fmt.Errorf("error retrieving table %v (%w)", name, err)
	}

	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := [][]string{}
	for rows.Next() {
		values := make([]sql.NullString, len(header))
		pointers := make([]any, len(header))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		record := make([]string, len(header))
		for i, v := range values {
			if v.Valid {
				record[i] = v.String
			}
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &table.Table{
		Header:  header,
		Records: records,
	}, nil
}
