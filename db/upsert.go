package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/uhppoted/uhppoted-app-sheetsdb/log"
)

// Changeset is the set of row writes for a single sync pass. Insert and update records
// are aligned with the schema columns. Updates are keyed on the Key column and never
// modify the Key or Status columns.
type Changeset struct {
	Schema  Schema
	Key     string
	Status  string
	Replace bool
	Inserts [][]string
	Updates [][]string
}

// Applied summarises a committed changeset. Unmatched counts the updates that did not
// modify any stored row, either because the key matched nothing or because the record
// had no key.
type Applied struct {
	Inserted  int
	Updated   int
	Unmatched int
}

// Apply creates the target table if it does not exist and executes the changeset as a
// single transaction. Any failure rolls back every statement in the changeset.
func (s *Store) Apply(ctx context.Context, changes Changeset) (Applied, error) {
	if err := changes.Schema.validate(); err != nil {
		return Applied{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Applied{}, fmt.Errorf("error starting transaction (%w)", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, changes.Schema.create()); err != nil {
		return Applied{}, fmt.Errorf("error creating table %v (%w)", changes.Schema.Table, err)
	}

	if changes.Replace {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %v", identifier(changes.Schema.Table))); err != nil {
			return Applied{}, fmt.Errorf("error clearing table %v (%w)", changes.Schema.Table, err)
		}
	}

	applied := Applied{}

	if applied.Inserted, err = s.insert(ctx, tx, changes); err != nil {
		return Applied{}, err
	}

	if applied.Updated, applied.Unmatched, err = s.update(ctx, tx, changes); err != nil {
		return Applied{}, err
	}

	if err := tx.Commit(); err != nil {
		return Applied{}, fmt.Errorf("error committing changes to %v (%w)", changes.Schema.Table, err)
	}

	committed = true

	return applied, nil
}

func (s *Store) insert(ctx context.Context, tx *sql.Tx, changes Changeset) (int, error) {
	if len(changes.Inserts) == 0 {
		return 0, nil
	}

	columns := make([]string, len(changes.Schema.Columns))
	for i, c := range changes.Schema.Columns {
		columns[i] = quote(c)
	}

	statement := fmt.Sprintf("INSERT INTO %v (%v) VALUES (%v)",
		identifier(changes.Schema.Table),
		strings.Join(columns, ", "),
		strings.Join(s.placeholders(1, len(columns)), ", "))

	log.Debugf("%v", statement)

	count := 0
	for i, record := range changes.Inserts {
		if len(record) != len(columns) {
			return 0, fmt.Errorf("insert record %v has %v values, expected %v", i+1, len(record), len(columns))
		}

		if _, err := tx.ExecContext(ctx, statement, args(record)...); err != nil {
			return 0, fmt.Errorf("error inserting record %v into %v (%w)", i+1, changes.Schema.Table, err)
		}

		count++
	}

	return count, nil
}

func (s *Store) update(ctx context.Context, tx *sql.Tx, changes Changeset) (int, int, error) {
	if len(changes.Updates) == 0 {
		return 0, 0, nil
	}

	key, ok := changes.Schema.Index(changes.Key)
	if !ok {
		log.Warnf("table %v has no '%v' column - %v updates ignored", changes.Schema.Table, changes.Key, len(changes.Updates))
		return 0, len(changes.Updates), nil
	}

	status, ok := changes.Schema.Index(changes.Status)
	if !ok {
		status = -1
	}

	index := []int{}
	set := []string{}
	for i, c := range changes.Schema.Columns {
		if i != key && i != status {
			index = append(index, i)
			set = append(set, fmt.Sprintf("%v = %v", quote(c), s.dialect.placeholder(len(set)+1)))
		}
	}

	if len(set) == 0 {
		log.Warnf("table %v has no updatable columns - %v updates ignored", changes.Schema.Table, len(changes.Updates))
		return 0, len(changes.Updates), nil
	}

	statement := fmt.Sprintf("UPDATE %v SET %v WHERE %v = %v",
		identifier(changes.Schema.Table),
		strings.Join(set, ", "),
		quote(changes.Schema.Columns[key]),
		s.dialect.placeholder(len(set)+1))

	log.Debugf("%v", statement)

	updated := 0
	unmatched := 0
	for i, record := range changes.Updates {
		if len(record) != len(changes.Schema.Columns) {
			return 0, 0, fmt.Errorf("update record %v has %v values, expected %v", i+1, len(record), len(changes.Schema.Columns))
		}

		id := record[key]
		if strings.TrimSpace(id) == "" {
			log.Warnf("update record %v has no '%v' value - ignored", i+1, changes.Key)
			unmatched++
			continue
		}

		values := []any{}
		for _, ix := range index {
			values = append(values, record[ix])
		}

		values = append(values, id)

		result, err := tx.ExecContext(ctx, statement, values...)
		if err != nil {
			return 0, 0, fmt.Errorf("error updating %v '%v' in %v (%w)", changes.Key, id, changes.Schema.Table, err)
		}

		if rows, err := result.RowsAffected(); err != nil {
			return 0, 0, err
		} else if rows == 0 {
			log.Warnf("no stored row with %v '%v' - update had no effect", changes.Key, id)
			unmatched++
		} else {
			updated++
		}
	}

	return updated, unmatched, nil
}

func args(record []string) []any {
	list := make([]any, len(record))
	for i, v := range record {
		list[i] = v
	}

	return list
}
