// Package reconcile implements a single sync pass: the worksheet range is read and
// ingested, records are classified on the status column, inserts and updates are applied
// to the database in one transaction and the status column of every record written is
// then set to '1' in the worksheet.
package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/uhppoted/uhppoted-app-sheetsdb/db"
	"github.com/uhppoted/uhppoted-app-sheetsdb/log"
	"github.com/uhppoted/uhppoted-app-sheetsdb/table"
)

// Spreadsheet is the spreadsheet service: range reads returning rows of strings and
// batched cell writes.
type Spreadsheet interface {
	Read(ctx context.Context, spreadsheet string, area string) ([][]string, error)
	Write(ctx context.Context, spreadsheet string, cells []table.Cell) error
}

// Store is the target database.
type Store interface {
	Apply(ctx context.Context, changes db.Changeset) (db.Applied, error)
	Snapshot(ctx context.Context, table string) (*table.Table, error)
	Close() error
}

// Connect opens the target database. It is invoked at most once per pass and only once
// there is something to reconcile.
type Connect func(ctx context.Context) (Store, error)

// Sync runs a single sync pass. The returned Result is never nil. A pass that fails
// returns a Result with the Failed or PartialCommit outcome and a *PassError.
func Sync(ctx context.Context, cfg Config, sheet Spreadsheet, connect Connect) (*Result, error) {
	result := Result{
		RunID:   uuid.NewString(),
		Outcome: Failed,
	}

	failed := func(err error) (*Result, error) {
		result.Message = err.Error()
		if !errors.Is(err, ErrPartialCommit) {
			result.Outcome = Failed
		}

		log.Errorf("%v  %v", result.RunID, err)

		return &result, err
	}

	if err := cfg.Validate(); err != nil {
		return failed(err)
	}

	origin, err := table.ParseRange(cfg.Range)
	if err != nil {
		return failed(fail("config", ErrConfigurationInvalid, err))
	}

	log.Debugf("%v  sync %v  range:%v  table:%v", result.RunID, cfg.Spreadsheet, cfg.Range, cfg.Table)

	// ... ingest
	rows, err := sheet.Read(ctx, cfg.Spreadsheet, cfg.Range)
	if err != nil {
		return failed(fail("read", ErrService, err))
	}

	t, err := table.MakeTable(rows)
	if err != nil {
		return failed(fail("ingest", ErrSourceInvalid, err))
	}

	if len(t.Header) == 0 || len(t.Records) == 0 {
		result.Outcome = Empty
		result.Message = ErrSourceEmpty.Error()

		log.Infof("%v  %v", result.RunID, result.Message)

		return &result, nil
	}

	status, synthesised := t.Ensure(cfg.StatusColumn)
	if synthesised {
		if origin.Right >= 0 && origin.Left+status > origin.Right {
			err := fmt.Errorf("no '%v' column in range %v and no room to add one", cfg.StatusColumn, cfg.Range)
			return failed(fail("config", ErrConfigurationInvalid, err))
		}

		log.Infof("%v  no '%v' column in worksheet - all records will be inserted", result.RunID, cfg.StatusColumn)
	}

	if digest := Digest(t); cfg.Previous != nil && bytes.Equal(digest, cfg.Previous) {
		result.Outcome = Unchanged
		result.Message = "worksheet unchanged since last sync"
		result.Digest = digest
		result.Skipped = len(t.Records)

		log.Infof("%v  %v", result.RunID, result.Message)

		return &result, nil
	}

	raw := clone(t)

	t.NormalisePercentages(cfg.Percentages...)

	// ... classify
	var p Partition
	if cfg.Replace {
		p = replace(t)
	} else {
		p = Classify(t, status)
	}

	log.Infof("%v  records:%v  insert:%v  update:%v  unchanged:%v", result.RunID, len(t.Records), len(p.Insert), len(p.Update), len(p.Unchanged))

	// ... apply
	store, err := connect(ctx)
	if err != nil {
		return failed(fail("apply", ErrService, err))
	}

	defer store.Close()

	applied, err := store.Apply(ctx, changeset(cfg, t, status, p))
	if err != nil {
		return failed(fail("apply", ErrService, err))
	}

	result.Inserted = applied.Inserted
	result.Updated = applied.Updated
	result.Unmatched = applied.Unmatched
	result.Skipped = len(p.Unchanged)

	// ... write back
	records := []int{}
	for _, ix := range append(append([]int{}, p.Insert...), p.Update...) {
		if cfg.Replace && ParseStatus(raw.Records[ix][status]) == Synced {
			continue
		}

		records = append(records, ix)
	}

	cells := writeback(origin, t, status, records, synthesised)
	if len(cells) > 0 {
		if err := sheet.Write(ctx, cfg.Spreadsheet, cells); err != nil {
			result.Outcome = PartialCommit
			return failed(fail("writeback", ErrPartialCommit, err))
		}
	}

	result.Written = len(cells)

	for _, ix := range records {
		raw.Records[ix][status] = Synced.String()
	}

	result.Digest = Digest(raw)

	// ... report
	if snapshot, err := store.Snapshot(ctx, cfg.Table); err != nil {
		log.Warnf("%v  %v", result.RunID, fmt.Errorf("unable to retrieve %v snapshot (%w)", cfg.Table, err))
	} else {
		result.Snapshot = snapshot
	}

	result.Outcome = Success
	result.Message = fmt.Sprintf("inserted %v, updated %v", result.Inserted, result.Updated)

	log.Infof("%v  inserted:%v  updated:%v  unmatched:%v  written:%v", result.RunID, result.Inserted, result.Updated, result.Unmatched, result.Written)

	return &result, nil
}

func changeset(cfg Config, t *table.Table, status int, p Partition) db.Changeset {
	key := cfg.IDColumn
	if ix, ok := t.Find(cfg.IDColumn); ok {
		key = t.Header[ix]
	}

	changes := db.Changeset{
		Schema:  db.NewSchema(cfg.Table, t.Header),
		Key:     key,
		Status:  t.Header[status],
		Replace: cfg.Replace,
		Inserts: [][]string{},
		Updates: [][]string{},
	}

	for _, ix := range p.Insert {
		record := append([]string(nil), t.Records[ix]...)
		record[status] = Synced.String()

		changes.Inserts = append(changes.Inserts, record)
	}

	for _, ix := range p.Update {
		changes.Updates = append(changes.Updates, t.Records[ix])
	}

	return changes
}
