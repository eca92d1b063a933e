package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uhppoted/uhppoted-app-sheetsdb/google"
	"github.com/uhppoted/uhppoted-app-sheetsdb/log"
	"github.com/uhppoted/uhppoted-app-sheetsdb/reconcile"
)

var logColumns = []string{"Timestamp", "Run", "Outcome", "Inserted", "Updated", "Unmatched", "Message"}

func summary(result *reconcile.Result) string {
	if result == nil {
		return "sync  outcome:error"
	}

	s := fmt.Sprintf("sync  run:%v  outcome:%v  inserted:%v  updated:%v  unmatched:%v",
		result.RunID,
		result.Outcome,
		result.Inserted,
		result.Updated,
		result.Unmatched)

	if result.Outcome != reconcile.Success && result.Message != "" {
		s += fmt.Sprintf("  %v", result.Message)
	}

	return s
}

// updateLogSheet appends a row for the sync pass to the log worksheet. The columns are
// matched to the log worksheet header, which is created if the worksheet is empty.
func updateLogSheet(ctx context.Context, sheet spreadsheet, id string, area string, result *reconcile.Result) error {
	index := map[string]int{}
	for i, h := range logColumns {
		index[normalise(h)] = i
	}

	rows, err := sheet.Read(ctx, id, area)
	if err != nil {
		return fmt.Errorf("Unable to retrieve column headers from log sheet (%w)", err)
	}

	add := [][]string{}
	if len(rows) == 0 || len(rows[0]) == 0 {
		add = append(add, logColumns)
	} else {
		index = map[string]int{}
		for i, v := range rows[0] {
			if k := normalise(v); k != "" {
				index[k] = i
			}
		}

		log.Debugf("log sheet column index: %v", index)
	}

	add = append(add, logRow(index, time.Now(), result))

	return sheet.Append(ctx, id, area, add)
}

func logRow(index map[string]int, timestamp time.Time, result *reconcile.Result) []string {
	columns := 0
	for _, v := range index {
		if v >= columns {
			columns = v + 1
		}
	}

	row := make([]string, columns)
	values := map[string]string{
		"timestamp": timestamp.Format(google.TimestampFormat),
		"run":       result.RunID,
		"outcome":   fmt.Sprintf("%v", result.Outcome),
		"inserted":  fmt.Sprintf("%v", result.Inserted),
		"updated":   fmt.Sprintf("%v", result.Updated),
		"unmatched": fmt.Sprintf("%v", result.Unmatched),
		"message":   result.Message,
	}

	for k, v := range values {
		if ix, ok := index[k]; ok {
			row[ix] = v
		}
	}

	return row
}

// pruneLogSheet deletes log worksheet rows older than the retention period, in days,
// counting today as the first day.
func pruneLogSheet(ctx context.Context, sheet spreadsheet, id string, area string, retention int) error {
	before := cutoff(time.Now(), retention)

	log.Debugf("pruning log records from before %v", before.Format("2006-01-02"))

	pruned, err := sheet.Prune(ctx, id, area, before)
	if err != nil {
		return err
	}

	log.Infof("pruned %d log records from log sheet", pruned)

	return nil
}

func cutoff(now time.Time, retention int) time.Time {
	before := now.In(time.Local).AddDate(0, 0, -(retention - 1))

	return time.Date(before.Year(), before.Month(), before.Day(), 0, 0, 0, 0, before.Location())
}

func normalise(v string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(v), " ", ""))
}
