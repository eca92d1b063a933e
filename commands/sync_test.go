package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/uhppoted/uhppoted-app-sheetsdb/reconcile"
	"github.com/uhppoted/uhppoted-app-sheetsdb/xlsx"
)

func setup(t *testing.T) (*Sync, string) {
	t.Helper()

	dir := t.TempDir()
	workbook := filepath.Join(dir, "empleados.xlsx")

	if err := (xlsx.Workbook{}).Update(context.Background(), workbook, "Empleados!A1", [][]string{
		{"ID", "Name", "Valor", "DB"},
		{"1", "Alice", "50%", ""},
		{"2", "Bob", "12,5%", "1"},
	}); err != nil {
		t.Fatalf("%v", err)
	}

	if err := (xlsx.Workbook{}).Update(context.Background(), workbook, "Log!A1", [][]string{logColumns}); err != nil {
		t.Fatalf("%v", err)
	}

	cmd := Sync{
		command: command{
			workdir:  dir,
			workbook: workbook,
		},
		area:         "Empleados!A1:Z100",
		driver:       "sqlite",
		dsn:          filepath.Join(dir, "hr.db"),
		table:        "empleados",
		statusColumn: reconcile.DefaultStatusColumn,
		idColumn:     reconcile.DefaultIDColumn,
		percentages:  []string{"Valor"},
		logRange:     "Log!A1:G",
		logRetention: 30,
		lockfile:     filepath.Join(dir, "sync.lock"),
		snapshot:     filepath.Join(dir, "snapshot.tsv"),
	}

	return &cmd, workbook
}

func TestSyncCommand(t *testing.T) {
	cmd, workbook := setup(t)

	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error returned from sync (%v)", err)
	}

	rows, err := xlsx.Workbook{}.Read(context.Background(), workbook, "Empleados!A1:Z100")
	if err != nil {
		t.Fatalf("%v", err)
	}

	expected := [][]string{
		{"ID", "Name", "Valor", "DB"},
		{"1", "Alice", "50%", "1"},
		{"2", "Bob", "12,5%", "1"},
	}

	if !reflect.DeepEqual(rows, expected) {
		t.Errorf("Incorrect worksheet\n   expected: %v\n   got:      %v", expected, rows)
	}

	snapshot, err := os.ReadFile(cmd.snapshot)
	if err != nil {
		t.Fatalf("Expected snapshot file (%v)", err)
	}

	if string(snapshot) != "id\tname\tvalor\tdb\n1\tAlice\t0.5\t1\n" {
		t.Errorf("Incorrect snapshot:\n%s", snapshot)
	}

	log, err := xlsx.Workbook{}.Read(context.Background(), workbook, "Log!A1:G")
	if err != nil {
		t.Fatalf("%v", err)
	}

	if len(log) != 2 {
		t.Fatalf("Expected header and 1 log row, got %v", log)
	}

	if log[1][2] != "success" || log[1][3] != "1" || log[1][4] != "0" {
		t.Errorf("Incorrect log row %v", log[1])
	}
}

func TestSyncCommandSkipUnchanged(t *testing.T) {
	cmd, _ := setup(t)

	cmd.skipUnchanged = true
	cmd.logRange = ""

	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error returned from sync (%v)", err)
	}

	matches, _ := filepath.Glob(filepath.Join(cmd.workdir, "*.digest"))
	if len(matches) != 1 {
		t.Fatalf("Expected 1 digest file, got %v", matches)
	}

	// ... an unchanged worksheet never touches the database
	cmd.dsn = filepath.Join(cmd.workdir, "missing", "hr.db")

	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error returned from sync of unchanged worksheet (%v)", err)
	}
}

func TestSyncCommandWithMissingDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")

	cmd, _ := setup(t)
	cmd.dsn = ""

	if err := cmd.Execute(context.Background()); !errors.Is(err, reconcile.ErrConfigurationMissing) {
		t.Errorf("Expected ErrConfigurationMissing, got %v", err)
	}
}

func TestSyncCommandWithEnvironment(t *testing.T) {
	cmd, _ := setup(t)

	t.Setenv("DB_TABLE", "personal")
	t.Setenv("SHEETS_RANGE", "Empleados!A1:D10")

	cmd.table = ""
	cmd.area = ""
	cmd.logRange = ""

	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error returned from sync (%v)", err)
	}

	show := Show{driver: "sqlite", dsn: cmd.dsn, table: "personal", file: filepath.Join(cmd.workdir, "personal.tsv")}
	if err := show.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error returned from show (%v)", err)
	}

	b, err := os.ReadFile(show.file)
	if err != nil {
		t.Fatalf("%v", err)
	}

	if string(b) != "id\tname\tvalor\tdb\n1\tAlice\t0.5\t1\n" {
		t.Errorf("Incorrect table:\n%s", b)
	}
}

func TestSummary(t *testing.T) {
	result := reconcile.Result{
		RunID:     "abc",
		Outcome:   reconcile.Success,
		Inserted:  1,
		Updated:   2,
		Unmatched: 3,
	}

	expected := "sync  run:abc  outcome:success  inserted:1  updated:2  unmatched:3"
	if s := summary(&result); s != expected {
		t.Errorf("Incorrect summary\n   expected: %v\n   got:      %v", expected, s)
	}
}

func TestLogRow(t *testing.T) {
	index := map[string]int{
		"outcome":   0,
		"timestamp": 2,
		"run":       3,
	}

	result := reconcile.Result{
		RunID:   "abc",
		Outcome: reconcile.PartialCommit,
	}

	expected := []string{"partial-commit", "", "2024-03-04 05:06:07", "abc"}
	if row := logRow(index, time.Date(2024, 3, 4, 5, 6, 7, 0, time.Local), &result); !reflect.DeepEqual(row, expected) {
		t.Errorf("Incorrect log row\n   expected: %v\n   got:      %v", expected, row)
	}
}

func TestCutoff(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.Local)
	expected := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)

	if c := cutoff(now, 10); !c.Equal(expected) {
		t.Errorf("Incorrect cutoff - expected %v, got %v", expected, c)
	}
}

func TestSpreadsheetID(t *testing.T) {
	id, err := spreadsheetID("https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit#gid=0")
	if err != nil {
		t.Fatalf("Unexpected error returned from spreadsheetID (%v)", err)
	}

	if id != "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" {
		t.Errorf("Incorrect spreadsheet ID %v", id)
	}

	if _, err := spreadsheetID("https://example.com/sheet"); !errors.Is(err, reconcile.ErrConfigurationInvalid) {
		t.Errorf("Expected ErrConfigurationInvalid, got %v", err)
	}
}

func TestDigestFile(t *testing.T) {
	p := reconcile.Config{Spreadsheet: "a", Range: "A1:Z100", Table: "t"}
	q := reconcile.Config{Spreadsheet: "a", Range: "A1:Z100", Table: "u"}

	if digestFile(p) == digestFile(q) {
		t.Errorf("Expected different digest files for different tables")
	}

	file := filepath.Join(t.TempDir(), digestFile(p))
	if err := storeDigest(file, []byte{0x01, 0xab}); err != nil {
		t.Fatalf("%v", err)
	}

	if digest := loadDigest(file); !reflect.DeepEqual(digest, []byte{0x01, 0xab}) {
		t.Errorf("Incorrect digest %v", digest)
	}
}
