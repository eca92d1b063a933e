package xlsx

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/uhppoted/uhppoted-app-sheetsdb/table"
)

func workbook(t *testing.T, sheet string, rows [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.xlsx")
	f := excelize.NewFile()

	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("%v", err)
		}
	}

	if err := set(f, sheet, 0, 0, rows); err != nil {
		t.Fatalf("%v", err)
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("%v", err)
	}

	return path
}

func TestRead(t *testing.T) {
	path := workbook(t, "Empleados", [][]string{
		{"ID", "Name", "Valor", "DB"},
		{"1", "Alice", "50%", ""},
		{"2", "Bob"},
	})

	rows, err := Workbook{}.Read(context.Background(), path, "Empleados!A1:Z100")
	if err != nil {
		t.Fatalf("Unexpected error returned from Read (%v)", err)
	}

	expected := [][]string{
		{"ID", "Name", "Valor", "DB"},
		{"1", "Alice", "50%"},
		{"2", "Bob"},
	}

	if !reflect.DeepEqual(rows, expected) {
		t.Errorf("Incorrect rows\n   expected: %v\n   got:      %v", expected, rows)
	}
}

func TestReadWithRangeOffset(t *testing.T) {
	path := workbook(t, "Sheet1", [][]string{
		{"title"},
		{"", "ID", "Name", "Notes"},
		{"", "1", "Alice", "x"},
		{"", "2", "Bob", "y"},
	})

	rows, err := Workbook{}.Read(context.Background(), path, "B2:C3")
	if err != nil {
		t.Fatalf("Unexpected error returned from Read (%v)", err)
	}

	expected := [][]string{
		{"ID", "Name"},
		{"1", "Alice"},
	}

	if !reflect.DeepEqual(rows, expected) {
		t.Errorf("Incorrect rows\n   expected: %v\n   got:      %v", expected, rows)
	}
}

func TestReadWithUnknownSheet(t *testing.T) {
	path := workbook(t, "Sheet1", [][]string{{"ID"}})

	if _, err := (Workbook{}).Read(context.Background(), path, "Nope!A1:Z100"); err == nil {
		t.Fatalf("Expected error reading unknown worksheet")
	}
}

func TestWrite(t *testing.T) {
	path := workbook(t, "Empleados", [][]string{
		{"ID", "Name"},
		{"1", "Alice"},
	})

	cells := []table.Cell{
		{Address: "Empleados!C1", Value: "DB"},
		{Address: "Empleados!C2", Value: "1"},
	}

	if err := (Workbook{}).Write(context.Background(), path, cells); err != nil {
		t.Fatalf("Unexpected error returned from Write (%v)", err)
	}

	rows, err := Workbook{}.Read(context.Background(), path, "Empleados!A1:Z100")
	if err != nil {
		t.Fatalf("Unexpected error returned from Read (%v)", err)
	}

	expected := [][]string{{"ID", "Name", "DB"}, {"1", "Alice", "1"}}
	if !reflect.DeepEqual(rows, expected) {
		t.Errorf("Incorrect rows\n   expected: %v\n   got:      %v", expected, rows)
	}
}

func TestUpdateCreatesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.xlsx")
	rows := [][]string{{"ID", "Name"}, {"1", "Alice"}}

	if err := (Workbook{}).Update(context.Background(), path, "Data!A1", rows); err != nil {
		t.Fatalf("Unexpected error returned from Update (%v)", err)
	}

	got, err := Workbook{}.Read(context.Background(), path, "Data!A1:Z100")
	if err != nil {
		t.Fatalf("Unexpected error returned from Read (%v)", err)
	}

	if !reflect.DeepEqual(got, rows) {
		t.Errorf("Incorrect rows\n   expected: %v\n   got:      %v", rows, got)
	}
}

func TestAppendAndPrune(t *testing.T) {
	path := workbook(t, "Log", [][]string{
		{"Timestamp", "Run", "Outcome"},
		{"2024-01-01 10:00:00", "a", "success"},
	})

	log := [][]string{
		{"2024-03-01 10:00:00", "b", "success"},
		{"2024-01-15 10:00:00", "c", "error"},
	}

	if err := (Workbook{}).Append(context.Background(), path, "Log!A1:C", log); err != nil {
		t.Fatalf("Unexpected error returned from Append (%v)", err)
	}

	pruned, err := Workbook{}.Prune(context.Background(), path, "Log!A1:C", time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("Unexpected error returned from Prune (%v)", err)
	}

	if pruned != 2 {
		t.Errorf("Incorrect pruned count - expected %v, got %v", 2, pruned)
	}

	rows, err := Workbook{}.Read(context.Background(), path, "Log!A1:C")
	if err != nil {
		t.Fatalf("Unexpected error returned from Read (%v)", err)
	}

	expected := [][]string{
		{"Timestamp", "Run", "Outcome"},
		{"2024-03-01 10:00:00", "b", "success"},
	}

	if !reflect.DeepEqual(rows, expected) {
		t.Errorf("Incorrect rows\n   expected: %v\n   got:      %v", expected, rows)
	}
}
