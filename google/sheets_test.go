package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/option"

	"github.com/uhppoted/uhppoted-app-sheetsdb/table"
)

type fake struct {
	sync.Mutex
	values   map[string]any
	requests map[string][]map[string]any
}

func (f *fake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.Lock()
	defer f.Unlock()

	path := r.URL.Path
	body := map[string]any{}

	if r.Method == http.MethodPost {
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &body)
	}

	reply := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/values:batchUpdate"):
		f.requests["values:batchUpdate"] = append(f.requests["values:batchUpdate"], body)
		reply(map[string]any{})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		body["insertDataOption"] = r.URL.Query().Get("insertDataOption")
		f.requests["append"] = append(f.requests["append"], body)
		reply(map[string]any{})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		f.requests["batchUpdate"] = append(f.requests["batchUpdate"], body)
		reply(map[string]any{})

	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		reply(f.values)

	case r.Method == http.MethodGet:
		reply(map[string]any{
			"spreadsheetId": "test",
			"sheets": []any{
				map[string]any{"properties": map[string]any{"sheetId": 17, "title": "Data"}},
				map[string]any{"properties": map[string]any{"sheetId": 23, "title": "Log"}},
			},
		})

	default:
		http.NotFound(w, r)
	}
}

func setup(t *testing.T, values [][]any) (*Sheets, *fake) {
	t.Helper()

	f := &fake{
		values:   map[string]any{"values": values},
		requests: map[string][]map[string]any{},
	}

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	s, err := NewSheets(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(http.DefaultClient))
	if err != nil {
		t.Fatalf("Unexpected error creating Sheets client (%v)", err)
	}

	return s, f
}

func TestRead(t *testing.T) {
	s, _ := setup(t, [][]any{
		{"ID", "Name", "Valor", "DB"},
		{"1", "Alice", "50%"},
		{2, "Bob"},
	})

	rows, err := s.Read(context.Background(), "test", "Data!A1:Z100")
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

func TestWrite(t *testing.T) {
	s, f := setup(t, nil)

	cells := []table.Cell{
		{Address: "Data!D2", Value: "1"},
		{Address: "Data!D4", Value: "1"},
	}

	if err := s.Write(context.Background(), "test", cells); err != nil {
		t.Fatalf("Unexpected error returned from Write (%v)", err)
	}

	requests := f.requests["values:batchUpdate"]
	if len(requests) != 1 {
		t.Fatalf("Expected 1 batch update request, got %v", len(requests))
	}

	if v := requests[0]["valueInputOption"]; v != "RAW" {
		t.Errorf("Incorrect value input option - expected %v, got %v", "RAW", v)
	}

	data := requests[0]["data"].([]any)
	if len(data) != 2 {
		t.Fatalf("Expected 2 value ranges, got %v", len(data))
	}

	for i, cell := range cells {
		vr := data[i].(map[string]any)
		if vr["range"] != cell.Address {
			t.Errorf("Incorrect range - expected %v, got %v", cell.Address, vr["range"])
		}

		if !reflect.DeepEqual(vr["values"], []any{[]any{"1"}}) {
			t.Errorf("Incorrect values for %v: %v", cell.Address, vr["values"])
		}
	}
}

func TestWriteWithNoCells(t *testing.T) {
	s, f := setup(t, nil)

	if err := s.Write(context.Background(), "test", nil); err != nil {
		t.Fatalf("Unexpected error returned from Write (%v)", err)
	}

	if len(f.requests) != 0 {
		t.Errorf("Expected no requests, got %v", f.requests)
	}
}

func TestAppend(t *testing.T) {
	s, f := setup(t, nil)

	if err := s.Append(context.Background(), "test", "Log!A1:G", [][]string{{"2024-01-02 03:04:05", "abc", "success"}}); err != nil {
		t.Fatalf("Unexpected error returned from Append (%v)", err)
	}

	requests := f.requests["append"]
	if len(requests) != 1 {
		t.Fatalf("Expected 1 append request, got %v", len(requests))
	}

	if requests[0]["insertDataOption"] != "INSERT_ROWS" {
		t.Errorf("Incorrect insert data option: %v", requests[0]["insertDataOption"])
	}

	expected := []any{[]any{"2024-01-02 03:04:05", "abc", "success"}}
	if !reflect.DeepEqual(requests[0]["values"], expected) {
		t.Errorf("Incorrect values\n   expected: %v\n   got:      %v", expected, requests[0]["values"])
	}
}

func TestPrune(t *testing.T) {
	s, f := setup(t, [][]any{
		{"Timestamp", "Run", "Outcome"},
		{"2024-01-01 10:00:00", "a", "success"},
		{"2024-01-02 10:00:00", "b", "success"},
		{"2024-03-01 10:00:00", "c", "success"},
		{"2024-01-03 10:00:00", "d", "error"},
	})

	cutoff := time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)

	pruned, err := s.Prune(context.Background(), "test", "Log!A1:G", cutoff)
	if err != nil {
		t.Fatalf("Unexpected error returned from Prune (%v)", err)
	}

	if pruned != 3 {
		t.Errorf("Incorrect pruned count - expected %v, got %v", 3, pruned)
	}

	requests := f.requests["batchUpdate"]
	if len(requests) != 1 {
		t.Fatalf("Expected 1 batch update request, got %v", len(requests))
	}

	list := requests[0]["requests"].([]any)
	if len(list) != 2 {
		t.Fatalf("Expected 2 delete requests, got %v", len(list))
	}

	expected := [][3]float64{{23, 4, 5}, {23, 1, 3}}
	for i, rq := range list {
		r := rq.(map[string]any)["deleteDimension"].(map[string]any)["range"].(map[string]any)
		got := [3]float64{r["sheetId"].(float64), r["startIndex"].(float64), r["endIndex"].(float64)}

		if got != expected[i] {
			t.Errorf("Incorrect delete range %v - expected %v, got %v", i, expected[i], got)
		}
	}
}

func TestPruneWithNothingToDelete(t *testing.T) {
	s, f := setup(t, [][]any{
		{"Timestamp"},
		{"2024-03-01 10:00:00"},
	})

	pruned, err := s.Prune(context.Background(), "test", "Log!A1:G", time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("Unexpected error returned from Prune (%v)", err)
	}

	if pruned != 0 || len(f.requests["batchUpdate"]) != 0 {
		t.Errorf("Expected nothing pruned, got %v %v", pruned, f.requests)
	}
}

func TestContiguous(t *testing.T) {
	expected := [][2]int{{9, 9}, {5, 7}, {1, 2}}

	if ranges := contiguous([]int{7, 1, 5, 2, 6, 9}); !reflect.DeepEqual(ranges, expected) {
		t.Errorf("Incorrect ranges\n   expected: %v\n   got:      %v", expected, ranges)
	}
}
