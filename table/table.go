package table

import (
	"fmt"
	"strings"
)

// Table is a rectangular view of a worksheet range: one header row and zero or more
// records, each record exactly as long as the header.
type Table struct {
	Header  []string
	Records [][]string
}

// MakeTable builds a Table from the raw rows returned by a spreadsheet service. The first
// row is the header. Ragged data rows are padded with empty values or truncated to the
// header length.
func MakeTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return &Table{
			Header:  []string{},
			Records: [][]string{},
		}, nil
	}

	// ... header only
	if len(rows) < 2 {
		header := []string{}
		for _, v := range rows[0] {
			header = append(header, clean(v))
		}

		return &Table{
			Header:  header,
			Records: [][]string{},
		}, nil
	}

	// .. build index
	index := map[string]int{}
	header := make([]string, len(rows[0]))
	for i, v := range rows[0] {
		h := clean(v)
		k := normalise(h)
		if k == "" {
			return nil, fmt.Errorf("Missing/invalid column name in header row (column %v)", ColumnName(i))
		}

		if _, ok := index[k]; ok {
			return nil, fmt.Errorf("Duplicate column name '%s'", h)
		}

		index[k] = i
		header[i] = h
	}

	// ... records
	records := [][]string{}
	for _, row := range rows[1:] {
		record := make([]string, len(header))
		copy(record, row)

		records = append(records, record)
	}

	return &Table{
		Header:  header,
		Records: records,
	}, nil
}

// Find returns the index of the named column, matching names case-insensitively and
// ignoring leading and trailing spaces.
func (t *Table) Find(column string) (int, bool) {
	k := normalise(column)
	for i, h := range t.Header {
		if normalise(h) == k {
			return i, true
		}
	}

	return -1, false
}

// Ensure returns the index of the named column, appending it with blank values for
// every record if the header does not have it. The second return value is true if
// the column was appended.
func (t *Table) Ensure(column string) (int, bool) {
	if ix, ok := t.Find(column); ok {
		return ix, false
	}

	t.Header = append(t.Header, clean(column))
	for i := range t.Records {
		t.Records[i] = append(t.Records[i], "")
	}

	return len(t.Header) - 1, true
}

func clean(v string) string {
	return strings.TrimSpace(v)
}

func normalise(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
