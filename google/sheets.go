// Package google implements the Google Sheets spreadsheet service used by a sync pass, plus
// the OAuth2 and service account authorisation for it.
package google

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/uhppoted/uhppoted-app-sheetsdb/log"
	"github.com/uhppoted/uhppoted-app-sheetsdb/table"
)

const TimestampFormat = "2006-01-02 15:04:05"

// Sheets wraps the Google Sheets v4 service.
type Sheets struct {
	service *sheets.Service
}

// NewSheets creates a Sheets client. Typically the options include an authorised HTTP
// client from Client.
func NewSheets(ctx context.Context, opts ...option.ClientOption) (*Sheets, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("Unable to create new Sheets client (%w)", err)
	}

	return &Sheets{
		service: service,
	}, nil
}

// Read retrieves the formatted cell values for a range. Trailing empty rows and cells are
// omitted by the service.
func (s *Sheets) Read(ctx context.Context, spreadsheet string, area string) ([][]string, error) {
	response, err := s.service.Spreadsheets.Values.Get(spreadsheet, area).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("Unable to retrieve data from sheet (%w)", err)
	}

	rows := make([][]string, len(response.Values))
	for i, row := range response.Values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			rows[i][j] = fmt.Sprintf("%v", v)
		}
	}

	log.Debugf("retrieved %v rows from %v", len(rows), area)

	return rows, nil
}

// Write updates the cells as a single batch request. Values are written as is.
func (s *Sheets) Write(ctx context.Context, spreadsheet string, cells []table.Cell) error {
	if len(cells) == 0 {
		return nil
	}

	rq := sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             []*sheets.ValueRange{},
	}

	for _, cell := range cells {
		rq.Data = append(rq.Data, &sheets.ValueRange{
			Range:  cell.Address,
			Values: [][]any{{cell.Value}},
		})
	}

	if _, err := s.service.Spreadsheets.Values.BatchUpdate(spreadsheet, &rq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("Error writing to Google Sheets (%w)", err)
	}

	return nil
}

// Update overwrites a range with rows of values, parsed as if typed into the sheet.
func (s *Sheets) Update(ctx context.Context, spreadsheet string, area string, rows [][]string) error {
	rq := sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data: []*sheets.ValueRange{
			{
				Range:  area,
				Values: values(rows),
			},
		},
	}

	if _, err := s.service.Spreadsheets.Values.BatchUpdate(spreadsheet, &rq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("Error writing to Google Sheets (%w)", err)
	}

	return nil
}

// Append adds rows after the last row of the table in the range.
func (s *Sheets) Append(ctx context.Context, spreadsheet string, area string, rows [][]string) error {
	vr := sheets.ValueRange{
		Values: values(rows),
	}

	if _, err := s.service.Spreadsheets.Values.Append(spreadsheet, area, &vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("Error appending to Google Sheets (%w)", err)
	}

	return nil
}

// Prune deletes the rows in the range with a timestamp in the first column that is before
// the cutoff. Returns the number of rows deleted.
func (s *Sheets) Prune(ctx context.Context, spreadsheet string, area string, cutoff time.Time) (int, error) {
	origin, err := table.ParseRange(area)
	if err != nil {
		return 0, err
	}

	response, err := s.service.Spreadsheets.Get(spreadsheet).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("Failed to fetch spreadsheet (%w)", err)
	}

	sheet, err := getSheet(response, origin.Title())
	if err != nil {
		return 0, err
	}

	rows, err := s.Read(ctx, spreadsheet, area)
	if err != nil {
		return 0, err
	}

	list := []int{}
	for row, record := range rows {
		if len(record) > 0 {
			timestamp, err := time.ParseInLocation(TimestampFormat, strings.TrimSpace(record[0]), time.Local)
			if err == nil && timestamp.Before(cutoff) {
				list = append(list, origin.Top+row)
			}
		}
	}

	if len(list) == 0 {
		return 0, nil
	}

	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{},
	}

	// ... delete from the bottom up so that row indices remain valid
	for _, r := range contiguous(list) {
		rq.Requests = append(rq.Requests, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheet.Properties.SheetId,
					Dimension:  "ROWS",
					StartIndex: int64(r[0]),
					EndIndex:   int64(r[1] + 1),
				},
			},
		})
	}

	if _, err := s.service.Spreadsheets.BatchUpdate(spreadsheet, &rq).Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("Error pruning Google Sheets (%w)", err)
	}

	return len(list), nil
}

func getSheet(spreadsheet *sheets.Spreadsheet, title string) (*sheets.Sheet, error) {
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties == nil {
			continue
		}

		if title == "" || strings.EqualFold(strings.TrimSpace(sheet.Properties.Title), strings.TrimSpace(title)) {
			return sheet, nil
		}
	}

	return nil, fmt.Errorf("Unable to identify worksheet '%s'", title)
}

// contiguous groups a list of row indices into [start,end] runs, ordered last run first.
func contiguous(list []int) [][2]int {
	sort.Ints(list)

	ranges := [][2]int{}
	start := list[0]
	last := list[0]

	for _, row := range list[1:] {
		if row != last+1 {
			ranges = append(ranges, [2]int{start, last})
			start = row
		}

		last = row
	}

	ranges = append(ranges, [2]int{start, last})

	sort.Slice(ranges, func(i, j int) bool { return ranges[i][0] > ranges[j][0] })

	return ranges
}

func values(rows [][]string) [][]any {
	list := make([][]any, len(rows))
	for i, row := range rows {
		list[i] = make([]any, len(row))
		for j, v := range row {
			list[i][j] = v
		}
	}

	return list
}
