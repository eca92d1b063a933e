// Package xlsx implements the spreadsheet service for a local Excel workbook, for running
// a sync pass without access to Google Sheets. The 'spreadsheet' is the workbook path.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/uhppoted/uhppoted-app-sheetsdb/log"
	"github.com/uhppoted/uhppoted-app-sheetsdb/table"
)

const TimestampFormat = "2006-01-02 15:04:05"

// Workbook reads and writes .xlsx files with excelize. Every call opens the workbook and
// changes are saved before returning.
type Workbook struct {
}

func (w Workbook) Read(ctx context.Context, path string, area string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	origin, err := table.ParseRange(area)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("Unable to open workbook %v (%w)", path, err)
	}

	defer f.Close()

	sheet, err := lookup(f, origin.Title())
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("Unable to retrieve data from sheet %v (%w)", sheet, err)
	}

	clipped := clip(rows, origin)

	log.Debugf("retrieved %v rows from %v", len(clipped), area)

	return clipped, nil
}

func (w Workbook) Write(ctx context.Context, path string, cells []table.Cell) error {
	if len(cells) == 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("Unable to open workbook %v (%w)", path, err)
	}

	defer f.Close()

	for _, cell := range cells {
		title, address := table.SplitAddress(cell.Address)

		sheet, err := lookup(f, title)
		if err != nil {
			return err
		}

		if err := f.SetCellValue(sheet, address, cell.Value); err != nil {
			return fmt.Errorf("Error updating cell %v (%w)", cell.Address, err)
		}
	}

	return f.Save()
}

// Update overwrites the range with the rows, creating the workbook and worksheet if
// necessary.
func (w Workbook) Update(ctx context.Context, path string, area string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	origin, err := table.ParseRange(area)
	if err != nil {
		return err
	}

	f, err := create(path)
	if err != nil {
		return err
	}

	defer f.Close()

	sheet, err := ensure(f, origin.Title())
	if err != nil {
		return err
	}

	if err := set(f, sheet, origin.Left, origin.Top, rows); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// Append writes the rows after the last row of the worksheet, or at the range origin if
// the worksheet is shorter than that.
func (w Workbook) Append(ctx context.Context, path string, area string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	origin, err := table.ParseRange(area)
	if err != nil {
		return err
	}

	f, err := create(path)
	if err != nil {
		return err
	}

	defer f.Close()

	sheet, err := ensure(f, origin.Title())
	if err != nil {
		return err
	}

	existing, err := f.GetRows(sheet)
	if err != nil {
		return err
	}

	top := origin.Top
	if len(existing) > top {
		top = len(existing)
	}

	if err := set(f, sheet, origin.Left, top, rows); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// Prune deletes the rows in the range with a timestamp in the first column that is before
// the cutoff. Returns the number of rows deleted.
func (w Workbook) Prune(ctx context.Context, path string, area string, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	origin, err := table.ParseRange(area)
	if err != nil {
		return 0, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("Unable to open workbook %v (%w)", path, err)
	}

	defer f.Close()

	sheet, err := lookup(f, origin.Title())
	if err != nil {
		return 0, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for row := len(rows) - 1; row >= origin.Top; row-- {
		if origin.Bottom >= 0 && row > origin.Bottom {
			continue
		}

		if origin.Left >= len(rows[row]) {
			continue
		}

		timestamp, err := time.ParseInLocation(TimestampFormat, strings.TrimSpace(rows[row][origin.Left]), time.Local)
		if err == nil && timestamp.Before(cutoff) {
			if err := f.RemoveRow(sheet, row+1); err != nil {
				return pruned, err
			}

			pruned++
		}
	}

	if pruned > 0 {
		if err := f.Save(); err != nil {
			return 0, err
		}
	}

	return pruned, nil
}

func clip(rows [][]string, r table.Range) [][]string {
	clipped := [][]string{}

	for i := r.Top; i < len(rows); i++ {
		if r.Bottom >= 0 && i > r.Bottom {
			break
		}

		row := []string{}
		if r.Left < len(rows[i]) {
			row = rows[i][r.Left:]
		}

		if r.Right >= 0 && len(row) > r.Right-r.Left+1 {
			row = row[:r.Right-r.Left+1]
		}

		clipped = append(clipped, append([]string{}, row...))
	}

	return clipped
}

func set(f *excelize.File, sheet string, left, top int, rows [][]string) error {
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(left+j+1, top+i+1)
			if err != nil {
				return err
			}

			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}

// lookup returns the worksheet name matching the title (case insensitive) or the first
// worksheet if the title is blank.
func lookup(f *excelize.File, title string) (string, error) {
	list := f.GetSheetList()

	if title == "" && len(list) > 0 {
		return list[0], nil
	}

	for _, sheet := range list {
		if strings.EqualFold(strings.TrimSpace(sheet), strings.TrimSpace(title)) {
			return sheet, nil
		}
	}

	return "", fmt.Errorf("Unable to identify worksheet '%s'", title)
}

func ensure(f *excelize.File, title string) (string, error) {
	if sheet, err := lookup(f, title); err == nil {
		return sheet, nil
	}

	if _, err := f.NewSheet(title); err != nil {
		return "", err
	}

	return title, nil
}

func create(path string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), nil
	} else if err != nil {
		return nil, fmt.Errorf("Unable to open workbook %v (%w)", path, err)
	}

	return f, nil
}
