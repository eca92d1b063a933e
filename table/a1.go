package table

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Cell is a single value staged for writing to a spreadsheet, addressed in A1 notation
// e.g. 'Employees!D2'.
type Cell struct {
	Address string
	Value   string
}

// Range is the origin of a worksheet range in A1 notation i.e. the optional sheet name
// and the top-left column and row.
type Range struct {
	Sheet  string
	Left   int
	Top    int
	Right  int
	Bottom int
}

var a1 = regexp.MustCompile(`^(?:(.+?)!)?([a-zA-Z]+)([0-9]+)(?::([a-zA-Z]+)([0-9]+)?)?$`)

// ParseRange parses an A1 notation range e.g. 'A1:Z100' or 'Employees!C3:H'. Column and row
// numbers are 0-based. An open-ended bottom is returned as -1, as is the right column of a
// single cell range.
func ParseRange(area string) (Range, error) {
	match := a1.FindStringSubmatch(strings.TrimSpace(area))
	if len(match) < 6 {
		return Range{}, fmt.Errorf("Invalid spreadsheet range '%s' - expected something like 'Sheet1!A1:Z100'", area)
	}

	top, err := strconv.Atoi(match[3])
	if err != nil || top < 1 {
		return Range{}, fmt.Errorf("Invalid spreadsheet range '%s'", area)
	}

	r := Range{
		Sheet:  match[1],
		Left:   ColumnIndex(match[2]),
		Top:    top - 1,
		Right:  -1,
		Bottom: -1,
	}

	if match[4] != "" {
		r.Right = ColumnIndex(match[4])
	}

	if match[5] != "" {
		if bottom, err := strconv.Atoi(match[5]); err != nil || bottom < top {
			return Range{}, fmt.Errorf("Invalid spreadsheet range '%s'", area)
		} else {
			r.Bottom = bottom - 1
		}
	}

	return r, nil
}

// Title returns the unquoted worksheet name.
func (r Range) Title() string {
	if len(r.Sheet) > 1 && strings.HasPrefix(r.Sheet, "'") && strings.HasSuffix(r.Sheet, "'") {
		return strings.ReplaceAll(r.Sheet[1:len(r.Sheet)-1], "''", "'")
	}

	return r.Sheet
}

// Address returns the A1 address of the cell at the 0-based column and row offsets from
// the range origin.
func (r Range) Address(column, row int) string {
	cell := fmt.Sprintf("%v%v", ColumnName(r.Left+column), r.Top+row+1)
	if r.Sheet != "" {
		return r.Sheet + "!" + cell
	}

	return cell
}

// ColumnName converts a 0-based column index to the spreadsheet column letters using
// bijective base-26 i.e. 0 => A, 25 => Z, 26 => AA, 701 => ZZ.
func ColumnName(index int) string {
	name := []byte{}
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		name = append([]byte{byte('A' + (n-1)%26)}, name...)
	}

	return string(name)
}

// ColumnIndex is the inverse of ColumnName. Letters are case insensitive.
func ColumnIndex(name string) int {
	index := 0
	for _, ch := range strings.ToUpper(name) {
		index = 26*index + int(ch-'A') + 1
	}

	return index - 1
}

// SplitAddress splits an A1 cell address into the sheet name (unquoted, blank if not
// specified) and cell.
func SplitAddress(address string) (string, string) {
	if ix := strings.LastIndex(address, "!"); ix >= 0 {
		r := Range{Sheet: address[:ix]}
		return r.Title(), address[ix+1:]
	}

	return "", address
}
