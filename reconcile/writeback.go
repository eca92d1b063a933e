package reconcile

import (
	"github.com/uhppoted/uhppoted-app-sheetsdb/table"
)

// writeback stages the status marker cells for the given records, in record list order.
// If the status column was not in the worksheet the column header cell is staged first.
func writeback(origin table.Range, t *table.Table, status int, records []int, header bool) []table.Cell {
	cells := []table.Cell{}

	if header {
		cells = append(cells, table.Cell{
			Address: origin.Address(status, 0),
			Value:   t.Header[status],
		})
	}

	for _, ix := range records {
		cells = append(cells, table.Cell{
			Address: origin.Address(status, ix+1),
			Value:   Synced.String(),
		})
	}

	return cells
}
