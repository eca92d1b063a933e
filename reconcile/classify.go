package reconcile

import (
	"github.com/uhppoted/uhppoted-app-sheetsdb/table"
)

// Partition holds the indices of the table records to be inserted, updated and left
// unchanged. Each list preserves the table record order and every record is in exactly
// one list.
type Partition struct {
	Insert    []int
	Update    []int
	Unchanged []int
}

// Classify partitions the table records on the value of the status column.
func Classify(t *table.Table, status int) Partition {
	p := Partition{
		Insert:    []int{},
		Update:    []int{},
		Unchanged: []int{},
	}

	for i, record := range t.Records {
		v := ""
		if status >= 0 && status < len(record) {
			v = record[status]
		}

		switch ParseStatus(v) {
		case Pending:
			p.Insert = append(p.Insert, i)

		case NeedsUpdate:
			p.Update = append(p.Update, i)

		default:
			p.Unchanged = append(p.Unchanged, i)
		}
	}

	return p
}

// replace partitions the table for a full refresh: every record is inserted.
func replace(t *table.Table) Partition {
	p := Partition{
		Insert:    make([]int, len(t.Records)),
		Update:    []int{},
		Unchanged: []int{},
	}

	for i := range t.Records {
		p.Insert[i] = i
	}

	return p
}
