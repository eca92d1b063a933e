package reconcile

import (
	"github.com/zeebo/blake3"

	"github.com/uhppoted/uhppoted-app-sheetsdb/table"
)

// Digest returns a BLAKE3 hash of the table header and records.
func Digest(t *table.Table) []byte {
	h := blake3.New()

	write := func(row []string) {
		for _, v := range row {
			h.Write([]byte(v))
			h.Write([]byte{0x1f})
		}

		h.Write([]byte{0x1e})
	}

	write(t.Header)
	for _, record := range t.Records {
		write(record)
	}

	return h.Sum(nil)
}

func clone(t *table.Table) *table.Table {
	records := make([][]string, len(t.Records))
	for i, record := range t.Records {
		records[i] = append([]string(nil), record...)
	}

	return &table.Table{
		Header:  append([]string(nil), t.Header...),
		Records: records,
	}
}
