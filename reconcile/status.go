package reconcile

import (
	"strings"
)

// Status is the sync state of a worksheet row, as recorded in the status column.
type Status int

const (
	Unknown Status = iota
	Pending
	Synced
	NeedsUpdate
)

// ParseStatus decodes a status column value. Blank and '0' are Pending, '1' is Synced and
// '2' is NeedsUpdate. Values are trimmed and case-folded. Anything else is Unknown.
func ParseStatus(v string) Status {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0":
		return Pending

	case "1":
		return Synced

	case "2":
		return NeedsUpdate

	default:
		return Unknown
	}
}

// String returns the status column encoding of the status. Unknown encodes as a blank
// string.
func (s Status) String() string {
	switch s {
	case Pending:
		return "0"

	case Synced:
		return "1"

	case NeedsUpdate:
		return "2"

	default:
		return ""
	}
}
