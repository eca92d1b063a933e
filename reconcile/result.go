package reconcile

import (
	"github.com/uhppoted/uhppoted-app-sheetsdb/table"
)

// Outcome is the overall result of a sync pass.
type Outcome int

const (
	Failed Outcome = iota
	Success
	Empty
	Unchanged
	PartialCommit
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"

	case Empty:
		return "empty"

	case Unchanged:
		return "unchanged"

	case PartialCommit:
		return "partial-commit"

	default:
		return "error"
	}
}

// Result summarises a sync pass for the caller. Snapshot is the target table contents
// after a successful pass and is nil otherwise. Digest is the hash of the worksheet range
// as it should be after the status writeback, for use as Config.Previous in the next pass.
type Result struct {
	RunID     string
	Outcome   Outcome
	Inserted  int
	Updated   int
	Unmatched int
	Skipped   int
	Written   int
	Message   string
	Digest    []byte
	Snapshot  *table.Table
}
