package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationMissing indicates a required configuration item was not supplied.
	ErrConfigurationMissing = errors.New("missing configuration")

	// ErrConfigurationInvalid indicates a configuration item could not be parsed.
	ErrConfigurationInvalid = errors.New("invalid configuration")

	// ErrSourceEmpty indicates the worksheet range has no header or no data rows. It is
	// reported as the Empty outcome rather than returned as an error.
	ErrSourceEmpty = errors.New("no data in spreadsheet/range")

	// ErrSourceInvalid indicates the worksheet header row is unusable e.g. duplicated columns.
	ErrSourceInvalid = errors.New("invalid worksheet")

	// ErrService indicates a failure talking to the spreadsheet service or the database.
	ErrService = errors.New("service error")

	// ErrPartialCommit indicates the database changes were committed but the worksheet
	// status markers could not be updated.
	ErrPartialCommit = errors.New("database updated but spreadsheet status not written back")
)

// PassError is the error returned from a failed sync pass. Stage is one of 'config',
// 'read', 'ingest', 'apply' or 'writeback'.
type PassError struct {
	Stage string
	Kind  error
	Err   error
}

func (e *PassError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %v", e.Stage, e.Kind)
	}

	return fmt.Sprintf("%v: %v (%v)", e.Stage, e.Kind, e.Err)
}

// Unwrap returns both the error kind and the underlying error so that errors.Is matches
// either.
func (e *PassError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func fail(stage string, kind error, err error) *PassError {
	return &PassError{
		Stage: stage,
		Kind:  kind,
		Err:   err,
	}
}
