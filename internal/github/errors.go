package github

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable marks network or platform-side failures. Callers match
// it with errors.Is; ingestion treats it as fatal for the one repository only.
var ErrSourceUnavailable = errors.New("event source unavailable")

// MalformedRecordError marks a fetched record missing a required field. Such
// records are skipped and counted, never fatal to the batch.
type MalformedRecordError struct {
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed event record: missing %s", e.Field)
}
