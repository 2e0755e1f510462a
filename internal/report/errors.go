package report

import (
	"errors"
	"fmt"
	"strings"
)

// Structural parse errors. These are fatal for the whole report: no
// partial results are produced.
var (
	// ErrSpecIncomplete indicates a mandatory feature column is not
	// named in the report spec.
	ErrSpecIncomplete = errors.New("mandatory feature column missing from spec")

	// ErrMissingColumn indicates a configured feature column lies
	// outside the discovered data table.
	ErrMissingColumn = errors.New("mandatory column missing from report")

	// ErrTimeWindow indicates the "between <date> and <date>" statement
	// is absent or unparseable.
	ErrTimeWindow = errors.New("cannot determine report time window")
)

// HeaderNotFoundError reports a failed header discovery, naming the
// expected signature for diagnosis.
type HeaderNotFoundError struct {
	Path      string
	Signature []string
	ScanBound int
}

func (e *HeaderNotFoundError) Error() string {
	msg := fmt.Sprintf("no row within the first %d matched the header signature [%s]",
		e.ScanBound, strings.Join(e.Signature, ", "))
	if e.Path != "" {
		return e.Path + ": " + msg
	}
	return msg
}
