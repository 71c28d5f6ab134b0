package domain

import (
	"fmt"
	"strings"
)

// TransportError covers network failures, timeouts, and non-2xx responses
// from the bulletin board endpoint.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EmptyResponseError reports a 2xx response with a zero-length body. An
// empty body must never turn into a silent empty table.
type EmptyResponseError struct {
	URL string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("fetch %s: empty response body", e.URL)
}

// SchemaMismatchError is returned when none of a report's expected columns
// can be found in the CSV header.
type SchemaMismatchError struct {
	Report string
	Header []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("report %q: no expected columns found in header [%s]",
		e.Report, strings.Join(e.Header, ", "))
}
