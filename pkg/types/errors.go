// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Error taxonomy shared by the discovery and citation pipelines. Callers
// match with errors.Is; wrapped errors keep the sentinel in their chain.
var (
	// ErrConfiguration reports a missing required secret. It is raised once
	// at entry and never retried.
	ErrConfiguration = eris.New("configuration error")

	// ErrRateLimited reports a search or model call that still returned
	// HTTP 429 after all retry attempts.
	ErrRateLimited = eris.New("rate limited")

	// ErrExtractionParse reports a model response that held no parseable
	// JSON name list.
	ErrExtractionParse = eris.New("extraction parse error")

	// ErrModelCall reports any other failure calling a search or model backend.
	ErrModelCall = eris.New("model call error")
)

// ExtractionParseError carries the raw model output that could not be parsed.
type ExtractionParseError struct {
	Raw    string
	Reason string
}

func (e *ExtractionParseError) Error() string {
	return fmt.Sprintf("%v: %s", ErrExtractionParse, e.Reason)
}

// Unwrap lets errors.Is match ErrExtractionParse.
func (e *ExtractionParseError) Unwrap() error { return ErrExtractionParse }

// ModelCallError wraps err as a model call failure against the named backend.
// The result matches both ErrModelCall and err under errors.Is.
func ModelCallError(backend string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrModelCall, backend, err)
}

// ConfigurationError reports that the named secret or backend is missing.
func ConfigurationError(format string, args ...any) error {
	return eris.Wrapf(ErrConfiguration, format, args...)
}
