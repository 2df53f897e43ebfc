// Package errors provides common domain error types for claimsift.
//
// This package defines sentinel errors for conditions the callers are
// expected to branch on, such as a sheet with no detectable title column.
// Using typed errors enables consistent handling with errors.Is() checks.
//
// Note that two conditions that look like errors are deliberately NOT errors
// anywhere in this codebase: a malformed ISRC/ISWC is treated as absent, and
// a scoring abstention is a normal NoMatch result.
package errors

import "errors"

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrNoTitleColumn indicates header resolution found no candidate for the
	// required title field; the sheet is skipped, never guessed.
	ErrNoTitleColumn = errors.New("no title column detected")

	// ErrNoHeaderRow indicates no usable header row was found in the scanned
	// preamble of a sheet.
	ErrNoHeaderRow = errors.New("no header row detected")

	// ErrConfigInvalid indicates required configuration is missing or
	// malformed. Fatal at startup, never raised per row.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input or validation failure.
	ErrValidation = errors.New("validation error")
)

// IsNoTitleColumn reports whether any error in err's chain is ErrNoTitleColumn.
func IsNoTitleColumn(err error) bool {
	return errors.Is(err, ErrNoTitleColumn)
}

// IsNoHeaderRow reports whether any error in err's chain is ErrNoHeaderRow.
func IsNoHeaderRow(err error) bool {
	return errors.Is(err, ErrNoHeaderRow)
}

// IsConfigInvalid reports whether any error in err's chain is ErrConfigInvalid.
func IsConfigInvalid(err error) bool {
	return errors.Is(err, ErrConfigInvalid)
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
