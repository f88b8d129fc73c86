package table

import (
	"errors"
	"fmt"

	"github.com/rafaelcaricio/wav1c/internal/extract"
)

var (
	// ErrCountMismatch indicates a table decoded to a different number of
	// entries than its declared cardinality.
	ErrCountMismatch = errors.New("entry count mismatch")

	// ErrSpotCheck indicates a hand-verified probe value did not survive
	// extraction, i.e. the source format and this tool have diverged.
	ErrSpotCheck = errors.New("spot check failed")
)

// Validate gates a decoded table before reshaping or emission: the entry
// count must equal the manifest cardinality and every spot check must hold.
// Any failure is fatal for the whole run; no output file may be written
// after a table fails here.
func Validate(spec Spec, entries []extract.Entry) error {
	if len(entries) != spec.Count {
		return fmt.Errorf("%w: %s expected %d entries, got %d",
			ErrCountMismatch, spec.Const, spec.Count, len(entries))
	}

	for _, check := range spec.Checks {
		entry := entries[check.Entry]
		if check.Index >= len(entry) {
			return fmt.Errorf("%w: %s entry %d has no value %d",
				ErrSpotCheck, spec.Const, check.Entry, check.Index)
		}
		if got := entry[check.Index]; got != check.Want {
			return fmt.Errorf("%w: %s[%d][%d] = %d, expected %d",
				ErrSpotCheck, spec.Const, check.Entry, check.Index, got, check.Want)
		}
	}

	return nil
}
