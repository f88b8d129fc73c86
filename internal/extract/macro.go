package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrArityMismatch indicates a CDF<N>(...) call whose argument count does
// not equal its declared arity N.
var ErrArityMismatch = errors.New("macro arity mismatch")

// maxProb is the MSAC probability scale. dav1d stores CDF entries as
// CDF<N>(x) where the coded value is maxProb - x.
const maxProb = 32768

// Entry is one decoded CDF macro call: the transformed values in argument
// order, without padding.
type Entry []uint16

var macroPattern = regexp.MustCompile(`CDF(\d+)\(([^)]+)\)`)

// Decode scans region left to right for every CDF<N>(...) occurrence and
// returns one Entry per call, in source order, with the 32768-x transform
// applied to every argument. The source order is the contract: callers rely
// on it being the row-major order of the eventual table.
//
// A region with no macro calls decodes to an empty list; expected
// cardinality is enforced separately by the validation gate.
func Decode(region string) ([]Entry, error) {
	matches := macroPattern.FindAllStringSubmatch(region, -1)
	entries := make([]Entry, 0, len(matches))

	for _, m := range matches {
		arity, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("parsing arity of %q: %w", m[0], err)
		}

		args := strings.Split(m[2], ",")
		if len(args) != arity {
			return nil, fmt.Errorf("%w: CDF%d with %d arguments", ErrArityMismatch, arity, len(args))
		}

		entry := make(Entry, arity)
		for i, arg := range args {
			v, err := strconv.Atoi(strings.TrimSpace(arg))
			if err != nil {
				return nil, fmt.Errorf("parsing argument %d of %q: %w", i, m[0], err)
			}
			if v < 0 || v >= maxProb {
				return nil, fmt.Errorf("argument %d of %q out of range [0, %d): %d", i, m[0], maxProb, v)
			}
			entry[i] = uint16(maxProb - v)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
