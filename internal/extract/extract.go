// Package extract isolates CDF probability tables from dav1d's cdf.c.
//
// The file is not parsed with a C grammar. Tables are located by literal
// markers and ".field = {" patterns, and regions are cut out by balanced
// brace scanning. This is the same contract dav1d has kept for years: the
// default CDF initializers are plain nested brace initializers built from
// CDF<N>(...) macros.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrMarkerNotFound indicates the marker or ".field = {" pattern is
	// absent from the searched text.
	ErrMarkerNotFound = errors.New("marker not found")

	// ErrUnbalancedBraces indicates the scan hit the end of the text before
	// the region's closing brace.
	ErrUnbalancedBraces = errors.New("unbalanced braces")
)

// Braced returns the region between the opening brace that terminates
// marker and its balanced closing brace. The marker itself must end at the
// opening brace, so the scan starts just inside the region at depth zero:
// every '{' increments the depth and the region ends at the '}' seen at
// depth zero.
func Braced(text, marker string) (string, error) {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return "", fmt.Errorf("%w: %q", ErrMarkerNotFound, marker)
	}
	start := idx + len(marker)

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return text[start:i], nil
			}
			depth--
		}
	}
	return "", fmt.Errorf("%w: no closing brace after %q", ErrUnbalancedBraces, marker)
}

// Field returns the initializer following ".name = {" inside text. Unlike
// Braced, the matched pattern consumes the opening brace, so the scan
// starts at depth one and the region ends when the depth returns to zero.
func Field(text, name string) (string, error) {
	pattern := regexp.MustCompile(`\.` + regexp.QuoteMeta(name) + `\s*=\s*\{`)
	loc := pattern.FindStringIndex(text)
	if loc == nil {
		return "", fmt.Errorf("%w: field .%s", ErrMarkerNotFound, name)
	}
	start := loc[1]

	depth := 1
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start:i], nil
			}
		}
	}
	return "", fmt.Errorf("%w: field .%s", ErrUnbalancedBraces, name)
}

// CoefSlice returns one quantizer-context slice of the coefficient CDF
// array, i.e. the "[qctx] = {" child of default_coef_cdf[4]. The slice is
// selected by its literal index in the initializer, then scanned like a
// Field region.
func CoefSlice(text string, qctx int) (string, error) {
	const anchor = "static const CdfCoefContext default_coef_cdf[4]"
	idx := strings.Index(text, anchor)
	if idx < 0 {
		return "", fmt.Errorf("%w: %q", ErrMarkerNotFound, anchor)
	}

	marker := fmt.Sprintf("[%d] = {", qctx)
	pos := strings.Index(text[idx:], marker)
	if pos < 0 {
		return "", fmt.Errorf("%w: coefficient slice %q", ErrMarkerNotFound, marker)
	}
	start := idx + pos + len(marker)

	depth := 1
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start:i], nil
			}
		}
	}
	return "", fmt.Errorf("%w: coefficient slice %q", ErrUnbalancedBraces, marker)
}
