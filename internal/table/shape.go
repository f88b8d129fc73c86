// Package table reshapes flat CDF entry streams into fixed-dimension,
// zero-padded arrays, and gates them against the expected cardinality and
// known probe values before anything is emitted.
package table

import (
	"errors"
	"fmt"

	"github.com/rafaelcaricio/wav1c/internal/extract"
)

// ErrShapeMismatch indicates the entry stream over- or under-fills the
// declared shape.
var ErrShapeMismatch = errors.New("shape mismatch")

// Shape declares how a flat entry stream nests into a table. Outer lists
// the array dimensions from slowest-varying to fastest; Pad is the width
// every entry is zero-padded to, the innermost dimension of the table.
type Shape struct {
	Outer []int
	Pad   int
}

// Array is one level of a reshaped table: either a padded leaf row or an
// ordered group of sub-arrays. Exactly one of the two fields is set.
type Array struct {
	Leaf   []uint16
	Groups []Array
}

// Reshape nests entries into shape in row-major order: the first outer
// dimension is the slowest-varying index, matching the source initializer's
// outermost brace level. The entry stream must fill the shape exactly;
// leftover or missing entries are an ErrShapeMismatch.
func Reshape(entries []extract.Entry, shape Shape) (Array, error) {
	pos := 0
	arr, err := build(entries, &pos, shape.Outer, shape.Pad)
	if err != nil {
		return Array{}, err
	}
	if pos != len(entries) {
		return Array{}, fmt.Errorf("%w: %d entries left over after filling %v",
			ErrShapeMismatch, len(entries)-pos, shape.Outer)
	}
	return arr, nil
}

func build(entries []extract.Entry, pos *int, dims []int, pad int) (Array, error) {
	if len(dims) == 0 {
		if *pos >= len(entries) {
			return Array{}, fmt.Errorf("%w: ran out of entries after %d", ErrShapeMismatch, *pos)
		}
		entry := entries[*pos]
		*pos++

		if len(entry) > pad {
			return Array{}, fmt.Errorf("%w: entry of width %d exceeds pad %d", ErrShapeMismatch, len(entry), pad)
		}
		leaf := make([]uint16, pad)
		copy(leaf, entry)
		return Array{Leaf: leaf}, nil
	}

	groups := make([]Array, 0, dims[0])
	for i := 0; i < dims[0]; i++ {
		sub, err := build(entries, pos, dims[1:], pad)
		if err != nil {
			return Array{}, err
		}
		groups = append(groups, sub)
	}
	return Array{Groups: groups}, nil
}
