// Package emit serializes reshaped CDF tables into a generated Go source
// file. The output is deterministic down to the byte so regenerating from
// an unchanged cdf.c produces an identical file and clean diffs otherwise.
package emit

import (
	"fmt"
	"strings"

	"github.com/rafaelcaricio/wav1c/internal/table"
)

// Table pairs an emitted constant name with its reshaped data.
type Table struct {
	Name  string
	Shape table.Shape
	Data  table.Array
}

// File renders the complete generated source: the header, one table
// declaration per input in order, the CdfContext aggregate, and its
// constructor. pkg is the package clause of the generated file.
func File(pkg string, tables []Table) string {
	var b strings.Builder

	b.WriteString("// Code generated by cdfgen; DO NOT EDIT.\n")
	b.WriteString("//\n")
	b.WriteString("// Default MSAC probability tables extracted from dav1d's cdf.c,\n")
	b.WriteString("// with the CDF transform applied: stored value = 32768 - source value.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)

	for _, t := range tables {
		writeConst(&b, t)
	}

	writeContext(&b, tables)
	return b.String()
}

// TypeString renders the Go array type for a shape, outermost dimension
// first, e.g. [5][5][16]uint16.
func TypeString(shape table.Shape) string {
	var b strings.Builder
	for _, d := range shape.Outer {
		fmt.Fprintf(&b, "[%d]", d)
	}
	fmt.Fprintf(&b, "[%d]uint16", shape.Pad)
	return b.String()
}

func writeConst(b *strings.Builder, t Table) {
	fmt.Fprintf(b, "var %s = %s", t.Name, TypeString(t.Shape))
	writeArray(b, t.Data, 0)
	b.WriteString("\n\n")
}

// writeArray renders one nesting level. Leaves are a single line; every
// group level opens a brace, indents one tab deeper, and closes at its own
// indentation, mirroring the brace structure of the source initializer.
func writeArray(b *strings.Builder, arr table.Array, depth int) {
	if arr.Groups == nil {
		b.WriteString("{")
		for i, v := range arr.Leaf {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%d", v)
		}
		b.WriteString("}")
		return
	}

	indent := strings.Repeat("\t", depth)
	b.WriteString("{\n")
	for _, sub := range arr.Groups {
		b.WriteString(indent + "\t")
		writeArray(b, sub, depth+1)
		b.WriteString(",\n")
	}
	b.WriteString(indent + "}")
}

// fieldName derives the CdfContext field from a constant name:
// DefaultKfYModeCdf -> KfYMode.
func fieldName(constName string) string {
	name := strings.TrimPrefix(constName, "Default")
	return strings.TrimSuffix(name, "Cdf")
}

// writeContext emits the CdfContext aggregate and its constructor. Field
// order follows table.ContextOrder, the layout the entropy coder binds to.
//
// NewCdfContext still computes the quantizer context the way the AV1 spec
// buckets base_q_idx, but every field binds to the qctx=3 tables: those are
// the only ones this tool extracts today.
func writeContext(b *strings.Builder, tables []Table) {
	byName := make(map[string]Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	// Field types are column-aligned so the generated file is gofmt-clean.
	width := 0
	for _, name := range table.ContextOrder() {
		if n := len(fieldName(name)); n > width {
			width = n
		}
	}

	b.WriteString("// CdfContext holds the per-frame CDF state for MSAC encoding.\n")
	b.WriteString("type CdfContext struct {\n")
	for _, name := range table.ContextOrder() {
		t := byName[name]
		fmt.Fprintf(b, "\t%-*s %s\n", width, fieldName(name), TypeString(t.Shape))
	}
	b.WriteString("}\n\n")

	b.WriteString("// NewCdfContext returns the default CDF state for a frame with the\n")
	b.WriteString("// given base quantizer index.\n")
	b.WriteString("func NewCdfContext(baseQIdx uint8) CdfContext {\n")
	b.WriteString("\tqctx := 3\n")
	b.WriteString("\tswitch {\n")
	b.WriteString("\tcase baseQIdx <= 20:\n")
	b.WriteString("\t\tqctx = 0\n")
	b.WriteString("\tcase baseQIdx <= 60:\n")
	b.WriteString("\t\tqctx = 1\n")
	b.WriteString("\tcase baseQIdx <= 120:\n")
	b.WriteString("\t\tqctx = 2\n")
	b.WriteString("\t}\n")
	b.WriteString("\t_ = qctx // only the qctx=3 coefficient tables are extracted\n\n")
	b.WriteString("\treturn CdfContext{\n")
	for _, name := range table.ContextOrder() {
		fmt.Fprintf(b, "\t\t%-*s %s,\n", width+1, fieldName(name)+":", name)
	}
	b.WriteString("\t}\n")
	b.WriteString("}\n")
}
