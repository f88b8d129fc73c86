package table

// Section identifies which top-level initializer of cdf.c a table lives in.
type Section int

const (
	// SectionDefault is the CdfDefaultContext default_cdf initializer.
	SectionDefault Section = iota
	// SectionCoef is the qctx=3 slice of default_coef_cdf[4].
	SectionCoef
)

// SpotCheck pins one transformed value of a decoded table to a
// hand-verified expectation. It guards against dav1d changing its CDF
// notation between versions without this tool noticing.
type SpotCheck struct {
	Entry int    // entry position in decode order
	Index int    // value position within the entry
	Want  uint16 // expected transformed value (32768 - source)
}

// Spec describes one named table: where to find it, how to reshape it, and
// what the validation gate asserts about it.
type Spec struct {
	Field   string // ".field" name inside the section initializer
	Section Section
	Const   string // emitted constant name
	Shape   Shape
	Count   int // expected number of decoded entries
	Checks  []SpotCheck
}

// Manifest lists every extracted table in emission order. Counts and shapes
// follow the AV1 spec via dav1d's CdfDefaultContext/CdfCoefContext layout;
// the pad widths fold in dav1d's trailing adaptation counter and alignment
// slots so the emitted rows match the runtime context layout.
func Manifest() []Spec {
	return []Spec{
		{
			Field:   "kfym",
			Section: SectionDefault,
			Const:   "DefaultKfYModeCdf",
			Shape:   Shape{Outer: []int{5, 5}, Pad: 16},
			Count:   5 * 5,
			// kfym[0][0] opens with CDF12(15588, ...).
			Checks: []SpotCheck{{Entry: 0, Index: 0, Want: 32768 - 15588}},
		},
		{
			Field:   "uv_mode",
			Section: SectionDefault,
			Const:   "DefaultUvModeCdf",
			Shape:   Shape{Outer: []int{2, 13}, Pad: 16},
			Count:   2 * 13,
		},
		{
			Field:   "partition",
			Section: SectionDefault,
			Const:   "DefaultPartitionCdf",
			Shape:   Shape{Outer: []int{5, 4}, Pad: 16},
			Count:   5 * 4,
		},
		{
			Field:   "skip",
			Section: SectionDefault,
			Const:   "DefaultSkipCdf",
			Shape:   Shape{Outer: []int{3}, Pad: 4},
			Count:   3,
			// skip[0] is CDF1(31671).
			Checks: []SpotCheck{{Entry: 0, Index: 0, Want: 32768 - 31671}},
		},
		{
			Field:   "txtp_intra1",
			Section: SectionDefault,
			Const:   "DefaultTxtpIntra1Cdf",
			Shape:   Shape{Outer: []int{2, 13}, Pad: 8},
			Count:   2 * 13,
		},
		{
			Field:   "txtp_intra2",
			Section: SectionDefault,
			Const:   "DefaultTxtpIntra2Cdf",
			Shape:   Shape{Outer: []int{3, 13}, Pad: 8},
			Count:   3 * 13,
		},
		{
			Field:   "skip",
			Section: SectionCoef,
			Const:   "DefaultTxbSkipCdf",
			Shape:   Shape{Outer: []int{5, 13}, Pad: 4},
			Count:   5 * 13,
			// Coefficient skip at qctx=3 opens with CDF1(26887).
			Checks: []SpotCheck{{Entry: 0, Index: 0, Want: 32768 - 26887}},
		},
		{
			Field:   "eob_bin_512",
			Section: SectionCoef,
			Const:   "DefaultEobBin512Cdf",
			Shape:   Shape{Outer: []int{2}, Pad: 16},
			Count:   2,
		},
		{
			Field:   "eob_bin_1024",
			Section: SectionCoef,
			Const:   "DefaultEobBin1024Cdf",
			Shape:   Shape{Outer: []int{2}, Pad: 16},
			Count:   2,
		},
		{
			Field:   "eob_hi_bit",
			Section: SectionCoef,
			Const:   "DefaultEobHiBitCdf",
			Shape:   Shape{Outer: []int{5, 2, 9}, Pad: 4},
			Count:   5 * 2 * 9,
		},
		{
			Field:   "eob_base_tok",
			Section: SectionCoef,
			Const:   "DefaultEobBaseTokCdf",
			Shape:   Shape{Outer: []int{5, 2, 4}, Pad: 4},
			Count:   5 * 2 * 4,
		},
		{
			Field:   "base_tok",
			Section: SectionCoef,
			Const:   "DefaultBaseTokCdf",
			Shape:   Shape{Outer: []int{5, 2, 41}, Pad: 4},
			Count:   5 * 2 * 41,
		},
		{
			Field:   "br_tok",
			Section: SectionCoef,
			Const:   "DefaultBrTokCdf",
			Shape:   Shape{Outer: []int{4, 2, 21}, Pad: 4},
			Count:   4 * 2 * 21,
		},
		{
			Field:   "dc_sign",
			Section: SectionCoef,
			Const:   "DefaultDcSignCdf",
			Shape:   Shape{Outer: []int{2, 3}, Pad: 4},
			Count:   2 * 3,
		},
	}
}

// ContextOrder lists the emitted constant names in CdfContext field order.
// This is the field layout the entropy coder binds to; it intentionally
// differs from the emission order above.
func ContextOrder() []string {
	return []string{
		"DefaultKfYModeCdf",
		"DefaultUvModeCdf",
		"DefaultPartitionCdf",
		"DefaultSkipCdf",
		"DefaultTxbSkipCdf",
		"DefaultEobBin512Cdf",
		"DefaultEobBin1024Cdf",
		"DefaultEobHiBitCdf",
		"DefaultEobBaseTokCdf",
		"DefaultBaseTokCdf",
		"DefaultBrTokCdf",
		"DefaultDcSignCdf",
		"DefaultTxtpIntra1Cdf",
		"DefaultTxtpIntra2Cdf",
	}
}
