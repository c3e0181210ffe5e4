// Package emit implements the emission skeleton of spec.md §6: purely
// mechanical translation of a built index (forward/backward tables, trie,
// search, range-lbound) into a standalone Go source file for the target
// character-encoding library to import. Ported from gen_index.py's
// write_header/write_fmt/write_comma_separated and the per-kind
// generate_* functions' emitted text (original_source/src/index/gen_index.py).
//
// Per spec.md §1, line-wrapped pretty printing and on-disk file writing
// belong to the embedding tool; this package writes one element per line
// (gofmt normalizes the rest) to any io.Writer the caller supplies.
package emit

import (
	"fmt"
	"io"
	"strings"

	"chartables/internal/model"
	"chartables/internal/quirks"
	"chartables/internal/registry"
)

// SanitizeName turns a WHATWG index name (which may contain hyphens) into
// a legal, lower-case Go package identifier.
func SanitizeName(name string) string {
	return strings.ReplaceAll(name, "-", "")
}

func writeHeader(w io.Writer, name string, comments []string) {
	fmt.Fprintf(w, "// Code generated from index-%s.txt; DO NOT EDIT.\n", name)
	fmt.Fprintln(w, "//")
	for _, c := range comments {
		fmt.Fprintf(w, "//%s\n", c)
	}
	fmt.Fprintf(w, "\npackage %s\n", SanitizeName(name))
}

func writeUint32Array(w io.Writer, decl string, values []uint32) {
	fmt.Fprintf(w, "\n%s{\n", decl)
	for _, v := range values {
		fmt.Fprintf(w, "\t%d,\n", v)
	}
	fmt.Fprintf(w, "} // %d entries\n", len(values))
}

func writeIntArray(w io.Writer, decl string, values []int) {
	fmt.Fprintf(w, "\n%s{\n", decl)
	for _, v := range values {
		fmt.Fprintf(w, "\t%d,\n", v)
	}
	fmt.Fprintf(w, "} // %d entries\n", len(values))
}

func writeSlotArray(w io.Writer, decl string, slots []model.Slot, emptyValue uint32) {
	fmt.Fprintf(w, "\n%s{\n", decl)
	for _, s := range slots {
		if s.Present {
			fmt.Fprintf(w, "\t%d,\n", s.Value)
		} else {
			fmt.Fprintf(w, "\t%d,\n", emptyValue)
		}
	}
	fmt.Fprintf(w, "} // %d entries\n", len(slots))
}

// WriteSingleByte emits a complete single-byte index source file.
func WriteSingleByte(w io.Writer, name string, comments []string, r *registry.SingleByteResult) {
	writeHeader(w, name, comments)

	forward := make([]uint32, len(r.Forward))
	copy(forward, r.Forward[:])
	writeUint32Array(w, "var forwardTable = [128]uint16", forward)

	// The 8-bit lower table stores the byte 0x80+pointer, which leaves 0
	// free as the empty sentinel.
	lower := make([]model.Slot, len(r.Trie.Lower))
	for i, s := range r.Trie.Lower {
		lower[i] = model.Slot{Value: s.Value + 0x80, Present: s.Present}
	}
	writeSlotArray(w, fmt.Sprintf("var backwardTableLower = [%d]uint8", len(lower)), lower, 0)
	writeIntArray(w, fmt.Sprintf("var backwardTableUpper = [%d]uint16", len(r.Trie.Upper)), r.Trie.Upper)

	fmt.Fprintf(w, `
// Forward returns the index code point for pointer code in this index.
func Forward(code uint8) uint16 {
	return forwardTable[code-0x80]
}

// Backward returns the index pointer for code point code in this index,
// using the optimized trie lookup.
func Backward(code uint32) uint8 {
	offset := code >> %d
	base := 0
	if int(offset) < len(backwardTableUpper) {
		base = int(backwardTableUpper[offset])
	}
	return backwardTableLower[base+int(code&%#x)]
}

// BackwardSlow returns the index pointer for code point code via a
// bitmap-gated linear scan, used when the optimized tables are disabled.
func BackwardSlow(code uint32) uint8 {
	if code > %d || (uint32(%#x)>>(code>>%d))&1 == 0 {
		return 0
	}
	lo := uint16(code)
	for i, v := range forwardTable {
		if v == lo {
			return 0x80 + uint8(i)
		}
	}
	return 0
}
`, r.Trie.Stride, (1<<uint(r.Trie.Stride))-1, r.MaxValue, r.Bitmap, r.BitmapShift)
}

// WriteMultiByte emits a complete multi-byte index source file.
func WriteMultiByte(w io.Writer, name string, comments []string, rec *model.Record, r *registry.MultiByteResult) {
	writeHeader(w, name, comments)

	writeUint32Array(w, fmt.Sprintf("var forwardTable = [%d]uint16", len(r.Forward)), r.Forward)
	if r.MoreBits != nil {
		writeUint32Array(w, fmt.Sprintf("var forwardTableMore = [%d]uint32", len(r.MoreBits)), r.MoreBits)
	}
	writeSlotArray(w, fmt.Sprintf("var backwardTableLower = [%d]uint16", len(r.Trie.Lower)), r.Trie.Lower, model.EmptyPointer)
	writeIntArray(w, fmt.Sprintf("var backwardTableUpper = [%d]uint16", len(r.Trie.Upper)), r.Trie.Upper)

	if !r.FullLinearSearch {
		fmt.Fprintf(w, "\nvar backwardSearchLower = [%d][2]uint16{\n", len(r.Search.Lower))
		for _, e := range r.Search.Lower {
			fmt.Fprintf(w, "\t{%d, %d},\n", e.Start, e.End)
		}
		fmt.Fprintf(w, "} // %d entries\n", len(r.Search.Lower))
		writeIntArray(w, fmt.Sprintf("var backwardSearchUpper = [%d]uint16", len(r.Search.Upper)), r.Search.Upper)
	}

	if r.Remap != nil {
		writeUint32Array(w, fmt.Sprintf("var backwardTableRemapped = [%d]uint16", len(r.Remap)), r.Remap)
	}

	fmt.Fprintf(w, `
// Forward returns the index code point for pointer code in this index.
func Forward(code uint32) uint32 {
	mapped, ok := premapForward(code)
	if !ok || mapped < %d || mapped >= %d {
		return 0xffff
	}
	idx := mapped - %d
	lo := uint32(forwardTable[idx])
	if lo == 0xffff {
		return 0xffff
	}
`, r.MinKey, r.MaxKey, r.MinKey)
	if r.MoreBits != nil {
		fmt.Fprintln(w, `	if (forwardTableMore[idx>>5]>>(idx&31))&1 == 1 {
		lo |= 0x20000
	}`)
	}
	fmt.Fprintln(w, `	return lo
}

// Backward returns the index pointer for code point code in this index,
// using the optimized trie lookup; the trie stores original pointers
// directly, so no pre-map inverse is applied here.
func Backward(code uint32) uint32 {
	offset := code >> ` + fmt.Sprint(r.Trie.Stride) + `
	base := 0
	if int(offset) < len(backwardTableUpper) {
		base = int(backwardTableUpper[offset])
	}
	v := backwardTableLower[base+int(code&` + fmt.Sprintf("%#x", (1<<uint(r.Trie.Stride))-1) + `)]
	if v == 0xffff {
		return 0xffff
	}
	return uint32(v)
}`)

	if r.Remap != nil {
		fmt.Fprintf(w, `

// BackwardRemapped returns the Shift_JIS-specific counterpart pointer for
// code point code.
func BackwardRemapped(code uint32) uint32 {
	value := Backward(code)
	if value == 0xffff {
		return 0xffff
	}
	if value >= %d && value < %d {
		v := backwardTableRemapped[value-%d]
		if v == 0xffff {
			return 0xffff
		}
		return uint32(v)
	}
	return value
}
`, quirks.JIS0208RemapMin, quirks.JIS0208RemapMax, quirks.JIS0208RemapMin)
	}

	dupLines := formatDups(rec)
	fmt.Fprintf(w, "\n// dups (excluded from round-trip testing): %s\n", dupLines)
}

func formatDups(rec *model.Record) string {
	if len(rec.Dups) == 0 && len(rec.RawDups) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(rec.Dups)+len(rec.RawDups))
	for _, rr := range rec.RawDups {
		parts = append(parts, fmt.Sprintf("%d...%d", rr.Lo, rr.Hi))
	}
	for _, d := range rec.Dups {
		parts = append(parts, fmt.Sprint(d))
	}
	return strings.Join(parts, ", ")
}

// WriteRangeLBound emits a complete range-lbound index source file.
func WriteRangeLBound(w io.Writer, name string, comments []string, r *registry.RangeLBoundResult) {
	writeHeader(w, name, comments)

	fwdScalars := make([]uint32, len(r.Forward.Entries))
	fwdPointers := make([]uint32, len(r.Forward.Entries))
	for i, e := range r.Forward.Entries {
		fwdPointers[i] = e.Pointer
		fwdScalars[i] = e.Scalar
	}
	writeUint32Array(w, fmt.Sprintf("var forwardTable = [%d]uint32", len(fwdScalars)), fwdScalars)
	writeUint32Array(w, fmt.Sprintf("var backwardTable = [%d]uint32", len(fwdPointers)), fwdPointers)

	fmt.Fprintf(w, `
func search(code uint32, fromtab, totab []uint32, depth int) uint32 {
	lo := 0
	step := 0
	if depth > 0 {
		step = 1 << uint(depth-1)
	}
	for ; step > 0; step >>= 1 {
		if lo+step < len(fromtab) && fromtab[lo+step] <= code {
			lo += step
		}
	}
	return (code - fromtab[lo]) + totab[lo]
}

// Forward returns the index code point for pointer code in this index.
func Forward(code uint32) uint32 {
`)
	if name == "gb18030-ranges" {
		fmt.Fprintf(w, "\tif code == %d {\n\t\treturn %#x\n\t}\n", quirks.GB18030SingularPtr, quirks.GB18030SingularVal)
		fmt.Fprintf(w, "\tif (code > %d && code < %d) || code > %d {\n\t\treturn 0xffffffff\n\t}\n",
			quirks.GB18030InvalidLo, quirks.GB18030InvalidHi, quirks.GB18030MaxPointer)
	}
	fmt.Fprintf(w, "\treturn search(code, backwardTable[:], forwardTable[:], %d)\n}\n", r.Forward.Depth)

	fmt.Fprintf(w, `
// Backward returns the index pointer for code point code in this index.
func Backward(code uint32) uint32 {
`)
	if name == "gb18030-ranges" {
		fmt.Fprintf(w, "\tif code == %#x {\n\t\treturn %d\n\t}\n", quirks.GB18030SingularVal, quirks.GB18030SingularPtr)
	}
	fmt.Fprintf(w, "\treturn search(code, forwardTable[:], backwardTable[:], %d)\n}\n", r.Backward.Depth)
}
