// Package quirks implements the index-shape adapters of spec.md §4.5:
// encoding-specific post-processing that the generic forward/backward/trie/
// search builders cannot express on their own. Ported from the per-name
// branches of generate_multi_byte_index
// (original_source/src/index/gen_index.py).
package quirks

import (
	"github.com/pkg/errors"

	"chartables/internal/model"
)

// Big5SpecialPointers are the pointers of Big5's four synthetic two-unit
// forward entries ("specialidx" in the original), each assigned a small
// escape scalar consumed outside this index.
var Big5SpecialPointers = [4]uint32{1133, 1135, 1164, 1166}

// Big5HKSCSLimit is the pointer below which entries are HKSCS additions:
// present in the forward table but absent from the backward map entirely.
const Big5HKSCSLimit = (0xA1 - 0x81) * 157

// Big5SwappedCanon lists scalars whose backward-canonical pointer is the
// *later*-read duplicate rather than the first, per an explicit exception
// list in the original index.
var Big5SwappedCanon = map[uint32]bool{
	0x2550: true,
	0x255E: true,
	0x2561: true,
	0x256A: true,
	0x5341: true,
	0x5345: true,
}

// ApplyBig5Quirks adapts a freshly-read Big5 record in place, porting
// gen_index.py's three name=='big5' bookkeeping steps (lines 500-527):
// it adds the four synthetic entries (each recorded as a new dup, "no
// consistency testing for them"), strips HKSCS-only pointers from
// invData (recorded as one rawdups range), and re-points
// Big5SwappedCanon scalars to the *later*-read duplicate pointer,
// chaining the displaced former-canonical pointer back into dups.
func ApplyBig5Quirks(rec *model.Record) error {
	data, invData := rec.Data, rec.InvData

	for _, p := range Big5SpecialPointers {
		if _, exists := data[p]; exists {
			return errors.Errorf("big5: special pointer %d already present in data", p)
		}
	}
	for value := range Big5SpecialPointers {
		if _, exists := invData[uint32(value)]; exists {
			return errors.Errorf("big5: synthetic scalar %d already present in invData", value)
		}
	}
	for value, p := range Big5SpecialPointers {
		data[p] = uint32(value)
		rec.Dups = append(rec.Dups, p)
	}

	for scalar, p := range invData {
		if p < Big5HKSCSLimit {
			delete(invData, scalar)
		}
	}
	rec.RawDups = append(rec.RawDups, model.RawRange{Lo: 0, Hi: Big5HKSCSLimit - 1})

	oldDups := rec.Dups
	rec.Dups = nil
	for _, p := range oldDups {
		scalar := data[p]
		if Big5SwappedCanon[scalar] {
			rec.Dups = append(rec.Dups, invData[scalar])
			invData[scalar] = p
		} else {
			rec.Dups = append(rec.Dups, p)
		}
	}

	// cleanup: other pointers below hkscslimit are already covered by the
	// rawdups range above; the synthetic pointers stay listed as dups.
	special := make(map[uint32]bool, len(Big5SpecialPointers))
	for _, p := range Big5SpecialPointers {
		special[p] = true
	}
	cleaned := rec.Dups[:0]
	for _, p := range rec.Dups {
		if p >= Big5HKSCSLimit || special[p] {
			cleaned = append(cleaned, p)
		}
	}
	rec.Dups = cleaned

	return nil
}
