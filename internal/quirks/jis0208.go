package quirks

import (
	"sort"

	"github.com/pkg/errors"

	"chartables/internal/model"
)

// JIS0208RemapMin and JIS0208RemapMax bound (half-open) the pointer range
// shared by the EUC-JP and Shift_JIS views of JIS X 0208 (spec.md §4.5):
// the default backward map favors EUC-JP, so Shift_JIS needs a small
// remapping table over just this range instead.
const (
	JIS0208RemapMin = 8272
	JIS0208RemapMax = 8836
)

// BuildJIS0208Remap returns, for every pointer in
// [JIS0208RemapMin, JIS0208RemapMax), the pointer outside that range
// sharing the same scalar (the value to prefer for Shift_JIS backward
// lookups), or model.EmptyPointer if the pointer has no entry in data.
// data must be the original (pre-pre-map) pointer-to-scalar map.
func BuildJIS0208Remap(data map[uint32]uint32) ([]uint32, error) {
	pointers := make([]uint32, 0, len(data))
	for p := range data {
		pointers = append(pointers, p)
	}
	sort.Slice(pointers, func(i, j int) bool { return pointers[i] < pointers[j] })

	invDataMinusRemap := make(map[uint32]uint32, len(data))
	for _, p := range pointers {
		if p >= JIS0208RemapMin && p < JIS0208RemapMax {
			continue
		}
		scalar := data[p]
		if _, exists := invDataMinusRemap[scalar]; !exists {
			invDataMinusRemap[scalar] = p
		}
	}

	remap := make([]uint32, JIS0208RemapMax-JIS0208RemapMin)
	for i := JIS0208RemapMin; i < JIS0208RemapMax; i++ {
		scalar, ok := data[uint32(i)]
		if !ok {
			remap[i-JIS0208RemapMin] = model.EmptyPointer
			continue
		}
		orig, ok := invDataMinusRemap[scalar]
		if !ok {
			return nil, errors.Errorf("jis0208: pointer %d has no counterpart outside [%d,%d)", i, JIS0208RemapMin, JIS0208RemapMax)
		}
		remap[i-JIS0208RemapMin] = orig
	}
	return remap, nil
}
