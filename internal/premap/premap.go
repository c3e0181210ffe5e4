// Package premap implements the per-encoding pointer-space pre-maps of
// spec.md §4.4: bijective, piecewise-linear compressions of the EUC-KR,
// JIS X 0208 and JIS X 0212 pointer spaces used to shrink their forward
// and backward tables. Ported from the premap/premap_forward closures and
// the premap_backward Rust snippets embedded in generate_multi_byte_index
// (original_source/src/index/gen_index.py).
package premap

// Func maps a pointer (or a pre-mapped pointer, for Backward variants) to
// its counterpart. ok is false when the input has no image under the map
// (a "hole" in the piecewise domain).
type Func func(code uint32) (uint32, bool)

// Identity is used when pre-mapping is disabled (spec.md §4.4's
// "no_premapping" switch) or for encodings with no registered pre-map.
func Identity(code uint32) (uint32, bool) { return code, true }

// EUCKRForward compresses the EUC-KR pointer space, dropping the unused
// rows/columns of its 94x94-ish layout.
func EUCKRForward(code uint32) (uint32, bool) {
	r, c := code/190, code%190
	if c >= 96 {
		var dr uint32
		switch {
		case r < 44:
			dr = 0
		case r < 47:
			return 0, false
		case r < 72:
			dr = 3
		case r < 73:
			return 0, false
		default:
			dr = 4
		}
		return (r-dr)*(190-96) + (c - 96), true
	}
	var dc uint32
	switch {
	case c < 26:
		dc = 0
	case c < 32:
		return 0, false
	case c < 58:
		dc = 6
	case c < 64:
		return 0, false
	default:
		dc = 12
	}
	return (125-4)*(190-96) + r*(96-12) + (c - dc), true
}

// EUCKRBackward inverts EUCKRForward, used by the unoptimized (pre-map
// disabled) backward path per spec.md §4.4.
func EUCKRBackward(code uint32) (uint32, bool) {
	const firstSpan = (125 - 4) * (190 - 96) // 11374
	const secondSpan = 125 * (96 - 12)       // 10500
	if code < firstSpan {
		r, c := code/(190-96), code%(190-96)
		var dr uint32
		switch {
		case r < 44:
			dr = 0
		case r < 69:
			dr = 3
		default:
			dr = 4
		}
		return (r+dr)*190 + (c + 96), true
	}
	if code < firstSpan+secondSpan {
		code -= firstSpan
		r, c := code/(96-12), code%(96-12)
		var dc uint32
		switch {
		case c < 26:
			dc = 0
		case c < 52:
			dc = 6
		default:
			dc = 12
		}
		return r*190 + (c + dc), true
	}
	return 0, false
}

// JIS0208Forward compresses the JIS X 0208 pointer space by excising the
// unallocated rows between its EUC-JP and Shift_JIS views.
func JIS0208Forward(code uint32) (uint32, bool) {
	switch {
	case code < 690:
		return code, true
	case code < 1128:
		return 0, false
	case code < 1220:
		return code - 438, true
	case code < 1410:
		return 0, false
	case code < 7808:
		return code - 628, true
	case code < 8272:
		return 0, false
	case code < 8648:
		return code - 1092, true
	case code < 10716:
		return 0, false
	default:
		return code - 3160, true
	}
}

// JIS0208Backward inverts JIS0208Forward. The pre-mapped pointer space is
// dense, so every input has an image (mirrors the Rust saturating_add
// fallback for out-of-table codes).
func JIS0208Backward(code uint32) (uint32, bool) {
	switch {
	case code <= 689:
		return code, true
	case code <= 781:
		return code + 438, true
	case code <= 7179:
		return code + 628, true
	case code <= 7555:
		return code + 1092, true
	default:
		return code + 3160, true
	}
}

// JIS0212Forward compresses the JIS X 0212 pointer space analogously to
// JIS0208Forward.
func JIS0212Forward(code uint32) (uint32, bool) {
	switch {
	case code < 175:
		return code, true
	case code < 534:
		return 0, false
	case code < 1027:
		return code - 359, true
	case code < 1410:
		return 0, false
	default:
		return code - 742, true
	}
}

// JIS0212Backward inverts JIS0212Forward.
func JIS0212Backward(code uint32) (uint32, bool) {
	switch {
	case code <= 174:
		return code, true
	case code <= 667:
		return code + 359, true
	default:
		return code + 742, true
	}
}

// ForName returns the registered forward/backward pair for an encoding
// name, or (Identity, Identity, false) if it has none.
func ForName(name string) (forward, backward Func, ok bool) {
	switch name {
	case "euc-kr":
		return EUCKRForward, EUCKRBackward, true
	case "jis0208":
		return JIS0208Forward, JIS0208Backward, true
	case "jis0212":
		return JIS0212Forward, JIS0212Backward, true
	default:
		return Identity, Identity, false
	}
}
