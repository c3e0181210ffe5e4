// Package registry implements the table-driven index registry of
// spec.md §6: it lists every supported index by name/kind and wires the
// packer/trie/search/premap/quirks packages together into the three
// generator entry points (single-byte, multi-byte, range-lbound), mirroring
// generate_single_byte_index / generate_multi_byte_index /
// generate_multi_byte_range_lbound_index and the INDICES table
// (original_source/src/index/gen_index.py).
package registry

import (
	"sort"

	"github.com/pkg/errors"

	"chartables/internal/model"
	"chartables/internal/premap"
	"chartables/internal/quirks"
	"chartables/internal/rangeindex"
	"chartables/internal/search"
	"chartables/internal/trie"
)

// Kind distinguishes the three generator shapes spec.md §6 registers.
type Kind int

const (
	SingleByte Kind = iota
	MultiByte
	RangeLBound
)

func (k Kind) String() string {
	switch k {
	case SingleByte:
		return "singlebyte"
	case MultiByte:
		return "multibyte"
	case RangeLBound:
		return "rangelbound"
	default:
		return "unknown"
	}
}

// Spec is one registered index: its output directory, its index-*.txt
// name, and its generator kind.
type Spec struct {
	OutDir string
	Name   string
	Kind   Kind
}

// Indices mirrors gen_index.py's INDICES table.
var Indices = []Spec{
	{"singlebyte", "armscii-8", SingleByte},
	{"singlebyte", "ibm866", SingleByte},
	{"singlebyte", "iso-8859-2", SingleByte},
	{"singlebyte", "iso-8859-3", SingleByte},
	{"singlebyte", "iso-8859-4", SingleByte},
	{"singlebyte", "iso-8859-5", SingleByte},
	{"singlebyte", "iso-8859-6", SingleByte},
	{"singlebyte", "iso-8859-7", SingleByte},
	{"singlebyte", "iso-8859-8", SingleByte},
	{"singlebyte", "iso-8859-10", SingleByte},
	{"singlebyte", "iso-8859-13", SingleByte},
	{"singlebyte", "iso-8859-14", SingleByte},
	{"singlebyte", "iso-8859-15", SingleByte},
	{"singlebyte", "iso-8859-16", SingleByte},
	{"singlebyte", "koi8-r", SingleByte},
	{"singlebyte", "koi8-u", SingleByte},
	{"singlebyte", "macintosh", SingleByte},
	{"singlebyte", "windows-874", SingleByte},
	{"singlebyte", "windows-1250", SingleByte},
	{"singlebyte", "windows-1251", SingleByte},
	{"singlebyte", "windows-1252", SingleByte},
	{"singlebyte", "windows-1253", SingleByte},
	{"singlebyte", "windows-1254", SingleByte},
	{"singlebyte", "windows-1255", SingleByte},
	{"singlebyte", "windows-1256", SingleByte},
	{"singlebyte", "windows-1257", SingleByte},
	{"singlebyte", "windows-1258", SingleByte},
	{"singlebyte", "x-mac-cyrillic", SingleByte},

	{"tradchinese", "big5", MultiByte},
	{"korean", "euc-kr", MultiByte},
	{"simpchinese", "gb18030", MultiByte},
	{"japanese", "jis0208", MultiByte},
	{"japanese", "jis0212", MultiByte},

	{"simpchinese", "gb18030-ranges", RangeLBound},
}

// Config is the generation-wide configuration surface of spec.md §6.
type Config struct {
	CacheDir                   string
	FlushCache                 bool
	MaxBackwardSearchMultibyte int
	NoPremapping               bool
	NameFilter                 func(name string) bool
	KindFilter                 func(k Kind) bool
}

// DefaultConfig returns the configuration gen_index.py's argparse defaults
// describe.
func DefaultConfig() Config {
	return Config{
		CacheDir:                   ".index-cache",
		MaxBackwardSearchMultibyte: 0x200,
	}
}

// Stats is the (forward, backward, backward-slow) byte-size tuple every
// generate_* function in the original returns.
type Stats struct {
	ForwardBytes      int
	BackwardBytes     int
	BackwardSlowBytes int
}

// Selected reports whether a Spec passes the Config's name/kind filters.
func (c Config) Selected(s Spec) bool {
	if c.KindFilter != nil && !c.KindFilter(s.Kind) {
		return false
	}
	if c.NameFilter != nil && !c.NameFilter(s.Name) {
		return false
	}
	return true
}

// SingleByteResult is the built single-byte index of spec.md §6:
// dense forward table, trie-based optimized backward, and a bitmap
// fast-reject for the unoptimized linear-scan backward (spec.md §4
// "Supplemented features" item 1).
type SingleByteResult struct {
	Forward     [128]uint32 // model.EmptyPointer marks an absent pointer
	Trie        trie.Result
	Bitmap      uint32
	BitmapShift uint
	MaxValue    uint32
}

// BuildSingleByte implements generate_single_byte_index.
func BuildSingleByte(rec *model.Record) (*SingleByteResult, Stats, error) {
	r := &SingleByteResult{}
	for i := range r.Forward {
		r.Forward[i] = model.EmptyPointer
	}
	for pointer, scalar := range rec.Data {
		if pointer >= 128 {
			return nil, Stats{}, errors.Errorf("singlebyte: pointer %d out of range", pointer)
		}
		r.Forward[pointer] = scalar
	}

	t, err := trie.Build(rec.InvData, 0x10000)
	if err != nil {
		return nil, Stats{}, errors.Wrap(err, "singlebyte: trie")
	}
	r.Trie = t

	var maxValue uint32
	for v := range rec.InvData {
		if v > maxValue {
			maxValue = v
		}
	}
	r.MaxValue = maxValue

	bitLen := uint(0)
	for (uint32(1) << bitLen) <= maxValue {
		bitLen++
	}
	shift := bitLen - 5
	var bitmap uint32
	for v := range rec.InvData {
		bitmap |= 1 << (v >> shift)
	}
	r.Bitmap = bitmap
	r.BitmapShift = shift

	stats := Stats{
		ForwardBytes:  2 * len(r.Forward),
		BackwardBytes: len(t.Lower) + 2*len(t.Upper),
	}
	return r, stats, nil
}

// SingleByteForward evaluates forward(code) of spec.md §6.
func SingleByteForward(r *SingleByteResult, pointer uint32) (scalar uint32, ok bool) {
	if pointer >= uint32(len(r.Forward)) {
		return 0, false
	}
	v := r.Forward[pointer]
	return v, v != model.EmptyPointer
}

// SingleByteBackwardOptimized evaluates the trie-based backward(code).
func SingleByteBackwardOptimized(r *SingleByteResult, scalar uint32) (pointer uint32, ok bool) {
	return trie.Lookup(r.Trie, scalar)
}

// SingleByteBackwardUnoptimized evaluates the bitmap-gated linear-scan
// backward(code) fallback (spec.md §4 "Supplemented features" item 1).
func SingleByteBackwardUnoptimized(r *SingleByteResult, scalar uint32) (pointer uint32, ok bool) {
	if scalar > r.MaxValue {
		return 0, false
	}
	if (r.Bitmap>>(scalar>>r.BitmapShift))&1 == 0 {
		return 0, false
	}
	for i, v := range r.Forward {
		if v == scalar {
			return uint32(i), true
		}
	}
	return 0, false
}

// MultiByteResult is the built multi-byte index of spec.md §6: a dense
// pre-mapped forward table, an optimized trie backward map (storing
// original, non-pre-mapped pointers directly, needing no inverse), and
// a slow search-based backward fallback that must invert the pre-map.
type MultiByteResult struct {
	Name string

	MinKey, MaxKey uint32 // bounds of the pre-mapped forward table, [MinKey,MaxKey)
	Forward        []uint32
	MoreBits       []uint32 // nil unless rec.MoreBits

	Trie             trie.Result
	Search           search.Result
	PremapForward    premap.Func
	PremapBackward   premap.Func
	Remap            []uint32 // JIS X 0208 only
	FullLinearSearch bool
}

// BuildMultiByte implements generate_multi_byte_index.
func BuildMultiByte(name string, rec *model.Record, cfg Config) (*MultiByteResult, Stats, error) {
	pf, pb := premap.Identity, premap.Identity
	if !cfg.NoPremapping {
		if fwd, bwd, ok := premap.ForName(name); ok {
			pf, pb = fwd, bwd
		}
	}

	var remap []uint32
	if name == "jis0208" {
		var err error
		remap, err = quirks.BuildJIS0208Remap(rec.Data)
		if err != nil {
			return nil, Stats{}, errors.Wrap(err, "multibyte: jis0208 remap")
		}
	}

	newData := make(map[uint32]uint32, len(rec.Data))
	for pointer, scalar := range rec.Data {
		mapped, ok := pf(pointer)
		if !ok {
			return nil, Stats{}, errors.Errorf("multibyte: %s: pointer %d has no pre-mapped image", name, pointer)
		}
		if _, exists := newData[mapped]; exists {
			return nil, Stats{}, errors.Errorf("multibyte: %s: pre-map collision at %d", name, mapped)
		}
		newData[mapped] = scalar
	}

	t, err := trie.Build(rec.InvData, 0x10000)
	if err != nil {
		return nil, Stats{}, errors.Wrapf(err, "multibyte: %s: trie", name)
	}

	s, err := search.Build(newData, rec.InvData, pf, cfg.MaxBackwardSearchMultibyte)
	if err != nil {
		return nil, Stats{}, errors.Wrapf(err, "multibyte: %s: search", name)
	}

	var minKey, maxKey uint32 = ^uint32(0), 0
	for p := range newData {
		if p < minKey {
			minKey = p
		}
		if p+1 > maxKey {
			maxKey = p + 1
		}
	}

	forward := make([]uint32, maxKey-minKey)
	for i := range forward {
		forward[i] = model.EmptyPointer
	}
	var moreBits []uint32
	if rec.MoreBits {
		moreBits = make([]uint32, (maxKey-minKey+31)/32)
	}
	for p, scalar := range newData {
		idx := p - minKey
		forward[idx] = scalar & 0xFFFF
		if scalar >= 0x10000 {
			moreBits[idx/32] |= 1 << (idx % 32)
		}
	}

	r := &MultiByteResult{
		Name:             name,
		MinKey:           minKey,
		MaxKey:           maxKey,
		Forward:          forward,
		MoreBits:         moreBits,
		Trie:             t,
		Search:           s,
		PremapForward:    pf,
		PremapBackward:   pb,
		Remap:            remap,
		FullLinearSearch: s.FullLinearSearch,
	}

	stats := Stats{
		ForwardBytes:      2 * len(forward),
		BackwardBytes:     2*len(t.Lower) + 2*len(t.Upper),
		BackwardSlowBytes: 4*len(s.Lower) + 4*len(s.Upper),
	}
	if moreBits != nil {
		stats.BackwardBytes += 4 * len(moreBits)
		stats.BackwardSlowBytes += 4 * len(moreBits)
	}
	if remap != nil {
		stats.BackwardBytes += 2 * len(remap)
		stats.BackwardSlowBytes += 2 * len(remap)
	}
	return r, stats, nil
}

// MultiByteForward evaluates forward(code) of spec.md §6.
func MultiByteForward(r *MultiByteResult, pointer uint32) (scalar uint32, ok bool) {
	mapped, ok := r.PremapForward(pointer)
	if !ok || mapped < r.MinKey || mapped >= r.MaxKey {
		return 0, false
	}
	idx := mapped - r.MinKey
	lo := r.Forward[idx]
	if lo == model.EmptyPointer {
		return 0, false
	}
	scalar = lo
	if r.MoreBits != nil {
		word := r.MoreBits[idx/32]
		if (word>>(idx%32))&1 == 1 {
			scalar |= 0x20000
		}
	}
	return scalar, true
}

// MultiByteBackwardOptimized evaluates the trie-based backward(code): the
// trie stores original pointers directly, so no pre-map inversion is
// needed here (spec.md §9 design note).
func MultiByteBackwardOptimized(r *MultiByteResult, scalar uint32) (pointer uint32, ok bool) {
	return trie.Lookup(r.Trie, scalar)
}

// MultiByteBackwardSlow evaluates the search-based fallback backward(code):
// the search index is keyed in pre-mapped pointer space, so every match
// must be inverted with PremapBackward before it is returned.
func MultiByteBackwardSlow(r *MultiByteResult, scalar uint32) (pointer uint32, ok bool) {
	if scalar == model.EmptyPointer {
		// Guards against mistaking the sentinel itself for a real scalar.
		return 0, false
	}
	codeLo := uint16(scalar & 0xFFFF)
	codeHi := scalar >> 16

	verify := func(mappedPointer uint32, hiBit uint32) (uint32, bool) {
		if r.MoreBits != nil {
			if hiBit != codeHi {
				return 0, false
			}
		} else if codeHi != 0 {
			return 0, false
		}
		return r.PremapBackward(mappedPointer)
	}

	if r.FullLinearSearch {
		for idx, lo := range r.Forward {
			if lo != codeLo {
				continue
			}
			i := uint32(idx)
			hi := uint32(0)
			if r.MoreBits != nil {
				hi = ((r.MoreBits[i/32] >> (i % 32)) & 1) << 1
			}
			if p, ok := verify(i+r.MinKey, hi); ok {
				return p, true
			}
		}
		return 0, false
	}

	off := int(scalar >> uint(r.Search.SuperBits))
	if off+1 >= len(r.Search.Upper) {
		return 0, false
	}
	start, end := r.Search.Upper[off], r.Search.Upper[off+1]
	for _, e := range r.Search.Lower[start:end] {
		if e.IsException() {
			if uint16(e.End) != codeLo {
				continue
			}
			mapped := (e.Start & 0x7FFF) + r.Search.MinKey
			hi := uint32(0)
			if r.MoreBits != nil {
				idx := mapped - r.MinKey
				hi = ((r.MoreBits[idx/32] >> (idx % 32)) & 1) << 1
			}
			if p, ok := verify(mapped, hi); ok {
				return p, true
			}
			continue
		}
		for i := e.Start; i < e.End; i++ {
			mapped := i + r.Search.MinKey
			idx := mapped - r.MinKey
			if idx >= uint32(len(r.Forward)) || r.Forward[idx] != codeLo {
				continue
			}
			hi := uint32(0)
			if r.MoreBits != nil {
				hi = ((r.MoreBits[idx/32] >> (idx % 32)) & 1) << 1
			}
			if p, ok := verify(mapped, hi); ok {
				return p, true
			}
		}
	}
	return 0, false
}

// MultiByteBackwardRemapped evaluates JIS X 0208's backward_remapped(code):
// Shift_JIS prefers a different pointer than the default EUC-JP-biased
// backward() in [quirks.JIS0208RemapMin, quirks.JIS0208RemapMax).
func MultiByteBackwardRemapped(r *MultiByteResult, scalar uint32) (pointer uint32, ok bool) {
	value, ok := MultiByteBackwardOptimized(r, scalar)
	if !ok {
		return 0, false
	}
	if value >= quirks.JIS0208RemapMin && value < quirks.JIS0208RemapMax {
		mapped := r.Remap[value-quirks.JIS0208RemapMin]
		if mapped == model.EmptyPointer {
			return 0, false
		}
		return mapped, true
	}
	return value, true
}

// RangeLBoundResult is the built range-lbound index of spec.md §4.6/§6,
// shared by any monotone-range multi-byte encoding (currently only
// gb18030-ranges).
type RangeLBoundResult struct {
	Name     string
	Forward  rangeindex.Result // pointer -> scalar
	Backward rangeindex.Result // scalar -> pointer
}

// BuildRangeLBound implements generate_multi_byte_range_lbound_index.
func BuildRangeLBound(name string, rec *model.Record) (*RangeLBoundResult, Stats, error) {
	fwd, err := rangeindex.Build(rec.Data)
	if err != nil {
		return nil, Stats{}, errors.Wrapf(err, "rangelbound: %s: forward", name)
	}
	inverse := make(map[uint32]uint32, len(rec.Data))
	for p, s := range rec.Data {
		inverse[s] = p
	}
	bwd, err := rangeindex.Build(inverse)
	if err != nil {
		return nil, Stats{}, errors.Wrapf(err, "rangelbound: %s: backward", name)
	}

	n := len(fwd.Entries)
	stats := Stats{
		ForwardBytes:      4 * n,
		BackwardBytes:     4 * n,
		BackwardSlowBytes: 4 * n,
	}
	return &RangeLBoundResult{Name: name, Forward: fwd, Backward: bwd}, stats, nil
}

// RangeLBoundForward evaluates forward(code), applying GB 18030's quirks
// when appropriate.
func RangeLBoundForward(r *RangeLBoundResult, pointer uint32) (scalar uint32, ok bool) {
	if r.Name == "gb18030-ranges" {
		return quirks.GB18030RangesForward(r.Forward, pointer)
	}
	return rangeindex.Lookup(r.Forward, pointer)
}

// RangeLBoundBackward evaluates backward(code), applying GB 18030's
// quirks when appropriate.
func RangeLBoundBackward(r *RangeLBoundResult, scalar uint32) (pointer uint32, ok bool) {
	if r.Name == "gb18030-ranges" {
		return quirks.GB18030RangesBackward(r.Backward, scalar)
	}
	return rangeindex.Lookup(r.Backward, scalar)
}

// SortedNames returns every registered index name in stable, sorted order,
// independent of Indices' declaration order; useful for deterministic CLI
// output.
func SortedNames() []string {
	names := make([]string, len(Indices))
	for i, s := range Indices {
		names[i] = s.Name
	}
	sort.Strings(names)
	return names
}
