// Command gentables reads WHATWG "encoding" legacy index-*.txt files from
// a local directory and emits the compact Go lookup tables of spec.md §6:
// one source file per registered index, grouped by crate directory.
//
// Network fetching of the upstream index files is out of scope (spec.md
// §1); gentables only reads files already present on disk, optionally
// caching the parsed records between runs the way the original tool
// caches its downloads.
package main

import (
	"encoding/gob"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"chartables/internal/emit"
	"chartables/internal/model"
	"chartables/internal/quirks"
	"chartables/internal/registry"
	"chartables/internal/wtindex"
)

func main() {
	indexDir := flag.String("index-dir", ".", "directory holding index-*.txt files")
	outDir := flag.String("out-dir", "generated", "root directory to write generated crates into")
	cacheDir := flag.String("cache-dir", ".index-cache", "directory for cached parsed records")
	flushCache := flag.Bool("flush-cache", false, "ignore and overwrite any cached records")
	maxBackwardSearch := flag.Int("max-backward-search-multibyte", 0x200, "super-block work bound for the multi-byte search index")
	noPremapping := flag.Bool("no-premapping", false, "disable per-encoding pointer-space pre-maps")
	kindFilter := flag.String("kinds", "", "comma-separated kind filter: singlebyte,multibyte,rangelbound (default: all)")
	nameFilter := flag.String("names", "", "comma-separated index name filter (default: all)")
	flag.Parse()

	cfg := registry.DefaultConfig()
	cfg.CacheDir = *cacheDir
	cfg.FlushCache = *flushCache
	cfg.MaxBackwardSearchMultibyte = *maxBackwardSearch
	cfg.NoPremapping = *noPremapping
	if *kindFilter != "" {
		wanted := splitCSV(*kindFilter)
		cfg.KindFilter = func(k registry.Kind) bool { return contains(wanted, k.String()) }
	}
	if *nameFilter != "" {
		wanted := splitCSV(*nameFilter)
		cfg.NameFilter = func(name string) bool { return contains(wanted, name) }
	}

	if err := run(cfg, *indexDir, *outDir); err != nil {
		fmt.Fprintf(os.Stderr, "gentables: %v\n", err)
		os.Exit(1)
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func run(cfg registry.Config, indexDir, outDir string) error {
	var selected []registry.Spec
	for _, s := range registry.Indices {
		if cfg.Selected(s) {
			selected = append(selected, s)
		}
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].Name < selected[j].Name })

	fmt.Printf("=== gentables: %d of %d indices selected ===\n", len(selected), len(registry.Indices))

	var g errgroup.Group
	var totalForward, totalBackward, totalBackwardSlow int
	var statsMu sync.Mutex

	for _, spec := range selected {
		spec := spec
		g.Go(func() error {
			stats, err := generateOne(cfg, indexDir, outDir, spec)
			if err != nil {
				return errors.Wrapf(err, "index %s", spec.Name)
			}
			statsMu.Lock()
			totalForward += stats.ForwardBytes
			totalBackward += stats.BackwardBytes
			totalBackwardSlow += stats.BackwardSlowBytes
			statsMu.Unlock()
			log.Printf("  %-16s forward=%-8d backward=%-8d backward_slow=%-8d",
				spec.Name, stats.ForwardBytes, stats.BackwardBytes, stats.BackwardSlowBytes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("=== total: forward=%d backward=%d backward_slow=%d ===\n",
		totalForward, totalBackward, totalBackwardSlow)
	return nil
}

func generateOne(cfg registry.Config, indexDir, outDir string, spec registry.Spec) (registry.Stats, error) {
	rec, err := loadRecord(cfg, indexDir, spec.Name)
	if err != nil {
		return registry.Stats{}, err
	}

	crateDir := filepath.Join(outDir, spec.OutDir, emit.SanitizeName(spec.Name))
	if err := os.MkdirAll(crateDir, 0o755); err != nil {
		return registry.Stats{}, errors.Wrap(err, "creating output directory")
	}
	outPath := filepath.Join(crateDir, emit.SanitizeName(spec.Name)+".go")

	f, err := os.Create(outPath)
	if err != nil {
		return registry.Stats{}, errors.Wrap(err, "creating output file")
	}
	defer f.Close()

	switch spec.Kind {
	case registry.SingleByte:
		r, stats, err := registry.BuildSingleByte(rec)
		if err != nil {
			return registry.Stats{}, err
		}
		emit.WriteSingleByte(f, spec.Name, rec.Comments, r)
		return stats, nil
	case registry.MultiByte:
		if spec.Name == "big5" {
			if err := quirks.ApplyBig5Quirks(rec); err != nil {
				return registry.Stats{}, errors.Wrap(err, "big5 quirks")
			}
		}
		r, stats, err := registry.BuildMultiByte(spec.Name, rec, cfg)
		if err != nil {
			return registry.Stats{}, err
		}
		emit.WriteMultiByte(f, spec.Name, rec.Comments, rec, r)
		return stats, nil
	case registry.RangeLBound:
		r, stats, err := registry.BuildRangeLBound(spec.Name, rec)
		if err != nil {
			return registry.Stats{}, err
		}
		emit.WriteRangeLBound(f, spec.Name, rec.Comments, r)
		return stats, nil
	default:
		return registry.Stats{}, errors.Errorf("unknown kind %v", spec.Kind)
	}
}

// cachedRecord is the on-disk shape used by the parsed-record cache: the
// fields of model.Record, encoded with gob.
type cachedRecord struct {
	Data     map[uint32]uint32
	InvData  map[uint32]uint32
	Dups     []uint32
	RawDups  []model.RawRange
	MoreBits bool
	Comments []string
}

func loadRecord(cfg registry.Config, indexDir, name string) (*model.Record, error) {
	cachePath := filepath.Join(cfg.CacheDir, name+".gob")
	if !cfg.FlushCache {
		if f, err := os.Open(cachePath); err == nil {
			defer f.Close()
			var c cachedRecord
			if err := gob.NewDecoder(f).Decode(&c); err == nil {
				return &model.Record{
					Data: c.Data, InvData: c.InvData, Dups: c.Dups,
					RawDups: c.RawDups, MoreBits: c.MoreBits, Comments: c.Comments,
				}, nil
			}
		}
	}

	path := filepath.Join(indexDir, "index-"+name+".txt")
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	lines, comments, err := wtindex.Read(path, f)
	if err != nil {
		return nil, err
	}

	rec := recordFromLines(lines, comments)

	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err == nil {
			if cf, err := os.Create(cachePath); err == nil {
				_ = gob.NewEncoder(cf).Encode(cachedRecord{
					Data: rec.Data, InvData: rec.InvData, Dups: rec.Dups,
					RawDups: rec.RawDups, MoreBits: rec.MoreBits, Comments: rec.Comments,
				})
				cf.Close()
			}
		}
	}
	return rec, nil
}

// recordFromLines builds a Record from parsed index lines, per
// open_index/read_index's data/invdata/dups construction
// (original_source/src/index/gen_index.py lines 12-43): the first
// occurrence of a scalar becomes its canonical backward pointer, and
// every later pointer mapping to an already-seen scalar is recorded as a
// dup rather than overwriting invData.
func recordFromLines(lines []wtindex.Line, comments []string) *model.Record {
	rec := model.NewRecord()
	rec.Comments = comments
	for _, ln := range lines {
		rec.Data[ln.Pointer] = ln.Scalar
		if _, exists := rec.InvData[ln.Scalar]; exists {
			rec.Dups = append(rec.Dups, ln.Pointer)
		} else {
			rec.InvData[ln.Scalar] = ln.Pointer
		}
		if ln.Scalar >= 0x10000 {
			rec.MoreBits = true
		}
	}
	return rec
}
