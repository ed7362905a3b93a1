// Package index loads the symbol index an external indexer writes into the
// .weft directory and serves per-tier context text for symbols: signature
// stubs, full bodies, and the bodies of related symbols. The index is read
// once per request lifecycle; lookups after Load do no I/O.
package index

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// JSONName is the canonical index file the indexer produces.
	JSONName = "index.json"
	// PackedName is the msgpack-packed form produced by `weft index pack`.
	// It is preferred at load time when both exist.
	PackedName = "index.bin"

	depCacheSize = 128
)

// Symbol is one indexed code symbol with its per-tier text.
type Symbol struct {
	Name     string   `json:"name" msgpack:"name"`
	Kind     string   `json:"kind" msgpack:"kind"`
	File     string   `json:"file" msgpack:"file"`
	Line     int      `json:"line" msgpack:"line"`
	Stub     string   `json:"stub" msgpack:"stub"`
	Body     string   `json:"body" msgpack:"body"`
	Calls    []string `json:"calls" msgpack:"calls"`
	CalledBy []string `json:"called_by" msgpack:"called_by"`
}

// File is the on-disk index layout.
type File struct {
	Version int      `json:"version" msgpack:"version"`
	Symbols []Symbol `json:"symbols" msgpack:"symbols"`
}

// Dependency is a related symbol's full body, served at the dependencies
// tier.
type Dependency struct {
	Symbol string
	Body   string
}

// Index is an in-memory view over the loaded symbols. Symbol order is stable
// across one load; no other ordering is guaranteed.
type Index struct {
	symbols     []Symbol
	byName      map[string]int
	fingerprint string
	depCache    *lru.Cache[string, []Dependency]
}

// New builds an index directly from symbols. Duplicate names keep the first
// occurrence.
func New(symbols []Symbol) (*Index, error) {
	cache, err := lru.New[string, []Dependency](depCacheSize)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		byName:   make(map[string]int, len(symbols)),
		depCache: cache,
	}
	for _, s := range symbols {
		if _, exists := idx.byName[s.Name]; exists {
			continue
		}
		idx.byName[s.Name] = len(idx.symbols)
		idx.symbols = append(idx.symbols, s)
	}

	// Hash the context-bearing fields so derived artifacts (like cached
	// assemblies) can be keyed to this exact index content.
	h := sha256.New()
	for _, s := range idx.symbols {
		h.Write([]byte(s.Name))
		h.Write([]byte{0})
		h.Write([]byte(s.Stub))
		h.Write([]byte{0})
		h.Write([]byte(s.Body))
		h.Write([]byte{0})
		for _, ref := range s.Calls {
			h.Write([]byte(ref))
			h.Write([]byte{0})
		}
		h.Write([]byte{0})
		for _, ref := range s.CalledBy {
			h.Write([]byte(ref))
			h.Write([]byte{0})
		}
		h.Write([]byte{0})
	}
	idx.fingerprint = hex.EncodeToString(h.Sum(nil))

	return idx, nil
}

// Load reads the index from dir, preferring the packed form.
func Load(dir string) (*Index, error) {
	packed := filepath.Join(dir, PackedName)
	if data, err := os.ReadFile(packed); err == nil {
		var f File
		if err := msgpack.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", PackedName, err)
		}
		return New(f.Symbols)
	}

	data, err := os.ReadFile(filepath.Join(dir, JSONName))
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol index: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", JSONName, err)
	}
	return New(f.Symbols)
}

// Pack writes the msgpack form of the current index into dir.
func Pack(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, JSONName))
	if err != nil {
		return fmt.Errorf("failed to read symbol index: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse %s: %w", JSONName, err)
	}

	packed, err := msgpack.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, PackedName), packed, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", PackedName, err)
	}
	return nil
}

// Len returns the number of indexed symbols.
func (idx *Index) Len() int { return len(idx.symbols) }

// Fingerprint identifies the index content: two loads of the same symbols
// yield the same fingerprint, and any re-index that changes a stub, body or
// call edge yields a different one.
func (idx *Index) Fingerprint() string { return idx.fingerprint }

// Names returns all symbol names in load order.
func (idx *Index) Names() []string {
	names := make([]string, len(idx.symbols))
	for i, s := range idx.symbols {
		names[i] = s.Name
	}
	return names
}

// Lookup returns the full symbol record.
func (idx *Index) Lookup(name string) (Symbol, bool) {
	i, ok := idx.byName[name]
	if !ok {
		return Symbol{}, false
	}
	return idx.symbols[i], true
}

// Stub returns the signature-only text for a symbol.
func (idx *Index) Stub(name string) (string, bool) {
	s, ok := idx.Lookup(name)
	if !ok {
		return "", false
	}
	return s.Stub, true
}

// Body returns the full implementation text for a symbol.
func (idx *Index) Body(name string) (string, bool) {
	s, ok := idx.Lookup(name)
	if !ok {
		return "", false
	}
	return s.Body, true
}

// Dependencies returns the bodies of symbols related to name: what it calls,
// then what calls it, deduplicated, skipping anything not in the index.
// Results are cached since dependency fan-out is the expensive lookup on
// large indexes.
func (idx *Index) Dependencies(name string) []Dependency {
	if deps, ok := idx.depCache.Get(name); ok {
		return deps
	}

	s, ok := idx.Lookup(name)
	if !ok {
		return nil
	}

	seen := map[string]bool{name: true}
	var deps []Dependency
	for _, related := range append(append([]string(nil), s.Calls...), s.CalledBy...) {
		if seen[related] {
			continue
		}
		seen[related] = true
		dep, ok := idx.Lookup(related)
		if !ok || strings.TrimSpace(dep.Body) == "" {
			continue
		}
		deps = append(deps, Dependency{Symbol: dep.Name, Body: dep.Body})
	}

	idx.depCache.Add(name, deps)
	return deps
}
