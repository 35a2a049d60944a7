// Copyright © 2024 The ELPS authors

package semantic

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotSchemaVersion must be bumped whenever Snapshot or cachePayload
// change shape.
const snapshotSchemaVersion uint16 = 1

// Snapshot is a flat, serializable copy of the semantic tables of one file.
// Node ids are kept as plain integers and are only meaningful together with
// the same parse of the same source.
type Snapshot struct {
	Schema     uint16              `msgpack:"schema"`
	File       string              `msgpack:"file"`
	Scopes     []SnapshotScope     `msgpack:"scopes"`
	Symbols    []SnapshotSymbol    `msgpack:"symbols"`
	References []SnapshotReference `msgpack:"references"`
	Unresolved []string            `msgpack:"unresolved"`
}

// SnapshotScope is one scope of a Snapshot.
type SnapshotScope struct {
	Parent   uint32   `msgpack:"parent"`
	Flags    uint16   `msgpack:"flags"`
	Node     uint32   `msgpack:"node"`
	Bindings []string `msgpack:"bindings"`
	Symbols  []uint32 `msgpack:"symbols"`
}

// SnapshotSymbol is one symbol of a Snapshot.
type SnapshotSymbol struct {
	Name  string `msgpack:"name"`
	Node  uint32 `msgpack:"node"`
	Start int    `msgpack:"start"`
	End   int    `msgpack:"end"`
	Flags uint32 `msgpack:"flags"`
	Scope uint32 `msgpack:"scope"`
}

// SnapshotReference is one reference of a Snapshot.
type SnapshotReference struct {
	Name   string `msgpack:"name"`
	Node   uint32 `msgpack:"node"`
	Scope  uint32 `msgpack:"scope"`
	Flags  uint8  `msgpack:"flags"`
	Symbol uint32 `msgpack:"symbol"`
}

// Snapshot copies the tables of s.
func (s *Semantic) Snapshot() *Snapshot {
	snap := &Snapshot{Schema: snapshotSchemaVersion, File: s.Program.File}
	for _, sc := range s.Scopes.Descendants() {
		ss := SnapshotScope{Parent: uint32(sc.Parent), Flags: uint16(sc.Flags), Node: uint32(sc.Node)}
		for name, sym := range sc.Bindings() {
			ss.Bindings = append(ss.Bindings, name)
			ss.Symbols = append(ss.Symbols, uint32(sym))
		}
		snap.Scopes = append(snap.Scopes, ss)
	}
	for _, sym := range s.Symbols.All() {
		snap.Symbols = append(snap.Symbols, SnapshotSymbol{
			Name:  sym.Name,
			Node:  uint32(sym.Node),
			Start: sym.Span.Start,
			End:   sym.Span.End,
			Flags: uint32(sym.Flags),
			Scope: uint32(sym.Scope),
		})
	}
	for _, ref := range s.References.All() {
		snap.References = append(snap.References, SnapshotReference{
			Name:   ref.Name,
			Node:   uint32(ref.Node),
			Scope:  uint32(ref.Scope),
			Flags:  uint8(ref.Flags),
			Symbol: uint32(ref.Symbol),
		})
	}
	snap.Unresolved = append(snap.Unresolved, s.Scopes.UnresolvedNames()...)
	return snap
}

// WriteSnapshot encodes snap to w with msgpack.
func WriteSnapshot(w io.Writer, snap *Snapshot) error {
	return msgpack.NewEncoder(w).Encode(snap)
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("read snapshot: schema %d, want %d", snap.Schema, snapshotSchemaVersion)
	}
	return &snap, nil
}

// Digest is the content hash used as a cache key.
type Digest [sha256.Size]byte

// DigestOf hashes a file's path and contents.
func DigestOf(path string, src []byte) Digest {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(src)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// DiskCache stores the workspace symbols of each file keyed by content
// digest, so that rescanning an unchanged workspace skips analysis.
// It is safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema  uint16           `msgpack:"schema"`
	Symbols []ExternalSymbol `msgpack:"symbols"`
}

// OpenDiskCache opens (creating if needed) a cache under dir, or under the
// user cache directory when dir is empty.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "jsscope")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "files", hex.EncodeToString(key[:])+".mp")
}

// Put writes syms for key. The file is replaced atomically.
func (c *DiskCache) Put(key Digest, syms []ExternalSymbol) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = msgpack.NewEncoder(f).Encode(&cachePayload{Schema: snapshotSchemaVersion, Symbols: syms}); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the symbols stored for key. A missing entry or an entry with an
// old schema is a miss, not an error.
func (c *DiskCache) Get(key Digest) ([]ExternalSymbol, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close() //nolint:errcheck // read only
	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != snapshotSchemaVersion {
		return nil, false, nil
	}
	return payload.Symbols, true, nil
}

// Clear removes every cached entry.
func (c *DiskCache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "files"))
}
