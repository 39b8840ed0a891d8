// Package model defines the persistent data model shared by every subsystem:
// files, symbols, imports, exports, references, resolutions and the file
// graph they assemble into.
package model

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// FileID identifies a source file within a single index run. It is derived
// from the project-relative path so that re-indexing the same tree yields the
// same ID without a central counter or persisted sequence.
type FileID uint32

// NewFileID derives a FileID from a project-relative path. Stable across runs
// on identical paths (§3 invariant 2 applies to FileID the same way it does
// to SymbolID: it is a pure function of the path).
func NewFileID(relPath string) FileID {
	return FileID(xxhash.Sum64String(relPath))
}

// SymbolID is a pure function of (file, kind, qualified name); see §3
// invariant 2. It is a 128-bit value built from two independent xxhash
// digests of the same input so it can be used as a map key and compared
// cheaply, while remaining stable across re-indexing runs on identical
// sources.
type SymbolID [16]byte

// NewSymbolID derives a SymbolID from the owning file's relative path, the
// symbol kind and its fully-qualified dotted name.
func NewSymbolID(filePath string, kind SymbolKind, qualifiedName string) SymbolID {
	key := filePath + "\x00" + kind.String() + "\x00" + qualifiedName
	digest := xxhash.New()
	digest.WriteString(key)
	hi := digest.Sum64()
	digest.Reset()
	digest.WriteString(key + "\x01")
	lo := digest.Sum64()

	var id SymbolID
	binary.BigEndian.PutUint64(id[:8], hi)
	binary.BigEndian.PutUint64(id[8:], lo)
	return id
}

// IsZero reports whether the SymbolID is the zero value (unset/placeholder).
func (s SymbolID) IsZero() bool {
	return s == SymbolID{}
}

// String renders the SymbolID as a hex string, used for output and as a
// stable placeholder key for unresolved references.
func (s SymbolID) String() string {
	return hex.EncodeToString(s[:])
}
