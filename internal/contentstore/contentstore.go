// Package contentstore implements the ContentStore collaborator (spec §6):
// a content-addressed blob store keyed by hash, consumed by leaf kinds to
// attach files/text to their versions. The core stores only an opaque
// reference (hash + mime-type + size); this package is the only thing that
// ever looks at the bytes themselves.
package contentstore

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/h2non/filetype"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/dberror"
)

// Reference is the opaque pointer the core persists alongside a version
// (spec §6 "it does not interpret content").
type Reference struct {
	Hash     string
	MimeType string
	Size     int64
}

// Store is a content-addressed in-memory blob store keyed by sha256 hash.
// A durable deployment would back this with object storage; the interface
// shape (put/get/exists by hash) is what §6 requires, not the backing
// medium, so this in-memory version already satisfies every caller.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{blobs: map[string][]byte{}}
}

// PutBytes stores data and returns its Reference (spec §6 "put_bytes(bytes)
// → hash"). MIME type is sniffed from the data itself, falling back to
// "application/octet-stream" for content filetype doesn't recognize (text,
// for instance, sniffs to Unknown).
func (s *Store) PutBytes(data []byte) (Reference, apperrors.Error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	mime := "application/octet-stream"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		mime = kind.MIME.Value
	}

	s.mu.Lock()
	s.blobs[hash] = append([]byte{}, data...)
	s.mu.Unlock()

	return Reference{Hash: hash, MimeType: mime, Size: int64(len(data))}, nil
}

// GetBytes returns the bytes stored under hash, or *NotFound* (spec §6
// "get_bytes(hash) → bytes").
func (s *Store) GetBytes(hash string) ([]byte, apperrors.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[hash]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("content not found: " + hash)
	}
	return append([]byte{}, data...), nil
}

// Exists reports whether hash has been stored (spec §6 "exists(hash)").
func (s *Store) Exists(hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[hash]
	return ok
}
