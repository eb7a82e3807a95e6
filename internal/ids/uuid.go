// Package ids provides UUIDv7 identifiers for every engine aggregate
// (entities, versions, logs, entity lists). UUIDv7 keeps ids roughly
// time-ordered, which lets the engine cheaply approximate creation order
// without an extra index, and is what the teacher's own id package does.
package ids

import (
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

// UUID is aliased from github.com/google/uuid.UUID.
type UUID = uuid.UUID

// New returns a new random UUIDv7. Panics if UUID generation fails, which
// only happens if the system's random source is broken.
func New() UUID {
	u, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return u
}

// NewRandom returns a new random UUIDv7 and any generation error.
func NewRandom() (UUID, error) {
	return uuid.NewV7()
}

// Parse parses a UUID string.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// MustParse parses a UUID string and panics on error.
func MustParse(s string) UUID {
	return uuid.MustParse(s)
}

// IsUUIDv7 reports whether id is a version-7 UUID.
func IsUUIDv7(id UUID) bool {
	return id.Version() == uuid.Version(7)
}

// GetTimestampFromUUID extracts the embedded millisecond timestamp from a
// UUIDv7 value.
func GetTimestampFromUUID(u UUID) time.Time {
	tsMillis := binary.BigEndian.Uint64(u[0:8]) >> 16
	if tsMillis > uint64(1<<63-1) {
		return time.UnixMilli(1<<63 - 1)
	}
	return time.UnixMilli(int64(tsMillis))
}

// CompareUUIDv7 orders two UUIDv7 values by their byte representation,
// which is monotonic with creation time for this version.
func CompareUUIDv7(a, b UUID) int {
	for i := range a {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

// IsBefore reports whether a was created before b.
func IsBefore(a, b UUID) bool {
	return CompareUUIDv7(a, b) == -1
}

// IsAfter reports whether a was created after b.
func IsAfter(a, b UUID) bool {
	return CompareUUIDv7(a, b) == 1
}

// Nil is the zero UUID.
var Nil = uuid.Nil
