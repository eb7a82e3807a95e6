// Package memstore is an in-process implementation of store.Database used
// for fast, deterministic unit tests of the publishing engine (see
// DESIGN.md for why this is a pragmatic addition beyond the teacher's own
// postgres-only db_test.go pattern). It is not a cache and is not meant to
// back a real deployment; internal/store/postgresql is the durable
// implementation.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/ids"
	"github.com/tansive/learncore/internal/store"
	"github.com/tansive/learncore/internal/store/dberror"
	"github.com/tansive/learncore/internal/store/models"
)

// Store is an in-memory store.Database. Only WithTx takes the store's
// single mutex; the other methods do not lock, so calls made outside WithTx
// are not safe for concurrent use. The one mutex is stricter than
// Postgres's row-level locking but sufficient for tests that exercise spec
// §5's all-or-nothing transaction semantics.
type Store struct {
	mu sync.Mutex

	packages  map[int64]*models.LearningPackage
	entities  map[int64]*models.PublishableEntity
	versions  map[int64]*models.PublishableEntityVersion
	drafts    map[int64]*models.Draft
	published map[int64]*models.Published

	containers        map[int64]bool
	entityLists       map[int64]*models.EntityList
	entityListRows    map[int64][]*models.EntityListRow // by list id
	containerVersions map[int64]*models.ContainerVersion

	draftLogs        map[int64]*models.DraftChangeLog
	draftLogRecords  map[int64]*models.DraftChangeLogRecord
	draftSideEffects []*models.DraftSideEffect

	publishLogs        map[int64]*models.PublishLog
	publishLogRecords  map[int64]*models.PublishLogRecord
	publishSideEffects []*models.PublishSideEffect

	kindRegs    map[string]*models.KindRegistration
	entityKinds map[int64]string

	nextID int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		packages:          map[int64]*models.LearningPackage{},
		entities:          map[int64]*models.PublishableEntity{},
		versions:          map[int64]*models.PublishableEntityVersion{},
		drafts:            map[int64]*models.Draft{},
		published:         map[int64]*models.Published{},
		containers:        map[int64]bool{},
		entityLists:       map[int64]*models.EntityList{},
		entityListRows:    map[int64][]*models.EntityListRow{},
		containerVersions: map[int64]*models.ContainerVersion{},
		draftLogs:         map[int64]*models.DraftChangeLog{},
		draftLogRecords:   map[int64]*models.DraftChangeLogRecord{},
		publishLogs:       map[int64]*models.PublishLog{},
		publishLogRecords: map[int64]*models.PublishLogRecord{},
		kindRegs:          map[string]*models.KindRegistration{},
		entityKinds:       map[int64]string{},
	}
}

func (s *Store) newID() int64 {
	s.nextID++
	return s.nextID
}

// WithTx runs fn with the store's mutex held; on apperrors it leaves no
// partial state visible to other goroutines because memstore never
// releases the lock mid-mutation (spec §5).
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) apperrors.Error) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.clone()
	err := fn(ctx)
	if err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// clone/restore give WithTx rollback semantics by snapshotting every map.
// This is O(n) in store size per transaction, acceptable for tests.
func (s *Store) clone() *Store {
	cp := &Store{nextID: s.nextID}
	cp.packages = cloneMap(s.packages)
	cp.entities = cloneMap(s.entities)
	cp.versions = cloneMap(s.versions)
	cp.drafts = cloneMap(s.drafts)
	cp.published = cloneMap(s.published)
	cp.containers = cloneMap(s.containers)
	cp.entityLists = cloneMap(s.entityLists)
	cp.entityListRows = map[int64][]*models.EntityListRow{}
	for k, v := range s.entityListRows {
		cp.entityListRows[k] = append([]*models.EntityListRow{}, v...)
	}
	cp.containerVersions = cloneMap(s.containerVersions)
	cp.draftLogs = cloneMap(s.draftLogs)
	cp.draftLogRecords = cloneMap(s.draftLogRecords)
	cp.draftSideEffects = append([]*models.DraftSideEffect{}, s.draftSideEffects...)
	cp.publishLogs = cloneMap(s.publishLogs)
	cp.publishLogRecords = cloneMap(s.publishLogRecords)
	cp.publishSideEffects = append([]*models.PublishSideEffect{}, s.publishSideEffects...)
	cp.kindRegs = cloneMap(s.kindRegs)
	cp.entityKinds = cloneMap(s.entityKinds)
	return cp
}

func (s *Store) restore(from *Store) {
	s.packages = from.packages
	s.entities = from.entities
	s.versions = from.versions
	s.drafts = from.drafts
	s.published = from.published
	s.containers = from.containers
	s.entityLists = from.entityLists
	s.entityListRows = from.entityListRows
	s.containerVersions = from.containerVersions
	s.draftLogs = from.draftLogs
	s.draftLogRecords = from.draftLogRecords
	s.draftSideEffects = from.draftSideEffects
	s.publishLogs = from.publishLogs
	s.publishLogRecords = from.publishLogRecords
	s.publishSideEffects = from.publishSideEffects
	s.kindRegs = from.kindRegs
	s.entityKinds = from.entityKinds
	s.nextID = from.nextID
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	cp := make(map[K]V, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// AddPackageScope / DropPackageScope / Close are no-ops: memstore has no
// notion of connection-level session variables, unlike the Postgres
// implementation's RLS-style scoping.
func (s *Store) AddPackageScope(ctx context.Context, packageID int64) error { return nil }
func (s *Store) DropPackageScope(ctx context.Context) error                { return nil }
func (s *Store) Close(ctx context.Context)                                 {}

func newUUID() string { return ids.New().String() }

var _ store.Database = (*Store)(nil)

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// errNotFound is a tiny helper to keep call sites short.
func errNotFound(what string) apperrors.Error {
	return dberror.ErrNotFound.Msg(what + " not found")
}
