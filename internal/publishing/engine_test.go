package publishing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/memstore"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(memstore.New())
	require.NoError(t, e.RegisterStandardKinds(context.Background()))
	return e
}

func mustPackage(t *testing.T, e *Engine, key string) int64 {
	t.Helper()
	pkg, err := e.CreatePackage(context.Background(), key, key+" title", "", time.Time{})
	require.NoError(t, err)
	return pkg.ID
}

func strPtr(s string) *string { return &s }

// P1: version_num is monotonically increasing per entity and never reused,
// even across a reset (spec §8 P1, §4.2).
func TestVersionNumMonotonic(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	pkgID := mustPackage(t, e, "pkg1")

	ent, err := e.CreateEntity(ctx, pkgID, "entity-1", "alice", true, time.Time{})
	require.NoError(t, err)

	v1, err := e.CreateNextVersion(ctx, ent.ID, "v1", "alice", time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, v1.VersionNum)

	v2, err := e.CreateNextVersion(ctx, ent.ID, "v2", "alice", time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, v2.VersionNum)

	_, perr := e.PublishAllDrafts(ctx, pkgID, "publish v2", "alice")
	require.NoError(t, perr)

	require.NoError(t, e.ResetDraftsToPublished(ctx, pkgID, "alice"))

	v3, err := e.CreateNextVersion(ctx, ent.ID, "v3", "alice", time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, v3.VersionNum, "version numbers must never be reused, even after reset")
}

// create_entity/create_version/create_package reject a non-UTC created
// timestamp outright (spec §4.1 "rejecting non-UTC timestamps is a testable
// validation"), but accept the zero Time as shorthand for "now".
func TestCreateRejectsNonUTCTimestamp(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	local := time.Now().In(time.FixedZone("UTC-5", -5*60*60))

	_, err := e.CreatePackage(ctx, "pkg-non-utc", "title", "", local)
	require.Error(t, err)

	pkgID := mustPackage(t, e, "pkg-utc")

	_, err = e.CreateEntity(ctx, pkgID, "entity-1", "alice", true, local)
	require.Error(t, err)

	ent, err := e.CreateEntity(ctx, pkgID, "entity-1", "alice", true, time.Now().UTC())
	require.NoError(t, err)

	_, err = e.CreateVersion(ctx, ent.ID, 1, "v1", "alice", local)
	require.Error(t, err)

	_, err = e.CreateVersion(ctx, ent.ID, 1, "v1", "alice", time.Now().UTC())
	require.NoError(t, err)
}

// Import/export replay: a caller-supplied UTC created timestamp is recorded
// verbatim rather than replaced by the engine's clock (spec §6 "deterministic
// round-trip of package key/title/description/timestamps").
func TestCreateReplaysSuppliedTimestamp(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	historical := time.Date(2019, 3, 14, 9, 26, 53, 0, time.UTC)

	pkg, err := e.CreatePackage(ctx, "pkg-replay", "title", "", historical)
	require.NoError(t, err)
	assert.True(t, pkg.CreatedAt.Equal(historical))

	ent, err := e.CreateEntity(ctx, pkg.ID, "entity-1", "alice", true, historical)
	require.NoError(t, err)
	assert.True(t, ent.CreatedAt.Equal(historical))

	v, err := e.CreateVersion(ctx, ent.ID, 1, "v1", "alice", historical)
	require.NoError(t, err)
	assert.True(t, v.CreatedAt.Equal(historical))
}

// P2: draft == published == nil is never reported as an unpublished change
// (spec §8 P2, §4.3's tri-valued-null rule).
func TestBothNullIsNotUnpublished(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	pkgID := mustPackage(t, e, "pkg2")

	ent, err := e.CreateEntity(ctx, pkgID, "entity-1", "alice", true, time.Time{})
	require.NoError(t, err)

	has, err := e.HasUnpublishedChanges(ctx, ent.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

// P3: publishing an empty selection still produces a PublishLog with zero
// records (spec §8 P3).
func TestPublishEmptySelectionProducesLog(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	pkgID := mustPackage(t, e, "pkg3")

	log, err := e.PublishFromDrafts(ctx, pkgID, nil, "noop publish", "alice")
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.NotZero(t, log.ID)
	recs, lerr := e.store.ListPublishLogRecords(ctx, log.ID)
	require.NoError(t, lerr)
	assert.Empty(t, recs)
}

// P4: publishing with no unpublished changes, and resetting with none
// pending, are both idempotent no-ops (spec §8 P3, P4).
func TestPublishAndResetIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	pkgID := mustPackage(t, e, "pkg4")

	ent, err := e.CreateEntity(ctx, pkgID, "entity-1", "alice", true, time.Time{})
	require.NoError(t, err)
	_, err = e.CreateNextVersion(ctx, ent.ID, "v1", "alice", time.Time{})
	require.NoError(t, err)

	_, perr := e.PublishAllDrafts(ctx, pkgID, "first publish", "alice")
	require.NoError(t, perr)

	log2, perr := e.PublishAllDrafts(ctx, pkgID, "second publish, nothing changed", "alice")
	require.NoError(t, perr)
	recs, lerr := e.store.ListPublishLogRecords(ctx, log2.ID)
	require.NoError(t, lerr)
	assert.Empty(t, recs)

	require.NoError(t, e.ResetDraftsToPublished(ctx, pkgID, "alice"))
	require.NoError(t, e.ResetDraftsToPublished(ctx, pkgID, "alice"))
}

// P6 (partial): multiple edits to the same entity within one bulk-change
// session leave the entity on the session's final version (spec §8 P6,
// §4.5). The collapse into a single DraftChangeLogRecord is not asserted
// here.
func TestBulkChangeEndsOnFinalVersion(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	pkgID := mustPackage(t, e, "pkg6")

	ent, err := e.CreateEntity(ctx, pkgID, "entity-1", "alice", true, time.Time{})
	require.NoError(t, err)
	_, err = e.CreateNextVersion(ctx, ent.ID, "v1", "alice", time.Time{})
	require.NoError(t, err)
	_, perr := e.PublishAllDrafts(ctx, pkgID, "publish v1", "alice")
	require.NoError(t, perr)

	var v3 int64
	berr := e.BulkChange(ctx, pkgID, "alice", func(ctx context.Context) apperrors.Error {
		if _, err := e.CreateNextVersion(ctx, ent.ID, "v2", "alice", time.Time{}); err != nil {
			return err
		}
		v, err := e.CreateNextVersion(ctx, ent.ID, "v3", "alice", time.Time{})
		if err != nil {
			return err
		}
		v3 = v.ID
		return nil
	})
	require.NoError(t, berr)
	require.NotZero(t, v3)

	latest, err := e.LatestVersion(ctx, ent.ID)
	require.NoError(t, err)
	assert.Equal(t, v3, latest.ID)
}

// P7/P8: editing a deeply-nested component does not move the version of
// its unpinned parent container, and list-reuse means a metadata-only
// container edit keeps the same EntityList id (spec §8 P7, P8, §4.4, §4.5).
// The same-version side-effect records are not asserted here.
func TestSideEffectPropagationAndListReuse(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	pkgID := mustPackage(t, e, "pkg7")

	comp, err := e.Component(ctx, pkgID, "comp-1", "alice", time.Time{})
	require.NoError(t, err)
	_, err = e.CreateNextVersion(ctx, comp.ID, "comp v1", "alice", time.Time{})
	require.NoError(t, err)

	unit, err := e.Unit(ctx, pkgID, "unit-1", "alice", time.Time{})
	require.NoError(t, err)
	unitV1, err := e.CreateNextContainerVersion(ctx, unit.ID, strPtr("Unit One"), &[]ChildRef{{EntityID: comp.ID}}, "alice", ActionReplace, nil, time.Time{})
	require.NoError(t, err)

	section, err := e.Section(ctx, pkgID, "section-1", "alice", time.Time{})
	require.NoError(t, err)
	_, err = e.CreateNextContainerVersion(ctx, section.ID, strPtr("Section One"), &[]ChildRef{{EntityID: unit.ID}}, "alice", ActionReplace, nil, time.Time{})
	require.NoError(t, err)

	// Editing the component must not move the unit's own version.
	berr := e.BulkChange(ctx, pkgID, "alice", func(ctx context.Context) apperrors.Error {
		_, err := e.CreateNextVersion(ctx, comp.ID, "comp v2", "alice", time.Time{})
		return err
	})
	require.NoError(t, berr)

	unitDraft, err := e.GetDraft(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, unitV1.ID, unitDraft.ID, "the unit's own version must not move from a child edit")

	// Metadata-only container edit reuses the previous EntityList.
	before, err := e.store.GetContainerVersion(ctx, unitV1.ID)
	require.NoError(t, err)
	unitV2, err := e.CreateNextContainerVersion(ctx, unit.ID, strPtr("Unit One Renamed"), nil, "alice", ActionReplace, nil, time.Time{})
	require.NoError(t, err)
	after, err := e.store.GetContainerVersion(ctx, unitV2.ID)
	require.NoError(t, err)
	assert.Equal(t, before.EntityListID, after.EntityListID, "metadata-only change must reuse the previous entity list")
}

// P9: published_version_as_of resolves to the version that was current
// immediately after the named publish log, not the latest one (spec §8 P9,
// §4.7).
func TestPublishedVersionAsOf(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	pkgID := mustPackage(t, e, "pkg9")

	ent, err := e.CreateEntity(ctx, pkgID, "entity-1", "alice", true, time.Time{})
	require.NoError(t, err)

	v1, err := e.CreateNextVersion(ctx, ent.ID, "v1", "alice", time.Time{})
	require.NoError(t, err)
	log1, perr := e.PublishAllDrafts(ctx, pkgID, "publish v1", "alice")
	require.NoError(t, perr)

	_, err = e.CreateNextVersion(ctx, ent.ID, "v2", "alice", time.Time{})
	require.NoError(t, err)
	_, perr = e.PublishAllDrafts(ctx, pkgID, "publish v2", "alice")
	require.NoError(t, perr)

	asOf, qerr := e.PublishedVersionAsOf(ctx, ent.ID, log1.ID)
	require.NoError(t, qerr)
	require.NotNil(t, asOf)
	assert.Equal(t, v1.ID, *asOf)
}

// Scenario: resetting drafts to published discards unpublished edits and
// restores the tri-valued-null invariant without creating a new version.
func TestResetDiscardsUnpublishedEdits(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	pkgID := mustPackage(t, e, "pkg10")

	ent, err := e.CreateEntity(ctx, pkgID, "entity-1", "alice", true, time.Time{})
	require.NoError(t, err)
	v1, err := e.CreateNextVersion(ctx, ent.ID, "v1", "alice", time.Time{})
	require.NoError(t, err)
	_, perr := e.PublishAllDrafts(ctx, pkgID, "publish v1", "alice")
	require.NoError(t, perr)

	_, err = e.CreateNextVersion(ctx, ent.ID, "v2 unpublished", "alice", time.Time{})
	require.NoError(t, err)

	has, herr := e.HasUnpublishedChanges(ctx, ent.ID)
	require.NoError(t, herr)
	assert.True(t, has)

	require.NoError(t, e.ResetDraftsToPublished(ctx, pkgID, "alice"))

	draft, derr := e.GetDraft(ctx, ent.ID)
	require.NoError(t, derr)
	assert.Equal(t, v1.ID, draft.ID)

	has, herr = e.HasUnpublishedChanges(ctx, ent.ID)
	require.NoError(t, herr)
	assert.False(t, has)
}
