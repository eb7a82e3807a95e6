package publishing

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/ids"
	"github.com/tansive/learncore/internal/logtrace"
	"github.com/tansive/learncore/internal/store/models"
)

// session is the in-memory pending DraftChangeLog described by spec §4.5:
// "begin a transaction, create a pending DraftChangeLog object in memory."
// Records and side effects accumulate here and are only persisted by
// closeSession, which is invoked once — by the outermost BulkChange call —
// because "sessions do not nest: opening a session while one is already
// open is permitted and joins the outer session (the inner close is a
// no-op)" (spec §4.5).
type session struct {
	packageID int64
	changedBy string
	at        time.Time

	records map[int64]*recordState
	order   []int64 // entity ids in first-touched order, for deterministic output

	sideEffects []sideEffectPair
	seenEffect  map[sideEffectPair]bool
}

type recordState struct {
	oldVersionID *int64
	newVersionID *int64
}

type sideEffectPair struct {
	causeEntity  int64
	effectEntity int64
}

type sessionKey struct{}

func withSession(ctx context.Context, s *session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func sessionFromContext(ctx context.Context) (*session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*session)
	return s, ok
}

// BulkChange opens a bulk-change session scoped to packageID, runs fn, and
// on success persists one DraftChangeLog with its records and side-effect
// edges as a single atomic transaction (spec §4.5). If fn is called while a
// session is already open on ctx, it joins that outer session instead of
// starting a new one — the entire call runs as part of the outer session
// and this call's own open/close is a no-op, per spec §4.5's no-nesting
// rule. Use this for any caller-initiated bulk edit; the engine also opens
// an implicit single-operation session around every mutation performed
// outside of an explicit BulkChange call.
func (e *Engine) BulkChange(ctx context.Context, packageID int64, changedBy string, fn func(ctx context.Context) apperrors.Error) apperrors.Error {
	if _, ok := sessionFromContext(ctx); ok {
		return fn(ctx)
	}
	sess := &session{
		packageID:  packageID,
		changedBy:  changedBy,
		at:         e.now(),
		records:    map[int64]*recordState{},
		seenEffect: map[sideEffectPair]bool{},
	}
	sessionID := ids.New().String()
	ctx2 := logtrace.WithSessionID(withSession(ctx, sess), sessionID)
	err := e.store.WithTx(ctx2, func(txCtx context.Context) apperrors.Error {
		if err := fn(txCtx); err != nil {
			return err
		}
		return e.closeSession(txCtx, sess)
	})
	if err != nil {
		log.Ctx(ctx2).Error().Err(err).Str("session_id", sessionID).Int64("package_id", packageID).Msg("bulk change rolled back")
		return err
	}
	log.Ctx(ctx2).Debug().Str("session_id", sessionID).Int64("package_id", packageID).Int("entities_touched", len(sess.order)).Msg("bulk change committed")
	return nil
}

// withImplicitSession runs fn as a single-operation bulk-change session if
// ctx doesn't already have one open, per spec §4.5 ("every create_version,
// set_draft, ... consults the current log").
func (e *Engine) withImplicitSession(ctx context.Context, packageID int64, changedBy string, fn func(ctx context.Context) apperrors.Error) apperrors.Error {
	return e.BulkChange(ctx, packageID, changedBy, fn)
}

// recordDraftChange registers (or updates) this session's record for
// entityID and retargets its draft head to newVersionID. The record's
// OldVersionID is fixed on first touch to the head's value at that moment
// — which, because this is the first mutation of entityID within the
// session, equals the session-start head. This is the resolved convention
// for the open question in spec §9 (see SPEC_FULL.md §4.2): subsequent
// touches within the same session only update NewVersionID, producing the
// bulk-collapse behavior required by spec §8 P6.
func (e *Engine) recordDraftChange(ctx context.Context, entityID int64, newVersionID *int64) apperrors.Error {
	sess, ok := sessionFromContext(ctx)
	if !ok {
		return invariantErr("recordDraftChange called outside a session")
	}
	if r, exists := sess.records[entityID]; exists {
		r.newVersionID = newVersionID
	} else {
		head, err := e.store.GetDraft(ctx, entityID)
		if err != nil {
			return err
		}
		sess.records[entityID] = &recordState{oldVersionID: head.VersionID, newVersionID: newVersionID}
		sess.order = append(sess.order, entityID)
	}
	return e.store.SetDraftHead(ctx, entityID, newVersionID)
}

// recordSameVersionEffect ensures a "same-version affected" record exists
// for entityID (old == new == current draft head) without moving the head,
// and adds a side-effect edge from causeEntityID to entityID (spec §4.5
// "Propagate", §3 "a degenerate record ... old_version == new_version").
func (e *Engine) recordSameVersionEffect(ctx context.Context, sess *session, causeEntityID, entityID int64) (created bool, _ apperrors.Error) {
	if _, exists := sess.records[entityID]; !exists {
		head, err := e.store.GetDraft(ctx, entityID)
		if err != nil {
			return false, err
		}
		sess.records[entityID] = &recordState{oldVersionID: head.VersionID, newVersionID: head.VersionID}
		sess.order = append(sess.order, entityID)
		created = true
	}
	pair := sideEffectPair{causeEntity: causeEntityID, effectEntity: entityID}
	if !sess.seenEffect[pair] {
		sess.seenEffect[pair] = true
		sess.sideEffects = append(sess.sideEffects, pair)
	}
	return created, nil
}

// propagateDraftSideEffects walks outward from every entity touched in
// this session to every ancestor container whose effective draft content
// is reachable through an unpinned reference (spec §4.5 "Propagate",
// §8 P7). It is a breadth-first transitive closure, resolving spec §9's
// note that descendant/ancestor traversal should generalize past one
// level.
func (e *Engine) propagateDraftSideEffects(ctx context.Context, sess *session) apperrors.Error {
	visited := map[int64]bool{}
	queue := append([]int64{}, sess.order...)
	for len(queue) > 0 {
		child := queue[0]
		queue = queue[1:]
		if visited[child] {
			continue
		}
		visited[child] = true

		parents, err := e.currentDraftParentContainers(ctx, child)
		if err != nil {
			return err
		}
		for _, parentEntityID := range parents {
			created, err := e.recordSameVersionEffect(ctx, sess, child, parentEntityID)
			if err != nil {
				return err
			}
			if created || !visited[parentEntityID] {
				queue = append(queue, parentEntityID)
			}
		}
	}
	return nil
}

// currentDraftParentContainers returns the entity ids of every container
// whose CURRENT draft ContainerVersion unpinned-references entityID (spec
// §4.4, §4.7 "Pinned references are ignored because they freeze content").
func (e *Engine) currentDraftParentContainers(ctx context.Context, entityID int64) ([]int64, apperrors.Error) {
	cvs, err := e.store.ContainersReferencingEntity(ctx, entityID, false)
	if err != nil {
		return nil, err
	}
	seen := map[int64]bool{}
	var out []int64
	for _, cv := range cvs {
		draft, err := e.store.GetDraft(ctx, cv.ContainerID)
		if err != nil {
			return nil, err
		}
		if draft.VersionID == nil || *draft.VersionID != cv.VersionID {
			continue // this container version is not the current draft
		}
		if !seen[cv.ContainerID] {
			seen[cv.ContainerID] = true
			out = append(out, cv.ContainerID)
		}
	}
	return out, nil
}

// closeSession persists the pending DraftChangeLog, its records, and its
// side-effect edges. If no record was ever created, nothing is persisted
// (spec §4.5 "Close").
func (e *Engine) closeSession(ctx context.Context, sess *session) apperrors.Error {
	if err := e.propagateDraftSideEffects(ctx, sess); err != nil {
		return err
	}
	if len(sess.records) == 0 {
		return nil
	}

	log := &models.DraftChangeLog{
		LearningPackageID: sess.packageID,
		ChangedAt:         sess.at,
		ChangedBy:         sess.changedBy,
	}
	if err := e.store.InsertDraftChangeLog(ctx, log); err != nil {
		return err
	}

	recordIDs := make(map[int64]int64, len(sess.order))
	for _, entityID := range sess.order {
		r := sess.records[entityID]
		row := &models.DraftChangeLogRecord{
			DraftChangeLogID: log.ID,
			EntityID:         entityID,
			OldVersionID:     r.oldVersionID,
			NewVersionID:     r.newVersionID,
		}
		if err := e.store.UpsertDraftChangeLogRecord(ctx, row); err != nil {
			return err
		}
		recordIDs[entityID] = row.ID
	}

	for _, pair := range sess.sideEffects {
		causeID, ok1 := recordIDs[pair.causeEntity]
		effectID, ok2 := recordIDs[pair.effectEntity]
		if !ok1 || !ok2 {
			continue
		}
		if err := e.store.InsertDraftSideEffect(ctx, &models.DraftSideEffect{CauseID: causeID, EffectID: effectID}); err != nil {
			return err
		}
	}
	return nil
}
