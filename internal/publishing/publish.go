package publishing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/ids"
	"github.com/tansive/learncore/internal/store/models"
)

// PublishAllDrafts selects every draft head that differs from its
// published head, excluding both-null rows, and publishes that selection
// (spec §4.6).
func (e *Engine) PublishAllDrafts(ctx context.Context, packageID int64, message, by string) (*models.PublishLog, apperrors.Error) {
	selection, err := e.EntitiesWithUnpublishedChanges(ctx, packageID, true)
	if err != nil {
		return nil, err
	}
	return e.PublishFromDrafts(ctx, packageID, selection, message, by)
}

// PublishFromDrafts publishes a caller-provided subset, recursively
// auto-including unpinned container descendants whose draft differs from
// their published head (spec §4.6; the recursion resolves spec §9's
// one-level limitation). The whole operation is one transaction: a partial
// failure leaves no log (spec §4.6 "Publishing is atomic").
func (e *Engine) PublishFromDrafts(ctx context.Context, packageID int64, selection []int64, message, by string) (*models.PublishLog, apperrors.Error) {
	var log *models.PublishLog
	txErr := e.store.WithTx(ctx, func(ctx context.Context) apperrors.Error {
		expanded, err := e.expandPublishSelection(ctx, selection)
		if err != nil {
			return err
		}

		var changed []int64
		for _, eid := range expanded {
			d, err := e.store.GetDraft(ctx, eid)
			if err != nil {
				return err
			}
			p, err := e.store.GetPublished(ctx, eid)
			if err != nil {
				return err
			}
			if !ptrEqual(d.VersionID, p.VersionID) {
				changed = append(changed, eid)
			}
		}

		log = &models.PublishLog{
			UUID:              ids.New().String(),
			LearningPackageID: packageID,
			Message:           message,
			PublishedAt:       e.now(),
			PublishedBy:       by,
		}
		if err := e.store.InsertPublishLog(ctx, log); err != nil {
			return err
		}

		recordIDs := map[int64]int64{}
		order := make([]int64, 0, len(changed))
		for _, eid := range changed {
			d, err := e.store.GetDraft(ctx, eid)
			if err != nil {
				return err
			}
			p, err := e.store.GetPublished(ctx, eid)
			if err != nil {
				return err
			}
			depHash, err := e.dependenciesHashFor(ctx, eid, d.VersionID)
			if err != nil {
				return err
			}
			row := &models.PublishLogRecord{
				PublishLogID:     log.ID,
				EntityID:         eid,
				OldVersionID:     p.VersionID,
				NewVersionID:     d.VersionID,
				DependenciesHash: depHash,
			}
			if err := e.store.UpsertPublishLogRecord(ctx, row); err != nil {
				return err
			}
			recordIDs[eid] = row.ID
			order = append(order, eid)
			if err := e.store.SetPublishedHead(ctx, eid, d.VersionID, &row.ID); err != nil {
				return err
			}
		}

		return e.propagatePublishSideEffects(ctx, log, recordIDs, order)
	})
	if txErr != nil {
		return nil, txErr
	}
	return log, nil
}

// expandPublishSelection walks every container in the selection, including
// all unpinned children whose draft head differs from their published
// head, transitively (spec §4.6 "Descendant auto-inclusion").
func (e *Engine) expandPublishSelection(ctx context.Context, selection []int64) ([]int64, apperrors.Error) {
	seen := map[int64]bool{}
	var result []int64
	queue := append([]int64{}, selection...)
	for len(queue) > 0 {
		eid := queue[0]
		queue = queue[1:]
		if seen[eid] {
			continue
		}
		seen[eid] = true
		result = append(result, eid)

		isContainer, err := e.store.IsContainer(ctx, eid)
		if err != nil {
			return nil, err
		}
		if !isContainer {
			continue
		}
		draft, err := e.store.GetDraft(ctx, eid)
		if err != nil {
			return nil, err
		}
		if draft.VersionID == nil {
			continue
		}
		cv, err := e.store.GetContainerVersion(ctx, *draft.VersionID)
		if err != nil {
			return nil, err
		}
		rows, err := e.store.ListEntityListRows(ctx, cv.EntityListID)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if row.IsPinned() || seen[row.EntityID] {
				continue
			}
			childDraft, err := e.store.GetDraft(ctx, row.EntityID)
			if err != nil {
				return nil, err
			}
			childPub, err := e.store.GetPublished(ctx, row.EntityID)
			if err != nil {
				return nil, err
			}
			if !ptrEqual(childDraft.VersionID, childPub.VersionID) {
				queue = append(queue, row.EntityID)
			}
		}
	}
	return result, nil
}

// propagatePublishSideEffects mirrors the draft-side propagation
// (session.go) but walks ancestor containers via their PUBLISHED version
// rather than their draft version, creating same-version records for any
// ancestor whose effective published content changed even though its own
// version didn't move (spec §4.6).
func (e *Engine) propagatePublishSideEffects(ctx context.Context, log *models.PublishLog, recordIDs map[int64]int64, order []int64) apperrors.Error {
	visited := map[int64]bool{}
	seenEffect := map[sideEffectPair]bool{}
	queue := append([]int64{}, order...)
	for len(queue) > 0 {
		child := queue[0]
		queue = queue[1:]
		if visited[child] {
			continue
		}
		visited[child] = true

		parents, err := e.currentPublishedParentContainers(ctx, child)
		if err != nil {
			return err
		}
		for _, parentEntityID := range parents {
			recID, exists := recordIDs[parentEntityID]
			if !exists {
				p, err := e.store.GetPublished(ctx, parentEntityID)
				if err != nil {
					return err
				}
				depHash, err := e.dependenciesHashFor(ctx, parentEntityID, p.VersionID)
				if err != nil {
					return err
				}
				row := &models.PublishLogRecord{
					PublishLogID:     log.ID,
					EntityID:         parentEntityID,
					OldVersionID:     p.VersionID,
					NewVersionID:     p.VersionID,
					DependenciesHash: depHash,
				}
				if err := e.store.UpsertPublishLogRecord(ctx, row); err != nil {
					return err
				}
				recordIDs[parentEntityID] = row.ID
				recID = row.ID
				queue = append(queue, parentEntityID)
			}
			pair := sideEffectPair{causeEntity: child, effectEntity: parentEntityID}
			if seenEffect[pair] {
				continue
			}
			seenEffect[pair] = true
			causeID, ok := recordIDs[child]
			if !ok {
				continue
			}
			if err := e.store.InsertPublishSideEffect(ctx, &models.PublishSideEffect{CauseID: causeID, EffectID: recID}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) currentPublishedParentContainers(ctx context.Context, entityID int64) ([]int64, apperrors.Error) {
	cvs, err := e.store.ContainersReferencingEntity(ctx, entityID, false)
	if err != nil {
		return nil, err
	}
	seen := map[int64]bool{}
	var out []int64
	for _, cv := range cvs {
		pub, err := e.store.GetPublished(ctx, cv.ContainerID)
		if err != nil {
			return nil, err
		}
		if pub.VersionID == nil || *pub.VersionID != cv.VersionID {
			continue
		}
		if !seen[cv.ContainerID] {
			seen[cv.ContainerID] = true
			out = append(out, cv.ContainerID)
		}
	}
	return out, nil
}

// dependenciesHashFor computes a stable hash over the published-effective
// child sequence when entityID is a container with a version, so that two
// publishes leaving the container's own version unchanged remain
// distinguishable when their unpinned descendants' published state differs
// (spec §4.6, §9: "implementers should compute it consistently for every
// container record"). Returns nil for non-containers.
func (e *Engine) dependenciesHashFor(ctx context.Context, entityID int64, versionID *int64) (*string, apperrors.Error) {
	isContainer, err := e.store.IsContainer(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if !isContainer || versionID == nil {
		return nil, nil
	}
	children, err := e.EntitiesInContainer(ctx, *versionID, ResolveMode{Published: true})
	if err != nil {
		return nil, err
	}
	h := sha256.New()
	for _, c := range children {
		fmt.Fprintf(h, "%d:%d;", c.EntityID, c.VersionID)
	}
	sum := hex.EncodeToString(h.Sum(nil))
	return &sum, nil
}
