// Package store defines the durable-storage interface the publishing
// engine is written against (spec §6 "Durable store"), following the
// teacher's pattern of splitting the database surface into narrow
// sub-interfaces (MetadataManager/ObjectManager/ConnectionManager) that are
// combined into one Database value per request. internal/store/postgresql
// and internal/store/memstore each implement Database.
package store

import (
	"context"
	"time"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/models"
)

// PackageStore manages LearningPackage rows (spec §4.1).
type PackageStore interface {
	CreatePackage(ctx context.Context, pkg *models.LearningPackage) apperrors.Error
	GetPackage(ctx context.Context, id int64) (*models.LearningPackage, apperrors.Error)
	GetPackageByKey(ctx context.Context, key string) (*models.LearningPackage, apperrors.Error)
	UpdatePackage(ctx context.Context, pkg *models.LearningPackage) apperrors.Error
	DeletePackage(ctx context.Context, id int64) apperrors.Error
}

// EntityStore manages PublishableEntity rows (spec §4.1).
type EntityStore interface {
	CreateEntity(ctx context.Context, e *models.PublishableEntity) apperrors.Error
	GetEntity(ctx context.Context, id int64) (*models.PublishableEntity, apperrors.Error)
	GetEntityByKey(ctx context.Context, packageID int64, key string) (*models.PublishableEntity, apperrors.Error)
	ListEntitiesByPackage(ctx context.Context, packageID int64) ([]*models.PublishableEntity, apperrors.Error)
}

// VersionStore manages PublishableEntityVersion rows (spec §4.2).
type VersionStore interface {
	CreateVersion(ctx context.Context, v *models.PublishableEntityVersion) apperrors.Error
	GetVersion(ctx context.Context, id int64) (*models.PublishableEntityVersion, apperrors.Error)
	LatestVersion(ctx context.Context, entityID int64) (*models.PublishableEntityVersion, apperrors.Error)
	ListVersions(ctx context.Context, entityID int64) ([]*models.PublishableEntityVersion, apperrors.Error)
}

// HeadStore manages the draft/published head pointers (spec §3 "Heads",
// §4.3). These are low-level primitives; callers that need log propagation
// use internal/publishing, not this interface directly.
type HeadStore interface {
	GetDraft(ctx context.Context, entityID int64) (*models.Draft, apperrors.Error)
	SetDraftHead(ctx context.Context, entityID int64, versionID *int64) apperrors.Error
	GetPublished(ctx context.Context, entityID int64) (*models.Published, apperrors.Error)
	SetPublishedHead(ctx context.Context, entityID int64, versionID *int64, publishLogRecordID *int64) apperrors.Error
}

// ContainerStore manages containers, container versions, and entity lists
// (spec §4.4).
type ContainerStore interface {
	MarkContainer(ctx context.Context, entityID int64) apperrors.Error
	IsContainer(ctx context.Context, entityID int64) (bool, apperrors.Error)

	CreateEntityList(ctx context.Context, list *models.EntityList, rows []*models.EntityListRow) apperrors.Error
	GetEntityList(ctx context.Context, id int64) (*models.EntityList, apperrors.Error)
	ListEntityListRows(ctx context.Context, listID int64) ([]*models.EntityListRow, apperrors.Error)

	CreateContainerVersion(ctx context.Context, cv *models.ContainerVersion) apperrors.Error
	GetContainerVersion(ctx context.Context, versionID int64) (*models.ContainerVersion, apperrors.Error)

	// ContainersReferencingEntity returns every container version's
	// ContainerVersion row that has an EntityListRow pointing at entityID,
	// used by side-effect propagation (§4.5, §4.7) and reverse lookup
	// (§4.7 containers_with_entity).
	ContainersReferencingEntity(ctx context.Context, entityID int64, includePinned bool) ([]*models.ContainerVersion, apperrors.Error)
}

// LogStore manages DraftChangeLog/PublishLog and their records and
// side-effect edges (spec §4.5, §4.6).
type LogStore interface {
	InsertDraftChangeLog(ctx context.Context, log *models.DraftChangeLog) apperrors.Error
	UpsertDraftChangeLogRecord(ctx context.Context, r *models.DraftChangeLogRecord) apperrors.Error
	GetDraftChangeLogRecord(ctx context.Context, logID, entityID int64) (*models.DraftChangeLogRecord, apperrors.Error)
	ListDraftChangeLogRecords(ctx context.Context, logID int64) ([]*models.DraftChangeLogRecord, apperrors.Error)
	InsertDraftSideEffect(ctx context.Context, e *models.DraftSideEffect) apperrors.Error

	InsertPublishLog(ctx context.Context, log *models.PublishLog) apperrors.Error
	UpsertPublishLogRecord(ctx context.Context, r *models.PublishLogRecord) apperrors.Error
	GetPublishLogRecord(ctx context.Context, logID, entityID int64) (*models.PublishLogRecord, apperrors.Error)
	ListPublishLogRecords(ctx context.Context, logID int64) ([]*models.PublishLogRecord, apperrors.Error)
	InsertPublishSideEffect(ctx context.Context, e *models.PublishSideEffect) apperrors.Error

	// LatestPublishLogRecordUpTo returns the most recent PublishLogRecord
	// for entityID whose publish_log_id <= upToLogID, or nil if none
	// exists (spec §4.7 published_version_as_of, §8 P9).
	LatestPublishLogRecordUpTo(ctx context.Context, entityID int64, upToLogID int64) (*models.PublishLogRecord, apperrors.Error)

	// LastPublishLogRecord returns the most recent PublishLogRecord for
	// entityID, or nil (SPEC_FULL §3 supplemented feature).
	LastPublishLogRecord(ctx context.Context, entityID int64) (*models.PublishLogRecord, apperrors.Error)
}

// KindStore manages the durable half of the kind registry (spec §4.8).
type KindStore interface {
	UpsertKindRegistration(ctx context.Context, k *models.KindRegistration) apperrors.Error
	GetKindRegistration(ctx context.Context, name string) (*models.KindRegistration, apperrors.Error)
	SetEntityKind(ctx context.Context, entityID int64, kind string) apperrors.Error
	GetEntityKind(ctx context.Context, entityID int64) (string, apperrors.Error)
}

// ConnectionManager manages connection-scoped state and lifecycle, mirrored
// from the teacher's ConnectionManager (adds package-scope management where
// the teacher adds tenant/project scope management).
type ConnectionManager interface {
	AddPackageScope(ctx context.Context, packageID int64) error
	DropPackageScope(ctx context.Context) error
	Close(ctx context.Context)
}

// TxManager runs fn inside a single transaction, committing on success and
// rolling back on error or panic, per spec §5's "fully committed on close
// or fully discarded on error".
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) apperrors.Error) apperrors.Error
}

// Database is the full storage surface the publishing engine is written
// against.
type Database interface {
	PackageStore
	EntityStore
	VersionStore
	HeadStore
	ContainerStore
	LogStore
	KindStore
	ConnectionManager
	TxManager
}

// Clock lets tests and the import/export collaborator supply a fixed "now"
// instead of the real wall clock, since spec §4.1 requires UTC timestamps
// and package timestamps default to "now" when omitted.
type Clock func() time.Time

// UTCNow is the default Clock.
func UTCNow() time.Time { return time.Now().UTC() }
