package models

import "time"

// PublishLog is one atomic publish operation's record (spec §4.6).
// Deliberately has no version_num-style monotonic counter beyond its
// serial id, to avoid write contention across concurrent publishes
// to different packages (mirrors the original's documented reason for
// leaving PublishLog unnumbered).
//
// CREATE TABLE publish_logs (
//     id                  BIGSERIAL PRIMARY KEY,
//     uuid                UUID NOT NULL UNIQUE,
//     learning_package_id BIGINT NOT NULL REFERENCES learning_packages(id) ON DELETE CASCADE,
//     message             TEXT NOT NULL DEFAULT '',
//     published_at        TIMESTAMPTZ NOT NULL,
//     published_by        TEXT NOT NULL DEFAULT ''
// );
type PublishLog struct {
	ID                int64     `db:"id"`
	UUID              string    `db:"uuid"`
	LearningPackageID int64     `db:"learning_package_id"`
	Message           string    `db:"message"`
	PublishedAt       time.Time `db:"published_at"`
	PublishedBy       string    `db:"published_by"`
}

// PublishLogRecord is the at-most-one-per-entity-per-log record of how an
// entity's published head moved (spec §3, §4.6). DependenciesHash is set
// for container records so that two publishes leaving the container's own
// version unchanged but its unpinned descendants' published state different
// remain distinguishable (spec §4.6, §9).
//
// CREATE TABLE publish_log_records (
//     id                    BIGSERIAL PRIMARY KEY,
//     publish_log_id        BIGINT NOT NULL REFERENCES publish_logs(id) ON DELETE CASCADE,
//     entity_id             BIGINT NOT NULL REFERENCES publishable_entities(id),
//     old_version_id        BIGINT REFERENCES publishable_entity_versions(id),
//     new_version_id        BIGINT REFERENCES publishable_entity_versions(id),
//     dependencies_hash     TEXT,
//     CONSTRAINT plr_uniq_log_entity UNIQUE (publish_log_id, entity_id)
// );
// CREATE INDEX plr_entity_log_idx ON publish_log_records (entity_id, publish_log_id DESC);
type PublishLogRecord struct {
	ID               int64   `db:"id"`
	PublishLogID     int64   `db:"publish_log_id"`
	EntityID         int64   `db:"entity_id"`
	OldVersionID     *int64  `db:"old_version_id"`
	NewVersionID     *int64  `db:"new_version_id"`
	DependenciesHash *string `db:"dependencies_hash"`
}

// PublishSideEffect is the publish-side analogue of DraftSideEffect.
//
// CREATE TABLE publish_side_effects (
//     id        BIGSERIAL PRIMARY KEY,
//     cause_id  BIGINT NOT NULL REFERENCES publish_log_records(id) ON DELETE CASCADE,
//     effect_id BIGINT NOT NULL REFERENCES publish_log_records(id) ON DELETE CASCADE,
//     CONSTRAINT pse_uniq_cause_effect UNIQUE (cause_id, effect_id)
// );
type PublishSideEffect struct {
	ID       int64 `db:"id"`
	CauseID  int64 `db:"cause_id"`
	EffectID int64 `db:"effect_id"`
}
