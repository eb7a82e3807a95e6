package models

import "time"

// DraftChangeLog is one atomic bulk-change session's record, scoped to a
// single learning package (spec §4.5).
//
// CREATE TABLE draft_change_logs (
//     id                  BIGSERIAL PRIMARY KEY,
//     uuid                UUID NOT NULL UNIQUE,
//     learning_package_id BIGINT NOT NULL REFERENCES learning_packages(id) ON DELETE CASCADE,
//     changed_at          TIMESTAMPTZ NOT NULL,
//     changed_by          TEXT NOT NULL DEFAULT ''
// );
type DraftChangeLog struct {
	ID                int64     `db:"id"`
	UUID              string    `db:"uuid"`
	LearningPackageID int64     `db:"learning_package_id"`
	ChangedAt         time.Time `db:"changed_at"`
	ChangedBy         string    `db:"changed_by"`
}

// DraftChangeLogRecord is the at-most-one-per-entity-per-log record of how
// an entity's draft head moved during a session (spec §3, §4.5). A record
// whose OldVersionID == NewVersionID is a "same-version affected" record
// produced by side-effect propagation (spec §3 "Logs").
//
// CREATE TABLE draft_change_log_records (
//     id                   BIGSERIAL PRIMARY KEY,
//     draft_change_log_id  BIGINT NOT NULL REFERENCES draft_change_logs(id) ON DELETE CASCADE,
//     entity_id            BIGINT NOT NULL REFERENCES publishable_entities(id),
//     old_version_id       BIGINT REFERENCES publishable_entity_versions(id),
//     new_version_id       BIGINT REFERENCES publishable_entity_versions(id),
//     CONSTRAINT dclr_uniq_log_entity UNIQUE (draft_change_log_id, entity_id)
// );
// CREATE INDEX dclr_entity_log_idx ON draft_change_log_records (entity_id, draft_change_log_id DESC);
type DraftChangeLogRecord struct {
	ID               int64  `db:"id"`
	DraftChangeLogID int64  `db:"draft_change_log_id"`
	EntityID         int64  `db:"entity_id"`
	OldVersionID     *int64 `db:"old_version_id"`
	NewVersionID     *int64 `db:"new_version_id"`
}

// DraftSideEffect is a directed edge within one DraftChangeLog recording
// that the cause record's change affected the effect record's entity (spec
// §3 "Logs", §4.5 "Propagate").
//
// CREATE TABLE draft_side_effects (
//     id        BIGSERIAL PRIMARY KEY,
//     cause_id  BIGINT NOT NULL REFERENCES draft_change_log_records(id) ON DELETE CASCADE,
//     effect_id BIGINT NOT NULL REFERENCES draft_change_log_records(id) ON DELETE CASCADE,
//     CONSTRAINT dse_uniq_cause_effect UNIQUE (cause_id, effect_id)
// );
type DraftSideEffect struct {
	ID       int64 `db:"id"`
	CauseID  int64 `db:"cause_id"`
	EffectID int64 `db:"effect_id"`
}
