package models

import "time"

// PublishableEntity is a stable identity for a piece of authored content
// (spec §3). Entities are never hard-deleted through normal operations.
//
// CREATE TABLE publishable_entities (
//     id                  BIGSERIAL PRIMARY KEY,
//     uuid                UUID NOT NULL UNIQUE,
//     learning_package_id BIGINT NOT NULL REFERENCES learning_packages(id) ON DELETE CASCADE,
//     key                 TEXT NOT NULL,
//     created_at          TIMESTAMPTZ NOT NULL,
//     created_by          TEXT NOT NULL DEFAULT '',
//     can_stand_alone     BOOLEAN NOT NULL DEFAULT TRUE,
//     CONSTRAINT pub_ent_uniq_lp_key UNIQUE (learning_package_id, key)
// );
// CREATE INDEX pub_ent_lp_created_idx ON publishable_entities (learning_package_id, created_at DESC);
type PublishableEntity struct {
	ID                int64     `db:"id"`
	UUID              string    `db:"uuid"`
	LearningPackageID int64     `db:"learning_package_id"`
	Key               string    `db:"key"`
	CreatedAt         time.Time `db:"created_at"`
	CreatedBy         string    `db:"created_by"`
	CanStandAlone     bool      `db:"can_stand_alone"`
}

// PublishableEntityVersion is an immutable snapshot of an entity's metadata
// (spec §3). version_num is strictly increasing per entity, starting at 1,
// and is never reused even across reset-to-published (spec §3 "Lifecycle
// invariants").
//
// CREATE TABLE publishable_entity_versions (
//     id          BIGSERIAL PRIMARY KEY,
//     uuid        UUID NOT NULL UNIQUE,
//     entity_id   BIGINT NOT NULL REFERENCES publishable_entities(id) ON DELETE CASCADE,
//     version_num INTEGER NOT NULL CHECK (version_num >= 1),
//     title       TEXT NOT NULL,
//     created_at  TIMESTAMPTZ NOT NULL,
//     created_by  TEXT NOT NULL DEFAULT '',
//     CONSTRAINT pub_ver_uniq_entity_version_num UNIQUE (entity_id, version_num)
// );
type PublishableEntityVersion struct {
	ID         int64     `db:"id"`
	UUID       string    `db:"uuid"`
	EntityID   int64     `db:"entity_id"`
	VersionNum int32     `db:"version_num"`
	Title      string    `db:"title"`
	CreatedAt  time.Time `db:"created_at"`
	CreatedBy  string    `db:"created_by"`
}
