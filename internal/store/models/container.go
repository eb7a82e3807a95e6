package models

import "time"

// Container marks a PublishableEntity as a container; it carries no data of
// its own — the generic entity row is the source of truth, per spec §4.8
// ("MUST NOT duplicate state").
//
// CREATE TABLE containers (
//     entity_id BIGINT PRIMARY KEY REFERENCES publishable_entities(id) ON DELETE CASCADE
// );
type Container struct {
	EntityID int64 `db:"entity_id"`
}

// ContainerVersion links a version row to the EntityList describing that
// version's ordered children (spec §3 "Containers and entity lists").
//
// CREATE TABLE container_versions (
//     version_id   BIGINT PRIMARY KEY REFERENCES publishable_entity_versions(id) ON DELETE CASCADE,
//     container_id BIGINT NOT NULL REFERENCES publishable_entities(id),
//     entity_list_id BIGINT NOT NULL REFERENCES entity_lists(id) ON DELETE RESTRICT
// );
type ContainerVersion struct {
	VersionID      int64 `db:"version_id"`
	ContainerID    int64 `db:"container_id"`
	EntityListID   int64 `db:"entity_list_id"`
}

// EntityList is an anonymous ordered collection of EntityListRow, shared
// across container versions whose children and ordering are unchanged
// (spec §4.4 "List reuse rule"). Lists are immutable after creation.
//
// CREATE TABLE entity_lists (
//     id         BIGSERIAL PRIMARY KEY,
//     uuid       UUID NOT NULL UNIQUE,
//     created_at TIMESTAMPTZ NOT NULL
// );
type EntityList struct {
	ID        int64     `db:"id"`
	UUID      string    `db:"uuid"`
	CreatedAt time.Time `db:"created_at"`
}

// EntityListRow is one child reference within an EntityList. A non-nil
// EntityVersionID makes the row pinned (always that exact version);
// otherwise the row is unpinned and follows the referenced entity's current
// draft or published head, per query context (spec §3, §4.4).
//
// CREATE TABLE entity_list_rows (
//     id               BIGSERIAL PRIMARY KEY,
//     entity_list_id   BIGINT NOT NULL REFERENCES entity_lists(id) ON DELETE RESTRICT,
//     order_num        INTEGER NOT NULL,
//     entity_id        BIGINT NOT NULL REFERENCES publishable_entities(id) ON DELETE RESTRICT,
//     entity_version_id BIGINT REFERENCES publishable_entity_versions(id) ON DELETE RESTRICT,
//     CONSTRAINT elist_row_uniq_order UNIQUE (entity_list_id, order_num)
// );
type EntityListRow struct {
	ID              int64  `db:"id"`
	EntityListID    int64  `db:"entity_list_id"`
	OrderNum        int32  `db:"order_num"`
	EntityID        int64  `db:"entity_id"`
	EntityVersionID *int64 `db:"entity_version_id"`
}

// IsPinned reports whether the row fixes a specific child version.
func (r EntityListRow) IsPinned() bool { return r.EntityVersionID != nil }

// IsUnpinned reports whether the row follows the child's current head.
func (r EntityListRow) IsUnpinned() bool { return r.EntityVersionID == nil }
