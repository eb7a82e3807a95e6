package models

// KindRegistration is the durable record of a registered PublishableKind
// (spec §3 "Kind registry", §4.8). The in-process registry
// (internal/publishing/registry.go) is the source of truth for
// `register_kind`; this row exists so the registration survives process
// restarts. `kind_of` reads the entity's EntityKind row (below), not the
// in-process registry.
//
// CREATE TABLE kind_registrations (
//     name                TEXT PRIMARY KEY,
//     is_container        BOOLEAN NOT NULL,
//     allowed_child_kinds TEXT[],
//     schema_version      TEXT NOT NULL DEFAULT '0.1.0'
// );
type KindRegistration struct {
	Name              string   `db:"name"`
	IsContainer       bool     `db:"is_container"`
	AllowedChildKinds []string `db:"allowed_child_kinds"`
	SchemaVersion     string   `db:"schema_version"`
}

// EntityKind assigns a registered kind to an entity at creation time (spec
// §4.8 "thin typed wrappers over the generic operations").
//
// CREATE TABLE entity_kinds (
//     entity_id BIGINT PRIMARY KEY REFERENCES publishable_entities(id) ON DELETE CASCADE,
//     kind      TEXT NOT NULL REFERENCES kind_registrations(name)
// );
type EntityKind struct {
	EntityID int64  `db:"entity_id"`
	Kind     string `db:"kind"`
}
