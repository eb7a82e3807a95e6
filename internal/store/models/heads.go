package models

// Draft is the mutable "working" head for an entity (spec §3 "Heads").
// VersionID is nil both before the entity's first version and after a
// soft delete: CreateEntity seeds the row with a nil VersionID in both
// stores, so the row's existence does not tell "never had a version" apart
// from "soft-deleted" — see the tri-valued-null discussion in spec §4.3
// and §9.
//
// CREATE TABLE drafts (
//     entity_id  BIGINT PRIMARY KEY REFERENCES publishable_entities(id) ON DELETE CASCADE,
//     version_id BIGINT REFERENCES publishable_entity_versions(id)
// );
type Draft struct {
	EntityID  int64  `db:"entity_id"`
	VersionID *int64 `db:"version_id"`
}

// Published is the analogous pointer for the currently published version;
// a nil VersionID means "never published" or "was published, now
// withdrawn", since CreateEntity seeds this row with a nil VersionID too.
//
// CREATE TABLE published (
//     entity_id              BIGINT PRIMARY KEY REFERENCES publishable_entities(id) ON DELETE CASCADE,
//     version_id             BIGINT REFERENCES publishable_entity_versions(id),
//     publish_log_record_id  BIGINT REFERENCES publish_log_records(id)
// );
type Published struct {
	EntityID           int64  `db:"entity_id"`
	VersionID          *int64 `db:"version_id"`
	PublishLogRecordID *int64 `db:"publish_log_record_id"`
}
