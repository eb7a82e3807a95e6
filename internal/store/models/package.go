package models

import "time"

// LearningPackage is the top-level namespace for a set of publishable
// entities (spec §3 "Entities and identity").
//
// CREATE TABLE learning_packages (
//     id          BIGSERIAL PRIMARY KEY,
//     uuid        UUID NOT NULL UNIQUE,
//     key         TEXT NOT NULL,
//     title       TEXT NOT NULL,
//     description TEXT NOT NULL DEFAULT '',
//     created_at  TIMESTAMPTZ NOT NULL,
//     updated_at  TIMESTAMPTZ NOT NULL,
//     CONSTRAINT learning_packages_uniq_key UNIQUE (key)
// );
type LearningPackage struct {
	ID          int64     `db:"id"`
	UUID        string    `db:"uuid"`
	Key         string    `db:"key"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
