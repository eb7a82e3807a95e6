// Package publishing implements the core content authoring and publishing
// engine (spec.md §4): the entity/version/draft/published model, the
// container/entity-list machinery, the bulk change-log and side-effect
// engine, the publish operation, the query surface, reset/revert, and the
// kind registry. Every operation here is expressed purely in terms of the
// store.Database interface, mirroring the way the teacher's catalogmanager
// package is written purely against the db.Database interface rather than
// against raw SQL.
package publishing

import (
	"time"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store"
)

// Engine is the entry point for every operation in this package. It holds
// no mutable state of its own beyond the store and an optional clock
// override for tests.
type Engine struct {
	store store.Database
	clock store.Clock
	regs  *Registry
}

// New constructs an Engine backed by db. A process-wide Registry is created
// empty; callers should register the standard kinds via RegisterStandardKinds
// before serving traffic (spec §3 "Kind registry").
func New(db store.Database) *Engine {
	return &Engine{store: db, clock: store.UTCNow, regs: NewRegistry()}
}

// WithClock overrides the engine's clock, used by tests needing
// deterministic timestamps.
func (e *Engine) WithClock(c store.Clock) *Engine {
	e.clock = c
	return e
}

// Registry returns the engine's kind registry (spec §4.8).
func (e *Engine) Registry() *Registry { return e.regs }

func (e *Engine) now() time.Time { return e.clock() }

// requireUTC rejects any caller-supplied timestamp that is not UTC, per
// spec §4.1 ("rejecting non-UTC timestamps is a testable validation").
func requireUTC(t time.Time, field string) apperrors.Error {
	if t.IsZero() {
		return nil
	}
	if t.Location() != time.UTC {
		return validationErr(field + " must be UTC")
	}
	return nil
}

// resolveCreated validates a caller-supplied created timestamp and
// substitutes the engine's clock when none was given, the same default
// create_package uses for its optional `created` parameter (spec §4.1).
// create_entity/create_version/create_container/create_container_version
// document `created` as a required positional parameter, but the zero Time
// is not a value a real caller would ever pass deliberately, so it is
// treated the same way here: fall back to now rather than reject it.
func (e *Engine) resolveCreated(created time.Time, field string) (time.Time, apperrors.Error) {
	if err := requireUTC(created, field); err != nil {
		return time.Time{}, err
	}
	if created.IsZero() {
		return e.now(), nil
	}
	return created, nil
}

func ptrEqual(a, b *int64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
