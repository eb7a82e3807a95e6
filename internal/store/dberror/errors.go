// Package dberror defines the error taxonomy required by spec §7, built
// the way the teacher's dberror package derives a small tree of sentinel
// errors from one root via apperrors chaining.
package dberror

import (
	"net/http"

	"github.com/tansive/learncore/internal/apperrors"
)

var (
	// ErrStore is the root of the taxonomy; every other sentinel derives
	// from it so a caller can test errors.Is(err, ErrStore) to catch any
	// store failure.
	ErrStore apperrors.Error = apperrors.New("store error").SetStatusCode(http.StatusInternalServerError)

	// ErrNotFound — package/entity/version lookup miss (spec §7).
	ErrNotFound apperrors.Error = ErrStore.New("not found").SetStatusCode(http.StatusNotFound)

	// ErrAlreadyExists — duplicate package key or entity key within
	// package (spec §7). A duplicate (entity, version_num) is reported as
	// ErrConflict instead.
	ErrAlreadyExists apperrors.Error = ErrStore.New("already exists").SetStatusCode(http.StatusConflict)

	// ErrValidation — non-UTC datetime, cross-package row, empty required
	// field, bad key format (spec §7).
	ErrValidation apperrors.Error = ErrStore.New("validation error").SetStatusCode(http.StatusBadRequest)

	// ErrWrongKind — e.g. calling container operations on a non-container
	// entity (spec §7, §4.8).
	ErrWrongKind apperrors.Error = ErrStore.New("wrong kind").SetStatusCode(http.StatusBadRequest)

	// ErrConflict — optimistic write race on version numbers, i.e. a
	// duplicate (entity, version_num) on version creation (spec §7, §5).
	ErrConflict apperrors.Error = ErrStore.New("conflict").SetStatusCode(http.StatusConflict)

	// ErrInvariant — internal corruption detected during propagation, e.g.
	// a container row pointing at a deleted entity with no replacement
	// (spec §7). Never silently repaired.
	ErrInvariant apperrors.Error = ErrStore.New("invariant violation").SetStatusCode(http.StatusInternalServerError)

	// ErrMissingPackageScope — a connection was used without a package
	// scope set, the engine's analogue of the teacher's missing-tenant-id
	// guard.
	ErrMissingPackageScope apperrors.Error = ErrValidation.New("missing package scope").SetStatusCode(http.StatusBadRequest)
)
