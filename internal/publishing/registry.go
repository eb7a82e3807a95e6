package publishing

import (
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/tansive/learncore/internal/apperrors"
)

// Kind is the in-process registration for one entity kind (spec §4.8
// "Kind Registry & Polymorphism"). SchemaVersion is parsed with semver so
// callers (import/export collaborators in particular) can compare
// compatibility ranges instead of doing string equality on versions.
type Kind struct {
	Name              string
	IsContainer       bool
	AllowedChildKinds []string
	SchemaVersion     *semver.Version
}

// AllowsChild reports whether childKind may appear under this kind. A
// container with a nil/empty AllowedChildKinds permits any kind (spec §4.8
// leaves the allowed-children list optional).
func (k *Kind) AllowsChild(childKind string) bool {
	if len(k.AllowedChildKinds) == 0 {
		return true
	}
	for _, c := range k.AllowedChildKinds {
		if c == childKind {
			return true
		}
	}
	return false
}

// Registry is the process-wide, in-memory half of the kind registry (spec
// §3 "Kind registry"); internal/store/models.KindRegistration is its durable
// counterpart, written by Engine.RegisterKind so registrations survive a
// restart.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]*Kind
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: map[string]*Kind{}}
}

// Register adds or idempotently re-confirms a kind (spec §4.8
// "registration must be idempotent and exclusive per name"): calling it
// again for the same name with identical arguments is a no-op, but
// attempting to change an existing name's container-ness or child list
// fails *Conflict*.
func (r *Registry) Register(name string, isContainer bool, allowedChildKinds []string, schemaVersion string) (*Kind, apperrors.Error) {
	if name == "" {
		return nil, validationErr("kind name is required")
	}
	sv, perr := semver.NewVersion(schemaVersion)
	if perr != nil {
		return nil, validationErr("invalid schema_version: " + perr.Error())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.kinds[name]; ok {
		if existing.IsContainer != isContainer || !sameChildKinds(existing.AllowedChildKinds, allowedChildKinds) {
			return nil, conflictErr("kind already registered with different attributes: " + name)
		}
		return existing, nil
	}
	k := &Kind{Name: name, IsContainer: isContainer, AllowedChildKinds: allowedChildKinds, SchemaVersion: sv}
	r.kinds[name] = k
	return k, nil
}

// Get returns the registered Kind, or *NotFound* (spec §4.8 "kind_of").
func (r *Registry) Get(name string) (*Kind, apperrors.Error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[name]
	if !ok {
		return nil, notFoundErr("kind not registered: " + name)
	}
	return k, nil
}

// AsContainer returns k if it is a container kind, or fails *WrongKind*
// (spec §4.8 "as_container").
func (r *Registry) AsContainer(name string) (*Kind, apperrors.Error) {
	k, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if !k.IsContainer {
		return nil, wrongKindErr("kind is not a container: " + name)
	}
	return k, nil
}

func sameChildKinds(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := map[string]int{}
	for _, x := range a {
		seen[x]++
	}
	for _, x := range b {
		seen[x]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}

// standardKind names the five built-in kinds (spec §4.8).
type standardKind struct {
	name        string
	isContainer bool
	children    []string
}

// standardKinds defines the built-in hierarchy: Component is a leaf;
// everything above it nests the kind directly below (spec §4.8
// "Component, Unit, Subsection, Section, OutlineRoot").
var standardKinds = []standardKind{
	{name: "component", isContainer: false, children: nil},
	{name: "unit", isContainer: true, children: []string{"component"}},
	{name: "subsection", isContainer: true, children: []string{"unit"}},
	{name: "section", isContainer: true, children: []string{"subsection"}},
	{name: "outline_root", isContainer: true, children: []string{"section"}},
}
