// Package attr holds the declarative attribute registry each remote object
// type is described by: which remote call retrieves an attribute, which call
// persists it and under which patch strategy, how its raw value decodes, and
// what runtime kind assignments must satisfy.
//
// A registry is built once per resource type and shared by reference across
// all its object instances; per-instance state never mutates it. Ambiguous
// registration, e.g. one attribute claimed by two getter groups, is a
// programming error and is rejected when the registry is constructed.
package attr

import (
	"context"
	"fmt"

	"github.com/strategyone/sdk/decode"
	"github.com/strategyone/sdk/transport"
	"github.com/strategyone/sdk/types"
)

// Strategy selects the wire shape used to persist a patch group.
type Strategy int

const (
	// FullReplace sends the entire current object state, because the remote
	// endpoint requires a complete representation.
	FullReplace Strategy = iota

	// PartialMerge sends only the changed keys of the group.
	PartialMerge

	// OperationList sends an explicit ordered list of {op, path, value}
	// triples, used for add/remove-style changes such as ACL grants.
	OperationList
)

// String returns the strategy's name.
func (s Strategy) String() string {
	switch s {
	case FullReplace:
		return "full_replace"
	case PartialMerge:
		return "partial_merge"
	case OperationList:
		return "operation_list"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// GetterFunc retrieves one getter group's attributes for the object with the
// given identifier. The returned payload maps wire field names to raw JSON
// values.
type GetterFunc func(ctx context.Context, conn transport.Connection, id string) (map[string]any, error)

// PatchFunc persists one patch group's request body for the object with the
// given identifier. A non-nil payload is applied back onto the object to
// refresh local state.
type PatchFunc func(ctx context.Context, conn transport.Connection, id string, body map[string]any) (map[string]any, error)

// DeleteFunc removes the remote object.
type DeleteFunc func(ctx context.Context, conn transport.Connection, id string) error

// CopyFunc duplicates the remote object, returning the payload of the newly
// created copy.
type CopyFunc func(ctx context.Context, conn transport.Connection, id, name, folderID string) (map[string]any, error)

// GetterGroup is a set of attributes naturally returned together by one
// endpoint. The group executes at most once per object instance between
// refreshes.
type GetterGroup struct {
	attrs      []string
	fetch      GetterFunc
	minVersion types.Version
}

// Attrs returns the attribute names the group claims.
func (g *GetterGroup) Attrs() []string {
	out := make([]string, len(g.attrs))
	copy(out, g.attrs)
	return out
}

// MinVersion returns the minimum server version the group's endpoint
// requires; the zero Version means no gate.
func (g *GetterGroup) MinVersion() types.Version {
	return g.minVersion
}

// Fetch executes the group's remote call.
func (g *GetterGroup) Fetch(ctx context.Context, conn transport.Connection, id string) (map[string]any, error) {
	return g.fetch(ctx, conn, id)
}

// PatchGroup is a set of attributes persisted together by one endpoint under
// one strategy.
type PatchGroup struct {
	attrs    []string
	apply    PatchFunc
	strategy Strategy
}

// Attrs returns the attribute names the group persists.
func (g *PatchGroup) Attrs() []string {
	out := make([]string, len(g.attrs))
	copy(out, g.attrs)
	return out
}

// Strategy returns the group's wire shape.
func (g *PatchGroup) Strategy() Strategy {
	return g.strategy
}

// Contains reports whether the group persists the named attribute.
func (g *PatchGroup) Contains(name string) bool {
	for _, a := range g.attrs {
		if a == name {
			return true
		}
	}
	return false
}

// Apply executes the group's remote call with the prepared body.
func (g *PatchGroup) Apply(ctx context.Context, conn transport.Connection, id string, body map[string]any) (map[string]any, error) {
	return g.apply(ctx, conn, id, body)
}

// Registry is the immutable per-type attribute configuration. Build it once
// with NewRegistry at type-registration time and share it by reference.
type Registry struct {
	objectType types.ObjectType
	subtypes   map[types.ObjectSubType]struct{}

	getters      []*GetterGroup
	patches      []*PatchGroup
	getterByAttr map[string]*GetterGroup
	patchByAttr  map[string]*PatchGroup

	rules map[string]decode.Rule
	kinds map[string]Kind

	deleteFn DeleteFunc
	copyFn   CopyFunc
}

// RegistryOption configures a Registry under construction.
type RegistryOption func(*Registry) error

// WithObjectType declares the server object type the registry describes.
func WithObjectType(t types.ObjectType) RegistryOption {
	return func(r *Registry) error {
		r.objectType = t
		return nil
	}
}

// WithSubtypes restricts the registry to the given object subtypes. An
// object constructed from a source dictionary carrying a different subtype
// is refused.
func WithSubtypes(subtypes ...types.ObjectSubType) RegistryOption {
	return func(r *Registry) error {
		for _, s := range subtypes {
			r.subtypes[s] = struct{}{}
		}
		return nil
	}
}

// WithGetter registers a getter group covering the given attributes.
func WithGetter(fetch GetterFunc, attrs ...string) RegistryOption {
	return withGetter(fetch, types.Version{}, attrs)
}

// WithVersionedGetter registers a getter group only available from the given
// server version onward. On older servers the group is skipped with a
// warning instead of failing the access.
func WithVersionedGetter(fetch GetterFunc, min types.Version, attrs ...string) RegistryOption {
	return withGetter(fetch, min, attrs)
}

func withGetter(fetch GetterFunc, min types.Version, attrs []string) RegistryOption {
	return func(r *Registry) error {
		if fetch == nil {
			return fmt.Errorf("getter function cannot be nil")
		}
		if len(attrs) == 0 {
			return fmt.Errorf("getter group must cover at least one attribute")
		}

		group := &GetterGroup{attrs: append([]string(nil), attrs...), fetch: fetch, minVersion: min}
		for _, name := range attrs {
			if existing, ok := r.getterByAttr[name]; ok && existing != group {
				return fmt.Errorf("attribute %q registered in two getter groups", name)
			}
			r.getterByAttr[name] = group
		}
		r.getters = append(r.getters, group)
		return nil
	}
}

// WithPatch registers a patch group persisting the given attributes under
// the given strategy.
func WithPatch(apply PatchFunc, strategy Strategy, attrs ...string) RegistryOption {
	return func(r *Registry) error {
		if apply == nil {
			return fmt.Errorf("patch function cannot be nil")
		}
		if len(attrs) == 0 {
			return fmt.Errorf("patch group must cover at least one attribute")
		}

		group := &PatchGroup{attrs: append([]string(nil), attrs...), apply: apply, strategy: strategy}
		for _, name := range attrs {
			if existing, ok := r.patchByAttr[name]; ok && existing != group {
				return fmt.Errorf("attribute %q registered in two patch groups", name)
			}
			r.patchByAttr[name] = group
		}
		r.patches = append(r.patches, group)
		return nil
	}
}

// WithRule registers the decode rule applied to the attribute's raw values.
// Attributes without a rule pass through unchanged.
func WithRule(name string, rule decode.Rule) RegistryOption {
	return func(r *Registry) error {
		if rule == nil {
			return fmt.Errorf("decode rule for %q cannot be nil", name)
		}
		if _, ok := r.rules[name]; ok {
			return fmt.Errorf("attribute %q has two decode rules", name)
		}
		r.rules[name] = rule
		return nil
	}
}

// WithKind declares the runtime kind assignments to the attribute must have.
// Violations are rejected at assignment time, before any network call.
func WithKind(name string, kind Kind) RegistryOption {
	return func(r *Registry) error {
		if _, ok := r.kinds[name]; ok {
			return fmt.Errorf("attribute %q has two declared kinds", name)
		}
		r.kinds[name] = kind
		return nil
	}
}

// WithDelete registers the remote call that deletes objects of this type.
func WithDelete(fn DeleteFunc) RegistryOption {
	return func(r *Registry) error {
		r.deleteFn = fn
		return nil
	}
}

// WithCopy registers the remote call that copies objects of this type.
func WithCopy(fn CopyFunc) RegistryOption {
	return func(r *Registry) error {
		r.copyFn = fn
		return nil
	}
}

// NewRegistry builds and validates a registry. Ambiguous registration is
// reported here rather than surfacing as surprising behavior at runtime.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		objectType:   types.ObjectTypeNone,
		subtypes:     make(map[types.ObjectSubType]struct{}),
		getterByAttr: make(map[string]*GetterGroup),
		patchByAttr:  make(map[string]*PatchGroup),
		rules:        make(map[string]decode.Rule),
		kinds:        make(map[string]Kind),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("attr: invalid registry: %w", err)
		}
	}
	return r, nil
}

// MustNewRegistry builds a registry and panics on invalid registration.
// Intended for package-level registry variables of resource types.
func MustNewRegistry(opts ...RegistryOption) *Registry {
	r, err := NewRegistry(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// ObjectType returns the server object type the registry describes.
func (r *Registry) ObjectType() types.ObjectType {
	return r.objectType
}

// AcceptsSubtype reports whether the registry represents the given subtype.
// A registry with no declared subtypes accepts any.
func (r *Registry) AcceptsSubtype(s types.ObjectSubType) bool {
	if len(r.subtypes) == 0 {
		return true
	}
	_, ok := r.subtypes[s]
	return ok
}

// Getter returns the getter group whose registered attribute set contains
// name, or false when the attribute is not independently fetchable.
func (r *Registry) Getter(name string) (*GetterGroup, bool) {
	g, ok := r.getterByAttr[name]
	return g, ok
}

// Getters returns every registered getter group in registration order.
func (r *Registry) Getters() []*GetterGroup {
	out := make([]*GetterGroup, len(r.getters))
	copy(out, r.getters)
	return out
}

// Patch returns the patch group persisting the named attribute, or false
// when the attribute is not patch-capable.
func (r *Registry) Patch(name string) (*PatchGroup, bool) {
	g, ok := r.patchByAttr[name]
	return g, ok
}

// Patches returns every registered patch group in registration order.
func (r *Registry) Patches() []*PatchGroup {
	out := make([]*PatchGroup, len(r.patches))
	copy(out, r.patches)
	return out
}

// Decode applies the attribute's registered decode rule to a raw value.
// Attributes without a rule pass through unchanged; a nil raw value always
// decodes to nil.
func (r *Registry) Decode(name string, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	rule, ok := r.rules[name]
	if !ok {
		return raw, nil
	}
	v, err := rule.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", name, err)
	}
	return v, nil
}

// Validate checks an assignment against the attribute's declared kind.
// Attributes without a declared kind accept any value.
func (r *Registry) Validate(name string, value any) error {
	kind, ok := r.kinds[name]
	if !ok {
		return nil
	}
	if err := kind.Check(value); err != nil {
		return fmt.Errorf("attribute %q: %w", name, err)
	}
	return nil
}

// DeleteFunc returns the registered delete call, if any.
func (r *Registry) DeleteFunc() (DeleteFunc, bool) {
	return r.deleteFn, r.deleteFn != nil
}

// CopyFunc returns the registered copy call, if any.
func (r *Registry) CopyFunc() (CopyFunc, bool) {
	return r.copyFn, r.copyFn != nil
}
