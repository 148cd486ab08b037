// Package object implements the lazy, dirty-tracking remote-object model
// every Strategy One resource wrapper is built on.
//
// An Object is identified by an opaque id plus a type/subtype tag pair and
// holds a mutable set of named attributes. Attributes are fetched on first
// access, one remote call per getter group; assignments are validated and
// recorded as pending deltas; Commit translates the deltas into the correct
// persistence calls per each patch group's strategy.
//
// Objects are not synchronized. Two instances wrapping the same remote
// identifier do not coordinate, and concurrent commits are last-write-wins
// at the server.
package object

import (
	"fmt"
	"log/slog"
	"reflect"

	sdk "github.com/strategyone/sdk"
	"github.com/strategyone/sdk/attr"
	"github.com/strategyone/sdk/transport"
	"github.com/strategyone/sdk/types"
)

// missingType is the distinguished sentinel for attributes a server response
// was asked about but did not carry. It separates "known absent" from "not
// yet fetched", which a plain nil cannot express.
type missingType struct{}

// String implements fmt.Stringer for log output.
func (missingType) String() string { return "<missing>" }

// Missing is the sentinel stored for registered attributes absent from a
// payload when missing-tracking is enabled.
var Missing any = missingType{}

// Delta is one pending local change: the last known-server value and the
// value awaiting commit.
type Delta struct {
	Old any
	New any
}

// Object is a remote metadata object with lazily fetched attributes and
// commit-on-demand mutation.
type Object struct {
	conn transport.Connection
	reg  *attr.Registry

	id      string
	subtype types.ObjectSubType

	values  map[string]any
	fetched map[string]struct{}
	altered map[string]Delta

	trackMissing bool
	verbose      bool
	logger       *slog.Logger
}

// Option configures an Object at construction time.
type Option func(*Object)

// WithLogger sets a custom logger for the object.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Object) {
		o.logger = logger
	}
}

// WithVerbose enables status logging for commits, including no-op commits.
func WithVerbose() Option {
	return func(o *Object) {
		o.verbose = true
	}
}

// WithMissingTracking stores the Missing sentinel for registered attributes
// a response did not carry, so "known absent" is distinguishable from "not
// yet fetched".
func WithMissingTracking() Option {
	return func(o *Object) {
		o.trackMissing = true
	}
}

// New binds an object to a live connection and identifier. No attributes are
// populated; any later read triggers its getter group on demand.
func New(conn transport.Connection, reg *attr.Registry, id string, opts ...Option) *Object {
	o := &Object{
		conn:    conn,
		reg:     reg,
		id:      id,
		subtype: types.ObjectSubTypeNone,
		values:  make(map[string]any),
		fetched: make(map[string]struct{}),
		altered: make(map[string]Delta),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if id != "" {
		o.values["id"] = id
		o.fetched["id"] = struct{}{}
	}
	return o
}

// FromDict instantiates an object from a previously fetched payload, such as
// a search result, without issuing any remote call. Supplied attributes are
// decoded eagerly and recorded as fetched; with missing-tracking enabled,
// registered attributes absent from the source are stored as Missing.
//
// A source carrying a subtype the registry does not represent is refused.
func FromDict(conn transport.Connection, reg *attr.Registry, source map[string]any, opts ...Option) (*Object, error) {
	snake := attr.CamelToSnake(source)

	id, _ := snake["id"].(string)
	o := New(conn, reg, id, opts...)

	if raw, ok := snake["subtype"]; ok && raw != nil {
		n, ok := rawInt(raw)
		if !ok {
			return nil, sdk.NewDecodeError("object.FromDict",
				fmt.Errorf("subtype must be numeric, got %T", raw))
		}
		subtype := types.ObjectSubType(n)
		if !reg.AcceptsSubtype(subtype) {
			return nil, sdk.NewValidationError("object.FromDict",
				fmt.Errorf("subtype %d is not represented by this object type", n))
		}
		o.subtype = subtype
	}

	for key, raw := range snake {
		decoded, err := reg.Decode(key, raw)
		if err != nil {
			return nil, sdk.NewDecodeError("object.FromDict", err)
		}
		o.values[key] = decoded
		o.fetched[key] = struct{}{}
	}

	if o.trackMissing {
		for _, group := range reg.Getters() {
			for _, name := range group.Attrs() {
				if _, ok := o.fetched[name]; !ok {
					o.values[name] = Missing
					o.fetched[name] = struct{}{}
				}
			}
		}
	}
	return o, nil
}

// ID returns the object's immutable identifier.
func (o *Object) ID() string {
	return o.id
}

// Type returns the server object type declared by the registry.
func (o *Object) Type() types.ObjectType {
	return o.reg.ObjectType()
}

// Subtype returns the object's subtype tag, or ObjectSubTypeNone when the
// server has not reported one.
func (o *Object) Subtype() types.ObjectSubType {
	return o.subtype
}

// Peek returns the locally stored value of an attribute without any I/O.
// The second result reports whether the attribute has been fetched.
func (o *Object) Peek(name string) (any, bool) {
	_, fetched := o.fetched[name]
	return o.values[name], fetched
}

// IsMissing reports whether the value is the known-absent sentinel.
func IsMissing(value any) bool {
	_, ok := value.(missingType)
	return ok
}

// Set assigns a local attribute value. The assignment is validated against
// the attribute's declared kind before any network call. For patch-capable
// attributes already fetched, the change is recorded in the pending-change
// ledger; assigning a value equal to the current one records nothing, and
// restoring a tracked attribute's original value removes its entry.
func (o *Object) Set(name string, value any) error {
	if name == "id" {
		return sdk.NewValidationError("Object.Set",
			fmt.Errorf("%w: id", sdk.ErrImmutable))
	}
	if err := o.reg.Validate(name, value); err != nil {
		return sdk.NewValidationError("Object.Set", fmt.Errorf("%w: %v", sdk.ErrValidation, err))
	}

	_, patchable := o.reg.Patch(name)
	_, wasFetched := o.fetched[name]
	if patchable && wasFetched {
		o.trackChange(name, value)
	}

	o.values[name] = value
	if value != nil {
		o.fetched[name] = struct{}{}
	}
	return nil
}

// trackChange records the (old, new) pair for a mutation, collapsing
// net-zero edits.
func (o *Object) trackChange(name string, value any) {
	delta, tracked := o.altered[name]

	var current any
	if tracked {
		current = delta.Old
	} else {
		current = o.values[name]
	}

	if typedEqual(current, value) {
		if tracked {
			delete(o.altered, name)
		}
		return
	}
	o.altered[name] = Delta{Old: current, New: value}
}

// typedEqual is the dirty-tracking equality check: two values are equal only
// when their runtime types match and their values compare deep-equal. Values
// of different numeric types are therefore different even when semantically
// equal; changing this would alter which commits are skipped as no-ops.
func typedEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Altered returns a copy of the pending-change ledger.
func (o *Object) Altered() map[string]Delta {
	out := make(map[string]Delta, len(o.altered))
	for k, v := range o.altered {
		out[k] = v
	}
	return out
}

// IsDirty reports whether any local change awaits commit.
func (o *Object) IsDirty() bool {
	return len(o.altered) > 0
}

// rawInt accepts the numeric forms a decoded JSON value can take.
func rawInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
