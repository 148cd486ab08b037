package object

import (
	"context"
	"fmt"

	sdk "github.com/strategyone/sdk"
	"github.com/strategyone/sdk/attr"
)

// Get returns an attribute's value, fetching it on first access.
//
// A fetched attribute is served from local state with no I/O. Otherwise, if
// a getter group covers the attribute and the object has a resolvable
// identifier, the group executes exactly once and every attribute it claims
// is populated from the response. Attributes without a registered getter
// return their locally stored value, which may be nil.
//
// A getter group gated behind a server version the connection does not meet
// is skipped with a warning and the current local value is returned; any
// other transport failure propagates to the caller.
func (o *Object) Get(ctx context.Context, name string) (any, error) {
	if _, ok := o.fetched[name]; ok {
		return o.values[name], nil
	}

	group, ok := o.reg.Getter(name)
	if !ok || o.id == "" || o.conn == nil {
		return o.values[name], nil
	}

	if err := o.runGetter(ctx, group); err != nil {
		if sdk.IsVersionGated(err) {
			o.warnVersionGated(name, err)
			return o.values[name], nil
		}
		return nil, err
	}

	// The requested attribute counts as fetched even when the response did
	// not carry it, so repeated access does not re-fetch.
	o.fetched[name] = struct{}{}
	return o.values[name], nil
}

// Fetch forces re-execution of getter groups, overwriting local state. With
// no arguments every registered group runs; with attribute names only the
// groups owning those attributes run. This is the explicit recovery path
// after an external change.
//
// Version-gated groups are skipped with a warning during a full refresh, but
// requesting a gated attribute by name reports the gate as an error.
func (o *Object) Fetch(ctx context.Context, names ...string) error {
	if o.conn == nil || o.id == "" {
		return sdk.NewValidationError("Object.Fetch",
			fmt.Errorf("object has no connection or identifier"))
	}

	if len(names) == 0 {
		for _, group := range o.reg.Getters() {
			if err := o.runGetter(ctx, group); err != nil {
				if sdk.IsVersionGated(err) {
					o.warnVersionGated(group.Attrs()[0], err)
					continue
				}
				return err
			}
		}
		return nil
	}

	seen := make(map[*attr.GetterGroup]struct{}, len(names))
	for _, name := range names {
		group, ok := o.reg.Getter(name)
		if !ok {
			return sdk.NewValidationError("Object.Fetch",
				fmt.Errorf("attribute %q cannot be fetched for this object", name))
		}
		if _, done := seen[group]; done {
			continue
		}
		seen[group] = struct{}{}
		if err := o.runGetter(ctx, group); err != nil {
			return err
		}
	}
	return nil
}

// runGetter executes one getter group and merges its payload into local
// state.
func (o *Object) runGetter(ctx context.Context, group *attr.GetterGroup) error {
	if min := group.MinVersion(); !min.IsZero() && !o.conn.ServerVersion().AtLeast(min) {
		return sdk.NewVersionError("Object.Fetch",
			fmt.Errorf("%w: requires %s, server is %s",
				sdk.ErrVersionGated, min, o.conn.ServerVersion()))
	}

	payload, err := group.Fetch(ctx, o.conn, o.id)
	if err != nil {
		if sdk.IsVersionGated(err) {
			return err
		}
		return sdk.NewTransportError("Object.Fetch", err).
			WithContext(map[string]any{"id": o.id})
	}

	if err := o.applyPayload(payload); err != nil {
		return err
	}

	// Attributes the group claims but the response omitted are recorded as
	// known-absent in missing-tracking mode, so repeated access of them does
	// not re-run the group.
	if o.trackMissing {
		for _, name := range group.Attrs() {
			if _, ok := o.fetched[name]; ok {
				continue
			}
			o.values[name] = Missing
			o.fetched[name] = struct{}{}
		}
	}
	return nil
}

// applyPayload decodes a server payload and merges it into local state,
// marking every carried attribute as fetched.
func (o *Object) applyPayload(payload map[string]any) error {
	snake := attr.CamelToSnake(payload)
	for key, raw := range snake {
		if key == "id" {
			// The identifier is immutable once set.
			if o.id == "" {
				if id, ok := raw.(string); ok {
					o.id = id
					o.values["id"] = id
					o.fetched["id"] = struct{}{}
				}
			}
			continue
		}

		decoded, err := o.reg.Decode(key, raw)
		if err != nil {
			return sdk.NewDecodeError("Object.Fetch", err).
				WithContext(map[string]any{"attribute": key})
		}
		o.values[key] = decoded
		o.fetched[key] = struct{}{}
	}
	return nil
}

func (o *Object) warnVersionGated(name string, err error) {
	o.logger.Warn("attribute unavailable on this server version",
		"attribute", name,
		"id", o.id,
		"error", err)
}
