package object

import (
	"context"
	"fmt"
	"sort"

	sdk "github.com/strategyone/sdk"
)

// Delete removes the remote object using the delete call declared by the
// registry. Object types without one are not deletable.
func (o *Object) Delete(ctx context.Context) error {
	fn, ok := o.reg.DeleteFunc()
	if !ok {
		return sdk.NewValidationError("Object.Delete",
			fmt.Errorf("object type %s is not deletable", o.Type()))
	}

	if err := fn(ctx, o.conn, o.id); err != nil {
		return sdk.NewTransportError("Object.Delete", err).
			WithContext(map[string]any{"id": o.id})
	}

	if o.verbose {
		o.logger.Info("object deleted", "id", o.id, "type", o.Type().String())
	}
	return nil
}

// Copy duplicates the remote object using the copy call declared by the
// registry and returns a new Object wrapping the copy. An empty name lets
// the server derive one; an empty folderID keeps the source folder.
func (o *Object) Copy(ctx context.Context, name, folderID string) (*Object, error) {
	fn, ok := o.reg.CopyFunc()
	if !ok {
		return nil, sdk.NewValidationError("Object.Copy",
			fmt.Errorf("object type %s cannot be copied", o.Type()))
	}

	payload, err := fn(ctx, o.conn, o.id, name, folderID)
	if err != nil {
		return nil, sdk.NewTransportError("Object.Copy", err).
			WithContext(map[string]any{"id": o.id})
	}

	var opts []Option
	if o.verbose {
		opts = append(opts, WithVerbose())
	}
	if o.trackMissing {
		opts = append(opts, WithMissingTracking())
	}
	opts = append(opts, WithLogger(o.logger))

	return FromDict(o.conn, o.reg, payload, opts...)
}

// UpdateNested adds members to or removes members from a set-like nested
// attribute such as an ACL or a membership list. Members already present are
// not re-added and members already absent are not re-removed; the returned
// slices separate the ids that were actually sent from the ones filtered
// out.
func (o *Object) UpdateNested(ctx context.Context, name, op string, ids []string) (applied, skipped []string, err error) {
	if op != OpAdd && op != OpRemove {
		return nil, nil, sdk.NewValidationError("Object.UpdateNested",
			fmt.Errorf("operation must be %q or %q, got %q", OpAdd, OpRemove, op))
	}

	current, err := o.Get(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	existing := memberIDs(current)

	for _, id := range ids {
		_, present := existing[id]
		if (op == OpAdd && !present) || (op == OpRemove && present) {
			applied = append(applied, id)
		} else {
			skipped = append(skipped, id)
		}
	}
	sort.Strings(applied)
	sort.Strings(skipped)

	if len(applied) == 0 {
		return applied, skipped, nil
	}

	values := make([]any, len(applied))
	for i, id := range applied {
		values[i] = id
	}
	_, err = o.ApplyOps(ctx, op, map[string]any{name: values})
	return applied, skipped, err
}

// Properties fetches every registered getter group and returns a snapshot
// of all fetched attributes. Version-gated groups are skipped the way lazy
// access skips them; known-absent values are left out.
func (o *Object) Properties(ctx context.Context) (map[string]any, error) {
	for _, group := range o.reg.Getters() {
		attrs := group.Attrs()
		if len(attrs) == 0 {
			continue
		}
		if _, err := o.Get(ctx, attrs[0]); err != nil {
			return nil, err
		}
	}

	out := make(map[string]any, len(o.fetched))
	for name := range o.fetched {
		if value, ok := o.values[name]; ok && !IsMissing(value) {
			out[name] = value
		}
	}
	return out, nil
}

// memberIDs extracts the identifiers of a nested collection value. Elements
// may be plain id strings or decoded objects carrying an "id" field.
func memberIDs(value any) map[string]struct{} {
	out := make(map[string]struct{})
	items, ok := value.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out[v] = struct{}{}
		case map[string]any:
			if id, ok := v["id"].(string); ok {
				out[id] = struct{}{}
			}
		}
	}
	return out
}
