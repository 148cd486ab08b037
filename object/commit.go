package object

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/strategyone/sdk"
	"github.com/strategyone/sdk/attr"
)

// Patch operations for operation-list groups.
const (
	// OpReplace overwrites an attribute's value.
	OpReplace = "replace"

	// OpAdd appends members to a set-like attribute.
	OpAdd = "add"

	// OpRemove removes members from a set-like attribute.
	OpRemove = "remove"
)

// GroupResult reports the outcome of one patch group's remote call.
type GroupResult struct {
	// Attrs are the attributes carried in the group's request body.
	Attrs []string

	// Strategy is the wire shape the body was built with.
	Strategy attr.Strategy

	// OK reports whether the remote call succeeded.
	OK bool

	// Err holds the failure, when OK is false.
	Err error
}

// CommitResult is the per-group outcome of a commit. A remote failure on one
// group does not roll back groups already committed in the same call, so
// partial success is possible and the caller detects it here.
type CommitResult []GroupResult

// AllOK reports whether every group call succeeded.
func (r CommitResult) AllOK() bool {
	for _, g := range r {
		if !g.OK {
			return false
		}
	}
	return true
}

// Commit persists pending local changes, merged with any explicit overrides,
// to the server. Changes are grouped by patch group; each non-empty group
// issues one remote call with a body built per its strategy, and a group
// whose body ends up empty is skipped with no call.
//
// On a group's success the response payload is applied back onto the object
// and the group's ledger entries are cleared. With no pending changes at
// all, Commit is a no-op: zero remote calls, nil result.
func (o *Object) Commit(ctx context.Context, overrides map[string]any) (CommitResult, error) {
	changes := make(map[string]any, len(o.altered)+len(overrides))
	for name, delta := range o.altered {
		changes[name] = delta.New
	}
	for name, value := range overrides {
		if err := o.reg.Validate(name, value); err != nil {
			return nil, sdk.NewValidationError("Object.Commit",
				fmt.Errorf("%w: %v", sdk.ErrValidation, err))
		}
		changes[name] = value
	}

	if len(changes) == 0 {
		if o.verbose {
			o.logger.Info("no changes specified", "id", o.id, "type", o.Type().String())
		}
		return nil, nil
	}

	result, err := o.push(ctx, changes, OpReplace, true)
	if err != nil {
		return result, err
	}

	if o.verbose && len(result) > 0 {
		o.logger.Info("object modified on the server, changes saved locally",
			"id", o.id, "type", o.Type().String())
	}
	return result, nil
}

// ApplyOps sends explicit properties through their patch groups with the
// given operation, bypassing the pending-change ledger. It is the wrapper
// used for add/remove-style edits of nested set-like properties such as ACL
// grants and memberships.
func (o *Object) ApplyOps(ctx context.Context, op string, props map[string]any) (CommitResult, error) {
	for name, value := range props {
		if err := o.reg.Validate(name, value); err != nil {
			return nil, sdk.NewValidationError("Object.ApplyOps",
				fmt.Errorf("%w: %v", sdk.ErrValidation, err))
		}
	}
	return o.push(ctx, props, op, false)
}

// push groups the change set by patch group and issues one call per
// non-empty group. Properties matching no patch group are dropped, the way
// the REST layer ignores unknown body fields.
func (o *Object) push(ctx context.Context, changes map[string]any, op string, clearLedger bool) (CommitResult, error) {
	var result CommitResult
	var failures []error

	for _, group := range o.reg.Patches() {
		var names []string
		for _, name := range group.Attrs() {
			if _, ok := changes[name]; ok {
				names = append(names, name)
			}
		}
		if len(names) == 0 {
			continue
		}

		body := o.buildBody(group, names, changes, op)

		payload, err := group.Apply(ctx, o.conn, o.id, body)
		if err != nil {
			gerr := sdk.NewTransportError("Object.Commit", err).
				WithContext(map[string]any{"id": o.id, "strategy": group.Strategy().String()})
			result = append(result, GroupResult{Attrs: names, Strategy: group.Strategy(), Err: gerr})
			failures = append(failures, gerr)
			continue
		}

		if payload != nil {
			if aerr := o.applyPayload(payload); aerr != nil {
				result = append(result, GroupResult{Attrs: names, Strategy: group.Strategy(), Err: aerr})
				failures = append(failures, aerr)
				continue
			}
		}

		if clearLedger {
			for _, name := range names {
				delete(o.altered, name)
			}
		}
		result = append(result, GroupResult{Attrs: names, Strategy: group.Strategy(), OK: true})
	}

	return result, errors.Join(failures...)
}

// buildBody assembles one group's request body per its strategy.
func (o *Object) buildBody(group *attr.PatchGroup, names []string, changes map[string]any, op string) map[string]any {
	switch group.Strategy() {
	case attr.FullReplace:
		// The endpoint requires a complete representation: fold the changes
		// into local state first, then serialize everything fetched.
		for _, name := range names {
			o.values[name] = changes[name]
			o.fetched[name] = struct{}{}
		}
		snapshot := make(map[string]any, len(o.values))
		for key := range o.fetched {
			if value, ok := o.values[key]; ok && !IsMissing(value) {
				snapshot[key] = value
			}
		}
		return attr.SnakeToCamel(snapshot)

	case attr.OperationList:
		ops := make([]any, 0, len(names))
		for _, name := range names {
			ops = append(ops, map[string]any{
				"op":    op,
				"path":  "/" + attr.ToCamel(name),
				"value": changes[name],
			})
		}
		return map[string]any{"operationList": ops}

	default: // PartialMerge
		body := make(map[string]any, len(names))
		for _, name := range names {
			body[name] = changes[name]
		}
		return attr.SnakeToCamel(body)
	}
}
