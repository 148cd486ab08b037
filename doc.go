// Package sdk provides a Go client SDK core for the Strategy One
// (MicroStrategy) Intelligence Server REST API.
//
// The SDK is organized around a lazy, dirty-tracking remote-object model:
// every server-side resource (folder, filter, device, ...) is represented by
// an object.Object whose attributes are fetched on first access and whose
// local mutations are translated into the correct REST patch calls on commit.
//
// # Core Concepts
//
//   - Attribute registry: a per-resource-type declarative table mapping each
//     attribute to the remote call that retrieves it, the remote call that
//     persists it, its patch strategy, and its decode rule
//   - Getter group: a set of attributes naturally returned together by one
//     endpoint; a group executes at most once per object instance
//   - Patch group: a set of attributes persisted together by one endpoint
//     under one strategy (full replace, partial merge, or operation list)
//   - Fetched set: the per-instance record of attributes already retrieved,
//     which turns repeated reads into pure in-memory lookups
//   - Altered properties: the per-instance pending-change ledger awaiting
//     commit; no-op edits never appear in it
//
// # Getting Started
//
// Open a connection and build a registry for the resource type you work with:
//
//	conn, err := transport.Open(ctx, transport.Config{
//		BaseURL:  "https://env.example.com/MicroStrategyLibrary/api",
//		Username: "admin",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
//
//	reg := attr.MustNewRegistry(
//		attr.WithGetter(objectInfo, "id", "name", "description"),
//		attr.WithPatch(updateObject, attr.PartialMerge, "name", "description"),
//	)
//
//	obj := object.New(conn, reg, "28ECA8BB11D5188EC000E9ABCA1B1A4F")
//	name, err := obj.Get(ctx, "name") // first access triggers one REST call
//
// # Error Handling
//
// The SDK uses a structured Error type with sentinel errors for robust
// error handling:
//
//	if err != nil {
//		if errors.Is(err, sdk.ErrDecode) {
//			// client/server version skew, do not retry
//		}
//	}
//
// # Thread Safety
//
// A single transport.Connection is safe for concurrent use and is shared
// read-only across many objects. Individual object.Object instances are not
// synchronized: two instances wrapping the same remote identifier do not
// coordinate, and concurrent commits are last-write-wins at the server.
package sdk
