// Package flow holds the authoritative in-memory state of a flow: the placed
// blocks and the connections between their ports.
//
// # Blocks
//
// A [Block] has an opaque, never-reused identifier, a type key naming the
// template that governs it, a surface-local position (top-left corner of its
// bounding box) and an opaque [Data] payload the core stores without
// interpreting. [BlockRegistry] keeps blocks in creation order, which is also
// the visual z-order.
//
// # Connections
//
// A [Connection] is a directed edge from a block's "out" port to another
// block's "in" port. Endpoints are always referenced by block id, never by a
// rendered element. [ConnectionRegistry.Connect] rejects self-loops with
// [ErrSelfLoop]; duplicate edges and cycles are legal.
//
// The two registries are siblings: the connection registry does not own or
// observe the block registry. Callers purge stale connections explicitly with
// [ConnectionRegistry.RemoveWhereEndpointMissing] before bulk redraws.
//
// # Concurrency
//
// Registries are not safe for concurrent use. The editor mutates them from a
// single event loop.
package flow
