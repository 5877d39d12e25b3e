package flow

import (
	"errors"
	"slices"

	"github.com/anchit2000/flowcanvas/pkg/geom"
)

// ErrSelfLoop is returned by [ConnectionRegistry.Connect] when both endpoints
// name the same block. The connection is rejected and nothing is recorded.
var ErrSelfLoop = errors.New("connection rejected: self-loop")

// Port is the polarity of a connector.
type Port = geom.Port

// Connector polarities.
const (
	PortOut = geom.PortOut
	PortIn  = geom.PortIn
)

// Endpoint references a connector by block id and port.
type Endpoint struct {
	BlockID string
	Port    Port
}

// Ref converts e into a geometry connector reference.
func (e Endpoint) Ref() geom.ConnectorRef {
	return geom.ConnectorRef{BlockID: e.BlockID, Port: e.Port}
}

// Connection is a directed edge from an out port to an in port.
//
// Key identifies the connection for the lifetime of the registry and is the
// handle the visual layer uses to find the rendered line. It is not part of
// the serialized form.
type Connection struct {
	From Endpoint
	To   Endpoint
	key  uint64
}

// Key returns the registry-assigned handle of c.
func (c Connection) Key() uint64 { return c.key }

// Involves reports whether either endpoint of c is blockID.
func (c Connection) Involves(blockID string) bool {
	return c.From.BlockID == blockID || c.To.BlockID == blockID
}

// ConnectionRegistry is the ordered set of connections.
type ConnectionRegistry struct {
	conns   []Connection
	nextKey uint64
}

// NewConnectionRegistry creates an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{nextKey: 1}
}

// Connect appends a connection from fromBlockID's out port to toBlockID's in
// port. It returns [ErrSelfLoop] when the ids are equal. Duplicate edges and
// cycles are accepted.
func (r *ConnectionRegistry) Connect(fromBlockID, toBlockID string) (Connection, error) {
	if fromBlockID == toBlockID {
		return Connection{}, ErrSelfLoop
	}
	c := Connection{
		From: Endpoint{BlockID: fromBlockID, Port: PortOut},
		To:   Endpoint{BlockID: toBlockID, Port: PortIn},
		key:  r.nextKey,
	}
	r.nextKey++
	r.conns = append(r.conns, c)
	return c, nil
}

// RemoveWhereEndpointMissing drops every connection whose source or target
// block is absent from existing and returns the dropped connections.
func (r *ConnectionRegistry) RemoveWhereEndpointMissing(existing map[string]struct{}) []Connection {
	var removed []Connection
	r.conns = slices.DeleteFunc(r.conns, func(c Connection) bool {
		_, okFrom := existing[c.From.BlockID]
		_, okTo := existing[c.To.BlockID]
		if okFrom && okTo {
			return false
		}
		removed = append(removed, c)
		return true
	})
	return removed
}

// ForEachInvolving calls fn for every connection touching blockID, in
// registry order.
func (r *ConnectionRegistry) ForEachInvolving(blockID string, fn func(Connection)) {
	for _, c := range r.conns {
		if c.Involves(blockID) {
			fn(c)
		}
	}
}

// All returns a snapshot of the connections in creation order.
func (r *ConnectionRegistry) All() []Connection { return slices.Clone(r.conns) }

// Len returns the number of connections.
func (r *ConnectionRegistry) Len() int { return len(r.conns) }

// Reset removes every connection. Keys are not reused afterwards.
func (r *ConnectionRegistry) Reset() { r.conns = nil }
