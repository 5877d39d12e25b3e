package flowdoc

import (
	"github.com/anchit2000/flowcanvas/pkg/errors"
	"github.com/anchit2000/flowcanvas/pkg/flow"
	"github.com/anchit2000/flowcanvas/pkg/geom"
)

// Document is a serialized flow.
type Document struct {
	Blocks      []Block      `json:"blocks"`
	Connections []Connection `json:"connections"`
}

// Block is a serialized block.
type Block struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Position geom.Point `json:"position"`
	Data     flow.Data  `json:"data"`
}

// Endpoint is one end of a serialized connection.
type Endpoint struct {
	BlockID string    `json:"blockId"`
	Port    geom.Port `json:"port"`
}

// Connection is a serialized connection.
type Connection struct {
	From Endpoint `json:"from"`
	To   Endpoint `json:"to"`
}

// New builds a document from registry snapshots. Data is deep-copied.
func New(blocks []flow.Block, conns []flow.Connection) Document {
	doc := Document{
		Blocks:      make([]Block, len(blocks)),
		Connections: make([]Connection, len(conns)),
	}
	for i, b := range blocks {
		doc.Blocks[i] = Block{ID: b.ID, Type: b.Type, Position: b.Position, Data: b.Data.Clone()}
	}
	for i, c := range conns {
		doc.Connections[i] = Connection{
			From: Endpoint{BlockID: c.From.BlockID, Port: c.From.Port},
			To:   Endpoint{BlockID: c.To.BlockID, Port: c.To.Port},
		}
	}
	return doc
}

// Validate checks that block ids are non-empty and unique, that every
// block has a type and that every endpoint names a known port. References
// to missing blocks are allowed.
func (d *Document) Validate() error {
	seen := make(map[string]bool, len(d.Blocks))
	for i, b := range d.Blocks {
		if b.ID == "" {
			return errors.New(errors.ErrCodeImportParse, "block %d: missing id", i)
		}
		if seen[b.ID] {
			return errors.New(errors.ErrCodeImportParse, "block %s: duplicate id", b.ID)
		}
		seen[b.ID] = true
		if b.Type == "" {
			return errors.New(errors.ErrCodeImportParse, "block %s: missing type", b.ID)
		}
	}
	for i, c := range d.Connections {
		for _, ep := range []Endpoint{c.From, c.To} {
			if ep.Port != geom.PortOut && ep.Port != geom.PortIn {
				return errors.New(errors.ErrCodeImportParse, "connection %d: invalid port %q", i, ep.Port)
			}
		}
	}
	return nil
}

// Dangling returns the connections that reference a block missing from
// the document.
func (d *Document) Dangling() []Connection {
	ids := make(map[string]bool, len(d.Blocks))
	for _, b := range d.Blocks {
		ids[b.ID] = true
	}
	var out []Connection
	for _, c := range d.Connections {
		if !ids[c.From.BlockID] || !ids[c.To.BlockID] {
			out = append(out, c)
		}
	}
	return out
}

// normalize replaces nil slices and maps so that an empty document is
// written as arrays and objects, never null.
func (d *Document) normalize() {
	if d.Blocks == nil {
		d.Blocks = []Block{}
	}
	if d.Connections == nil {
		d.Connections = []Connection{}
	}
	for i := range d.Blocks {
		if d.Blocks[i].Data == nil {
			d.Blocks[i].Data = flow.Data{}
		}
	}
}
