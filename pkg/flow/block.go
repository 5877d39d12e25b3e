package flow

import (
	"errors"
	"maps"

	"github.com/google/uuid"

	"github.com/anchit2000/flowcanvas/pkg/geom"
)

var (
	// ErrInvalidBlockID is returned by [BlockRegistry.Add] when the block id
	// is empty.
	ErrInvalidBlockID = errors.New("block ID must not be empty")

	// ErrDuplicateBlockID is returned by [BlockRegistry.Add] when a block with
	// the same id is already registered.
	ErrDuplicateBlockID = errors.New("duplicate block ID")

	// ErrUnknownBlock is returned when an operation names a block id that is
	// not in the registry.
	ErrUnknownBlock = errors.New("unknown block")
)

// Position is a surface-local coordinate of a block's top-left corner.
type Position = geom.Point

// Data is the opaque, type-specific payload of a block.
type Data map[string]any

// Clone returns a deep copy of d. Nested maps and slices produced by JSON
// decoding are copied as well so that snapshots never alias live state.
func (d Data) Clone() Data {
	if d == nil {
		return Data{}
	}
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case Data:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

// Block is a placed node.
type Block struct {
	ID       string
	Type     string
	Position Position
	Data     Data
}

// IDFunc generates block identifiers.
type IDFunc func() string

// BlockRegistry is the ordered set of placed blocks.
//
// The zero value is not usable; create one with [NewBlockRegistry].
type BlockRegistry struct {
	blocks []*Block
	index  map[string]*Block
	newID  IDFunc
}

// NewBlockRegistry creates an empty registry. A nil idFunc defaults to
// random UUIDs.
func NewBlockRegistry(idFunc IDFunc) *BlockRegistry {
	if idFunc == nil {
		idFunc = uuid.NewString
	}
	return &BlockRegistry{
		index: make(map[string]*Block),
		newID: idFunc,
	}
}

// Place allocates a fresh id, appends a block of the given type with empty
// data at pos, and returns a copy of it.
func (r *BlockRegistry) Place(blockType string, pos Position) Block {
	id := r.newID()
	for id == "" || r.Has(id) {
		id = r.newID()
	}
	b := &Block{ID: id, Type: blockType, Position: pos, Data: Data{}}
	r.blocks = append(r.blocks, b)
	r.index[id] = b
	return copyBlock(b)
}

// Add registers an existing block, keeping its id. It is used when
// reconstructing a flow from a document.
func (r *BlockRegistry) Add(b Block) error {
	if b.ID == "" {
		return ErrInvalidBlockID
	}
	if r.Has(b.ID) {
		return ErrDuplicateBlockID
	}
	nb := copyBlock(&b)
	r.blocks = append(r.blocks, &nb)
	r.index[nb.ID] = &nb
	return nil
}

// MoveTo overwrites the position of block id.
func (r *BlockRegistry) MoveTo(id string, pos Position) error {
	b, ok := r.index[id]
	if !ok {
		return ErrUnknownBlock
	}
	b.Position = pos
	return nil
}

// SetData replaces the data payload of block id with a copy of data.
func (r *BlockRegistry) SetData(id string, data Data) error {
	b, ok := r.index[id]
	if !ok {
		return ErrUnknownBlock
	}
	b.Data = data.Clone()
	return nil
}

// Get returns a copy of block id.
func (r *BlockRegistry) Get(id string) (Block, bool) {
	b, ok := r.index[id]
	if !ok {
		return Block{}, false
	}
	return copyBlock(b), true
}

// Has reports whether block id exists.
func (r *BlockRegistry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// IDs returns the set of registered block ids.
func (r *BlockRegistry) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(r.blocks))
	for id := range maps.Keys(r.index) {
		ids[id] = struct{}{}
	}
	return ids
}

// Reset removes every block.
func (r *BlockRegistry) Reset() {
	r.blocks = nil
	clear(r.index)
}

// All returns a snapshot of the blocks in creation order. Modifying the
// result does not affect the registry.
func (r *BlockRegistry) All() []Block {
	out := make([]Block, len(r.blocks))
	for i, b := range r.blocks {
		out[i] = copyBlock(b)
	}
	return out
}

// Len returns the number of blocks.
func (r *BlockRegistry) Len() int { return len(r.blocks) }

// Order returns the block ids in creation order.
func (r *BlockRegistry) Order() []string {
	ids := make([]string, len(r.blocks))
	for i, b := range r.blocks {
		ids[i] = b.ID
	}
	return ids
}

func copyBlock(b *Block) Block {
	return Block{ID: b.ID, Type: b.Type, Position: b.Position, Data: b.Data.Clone()}
}
