package blocktype

import (
	"context"
	"sync"

	"github.com/anchit2000/flowcanvas/pkg/errors"
)

// Registry resolves block types to templates and adapters. Parsed
// templates are kept for the lifetime of the registry.
//
// A Registry is safe for concurrent use.
type Registry struct {
	source Source

	mu        sync.Mutex
	templates map[string]*Template
	adapters  map[string]Adapter
}

// NewRegistry creates a registry backed by source. A nil source serves the
// built-in templates only.
func NewRegistry(source Source) *Registry {
	if source == nil {
		source = EmbeddedSource{}
	}
	return &Registry{
		source:    source,
		templates: make(map[string]*Template),
		adapters:  make(map[string]Adapter),
	}
}

// Template returns the template of blockType. Any failure, including an
// unknown type, is reported with code TEMPLATE_FETCH_FAILED.
func (r *Registry) Template(ctx context.Context, blockType string) (*Template, error) {
	r.mu.Lock()
	t, ok := r.templates[blockType]
	r.mu.Unlock()
	if ok {
		return t, nil
	}

	data, err := r.source.Fetch(ctx, blockType)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTemplateFetch, err, "load template %q from %s", blockType, r.source.Name())
	}
	t, err = ParseTemplate(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTemplateFetch, err, "load template %q from %s", blockType, r.source.Name())
	}
	if t.Type != blockType {
		return nil, errors.New(errors.ErrCodeTemplateFetch,
			"template for %q declares type %q", blockType, t.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.templates[blockType]; ok {
		return prev, nil
	}
	r.templates[blockType] = t
	return t, nil
}

// Adapter returns the adapter of blockType: the registered override if
// there is one, otherwise a [FieldAdapter] over its template.
func (r *Registry) Adapter(ctx context.Context, blockType string) (Adapter, error) {
	r.mu.Lock()
	a, ok := r.adapters[blockType]
	r.mu.Unlock()
	if ok {
		return a, nil
	}
	t, err := r.Template(ctx, blockType)
	if err != nil {
		return nil, err
	}
	return NewFieldAdapter(t), nil
}

// Register overrides the adapter of blockType.
func (r *Registry) Register(blockType string, a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[blockType] = a
}

// Types lists the block types offered by the source.
func (r *Registry) Types(ctx context.Context) ([]string, error) {
	return r.source.List(ctx)
}

// Source returns the underlying source.
func (r *Registry) Source() Source { return r.source }
