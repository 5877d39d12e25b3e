package blocktype

import (
	"context"
	"embed"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/anchit2000/flowcanvas/pkg/errors"
)

// ErrUnknownType is returned by a [Source] that has no descriptor for the
// requested type. [ChainSource] moves on to the next source on this error.
var ErrUnknownType = stderrors.New("unknown block type")

// Source fetches raw TOML template descriptors.
type Source interface {
	// Name identifies the source in cache keys and log output.
	Name() string

	// Fetch returns the descriptor of blockType.
	Fetch(ctx context.Context, blockType string) ([]byte, error)

	// List returns the block types the source knows about.
	List(ctx context.Context) ([]string, error)
}

//go:embed templates/*.toml
var builtin embed.FS

// EmbeddedSource serves the built-in descriptors compiled into the binary.
type EmbeddedSource struct{}

// Name implements [Source].
func (EmbeddedSource) Name() string { return "embedded" }

// Fetch implements [Source].
func (EmbeddedSource) Fetch(_ context.Context, blockType string) ([]byte, error) {
	if err := errors.ValidateBlockType(blockType); err != nil {
		return nil, err
	}
	data, err := builtin.ReadFile("templates/" + blockType + ".toml")
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, ErrUnknownType
	}
	return data, err
}

// List implements [Source].
func (EmbeddedSource) List(context.Context) ([]string, error) {
	return listTOML(builtin, "templates")
}

// DirSource reads descriptors named <type>.toml from a directory.
type DirSource struct {
	dir string
}

// NewDirSource creates a source reading from dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Name implements [Source].
func (s *DirSource) Name() string { return "dir:" + s.dir }

// Fetch implements [Source].
func (s *DirSource) Fetch(_ context.Context, blockType string) ([]byte, error) {
	if err := errors.ValidateBlockType(blockType); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, blockType+".toml"))
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, ErrUnknownType
	}
	return data, err
}

// List implements [Source]. A missing directory lists nothing.
func (s *DirSource) List(context.Context) ([]string, error) {
	types, err := listTOML(os.DirFS(s.dir), ".")
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return types, err
}

func listTOML(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var types []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".toml")
		if !ok || e.IsDir() || errors.ValidateBlockType(name) != nil {
			continue
		}
		types = append(types, name)
	}
	return types, nil
}

// ChainSource asks each source in turn. The first source that knows the
// type wins; any error other than [ErrUnknownType] stops the search.
type ChainSource []Source

// Name implements [Source].
func (c ChainSource) Name() string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// Fetch implements [Source].
func (c ChainSource) Fetch(ctx context.Context, blockType string) ([]byte, error) {
	for _, s := range c {
		data, err := s.Fetch(ctx, blockType)
		if stderrors.Is(err, ErrUnknownType) {
			continue
		}
		return data, err
	}
	return nil, ErrUnknownType
}

// List implements [Source]. The union is sorted and free of duplicates.
func (c ChainSource) List(ctx context.Context) ([]string, error) {
	var all []string
	for _, s := range c {
		types, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, types...)
	}
	slices.Sort(all)
	return slices.Compact(all), nil
}

var (
	_ Source = EmbeddedSource{}
	_ Source = (*DirSource)(nil)
	_ Source = ChainSource(nil)
)
