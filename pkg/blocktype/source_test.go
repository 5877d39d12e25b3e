package blocktype

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anchit2000/flowcanvas/pkg/cache"
)

const noteTemplate = "type = \"note\"\nlabel = \"Note\"\n"

func TestEmbeddedSource(t *testing.T) {
	ctx := context.Background()
	types, err := EmbeddedSource{}.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"agent", "calculator", "chat-input", "chat-output", "markdown", "url"}
	if !slices.Equal(types, want) {
		t.Errorf("List() = %v, want %v", types, want)
	}
	if _, err := (EmbeddedSource{}).Fetch(ctx, "nope"); !stderrors.Is(err, ErrUnknownType) {
		t.Errorf("Fetch(nope) = %v, want ErrUnknownType", err)
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "note.toml"), []byte(noteTemplate), 0o644); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644)

	s := NewDirSource(dir)
	data, err := s.Fetch(context.Background(), "note")
	if err != nil || string(data) != noteTemplate {
		t.Errorf("Fetch(note) = %q, %v", data, err)
	}
	if _, err := s.Fetch(context.Background(), "../etc"); err == nil {
		t.Error("Fetch accepted a path-like type")
	}
	types, _ := s.List(context.Background())
	if !slices.Equal(types, []string{"note"}) {
		t.Errorf("List() = %v", types)
	}

	missing := NewDirSource(filepath.Join(dir, "missing"))
	if types, err := missing.List(context.Background()); err != nil || len(types) != 0 {
		t.Errorf("missing dir List() = %v, %v", types, err)
	}
}

func TestChainSource(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "agent.toml"), []byte("type = \"agent\"\nlabel = \"Custom\"\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "note.toml"), []byte(noteTemplate), 0o644)

	chain := ChainSource{NewDirSource(dir), EmbeddedSource{}}
	ctx := context.Background()

	data, err := chain.Fetch(ctx, "agent")
	if err != nil {
		t.Fatal(err)
	}
	if tmpl, _ := ParseTemplate(data); tmpl.Label != "Custom" {
		t.Errorf("first source did not win: label %q", tmpl.Label)
	}
	if _, err := chain.Fetch(ctx, "calculator"); err != nil {
		t.Errorf("fallback to embedded failed: %v", err)
	}
	if _, err := chain.Fetch(ctx, "unknown"); !stderrors.Is(err, ErrUnknownType) {
		t.Errorf("Fetch(unknown) = %v", err)
	}

	types, _ := chain.List(ctx)
	if len(types) != 7 || !slices.Contains(types, "note") {
		t.Errorf("List() = %v, want 6 built-ins plus note", types)
	}
}

func TestHTTPSource(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch r.URL.Path {
		case "/note.toml":
			if n == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(noteTemplate))
		case "/index.json":
			w.Write([]byte(`["note"]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s, err := NewHTTPSource(srv.URL+"/", WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	data, err := s.Fetch(ctx, "note")
	if err != nil || string(data) != noteTemplate {
		t.Fatalf("Fetch(note) = %q, %v", data, err)
	}
	if calls.Load() != 2 {
		t.Errorf("server calls = %d, want 2 (one retry)", calls.Load())
	}

	if _, err := s.Fetch(ctx, "missing"); !stderrors.Is(err, ErrUnknownType) {
		t.Errorf("Fetch(missing) = %v, want ErrUnknownType", err)
	}

	types, err := s.List(ctx)
	if err != nil || !slices.Equal(types, []string{"note"}) {
		t.Errorf("List() = %v, %v", types, err)
	}
}

func TestHTTPSourceGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s, _ := NewHTTPSource(srv.URL, WithHTTPClient(srv.Client()), WithRetry(2, time.Millisecond))
	_, err := s.Fetch(context.Background(), "note")
	if !stderrors.Is(err, cache.ErrNetwork) {
		t.Errorf("Fetch error = %v, want ErrNetwork", err)
	}
}

func TestNewHTTPSourceRejectsBadURL(t *testing.T) {
	if _, err := NewHTTPSource("ftp://templates"); err == nil {
		t.Error("NewHTTPSource accepted an ftp URL")
	}
}

type countingSource struct {
	Source
	fetches int
}

func (s *countingSource) Fetch(ctx context.Context, blockType string) ([]byte, error) {
	s.fetches++
	return s.Source.Fetch(ctx, blockType)
}

func TestCachedSource(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	inner := &countingSource{Source: EmbeddedSource{}}
	s := NewCachedSource(inner, c, nil, time.Hour)
	ctx := context.Background()

	first, err := s.Fetch(ctx, "agent")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Fetch(ctx, "agent")
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("cached descriptor differs from fetched descriptor")
	}
	if inner.fetches != 1 {
		t.Errorf("inner fetches = %d, want 1", inner.fetches)
	}

	if _, err := s.Fetch(ctx, "nope"); !stderrors.Is(err, ErrUnknownType) {
		t.Errorf("Fetch(nope) = %v", err)
	}
}
