package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anchit2000/flowcanvas/pkg/editor"
	"github.com/anchit2000/flowcanvas/pkg/errors"
	"github.com/anchit2000/flowcanvas/pkg/flow"
	"github.com/anchit2000/flowcanvas/pkg/flowdoc"
	"github.com/anchit2000/flowcanvas/pkg/geom"
	"github.com/anchit2000/flowcanvas/pkg/visual"
)

func toBlock(b flow.Block) flowdoc.Block {
	return flowdoc.New([]flow.Block{b}, nil).Blocks[0]
}

func toConnection(c flow.Connection) flowdoc.Connection {
	return flowdoc.New(nil, []flow.Connection{c}).Connections[0]
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.editor.Export(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := flowdoc.Write(doc, w); err != nil {
		s.logger.Error("Writing document", "err", err)
	}
}

type importResponse struct {
	Report editor.ImportReport `json:"report"`
	Error  *errorResponse      `json:"error,omitempty"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	report, err := s.editor.ImportReader(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, importResponse{Report: report})
	case errors.Is(err, errors.ErrCodeImportIncomplete):
		writeJSON(w, http.StatusOK, importResponse{
			Report: report,
			Error:  &errorResponse{Code: errors.ErrCodeImportIncomplete, Error: err.Error()},
		})
	default:
		s.writeError(w, err)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.editor.Reset()
	w.WriteHeader(http.StatusNoContent)
}

type portJSON struct {
	Port   geom.Port `json:"port"`
	Bounds geom.Rect `json:"bounds"`
}

type elementJSON struct {
	BlockID string         `json:"blockId"`
	Type    string         `json:"type"`
	Label   string         `json:"label"`
	Bounds  geom.Rect      `json:"bounds"`
	Ports   []portJSON     `json:"ports"`
	Fields  map[string]any `json:"fields"`
}

type lineJSON struct {
	ID   visual.LineID `json:"id"`
	From geom.Point    `json:"from"`
	To   geom.Point    `json:"to"`
}

type snapshotJSON struct {
	State    editor.State  `json:"state"`
	Offset   geom.Point    `json:"offset"`
	Elements []elementJSON `json:"elements"`
	Lines    []lineJSON    `json:"lines"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap := s.editor.Snapshot()
	out := snapshotJSON{
		State:    snap.State,
		Offset:   snap.Offset,
		Elements: make([]elementJSON, 0, len(snap.Elements)),
		Lines:    make([]lineJSON, 0, len(snap.Lines)),
	}
	for _, el := range snap.Elements {
		ej := elementJSON{
			BlockID: el.BlockID,
			Type:    el.Type,
			Label:   el.Label,
			Bounds:  el.Bounds,
			Fields:  el.Fields,
			Ports:   make([]portJSON, 0, len(el.Ports)),
		}
		for _, ps := range el.Ports {
			r, _ := el.ConnectorBounds(ps.Port)
			ej.Ports = append(ej.Ports, portJSON{Port: ps.Port, Bounds: r})
		}
		out.Elements = append(out.Elements, ej)
	}
	for _, l := range snap.Lines {
		out.Lines = append(out.Lines, lineJSON{ID: l.ID, From: l.From, To: l.To})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.types.Types(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"types": types})
}

func (s *Server) handleListBlocks(w http.ResponseWriter, _ *http.Request) {
	doc := flowdoc.New(s.editor.Blocks(), nil)
	writeJSON(w, http.StatusOK, doc.Blocks)
}

func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, ok := s.editor.Block(id)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeUnknownBlock, "block %s does not exist", id))
		return
	}
	writeJSON(w, http.StatusOK, toBlock(b))
}

type placeRequest struct {
	Type     string     `json:"type"`
	Position geom.Point `json:"position"`
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := errors.ValidateBlockType(req.Type); err != nil {
		s.writeError(w, err)
		return
	}
	b, err := s.editor.Place(r.Context(), req.Type, req.Position)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBlock(b))
}

type updateBlockRequest struct {
	Position *geom.Point `json:"position"`
	Data     flow.Data   `json:"data"`
}

func (s *Server) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateBlockRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Data != nil {
		if err := s.editor.SetData(id, req.Data); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.Position != nil {
		if err := s.editor.Move(r.Context(), id, *req.Position); err != nil {
			s.writeError(w, err)
			return
		}
	}
	b, ok := s.editor.Block(id)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeUnknownBlock, "block %s does not exist", id))
		return
	}
	writeJSON(w, http.StatusOK, toBlock(b))
}

func (s *Server) handleListConnections(w http.ResponseWriter, _ *http.Request) {
	doc := flowdoc.New(nil, s.editor.Connections())
	writeJSON(w, http.StatusOK, doc.Connections)
}

type connectRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	c, err := s.editor.Connect(r.Context(), req.From, req.To)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toConnection(c))
}

type dropRequest struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := errors.ValidateBlockType(req.Type); err != nil {
		s.writeError(w, err)
		return
	}
	b, err := s.editor.Drop(r.Context(), editor.DropEvent{X: req.X, Y: req.Y, Type: req.Type})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBlock(b))
}

type pointerRequest struct {
	Pointer int     `json:"pointer"`
	Kind    string  `json:"kind"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

var pointerKinds = map[string]editor.PointerKind{
	"down": editor.PointerDown,
	"move": editor.PointerMove,
	"up":   editor.PointerUp,
}

type stateResponse struct {
	State editor.State `json:"state"`
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Kind == "cancel" {
		s.editor.Cancel(req.Pointer)
		writeJSON(w, http.StatusOK, stateResponse{State: s.editor.State()})
		return
	}
	kind, ok := pointerKinds[req.Kind]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown pointer kind %q", req.Kind))
		return
	}
	s.editor.Pointer(r.Context(), editor.PointerEvent{Pointer: req.Pointer, Kind: kind, X: req.X, Y: req.Y})
	writeJSON(w, http.StatusOK, stateResponse{State: s.editor.State()})
}

type scrollRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.editor.Scroll(req.DX, req.DY)
	writeJSON(w, http.StatusOK, map[string]geom.Point{"offset": s.editor.Snapshot().Offset})
}

func (s *Server) handleRedraw(w http.ResponseWriter, _ *http.Request) {
	s.editor.Redraw()
	w.WriteHeader(http.StatusNoContent)
}
