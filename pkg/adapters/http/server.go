// Package http exposes a workspace of trees over a JSON API routed with chi.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/aretw0/itemtree"
	"github.com/aretw0/itemtree/internal/presentation/graph"
	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/layout"
	"github.com/aretw0/itemtree/pkg/ports"
	"github.com/aretw0/itemtree/pkg/tree"
	"github.com/aretw0/itemtree/pkg/workspace"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server serves the trees of a workspace.
type Server struct {
	workspace *workspace.Manager
	streams   *StreamManager
	metrics   http.Handler
	logger    *slog.Logger
	spec      *openapi3.T
}

// Option configures the Server.
type Option func(*Server)

// WithStreams serves GET /trees/{tree}/events from sm. The same StreamManager's Hooks
// must be installed on the workspace for events to flow.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger configures request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for the workspace.
func NewHandler(ws *workspace.Manager, opts ...Option) http.Handler {
	s := &Server{
		workspace: ws,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	spec, err := loadSpec()
	if err != nil {
		s.logger.Error("OpenAPI spec unavailable, requests are not validated", "err", err)
	}
	s.spec = spec

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", serveSpec)
	r.Get("/swagger", serveSwagger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": strings.TrimSpace(itemtree.Version),
		}, s.logger)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/trees", func(r chi.Router) {
		r.Get("/", s.listTrees)
		r.Route("/{tree}", func(r chi.Router) {
			r.Put("/", s.validated(treePattern, s.openTree))
			r.Get("/", s.getTree)
			r.Delete("/", s.closeTree)
			r.Get("/html", s.getHTML)
			r.Get("/graph", s.getGraph)
			r.Get("/query", s.query)
			if s.streams != nil {
				r.Get("/events", s.subscribeEvents)
			}
			r.Post("/nodes", s.validated(nodesPattern, s.addNode))
			r.Post("/nodes/*", s.validated(nodesPattern, s.addNode))
			r.Patch("/nodes", s.validated(nodesPattern, s.patchNode))
			r.Patch("/nodes/*", s.validated(nodesPattern, s.patchNode))
			r.Delete("/nodes", s.removeNode)
			r.Delete("/nodes/*", s.removeNode)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// -- Trees --

func (s *Server) listTrees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"trees": s.workspace.List()}, s.logger)
}

// openTree creates an empty widget, or builds the layout sent as the body (JSON, or YAML
// when the content type says so). A layout replaces any existing tree.
func (s *Server) openTree(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tree")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, fmt.Errorf("read body: %v: %w", err, domain.ErrInvalidArgument))
		return
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		created, err := s.workspace.Open(r.Context(), name)
		if err != nil {
			s.writeError(w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		s.writeSnapshot(w, r.Context(), name, status)
		return
	}

	format := "json"
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = "yaml"
	}
	spec, err := layout.Parse(body, format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.workspace.OpenLayout(r.Context(), name, spec); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSnapshot(w, r.Context(), name, http.StatusCreated)
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, r.Context(), chi.URLParam(r, "tree"), http.StatusOK)
}

func (s *Server) writeSnapshot(w http.ResponseWriter, ctx context.Context, name string, status int) {
	var spec domain.NodeSpec
	err := s.workspace.WithTree(ctx, name, func(ctx context.Context, root *tree.Node) error {
		var err error
		spec, err = root.Snapshot()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, spec, s.logger)
}

func (s *Server) closeTree(w http.ResponseWriter, r *http.Request) {
	if err := s.workspace.Close(r.Context(), chi.URLParam(r, "tree")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getHTML(w http.ResponseWriter, r *http.Request) {
	var html string
	err := s.workspace.WithTree(r.Context(), chi.URLParam(r, "tree"), func(ctx context.Context, root *tree.Node) error {
		renderer, ok := root.View().(ports.Renderer)
		if !ok {
			return errNotRenderable
		}
		var err error
		html, err = renderer.OuterHTML()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	var spec domain.NodeSpec
	var overlay *graph.GraphOverlay
	selector := r.URL.Query().Get("selector")

	err := s.workspace.WithTree(r.Context(), chi.URLParam(r, "tree"), func(ctx context.Context, root *tree.Node) error {
		var err error
		if spec, err = root.Snapshot(); err != nil {
			return err
		}
		if selector == "" {
			return nil
		}
		matches, err := root.FindAll(selector)
		if err != nil {
			return err
		}
		overlay = &graph.GraphOverlay{}
		for _, m := range matches {
			overlay.Matches = append(overlay.Matches, strings.Join(m.Path(), "/"))
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(spec, overlay))
}

// Match is one query result.
type Match struct {
	Path []string        `json:"path"`
	Node domain.NodeSpec `json:"node"`
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	selector := r.URL.Query().Get("selector")
	var matches []Match

	err := s.workspace.WithTree(r.Context(), chi.URLParam(r, "tree"), func(ctx context.Context, root *tree.Node) error {
		found, err := root.FindAll(selector)
		if err != nil {
			return err
		}
		matches = make([]Match, 0, len(found))
		for _, n := range found {
			spec, err := n.Snapshot()
			if err != nil {
				return err
			}
			matches = append(matches, Match{Path: n.Path(), Node: spec})
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]Match{"matches": matches}, s.logger)
}

// -- Nodes --

// AddNodeRequest describes the subtree to add and, optionally, where.
type AddNodeRequest struct {
	domain.NodeSpec
	Index *int `json:"index,omitempty"`
}

// PatchNodeRequest renames a node or edits its attributes. A null attribute value removes it.
type PatchNodeRequest struct {
	ID         *string            `json:"id,omitempty"`
	Attributes map[string]*string `json:"attributes,omitempty"`
	AddClasses []string           `json:"add_classes,omitempty"`
	RmClasses  []string           `json:"remove_classes,omitempty"`
}

func nodePath(r *http.Request) string {
	return chi.URLParam(r, "*")
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var req AddNodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := layout.Validate(req.NodeSpec); err != nil {
		s.writeError(w, err)
		return
	}
	name := chi.URLParam(r, "tree")

	var spec domain.NodeSpec
	err := s.workspace.WithTree(r.Context(), name, func(ctx context.Context, root *tree.Node) error {
		parent, err := root.Lookup(nodePath(r))
		if err != nil {
			return err
		}
		item, err := s.workspace.Build(name, req.NodeSpec)
		if err != nil {
			return err
		}
		if req.Index != nil {
			_, err = parent.InsertAt(*req.Index, item)
		} else {
			_, err = parent.Add(item)
		}
		if err != nil {
			return err
		}
		spec, err = item.Snapshot()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Debug("Node added", "tree", name, "id", spec.ID)
	writeJSON(w, http.StatusCreated, spec, s.logger)
}

func (s *Server) patchNode(w http.ResponseWriter, r *http.Request) {
	var req PatchNodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var spec domain.NodeSpec
	err := s.workspace.WithTree(r.Context(), chi.URLParam(r, "tree"), func(ctx context.Context, root *tree.Node) error {
		n, err := root.Lookup(nodePath(r))
		if err != nil {
			return err
		}
		rename, err := req.check(n, root)
		if err != nil {
			return err
		}
		if rename != nil {
			if err := n.SetID(*rename); err != nil {
				return err
			}
		}
		for _, name := range slices.Sorted(maps.Keys(req.Attributes)) {
			if isIDAttr(name) {
				continue
			}
			if value := req.Attributes[name]; value == nil {
				err = n.Attrs().Remove(name)
			} else {
				err = n.Attrs().Set(name, *value)
			}
			if err != nil {
				return err
			}
		}
		if len(req.AddClasses) > 0 {
			if err := n.ClassList().Add(req.AddClasses...); err != nil {
				return err
			}
		}
		if len(req.RmClasses) > 0 {
			if err := n.ClassList().Remove(req.RmClasses...); err != nil {
				return err
			}
		}
		spec, err = n.Snapshot()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spec, s.logger)
}

func isIDAttr(name string) bool {
	return strings.EqualFold(name, "id")
}

// check rejects a patch before any of it is applied and returns the rename it carries,
// whether sent as "id" or as the id attribute. A null id attribute reverts to the auto id.
func (req *PatchNodeRequest) check(n, root *tree.Node) (*string, error) {
	rename := req.ID
	for name, value := range req.Attributes {
		if name == "" {
			return nil, fmt.Errorf("attribute with empty name: %w", domain.ErrInvalidArgument)
		}
		if !isIDAttr(name) {
			continue
		}
		if rename != nil {
			return nil, fmt.Errorf("id given twice: %w", domain.ErrInvalidArgument)
		}
		id := ""
		if value != nil {
			id = *value
		}
		rename = &id
	}
	for _, c := range req.AddClasses {
		if c == "" || strings.ContainsAny(c, " \t\n\r\f") {
			return nil, fmt.Errorf("class %q: %w", c, domain.ErrInvalidArgument)
		}
	}
	if rename == nil {
		return nil, nil
	}
	if n == root {
		return nil, fmt.Errorf("the root id is the tree name: %w", domain.ErrInvalidArgument)
	}
	if p := n.Parent(); p != nil && *rename != "" && *rename != n.ID() && p.HasItem(*rename) {
		return nil, fmt.Errorf("rename %q to %q: %w", n.ID(), *rename, domain.ErrDuplicateID)
	}
	return rename, nil
}

func (s *Server) removeNode(w http.ResponseWriter, r *http.Request) {
	parentPath, id := path.Split(strings.Trim(nodePath(r), "/"))
	if id == "" {
		s.writeError(w, fmt.Errorf("remove the root with DELETE /trees/{tree}: %w", domain.ErrInvalidArgument))
		return
	}
	err := s.workspace.WithTree(r.Context(), chi.URLParam(r, "tree"), func(ctx context.Context, root *tree.Node) error {
		parent, err := root.Lookup(parentPath)
		if err != nil {
			return err
		}
		_, err = parent.Remove(id)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Helpers --

var errNotRenderable = errors.New("view cannot be rendered as HTML")

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, domain.ErrInvalidArgument)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrTreeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateID), errors.Is(err, domain.ErrCycle):
		return http.StatusConflict
	case errors.Is(err, errNotRenderable):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	} else {
		s.logger.Debug("Request rejected", "status", status, "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()}, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "err", err)
	}
}
