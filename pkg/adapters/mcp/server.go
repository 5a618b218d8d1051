package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aretw0/itemtree"
	"github.com/aretw0/itemtree/internal/presentation/graph"
	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/layout"
	"github.com/aretw0/itemtree/pkg/tree"
	"github.com/aretw0/itemtree/pkg/workspace"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const treesURI = "itemtree://trees"

// Match is a node found by query_nodes.
type Match struct {
	Path []string        `json:"path"`
	Node domain.NodeSpec `json:"node"`
}

// QueryResponse is the structured result of query_nodes.
type QueryResponse struct {
	Matches []Match `json:"matches"`
}

// Server exposes a workspace of trees as an MCP server.
type Server struct {
	workspace *workspace.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(ws *workspace.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		workspace: ws,
		logger:    logger,
		mcpServer: server.NewMCPServer("itemtree-mcp", strings.TrimSpace(itemtree.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", s.corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", s.corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("CORS middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_trees",
		mcp.WithDescription("List the names of the open trees."),
	), s.handleListTrees)

	s.mcpServer.AddTool(mcp.NewTool("open_tree",
		mcp.WithDescription("Open a tree. With a layout (YAML or JSON) any existing tree of that name is replaced."),
		mcp.WithString("tree", mcp.Required(), mcp.Description("Tree name")),
		mcp.WithString("layout", mcp.Description("Layout document for the whole tree (optional)")),
	), s.handleOpenTree)

	s.mcpServer.AddTool(mcp.NewTool("close_tree",
		mcp.WithDescription("Close a tree."),
		mcp.WithString("tree", mcp.Required(), mcp.Description("Tree name")),
	), s.handleCloseTree)

	s.mcpServer.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Snapshot a tree, or the subtree at path."),
		mcp.WithString("tree", mcp.Required(), mcp.Description("Tree name")),
		mcp.WithString("path", mcp.Description("Slash separated ids below the root (optional)")),
		mcp.WithRawOutputSchema(nodeSchema),
	), mcp.NewStructuredToolHandler(s.handleGetTree))

	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Build a node from a layout and add it under parent. A sibling with the same id is replaced."),
		mcp.WithString("tree", mcp.Required(), mcp.Description("Tree name")),
		mcp.WithString("parent", mcp.Description("Slash separated ids of the parent below the root (optional)")),
		mcp.WithString("node", mcp.Required(), mcp.Description("Layout of the node (YAML or JSON)")),
		mcp.WithNumber("index", mcp.Description("Position among the parent's children (optional, appends by default)")),
	), s.handleAddNode)

	s.mcpServer.AddTool(mcp.NewTool("remove_node",
		mcp.WithDescription("Remove the node at path."),
		mcp.WithString("tree", mcp.Required(), mcp.Description("Tree name")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Slash separated ids below the root")),
	), s.handleRemoveNode)

	s.mcpServer.AddTool(mcp.NewTool("query_nodes",
		mcp.WithDescription("Find the nodes of a tree matching a CSS selector."),
		mcp.WithString("tree", mcp.Required(), mcp.Description("Tree name")),
		mcp.WithString("selector", mcp.Required(), mcp.Description("CSS selector")),
		mcp.WithRawOutputSchema(querySchema),
	), mcp.NewStructuredToolHandler(s.handleQueryNodes))

	s.mcpServer.AddTool(mcp.NewTool("render_graph",
		mcp.WithDescription("Render a tree as a Mermaid flowchart, highlighting selector matches."),
		mcp.WithString("tree", mcp.Required(), mcp.Description("Tree name")),
		mcp.WithString("selector", mcp.Description("CSS selector to highlight (optional)")),
	), s.handleRenderGraph)
}

func (s *Server) handleListTrees(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, _ := json.Marshal(map[string][]string{"trees": s.workspace.List()})
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleOpenTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("tree")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc := request.GetString("layout", "")
	if strings.TrimSpace(doc) == "" {
		created, err := s.workspace.Open(ctx, name)
		if err != nil {
			return toolError("open", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(`{"tree":%q,"created":%t}`, name, created)), nil
	}

	spec, err := layout.Parse([]byte(doc), "yaml")
	if err != nil {
		return toolError("open", err), nil
	}
	if err := s.workspace.OpenLayout(ctx, name, spec); err != nil {
		return toolError("open", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"tree":%q,"created":true}`, name)), nil
}

func (s *Server) handleCloseTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("tree")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.workspace.Close(ctx, name); err != nil {
		return toolError("close", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"tree":%q,"closed":true}`, name)), nil
}

func (s *Server) handleGetTree(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.NodeSpec, error) {
	name, _ := args["tree"].(string)
	at, _ := args["path"].(string)

	var spec domain.NodeSpec
	err := s.workspace.WithTree(ctx, name, func(ctx context.Context, root *tree.Node) error {
		n, err := root.Lookup(at)
		if err != nil {
			return err
		}
		spec, err = n.Snapshot()
		return err
	})
	if err != nil {
		return domain.NodeSpec{}, fmt.Errorf("get tree failed: %w", err)
	}
	return spec, nil
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("tree")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := request.RequireString("node")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	parentPath := request.GetString("parent", "")

	spec, err := layout.Parse([]byte(doc), "yaml")
	if err != nil {
		return toolError("add", err), nil
	}
	item, err := s.workspace.Build(name, spec)
	if err != nil {
		return toolError("add", err), nil
	}

	var added domain.NodeSpec
	err = s.workspace.WithTree(ctx, name, func(ctx context.Context, root *tree.Node) error {
		parent, err := root.Lookup(parentPath)
		if err != nil {
			return err
		}
		if _, ok := request.GetArguments()["index"]; ok {
			_, err = parent.InsertAt(request.GetInt("index", 0), item)
		} else {
			_, err = parent.Add(item)
		}
		if err != nil {
			return err
		}
		added, err = item.Snapshot()
		return err
	})
	if err != nil {
		return toolError("add", err), nil
	}

	jsonBytes, _ := json.Marshal(added)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleRemoveNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("tree")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	at, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	parentPath, id := path.Split(strings.Trim(at, "/"))
	if id == "" {
		return mcp.NewToolResultError("remove: the root is removed with close_tree"), nil
	}

	err = s.workspace.WithTree(ctx, name, func(ctx context.Context, root *tree.Node) error {
		parent, err := root.Lookup(parentPath)
		if err != nil {
			return err
		}
		_, err = parent.Remove(id)
		return err
	})
	if err != nil {
		return toolError("remove", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"removed":%q}`, at)), nil
}

func (s *Server) handleQueryNodes(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (QueryResponse, error) {
	name, _ := args["tree"].(string)
	selector, _ := args["selector"].(string)

	resp := QueryResponse{Matches: []Match{}}
	err := s.workspace.WithTree(ctx, name, func(ctx context.Context, root *tree.Node) error {
		found, err := root.FindAll(selector)
		if err != nil {
			return err
		}
		for _, n := range found {
			spec, err := n.Snapshot()
			if err != nil {
				return err
			}
			resp.Matches = append(resp.Matches, Match{Path: n.Path(), Node: spec})
		}
		return nil
	})
	if err != nil {
		return QueryResponse{}, fmt.Errorf("query failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleRenderGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("tree")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	selector := request.GetString("selector", "")

	var out string
	err = s.workspace.WithTree(ctx, name, func(ctx context.Context, root *tree.Node) error {
		spec, err := root.Snapshot()
		if err != nil {
			return err
		}
		var overlay *graph.GraphOverlay
		if selector != "" {
			found, err := root.FindAll(selector)
			if err != nil {
				return err
			}
			overlay = &graph.GraphOverlay{}
			for _, n := range found {
				overlay.Matches = append(overlay.Matches, strings.Join(n.Path(), "/"))
			}
		}
		out = graph.GenerateMermaid(spec, overlay)
		return nil
	})
	if err != nil {
		return toolError("render graph", err), nil
	}
	return mcp.NewToolResultText(out), nil
}

func toolError(op string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, domain.ErrTreeNotFound), errors.Is(err, domain.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("%s: not found: %v", op, err))
	case errors.Is(err, domain.ErrInvalidArgument):
		return mcp.NewToolResultError(fmt.Sprintf("%s: invalid argument: %v", op, err))
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", op, err))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(treesURI, "Open Trees",
		mcp.WithMIMEType("application/json"),
	), s.readTrees)
}

func (s *Server) readTrees(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	trees := make(map[string]domain.NodeSpec)
	for _, name := range s.workspace.List() {
		err := s.workspace.WithTree(ctx, name, func(ctx context.Context, root *tree.Node) error {
			spec, err := root.Snapshot()
			trees[name] = spec
			return err
		})
		// Closed between List and WithTree.
		if errors.Is(err, domain.ErrTreeNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot %q: %w", name, err)
		}
	}
	jsonBytes, _ := json.Marshal(trees)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      treesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
