// Package mcp exposes the funnel engine as an MCP server, so AI agents can
// walk a visitor through the funnel over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	funnel "github.com/prodyssey/vibe-cto-dot-ai-sub000"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// SessionResponse is the unified structured result for session tools.
type SessionResponse struct {
	SessionID      string                  `json:"session_id" jsonschema_description:"The session identifier"`
	CurrentSceneID string                  `json:"current_scene_id" jsonschema_description:"The scene the visitor is on"`
	Scene          domain.SceneDefinition  `json:"scene" jsonschema_description:"The full current scene definition"`
	PathScores     map[domain.PathName]int `json:"path_scores" jsonschema_description:"Accumulated score per path"`
	FinalPath      domain.PathName         `json:"final_path,omitempty" jsonschema_description:"The winning path, once finalized"`
	Terminal       bool                    `json:"terminal" jsonschema_description:"True when the current scene is absorbing"`
	Completed      bool                    `json:"completed" jsonschema_description:"True once the session has a final outcome"`
}

// Server wraps the funnel Engine and exposes it as an MCP server.
type Server struct {
	engine    *funnel.Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance.
func NewServer(engine *funnel.Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("funnel-mcp", strings.TrimSpace(funnel.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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
	// TOOL: start_session
	startTool := mcp.NewTool("start_session",
		mcp.WithDescription("Start or resume a funnel session. Omit session_id to get a fresh one."),
		mcp.WithString("session_id", mcp.Description("Session identifier to resume (optional)")),
		mcp.WithString("player_name", mcp.Description("Visitor display name (optional)")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStartSession))

	// TOOL: navigate
	navigateTool := mcp.NewTool("navigate",
		mcp.WithDescription("Move the session to another scene."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("scene_id", mcp.Required(), mcp.Description("Target scene ID")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(navigateTool, mcp.NewStructuredToolHandler(s.handleNavigate))

	// TOOL: make_choice
	choiceTool := mcp.NewTool("make_choice",
		mcp.WithDescription("Record a choice at the current scene, optionally with a typed payload."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("scene_id", mcp.Required(), mcp.Description("Scene the choice belongs to")),
		mcp.WithString("choice_id", mcp.Required(), mcp.Description("Chosen option ID")),
		mcp.WithString("payload_kind", mcp.Description("Payload kind: contact, qualification, waitlist or note (optional)")),
		mcp.WithString("payload", mcp.Description("JSON object with the payload fields (optional)")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(choiceTool, mcp.NewStructuredToolHandler(s.handleMakeChoice))

	// TOOL: finalize_path
	finalizeTool := mcp.NewTool("finalize_path",
		mcp.WithDescription("Derive the winning path from the session's accumulated scores."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(finalizeTool, mcp.NewStructuredToolHandler(s.handleFinalize))

	// TOOL: session_state
	stateTool := mcp.NewTool("session_state",
		mcp.WithDescription("Inspect a session's current state."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(stateTool, mcp.NewStructuredToolHandler(s.handleSessionState))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the scene graph as Mermaid flowchart syntax."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(s.engine.Graph(nil)), nil
	})
}

func (s *Server) response(sess *funnel.Session) SessionResponse {
	state := sess.State()
	scene, err := s.engine.Scene(state.CurrentSceneID)
	terminal := err == nil && scene.Terminal()
	return SessionResponse{
		SessionID:      state.SessionID,
		CurrentSceneID: state.CurrentSceneID,
		Scene:          scene,
		PathScores:     state.PathScores,
		FinalPath:      state.FinalPath,
		Terminal:       terminal,
		Completed:      state.Completion.IsCompleted,
	}
}

func (s *Server) lookup(args map[string]interface{}) (*funnel.Session, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	sess, ok := s.engine.Session(id)
	if !ok {
		return nil, fmt.Errorf("unknown session %q", id)
	}
	return sess, nil
}

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	id, _ := args["session_id"].(string)
	sess := s.engine.ResumeSession(ctx, id)
	if name, ok := args["player_name"].(string); ok && name != "" {
		sess.SetPlayerIdentity(name, false)
	}
	sess.StartSession()
	return s.response(sess), nil
}

func (s *Server) handleNavigate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sess, err := s.lookup(args)
	if err != nil {
		return SessionResponse{}, err
	}
	sceneID, _ := args["scene_id"].(string)
	if err := sess.NavigateTo(sceneID); err != nil {
		return SessionResponse{}, fmt.Errorf("navigate failed: %w", err)
	}
	return s.response(sess), nil
}

func (s *Server) handleMakeChoice(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sess, err := s.lookup(args)
	if err != nil {
		return SessionResponse{}, err
	}
	sceneID, _ := args["scene_id"].(string)
	choiceID, _ := args["choice_id"].(string)

	var payload domain.ChoicePayload
	if kind, ok := args["payload_kind"].(string); ok && kind != "" {
		data := make(map[string]any)
		if raw, ok := args["payload"].(string); ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), &data); err != nil {
				return SessionResponse{}, fmt.Errorf("payload is not valid JSON: %w", err)
			}
		}
		payload, err = domain.DecodePayload(kind, data)
		if err != nil {
			return SessionResponse{}, err
		}
	}

	if err := sess.RecordChoice(sceneID, choiceID, payload); err != nil {
		return SessionResponse{}, fmt.Errorf("choice rejected: %w", err)
	}
	return s.response(sess), nil
}

func (s *Server) handleFinalize(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sess, err := s.lookup(args)
	if err != nil {
		return SessionResponse{}, err
	}
	sess.FinalizePath()
	return s.response(sess), nil
}

func (s *Server) handleSessionState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sess, err := s.lookup(args)
	if err != nil {
		return SessionResponse{}, err
	}
	return s.response(sess), nil
}

func (s *Server) registerResources() {
	// EXPOSE: funnel://graph
	s.mcpServer.AddResource(mcp.NewResource("funnel://graph", "Scene Graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Scenes())
		if err != nil {
			return nil, fmt.Errorf("failed to encode scenes: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "funnel://graph",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
