// Package httpapi exposes the funnel engine as a JSON API over HTTP. The
// server is a thin shell: every behavior lives in the engine, the handlers
// only translate requests and status codes.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	funnel "github.com/prodyssey/vibe-cto-dot-ai-sub000"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/logging"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/presentation/graph"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// Server holds the handler dependencies.
type Server struct {
	engine *funnel.Engine
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger (default no-op).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler builds the HTTP handler for the engine.
func NewHandler(engine *funnel.Engine, opts ...Option) http.Handler {
	s := &Server{engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(allowCORS)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/navigate", s.navigate)
			r.Post("/choices", s.recordChoice)
			r.Post("/finalize", s.finalizePath)
			r.Post("/complete", s.complete)
			r.Post("/reset", s.reset)
			r.Post("/unlock", s.unlock)
			r.Patch("/preferences", s.updatePreferences)
		})
		r.Get("/scenes/{sceneID}", s.getScene)
		r.Get("/graph", s.getGraph)
		r.Get("/validate", s.validate)
	})
	return r
}

// allowCORS lets the marketing site's browser clients call the API from any
// origin. The API carries no credentials.
func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionView is the wire shape of a session's state.
type sessionView struct {
	SessionID       string                  `json:"sessionId"`
	Player          domain.PlayerIdentity   `json:"player"`
	CurrentSceneID  string                  `json:"currentSceneId"`
	PathScores      map[domain.PathName]int `json:"pathScores"`
	FinalPath       domain.PathName         `json:"finalPath,omitempty"`
	DiscoveredPaths []domain.PathName       `json:"discoveredPaths"`
	Unlocked        []string                `json:"unlocked"`
	Preferences     domain.Preferences      `json:"preferences"`
	Completion      domain.CompletionStatus `json:"completion"`
	ChoiceCount     int                     `json:"choiceCount"`
}

func (s *Server) view(sess *funnel.Session) sessionView {
	state := sess.State()
	unlocked := state.Unlocked
	if unlocked == nil {
		unlocked = []string{}
	}
	discovered := sess.DiscoveredPaths()
	if discovered == nil {
		discovered = []domain.PathName{}
	}
	return sessionView{
		SessionID:       state.SessionID,
		Player:          state.Player,
		CurrentSceneID:  state.CurrentSceneID,
		PathScores:      state.PathScores,
		FinalPath:       state.FinalPath,
		DiscoveredPaths: discovered,
		Unlocked:        unlocked,
		Preferences:     state.Preferences,
		Completion:      state.Completion,
		ChoiceCount:     len(state.ChoiceHistory),
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID   string `json:"sessionId"`
		PlayerName  string `json:"playerName"`
		IsGenerated bool   `json:"isGenerated"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	sess := s.engine.ResumeSession(r.Context(), body.SessionID)
	if body.PlayerName != "" {
		sess.SetPlayerIdentity(body.PlayerName, body.IsGenerated)
	}
	sess.StartSession()
	writeJSON(w, http.StatusCreated, s.view(sess))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*funnel.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, ok := s.engine.Session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return nil, false
	}
	return sess, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.engine.DeleteSession(r.Context(), id); err != nil {
		s.logger.Warn("failed to delete session", "sessionId", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		SceneID string `json:"sceneId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := sess.NavigateTo(body.SceneID); err != nil {
		if errors.Is(err, domain.ErrSceneNotFound) {
			writeError(w, http.StatusNotFound, "unknown scene")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) recordChoice(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		SceneID  string `json:"sceneId"`
		ChoiceID string `json:"choiceId"`
		Payload  *struct {
			Kind string         `json:"kind"`
			Data map[string]any `json:"data"`
		} `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var payload domain.ChoicePayload
	if body.Payload != nil {
		decoded, err := domain.DecodePayload(body.Payload.Kind, body.Payload.Data)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		payload = decoded
	}

	if err := sess.RecordChoice(body.SceneID, body.ChoiceID, payload); err != nil {
		var fieldErr *domain.FieldError
		if errors.As(err, &fieldErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"field":   fieldErr.Field,
				"message": fieldErr.Message,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) finalizePath(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	path := sess.FinalizePath()
	writeJSON(w, http.StatusOK, map[string]any{
		"finalPath": path,
		"scores":    sess.State().PathScores,
	})
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := sess.CompleteGame(domain.Outcome(body.Outcome))
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.ResetSession()
	writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) unlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		ContentID string `json:"contentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ContentID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess.UnlockContent(body.ContentID)
	writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) updatePreferences(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var patch domain.PreferencesPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	prefs := sess.UpdatePreferences(patch)
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) getScene(w http.ResponseWriter, r *http.Request) {
	scene, err := s.engine.Scene(chi.URLParam(r, "sceneID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown scene")
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.Overlay
	if id := r.URL.Query().Get("session"); id != "" {
		if sess, ok := s.engine.Session(id); ok {
			state := sess.State()
			visited := make([]string, 0, len(state.VisitedScenes))
			for sceneID := range state.VisitedScenes {
				visited = append(visited, sceneID)
			}
			overlay = &graph.Overlay{
				VisitedScenes: visited,
				CurrentScene:  state.CurrentSceneID,
			}
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.engine.Graph(overlay)))
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	report := s.engine.Validate()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             report.OK(),
		"missingTargets": report.MissingTargets,
		"unreachable":    report.Unreachable,
		"problems":       s.engine.Registry().Problems(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
