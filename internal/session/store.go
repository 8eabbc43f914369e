// Package session implements the single-writer session state store and the
// fire-and-forget side-effect dispatcher behind it.
//
// Every mutation is synchronous, in-memory and cannot fail; persistence
// (durable snapshot, remote mirror, analytics) is dispatched after the
// mutation and never awaited.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/logging"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/registry"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/scoring"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// Store owns one visitor's SessionState for the lifetime of a session.
// Nothing else mutates the state. All operations are atomic with respect to
// concurrent callers.
type Store struct {
	mu    sync.Mutex
	state *domain.SessionState

	registry *registry.Registry
	disp     *Dispatcher
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	clock    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDispatcher wires the side-effect dispatcher. Without one the store is
// purely in-memory.
func WithDispatcher(d *Dispatcher) StoreOption {
	return func(s *Store) {
		if d != nil {
			s.disp = d
		}
	}
}

// WithHooks registers lifecycle hooks, fired synchronously on mutations.
func WithHooks(hooks domain.LifecycleHooks) StoreOption {
	return func(s *Store) {
		s.hooks = hooks
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source. Tests use it for stable timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates a store for a fresh session positioned at the entry scene.
func New(reg *registry.Registry, sessionID string, opts ...StoreOption) *Store {
	s := &Store{
		state:    domain.NewSessionState(sessionID, reg.EntryScene(), reg.Paths()),
		registry: reg,
		disp:     NewDispatcher(),
		logger:   logging.NewNop(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore creates a store from a durable snapshot. The snapshot is the
// source of truth for resuming; a current scene no longer in the registry
// falls back to the entry scene.
func Restore(reg *registry.Registry, snap *domain.Snapshot, opts ...StoreOption) *Store {
	s := New(reg, snap.SessionID, opts...)
	state := snap.Restore()
	if !reg.Has(state.CurrentSceneID) {
		s.logger.Warn("snapshot points at missing scene, falling back to entry",
			"scene", state.CurrentSceneID)
		state.CurrentSceneID = reg.EntryScene()
	}
	s.state = state
	return s
}

// SessionID returns the stable session identifier.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SessionID
}

// State returns a deep copy of the current session state.
func (s *Store) State() *domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot().Restore()
}

// CurrentScene resolves the current scene definition from the registry.
func (s *Store) CurrentScene() (domain.SceneDefinition, error) {
	s.mu.Lock()
	id := s.state.CurrentSceneID
	s.mu.Unlock()
	return s.registry.GetScene(id)
}

// SetPlayerIdentity records the visitor's display identity.
func (s *Store) SetPlayerIdentity(name string, isGenerated bool) {
	s.mu.Lock()
	s.state.Player = domain.PlayerIdentity{Name: name, IsGenerated: isGenerated}
	record := s.sessionRecordLocked()
	snap := s.state.Snapshot()
	s.mu.Unlock()

	s.disp.Write(snap.SessionID, domain.TableSessions, record)
	s.disp.Snapshot(snap.SessionID, snap)
}

// StartSession stamps the session start time. Idempotent: a second call
// changes nothing and emits nothing.
func (s *Store) StartSession() {
	s.mu.Lock()
	if s.state.StartedAt != nil {
		s.mu.Unlock()
		return
	}
	now := s.clock()
	s.state.StartedAt = &now
	record := s.sessionRecordLocked()
	snap := s.state.Snapshot()
	sessionID := s.state.SessionID
	s.mu.Unlock()

	s.disp.Write(sessionID, domain.TableSessions, record)
	s.disp.Emit(domain.Event{
		Type:      domain.EventSessionStarted,
		Timestamp: now,
		SessionID: sessionID,
	})
	s.disp.Snapshot(sessionID, snap)
}

// NavigateTo makes sceneID the current scene and counts the visit.
//
// An unknown scene is a content defect: the call logs, leaves the state
// untouched and returns domain.ErrSceneNotFound wrapped with the ID.
func (s *Store) NavigateTo(sceneID string) error {
	scene, err := s.registry.GetScene(sceneID)
	if err != nil {
		s.logger.Warn("navigation to missing scene ignored", "scene", sceneID)
		return err
	}

	s.mu.Lock()
	now := s.clock()
	s.state.CurrentSceneID = sceneID
	s.state.VisitedScenes[sceneID]++
	visits := s.state.VisitedScenes[sceneID]
	sessionID := s.state.SessionID
	record := s.sessionRecordLocked()
	snap := s.state.Snapshot()
	s.mu.Unlock()

	if s.hooks.OnSceneEnter != nil {
		s.hooks.OnSceneEnter(context.Background(), &domain.SceneEvent{
			SessionID:  sessionID,
			SceneID:    sceneID,
			Kind:       scene.Kind,
			VisitCount: visits,
			Timestamp:  now,
		})
	}
	s.disp.Write(sessionID, domain.TableSessions, record)
	s.disp.Emit(domain.Event{
		Type:      domain.EventSceneView,
		Timestamp: now,
		SessionID: sessionID,
		Data:      map[string]any{"scene_id": sceneID, "visit_count": visits},
	})
	s.disp.Snapshot(sessionID, snap)
	return nil
}

// RecordChoice appends to the choice history and folds the choice's weight
// vector into the path scores.
//
// Payloads carrying user input are validated first; a validation failure is
// returned to the caller and mutates nothing. The weight vector comes from
// the registry; a choice unknown to the registry contributes a zero vector
// but is still recorded.
func (s *Store) RecordChoice(sceneID, choiceID string, payload domain.ChoicePayload) error {
	if v, ok := payload.(domain.PayloadValidator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	now := s.clock()
	rec := domain.ChoiceRecord{
		SceneID:   sceneID,
		ChoiceID:  choiceID,
		Timestamp: now,
		Payload:   payload,
	}
	s.state.ChoiceHistory = append(s.state.ChoiceHistory, rec)

	for path, weight := range s.registry.Weights(sceneID, choiceID) {
		if weight > 0 {
			s.state.PathScores[path] += weight
		}
	}

	sessionID := s.state.SessionID
	snap := s.state.Snapshot()
	s.mu.Unlock()

	if s.hooks.OnChoice != nil {
		s.hooks.OnChoice(context.Background(), &domain.ChoiceEvent{
			SessionID: sessionID,
			SceneID:   sceneID,
			ChoiceID:  choiceID,
			Timestamp: now,
		})
	}
	s.disp.Write(sessionID, domain.TableChoices, domain.ChoiceEventRecord{
		SessionID: sessionID,
		SceneID:   sceneID,
		ChoiceID:  choiceID,
		MadeAt:    now,
	})
	if table, lead, ok := leadFromPayload(sessionID, payload, now); ok {
		s.disp.Write(sessionID, table, lead)
	}
	s.disp.Emit(domain.Event{
		Type:      domain.EventChoiceMade,
		Timestamp: now,
		SessionID: sessionID,
		Data:      map[string]any{"scene_id": sceneID, "choice_id": choiceID},
	})
	s.disp.Snapshot(sessionID, snap)
	return nil
}

// FinalizePath derives the winning path from the accumulated scores, marks
// it discovered and returns it.
//
// Safe to call repeatedly: re-derivation is pure and the history append-only,
// so later calls return the already-set value and emit nothing.
func (s *Store) FinalizePath() domain.PathName {
	s.mu.Lock()
	if s.state.FinalPath != "" {
		path := s.state.FinalPath
		s.mu.Unlock()
		return path
	}

	now := s.clock()
	path := scoring.WinningPath(s.state.PathScores, s.registry.Paths())
	s.state.FinalPath = path
	s.state.Discovered[path] = struct{}{}

	scores := make(map[domain.PathName]int, len(s.state.PathScores))
	for p, score := range s.state.PathScores {
		scores[p] = score
	}
	sessionID := s.state.SessionID
	record := s.sessionRecordLocked()
	snap := s.state.Snapshot()
	s.mu.Unlock()

	if s.hooks.OnPathDiscovered != nil {
		s.hooks.OnPathDiscovered(context.Background(), &domain.PathEvent{
			SessionID: sessionID,
			Path:      path,
			Scores:    scores,
			Timestamp: now,
		})
	}
	s.disp.Write(sessionID, domain.TableSessions, record)
	s.disp.Emit(domain.Event{
		Type:      domain.EventPathDiscovered,
		Timestamp: now,
		SessionID: sessionID,
		Data:      map[string]any{"path": string(path)},
	})
	s.disp.Snapshot(sessionID, snap)
	return path
}

// UnlockContent adds a content ID to the unlocked list. Set semantics:
// unlocking twice leaves a single entry and the second call is a no-op.
func (s *Store) UnlockContent(id string) {
	s.mu.Lock()
	for _, existing := range s.state.Unlocked {
		if existing == id {
			s.mu.Unlock()
			return
		}
	}
	s.state.Unlocked = append(s.state.Unlocked, id)
	snap := s.state.Snapshot()
	sessionID := s.state.SessionID
	s.mu.Unlock()

	s.disp.Snapshot(sessionID, snap)
}

// UpdatePreferences merges a partial update, clamping volumes to [0,1].
func (s *Store) UpdatePreferences(patch domain.PreferencesPatch) domain.Preferences {
	s.mu.Lock()
	now := s.clock()
	s.state.Preferences = s.state.Preferences.Apply(patch)
	prefs := s.state.Preferences
	sessionID := s.state.SessionID
	snap := s.state.Snapshot()
	s.mu.Unlock()

	s.disp.Emit(domain.Event{
		Type:      domain.EventPreferenceChanged,
		Timestamp: now,
		SessionID: sessionID,
		Data: map[string]any{
			"sound_enabled":  prefs.SoundEnabled,
			"music_volume":   prefs.MusicVolume,
			"effects_volume": prefs.EffectsVolume,
		},
	})
	s.disp.Snapshot(sessionID, snap)
	return prefs
}

// CompleteGame records the terminal outcome. First writer wins: once
// completed, later calls return the existing status unchanged and emit
// nothing. (The alternative, last-writer-wins, would let a contradictory
// outcome silently replace the recorded one.)
func (s *Store) CompleteGame(outcome domain.Outcome) domain.CompletionStatus {
	s.mu.Lock()
	if s.state.Completion.IsCompleted {
		status := s.state.Completion
		s.mu.Unlock()
		return status
	}

	now := s.clock()
	s.state.Completion = domain.CompletionStatus{
		IsCompleted:  true,
		CompletedAt:  &now,
		FinalOutcome: outcome,
	}
	status := s.state.Completion
	sessionID := s.state.SessionID
	record := s.sessionRecordLocked()
	snap := s.state.Snapshot()
	s.mu.Unlock()

	if s.hooks.OnComplete != nil {
		s.hooks.OnComplete(context.Background(), &domain.CompletionEvent{
			SessionID: sessionID,
			Outcome:   outcome,
			Timestamp: now,
		})
	}
	s.disp.Write(sessionID, domain.TableSessions, record)
	s.disp.Emit(domain.Event{
		Type:      domain.EventGameCompleted,
		Timestamp: now,
		SessionID: sessionID,
		Data:      map[string]any{"outcome": string(outcome)},
	})
	s.disp.Snapshot(sessionID, snap)
	return status
}

// ResetSession clears everything except preferences and the session ID.
// Whether a reset implies a new remote session record is the caller's call;
// the store keeps writing under the same ID.
func (s *Store) ResetSession() {
	s.mu.Lock()
	now := s.clock()
	prefs := s.state.Preferences
	sessionID := s.state.SessionID
	s.state = domain.NewSessionState(sessionID, s.registry.EntryScene(), s.registry.Paths())
	s.state.Preferences = prefs
	snap := s.state.Snapshot()
	s.mu.Unlock()

	s.disp.Emit(domain.Event{
		Type:      domain.EventSessionReset,
		Timestamp: now,
		SessionID: sessionID,
	})
	s.disp.Snapshot(sessionID, snap)
}

// DiscoveredPaths returns the discovered set in path declaration order.
func (s *Store) DiscoveredPaths() []domain.PathName {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PathName
	for _, p := range s.registry.Paths() {
		if _, ok := s.state.Discovered[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// sessionRecordLocked builds the remote mirror row. Caller holds s.mu.
func (s *Store) sessionRecordLocked() domain.SessionRecord {
	return domain.SessionRecord{
		SessionID:      s.state.SessionID,
		PlayerName:     s.state.Player.Name,
		IsGenerated:    s.state.Player.IsGenerated,
		CurrentSceneID: s.state.CurrentSceneID,
		FinalPath:      string(s.state.FinalPath),
		IsCompleted:    s.state.Completion.IsCompleted,
		FinalOutcome:   string(s.state.Completion.FinalOutcome),
		StartedAt:      s.state.StartedAt,
		CompletedAt:    s.state.Completion.CompletedAt,
		UpdatedAt:      s.clock(),
	}
}

// leadFromPayload routes captured lead data to its collaborator table.
func leadFromPayload(sessionID string, payload domain.ChoicePayload, now time.Time) (domain.Table, domain.LeadRecord, bool) {
	switch p := payload.(type) {
	case domain.QualificationPayload:
		return domain.TableQualifications, domain.LeadRecord{
			SessionID: sessionID,
			Answers: map[string]string{
				"budget":    p.Budget,
				"timeline":  p.Timeline,
				"readiness": p.Readiness,
			},
			SubmittedAt: now,
		}, true
	case domain.WaitlistPayload:
		return domain.TableWaitlist, domain.LeadRecord{
			SessionID:       sessionID,
			Name:            p.Name,
			Email:           p.Email,
			Phone:           p.Phone,
			PreferredMethod: p.PreferredMethod,
			SubmittedAt:     now,
		}, true
	case domain.ContactPayload:
		return domain.TableContacts, domain.LeadRecord{
			SessionID:       sessionID,
			Name:            p.Name,
			Email:           p.Email,
			Phone:           p.Phone,
			PreferredMethod: p.PreferredMethod,
			SubmittedAt:     now,
		}, true
	default:
		return "", domain.LeadRecord{}, false
	}
}
