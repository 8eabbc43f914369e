package domain

import (
	"context"
	"time"
)

// EventType categorizes analytics events.
type EventType string

const (
	EventSessionStarted    EventType = "session_started"
	EventSceneView         EventType = "scene_view"
	EventChoiceMade        EventType = "choice_made"
	EventPathDiscovered    EventType = "path_discovered"
	EventGameCompleted     EventType = "game_completed"
	EventPreferenceChanged EventType = "preference_changed"
	EventSessionReset      EventType = "session_reset"
)

// Event is the shape forwarded to analytics collectors. Data is an opaque
// mapping; collectors must not feed anything back into game state.
type Event struct {
	Type      EventType      `json:"eventType"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"sessionId"`
	Data      map[string]any `json:"data,omitempty"`
}

// SceneEvent describes a scene becoming current.
type SceneEvent struct {
	SessionID  string
	SceneID    string
	Kind       string
	VisitCount int
	Timestamp  time.Time
}

// ChoiceEvent describes a recorded choice.
type ChoiceEvent struct {
	SessionID string
	SceneID   string
	ChoiceID  string
	Timestamp time.Time
}

// PathEvent describes the first discovery of a path.
type PathEvent struct {
	SessionID string
	Path      PathName
	Scores    map[PathName]int
	Timestamp time.Time
}

// CompletionEvent describes a session reaching its terminal outcome.
type CompletionEvent struct {
	SessionID string
	Outcome   Outcome
	Timestamp time.Time
}

// LifecycleHooks are observability callbacks fired synchronously on store
// mutations. Hooks must be fast; heavy work belongs in a collector.
type LifecycleHooks struct {
	OnSceneEnter     func(context.Context, *SceneEvent)
	OnChoice         func(context.Context, *ChoiceEvent)
	OnPathDiscovered func(context.Context, *PathEvent)
	OnComplete       func(context.Context, *CompletionEvent)
}
