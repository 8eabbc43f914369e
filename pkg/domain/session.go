package domain

import "time"

// PlayerIdentity is the visitor's display identity. Generated names come
// from the engine when the visitor declined to supply one.
type PlayerIdentity struct {
	Name        string `json:"name"`
	IsGenerated bool   `json:"is_generated"`
}

// Preferences are independent of funnel progress and survive a reset.
type Preferences struct {
	SoundEnabled  bool    `json:"sound_enabled"`
	MusicVolume   float64 `json:"music_volume"`
	EffectsVolume float64 `json:"effects_volume"`
}

// DefaultPreferences returns the initial preference values.
func DefaultPreferences() Preferences {
	return Preferences{
		SoundEnabled:  true,
		MusicVolume:   0.7,
		EffectsVolume: 0.7,
	}
}

// PreferencesPatch is a partial update. Nil fields are left untouched.
type PreferencesPatch struct {
	SoundEnabled  *bool    `json:"sound_enabled,omitempty"`
	MusicVolume   *float64 `json:"music_volume,omitempty"`
	EffectsVolume *float64 `json:"effects_volume,omitempty"`
}

// Apply merges the patch into p, clamping volumes to [0,1].
func (p Preferences) Apply(patch PreferencesPatch) Preferences {
	if patch.SoundEnabled != nil {
		p.SoundEnabled = *patch.SoundEnabled
	}
	if patch.MusicVolume != nil {
		p.MusicVolume = clampUnit(*patch.MusicVolume)
	}
	if patch.EffectsVolume != nil {
		p.EffectsVolume = clampUnit(*patch.EffectsVolume)
	}
	return p
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Outcome classifies how a completed session ended.
type Outcome string

const (
	// OutcomeQualified means the visitor passed a qualification screen.
	OutcomeQualified Outcome = "qualified"
	// OutcomeWaitlisted means the visitor joined a waitlist.
	OutcomeWaitlisted Outcome = "waitlisted"
	// OutcomeExplored means the visitor finished without converting.
	OutcomeExplored Outcome = "explored"
)

// CompletionStatus records the terminal state of a session. It is written
// once: the first completion wins and later calls leave it untouched.
type CompletionStatus struct {
	IsCompleted  bool       `json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	FinalOutcome Outcome    `json:"final_outcome,omitempty"`
}

// ChoiceRecord is one entry in the append-only choice history.
type ChoiceRecord struct {
	SceneID   string    `json:"scene_id"`
	ChoiceID  string    `json:"choice_id"`
	Timestamp time.Time `json:"timestamp"`

	// Payload carries structured data captured alongside the choice
	// (contact details, qualification answers). Nil for plain choices.
	// Serialization goes through the snapshot envelope, not direct JSON.
	Payload ChoicePayload `json:"-"`
}

// SessionState is one visitor's complete traversal state. It is owned by a
// single session store; nothing else mutates it.
type SessionState struct {
	SessionID      string
	Player         PlayerIdentity
	CurrentSceneID string
	StartedAt      *time.Time

	VisitedScenes map[string]int
	ChoiceHistory []ChoiceRecord
	PathScores    map[PathName]int

	// FinalPath is empty until FinalizePath derives it from the scores.
	FinalPath PathName

	// Discovered is a true set in memory; snapshots serialize it as a list.
	Discovered map[PathName]struct{}

	Unlocked    []string
	Preferences Preferences
	Completion  CompletionStatus
}

// NewSessionState builds a fresh state positioned at the entry scene, with
// all path scores present at zero so score maps are always fully keyed.
func NewSessionState(sessionID, entrySceneID string, paths PathSet) *SessionState {
	scores := make(map[PathName]int, len(paths))
	for _, p := range paths {
		scores[p] = 0
	}
	return &SessionState{
		SessionID:      sessionID,
		CurrentSceneID: entrySceneID,
		VisitedScenes:  make(map[string]int),
		PathScores:     scores,
		Discovered:     make(map[PathName]struct{}),
		Preferences:    DefaultPreferences(),
	}
}
