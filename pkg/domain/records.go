package domain

import "time"

// Table names the logical collections at the remote collaborator. Session
// rows are upserted; everything else is append-only.
type Table string

const (
	TableSessions       Table = "adventure_sessions"
	TableChoices        Table = "adventure_choices"
	TableQualifications Table = "ignition_qualifications"
	TableWaitlist       Table = "launch_control_waitlist"
	TableContacts       Table = "contact_requests"
)

// SessionRecord is the mutable one-row-per-session mirror. Every write
// carries the session ID so the collaborator can reconcile out-of-order
// arrivals.
type SessionRecord struct {
	SessionID      string     `json:"session_id"`
	PlayerName     string     `json:"player_name,omitempty"`
	IsGenerated    bool       `json:"is_generated"`
	CurrentSceneID string     `json:"current_scene_id"`
	FinalPath      string     `json:"final_path,omitempty"`
	IsCompleted    bool       `json:"is_completed"`
	FinalOutcome   string     `json:"final_outcome,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ChoiceEventRecord is one append-only row per recorded choice.
type ChoiceEventRecord struct {
	SessionID string    `json:"session_id"`
	SceneID   string    `json:"scene_id"`
	ChoiceID  string    `json:"choice_id"`
	MadeAt    time.Time `json:"made_at"`
}

// LeadRecord is a captured contact or qualification row. The destination
// table decides its meaning (qualification, waitlist or contact request).
type LeadRecord struct {
	SessionID       string            `json:"session_id"`
	Name            string            `json:"name,omitempty"`
	Email           string            `json:"email,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	PreferredMethod string            `json:"preferred_method,omitempty"`
	Answers         map[string]string `json:"answers,omitempty"`
	SubmittedAt     time.Time         `json:"submitted_at"`
}
