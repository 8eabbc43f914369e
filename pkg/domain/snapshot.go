package domain

import (
	"sort"
	"time"
)

// Snapshot is the serialized subset of session state persisted for
// resumption across page loads. Ephemeral navigation bookkeeping (the
// back/forward stack) is deliberately excluded.
type Snapshot struct {
	SessionID       string           `json:"session_id"`
	Player          PlayerIdentity   `json:"player"`
	CurrentSceneID  string           `json:"current_scene_id"`
	StartedAt       *time.Time       `json:"started_at,omitempty"`
	VisitedScenes   map[string]int   `json:"visited_scenes,omitempty"`
	PathScores      map[PathName]int `json:"path_scores,omitempty"`
	ChoiceHistory   []SnapshotChoice `json:"choice_history,omitempty"`
	FinalPath       PathName         `json:"final_path,omitempty"`
	DiscoveredPaths []PathName       `json:"discovered_paths,omitempty"`
	Unlocked        []string         `json:"unlocked_content,omitempty"`
	Preferences     Preferences      `json:"preferences"`
	Completion      CompletionStatus `json:"completion"`
}

// SnapshotChoice is the wire form of a ChoiceRecord. Payloads travel as a
// kind tag plus a generic map and are re-typed on restore.
type SnapshotChoice struct {
	SceneID     string         `json:"scene_id"`
	ChoiceID    string         `json:"choice_id"`
	Timestamp   time.Time      `json:"timestamp"`
	PayloadKind string         `json:"payload_kind,omitempty"`
	PayloadData map[string]any `json:"payload_data,omitempty"`
}

// Snapshot converts the in-memory state to its durable form. The discovered
// set becomes a sorted list so snapshots of equal state are byte-identical.
func (s *SessionState) Snapshot() *Snapshot {
	snap := &Snapshot{
		SessionID:      s.SessionID,
		Player:         s.Player,
		CurrentSceneID: s.CurrentSceneID,
		StartedAt:      s.StartedAt,
		VisitedScenes:  make(map[string]int, len(s.VisitedScenes)),
		PathScores:     make(map[PathName]int, len(s.PathScores)),
		FinalPath:      s.FinalPath,
		Unlocked:       append([]string(nil), s.Unlocked...),
		Preferences:    s.Preferences,
		Completion:     s.Completion,
	}
	for id, count := range s.VisitedScenes {
		snap.VisitedScenes[id] = count
	}
	for path, score := range s.PathScores {
		snap.PathScores[path] = score
	}
	for path := range s.Discovered {
		snap.DiscoveredPaths = append(snap.DiscoveredPaths, path)
	}
	sort.Slice(snap.DiscoveredPaths, func(i, j int) bool {
		return snap.DiscoveredPaths[i] < snap.DiscoveredPaths[j]
	})
	for _, rec := range s.ChoiceHistory {
		sc := SnapshotChoice{
			SceneID:   rec.SceneID,
			ChoiceID:  rec.ChoiceID,
			Timestamp: rec.Timestamp,
		}
		// Encoding a known payload type cannot fail; a nil payload stays nil.
		sc.PayloadKind, sc.PayloadData, _ = EncodePayload(rec.Payload)
		snap.ChoiceHistory = append(snap.ChoiceHistory, sc)
	}
	return snap
}

// Restore rebuilds in-memory state from a snapshot. The discovered list
// becomes a set again (duplicates collapse), and payloads are decoded back
// to their typed forms. Records with an unknown payload kind keep their
// scene/choice identity and drop only the payload.
func (snap *Snapshot) Restore() *SessionState {
	state := &SessionState{
		SessionID:      snap.SessionID,
		Player:         snap.Player,
		CurrentSceneID: snap.CurrentSceneID,
		StartedAt:      snap.StartedAt,
		VisitedScenes:  make(map[string]int, len(snap.VisitedScenes)),
		PathScores:     make(map[PathName]int, len(snap.PathScores)),
		FinalPath:      snap.FinalPath,
		Discovered:     make(map[PathName]struct{}, len(snap.DiscoveredPaths)),
		Unlocked:       append([]string(nil), snap.Unlocked...),
		Preferences:    snap.Preferences,
		Completion:     snap.Completion,
	}
	for id, count := range snap.VisitedScenes {
		state.VisitedScenes[id] = count
	}
	for path, score := range snap.PathScores {
		state.PathScores[path] = score
	}
	for _, path := range snap.DiscoveredPaths {
		state.Discovered[path] = struct{}{}
	}
	for _, sc := range snap.ChoiceHistory {
		rec := ChoiceRecord{
			SceneID:   sc.SceneID,
			ChoiceID:  sc.ChoiceID,
			Timestamp: sc.Timestamp,
		}
		if sc.PayloadKind != "" {
			if payload, err := DecodePayload(sc.PayloadKind, sc.PayloadData); err == nil {
				rec.Payload = payload
			}
		}
		state.ChoiceHistory = append(state.ChoiceHistory, rec)
	}
	return state
}
