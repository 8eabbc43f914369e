package domain

// Scene kinds control how a scene is presented and how it advances.
const (
	// SceneKindIntro opens a sequence and advances via NextScene.
	SceneKindIntro = "intro"
	// SceneKindChoice halts and waits for the visitor to pick a choice.
	SceneKindChoice = "choice"
	// SceneKindDetail shows supporting content before a choice or result.
	SceneKindDetail = "detail"
	// SceneKindResult is a funnel outcome. With no outgoing links it is absorbing.
	SceneKindResult = "result"
)

// SceneDefinition is one node in the branching content graph.
// Definitions are immutable once loaded into a registry.
type SceneDefinition struct {
	ID          string `json:"id" yaml:"id"`
	Kind        string `json:"kind" yaml:"kind"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Choices are the user-selectable options. Empty for pass-through scenes.
	Choices []ChoiceDefinition `json:"choices,omitempty" yaml:"choices,omitempty"`

	// NextScene is the default target for scenes that advance without a choice.
	NextScene string `json:"next_scene,omitempty" yaml:"next,omitempty"`
}

// ChoiceDefinition is a user-selectable option within a scene.
type ChoiceDefinition struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	NextScene string `json:"next_scene" yaml:"next"`

	// Weights is the per-path score contribution of picking this choice.
	// Absent means a zero vector.
	Weights WeightVector `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// Choice looks up a choice by ID within the scene.
func (s SceneDefinition) Choice(id string) (ChoiceDefinition, bool) {
	for _, c := range s.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return ChoiceDefinition{}, false
}

// Terminal reports whether the scene is absorbing: a result scene with no
// outgoing choices and no default target. The visitor can still reset.
func (s SceneDefinition) Terminal() bool {
	return s.Kind == SceneKindResult && len(s.Choices) == 0 && s.NextScene == ""
}

// Targets returns every scene ID this scene links to.
func (s SceneDefinition) Targets() []string {
	targets := make([]string, 0, len(s.Choices)+1)
	if s.NextScene != "" {
		targets = append(targets, s.NextScene)
	}
	for _, c := range s.Choices {
		if c.NextScene != "" {
			targets = append(targets, c.NextScene)
		}
	}
	return targets
}

// Content is a complete authored funnel document: the entry point, the path
// vocabulary and every scene. Sources (YAML files, in-memory fixtures)
// produce a Content; the registry consumes and validates it.
type Content struct {
	EntryScene string            `json:"entry" yaml:"entry"`
	Paths      PathSet           `json:"paths" yaml:"paths"`
	Scenes     []SceneDefinition `json:"scenes" yaml:"scenes"`
}
