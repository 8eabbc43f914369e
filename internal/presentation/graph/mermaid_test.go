package graph_test

import (
	"strings"
	"testing"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/presentation/graph"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		scenes   []domain.SceneDefinition
		overlay  *graph.Overlay
		contains []string
	}{
		{
			name: "Scene Shapes",
			scenes: []domain.SceneDefinition{
				{ID: "welcome", Kind: domain.SceneKindIntro, Title: "Welcome"},
				{ID: "pick", Kind: domain.SceneKindChoice, Title: "Pick"},
				{ID: "briefing", Kind: domain.SceneKindDetail, Title: "Briefing"},
				{ID: "hangar", Kind: domain.SceneKindResult, Title: "Hangar"},
			},
			contains: []string{
				`welcome(("Welcome"))`,
				`pick[/"Pick"/]`,
				`briefing["Briefing"]`,
				`hangar[["Hangar"]]`,
			},
		},
		{
			name: "ID Sanitization",
			scenes: []domain.SceneDefinition{
				{ID: "mission-select", Kind: domain.SceneKindChoice, Title: "Mission Select"},
			},
			contains: []string{
				`mission_select[/"Mission Select"/]`,
			},
		},
		{
			name: "Choice Edges Labeled",
			scenes: []domain.SceneDefinition{
				{
					ID: "pick", Kind: domain.SceneKindChoice, Title: "Pick",
					Choices: []domain.ChoiceDefinition{
						{ID: "go-left", NextScene: "left-room"},
					},
				},
			},
			contains: []string{
				`pick -- "go-left" --> left_room`,
			},
		},
		{
			name: "Pass-Through Edge",
			scenes: []domain.SceneDefinition{
				{ID: "welcome", Kind: domain.SceneKindIntro, Title: "Welcome", NextScene: "pick"},
			},
			contains: []string{
				"welcome --> pick",
			},
		},
		{
			name: "Label Escaping",
			scenes: []domain.SceneDefinition{
				{ID: "a", Kind: domain.SceneKindDetail, Title: `Say "hi"`},
			},
			contains: []string{
				`a["Say 'hi'"]`,
			},
		},
		{
			name: "Overlay Styles",
			scenes: []domain.SceneDefinition{
				{ID: "welcome", Kind: domain.SceneKindIntro, Title: "Welcome", NextScene: "pick"},
				{ID: "pick", Kind: domain.SceneKindChoice, Title: "Pick"},
			},
			overlay: &graph.Overlay{
				VisitedScenes: []string{"welcome", "welcome"},
				CurrentScene:  "pick",
			},
			contains: []string{
				"class welcome visited;",
				"class pick current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.scenes, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}

func TestGenerateMermaid_VisitedDeduplicated(t *testing.T) {
	got := graph.GenerateMermaid(
		[]domain.SceneDefinition{{ID: "welcome", Kind: domain.SceneKindIntro, Title: "Welcome"}},
		&graph.Overlay{VisitedScenes: []string{"welcome", "welcome", "welcome"}},
	)
	if strings.Count(got, "class welcome visited;") != 1 {
		t.Errorf("expected a single visited class line, got:\n%v", got)
	}
}
