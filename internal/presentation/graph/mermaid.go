// Package graph renders a scene graph as Mermaid flowchart syntax, for the
// introspection endpoint and content review.
package graph

import (
	"fmt"
	"strings"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// Overlay carries per-session state to highlight on the graph.
type Overlay struct {
	VisitedScenes []string
	CurrentScene  string
}

// GenerateMermaid produces a Mermaid flowchart from the scene list.
// Shapes follow the scene kind:
// - intro: ((Circle))
// - choice: [/Parallelogram/]
// - result: [[Subroutine]]
// - detail and everything else: [Rectangle]
// Choice edges are labeled with the choice ID; pass-through edges are plain.
func GenerateMermaid(scenes []domain.SceneDefinition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, scene := range scenes {
		safeID := sanitizeMermaidID(scene.ID)

		opener, closer := "[", "]"
		switch scene.Kind {
		case domain.SceneKindIntro:
			opener, closer = "((", "))"
		case domain.SceneKindChoice:
			opener, closer = "[/", "/]"
		case domain.SceneKindResult:
			opener, closer = "[[", "]]"
		}

		label := scene.Title
		if label == "" {
			label = scene.ID
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeMermaidLabel(label), closer))

		if scene.NextScene != "" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(scene.NextScene)))
		}
		for _, choice := range scene.Choices {
			if choice.NextScene == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n",
				safeID, escapeMermaidLabel(choice.ID), sanitizeMermaidID(choice.NextScene)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedScenes {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !visitedSet[safeID] {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.CurrentScene != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentScene)))
		}
	}

	return sb.String()
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return replacer.Replace(id)
}
