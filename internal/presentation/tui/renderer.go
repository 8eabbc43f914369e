package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// SceneMarkdown lays a scene out as markdown: title, description and a
// numbered choice list. Plain text callers can feed it to fmt; terminal
// callers pass it through NewRenderer.
func SceneMarkdown(scene domain.SceneDefinition) string {
	var sb strings.Builder

	title := scene.Title
	if title == "" {
		title = scene.ID
	}
	sb.WriteString("# " + title + "\n")
	if scene.Description != "" {
		sb.WriteString("\n" + scene.Description + "\n")
	}
	if len(scene.Choices) > 0 {
		sb.WriteString("\n")
		for i, choice := range scene.Choices {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, choice.Text))
		}
	}
	return sb.String()
}
