// Package validator checks a scene graph for content defects that the
// registry tolerates at runtime: dangling references and scenes no player
// can ever reach.
package validator

import (
	"fmt"
	"sort"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/registry"
)

// Report lists the defects found in a scene graph. An empty report means
// the graph is sound.
type Report struct {
	// MissingTargets are "scene/choice -> target" references that point at
	// scenes the registry does not know.
	MissingTargets []string
	// Unreachable are scenes no walk from the entry scene can arrive at.
	Unreachable []string
}

// OK reports whether the graph has no defects.
func (r *Report) OK() bool {
	return len(r.MissingTargets) == 0 && len(r.Unreachable) == 0
}

// Err folds the report into a single error, or nil when the graph is sound.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("scene graph has %d missing target(s) and %d unreachable scene(s)",
		len(r.MissingTargets), len(r.Unreachable))
}

// ValidateGraph walks the registry breadth-first from the entry scene and
// reports dangling references and unreachable scenes.
func ValidateGraph(reg *registry.Registry) *Report {
	report := &Report{}
	visited := make(map[string]bool)
	queue := []string{reg.EntryScene()}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]
		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		scene, err := reg.GetScene(currentID)
		if err != nil {
			continue
		}
		for _, target := range scene.Targets() {
			if !reg.Has(target) {
				report.MissingTargets = append(report.MissingTargets,
					fmt.Sprintf("%s -> %s", currentID, target))
				continue
			}
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	for _, id := range reg.ListScenes() {
		if !visited[id] {
			report.Unreachable = append(report.Unreachable, id)
		}
	}
	sort.Strings(report.MissingTargets)
	sort.Strings(report.Unreachable)
	return report
}
