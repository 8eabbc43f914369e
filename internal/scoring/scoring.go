// Package scoring implements the path-scoring fold and the winning-path
// derivation. Everything here is pure: results depend only on the ordered
// choice history and the weight lookup, never on clocks or external state.
package scoring

import "github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"

// WeightLookup resolves the weight vector contributed by a recorded choice.
// A nil result means a zero vector.
type WeightLookup func(sceneID, choiceID string) domain.WeightVector

// Score folds the ordered choice history into cumulative per-path totals.
// Every path in the set is present in the result, so callers never have to
// distinguish "zero" from "absent". Negative contributions are ignored;
// weights are non-negative by contract and a content defect must not make
// scores regress.
func Score(history []domain.ChoiceRecord, lookup WeightLookup, paths domain.PathSet) map[domain.PathName]int {
	totals := make(map[domain.PathName]int, len(paths))
	for _, p := range paths {
		totals[p] = 0
	}
	if lookup == nil {
		return totals
	}
	for _, rec := range history {
		for path, weight := range lookup(rec.SceneID, rec.ChoiceID) {
			if weight <= 0 || !paths.Contains(path) {
				continue
			}
			totals[path] += weight
		}
	}
	return totals
}

// WinningPath returns the path with the maximum score. Ties resolve by
// declaration order of the path set: the earliest declared path among the
// tied maxima wins. Iterating the ordered set (never the score map) is what
// makes the result stable across runs.
func WinningPath(scores map[domain.PathName]int, paths domain.PathSet) domain.PathName {
	if len(paths) == 0 {
		return ""
	}
	winner := paths[0]
	best := scores[winner]
	for _, p := range paths[1:] {
		if scores[p] > best {
			winner = p
			best = scores[p]
		}
	}
	return winner
}
