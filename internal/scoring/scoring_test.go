package scoring_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/scoring"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

var testPaths = domain.PathSet{"pathA", "pathB", "pathC"}

func lookupFromTable(table map[string]domain.WeightVector) scoring.WeightLookup {
	return func(sceneID, choiceID string) domain.WeightVector {
		return table[sceneID+"/"+choiceID]
	}
}

func historyOf(keys ...[2]string) []domain.ChoiceRecord {
	var history []domain.ChoiceRecord
	for _, k := range keys {
		history = append(history, domain.ChoiceRecord{
			SceneID:   k[0],
			ChoiceID:  k[1],
			Timestamp: time.Now(),
		})
	}
	return history
}

func TestScore_WeightedSum(t *testing.T) {
	lookup := lookupFromTable(map[string]domain.WeightVector{
		"s1/c1": {"pathA": 3, "pathB": 1},
		"s2/c1": {"pathC": 3},
		"s3/c1": {"pathA": 1},
	})
	history := historyOf([2]string{"s1", "c1"}, [2]string{"s2", "c1"}, [2]string{"s3", "c1"})

	scores := scoring.Score(history, lookup, testPaths)
	assert.Equal(t, map[domain.PathName]int{"pathA": 4, "pathB": 1, "pathC": 3}, scores)
}

func TestScore_Deterministic(t *testing.T) {
	lookup := lookupFromTable(map[string]domain.WeightVector{
		"s1/c1": {"pathA": 2, "pathC": 1},
		"s1/c2": {"pathB": 5},
	})
	history := historyOf([2]string{"s1", "c1"}, [2]string{"s1", "c2"}, [2]string{"s1", "c1"})

	first := scoring.Score(history, lookup, testPaths)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, scoring.Score(history, lookup, testPaths))
	}
}

func TestScore_UnknownChoiceIsZeroVector(t *testing.T) {
	lookup := lookupFromTable(map[string]domain.WeightVector{})
	history := historyOf([2]string{"ghost", "c1"})

	scores := scoring.Score(history, lookup, testPaths)
	assert.Equal(t, map[domain.PathName]int{"pathA": 0, "pathB": 0, "pathC": 0}, scores)
}

func TestScore_AllPathsPresent(t *testing.T) {
	scores := scoring.Score(nil, nil, testPaths)
	assert.Len(t, scores, 3)
	for _, p := range testPaths {
		assert.Contains(t, scores, p)
	}
}

func TestScore_Monotonic(t *testing.T) {
	lookup := lookupFromTable(map[string]domain.WeightVector{
		"s1/c1": {"pathA": 2},
		"s2/c1": {"pathB": 1, "pathC": 4},
		"s3/c1": {"pathA": 1, "pathB": 1},
	})
	full := historyOf([2]string{"s1", "c1"}, [2]string{"s2", "c1"}, [2]string{"s3", "c1"})

	prev := scoring.Score(nil, lookup, testPaths)
	for i := 1; i <= len(full); i++ {
		next := scoring.Score(full[:i], lookup, testPaths)
		for _, p := range testPaths {
			assert.GreaterOrEqual(t, next[p], prev[p], "score for %s regressed at step %d", p, i)
		}
		prev = next
	}
}

func TestWinningPath_Argmax(t *testing.T) {
	winner := scoring.WinningPath(map[domain.PathName]int{"pathA": 1, "pathB": 7, "pathC": 3}, testPaths)
	assert.Equal(t, domain.PathName("pathB"), winner)
}

func TestWinningPath_TieBreakByDeclarationOrder(t *testing.T) {
	scores := map[domain.PathName]int{"pathA": 3, "pathB": 3, "pathC": 1}
	for i := 0; i < 100; i++ {
		assert.Equal(t, domain.PathName("pathA"), scoring.WinningPath(scores, testPaths))
	}

	// Reversing the declared order flips the tie-break.
	reversed := domain.PathSet{"pathC", "pathB", "pathA"}
	assert.Equal(t, domain.PathName("pathB"), scoring.WinningPath(scores, reversed))
}

func TestWinningPath_AllZero(t *testing.T) {
	scores := map[domain.PathName]int{"pathA": 0, "pathB": 0, "pathC": 0}
	assert.Equal(t, domain.PathName("pathA"), scoring.WinningPath(scores, testPaths))
}
