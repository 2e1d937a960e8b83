package scoring

import "context"

// Score bounds for a graded sentence.
const (
	MinScore = 10
	MaxScore = 100

	// FallbackScore is substituted when the grader is unreachable or times
	// out. A turn must never stall on the external service.
	FallbackScore = 50
)

// Scorer grades the grammatical quality of a sentence, returning a score in
// [MinScore, MaxScore].
type Scorer interface {
	Score(ctx context.Context, sentence string) (int, error)
}
