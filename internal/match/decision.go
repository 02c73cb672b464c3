package match

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Scored is a candidate annotated with its match score. Ephemeral: it lives
// only within one matching invocation and is never persisted.
type Scored struct {
	ID        uuid.UUID
	Score     int
	CreatedAt time.Time
}

// Decide applies the acceptance threshold, deduplicates by record ID, and
// orders by descending score with older candidates winning ties. Pure with
// respect to its input: the same candidate set always yields the same result.
func Decide(candidates []Scored, threshold int) []Scored {
	seen := make(map[uuid.UUID]struct{}, len(candidates))
	accepted := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if c.Score < threshold {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		accepted = append(accepted, c)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		if accepted[i].Score != accepted[j].Score {
			return accepted[i].Score > accepted[j].Score
		}
		return accepted[i].CreatedAt.Before(accepted[j].CreatedAt)
	})

	return accepted
}
