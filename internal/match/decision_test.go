package match

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideFiltersBelowThreshold(t *testing.T) {
	a := Scored{ID: uuid.New(), Score: 39}
	b := Scored{ID: uuid.New(), Score: 40}

	accepted := Decide([]Scored{a, b}, 40)
	require.Len(t, accepted, 1)
	assert.Equal(t, b.ID, accepted[0].ID)
}

func TestDecideOrdersByScoreThenAge(t *testing.T) {
	now := time.Now()
	older := Scored{ID: uuid.New(), Score: 60, CreatedAt: now.Add(-time.Hour)}
	newer := Scored{ID: uuid.New(), Score: 60, CreatedAt: now}
	best := Scored{ID: uuid.New(), Score: 90, CreatedAt: now}

	accepted := Decide([]Scored{newer, older, best}, 40)
	require.Len(t, accepted, 3)
	assert.Equal(t, best.ID, accepted[0].ID)
	// Equal scores: first come, first served.
	assert.Equal(t, older.ID, accepted[1].ID)
	assert.Equal(t, newer.ID, accepted[2].ID)
}

func TestDecideDeduplicatesByID(t *testing.T) {
	id := uuid.New()
	accepted := Decide([]Scored{
		{ID: id, Score: 80},
		{ID: id, Score: 95},
	}, 40)
	require.Len(t, accepted, 1)
	assert.Equal(t, 80, accepted[0].Score, "first occurrence wins")
}

func TestDecideIsPure(t *testing.T) {
	in := []Scored{
		{ID: uuid.New(), Score: 55, CreatedAt: time.Now()},
		{ID: uuid.New(), Score: 70, CreatedAt: time.Now().Add(time.Second)},
		{ID: uuid.New(), Score: 12, CreatedAt: time.Now().Add(2 * time.Second)},
	}

	first := Decide(in, 40)
	for range 5 {
		assert.Equal(t, first, Decide(in, 40))
	}
}
