package voting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

func TestDecide(t *testing.T) {
	up := &models.Vote{ID: 4, Direction: models.Up}
	down := &models.Vote{ID: 5, Direction: models.Down}

	tests := []struct {
		name      string
		existing  *models.Vote
		requested models.Direction
		want      Decision
	}{
		{"new up", nil, models.Up, Decision{Op: OpInsert, Direction: models.Up, ScoreDelta: 1}},
		{"new down", nil, models.Down, Decision{Op: OpInsert, Direction: models.Down, ScoreDelta: -1}},
		{"repeat up withdraws", up, models.Up, Decision{Op: OpDelete, VoteID: 4, Direction: models.Up, ScoreDelta: -1}},
		{"repeat down withdraws", down, models.Down, Decision{Op: OpDelete, VoteID: 5, Direction: models.Down, ScoreDelta: 1}},
		{"up to down", up, models.Down, Decision{Op: OpUpdate, VoteID: 4, Direction: models.Down, ScoreDelta: -2}},
		{"down to up", down, models.Up, Decision{Op: OpUpdate, VoteID: 5, Direction: models.Up, ScoreDelta: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.existing, tt.requested))
		})
	}
}

func TestDecideDeltasCancelOut(t *testing.T) {
	// any sequence of decisions applied to its own ledger sums to the ledger weight
	var existing *models.Vote
	score := 0
	for _, dir := range []models.Direction{models.Up, models.Down, models.Down, models.Up, models.Up, models.Down} {
		d := Decide(existing, dir)
		score += d.ScoreDelta
		switch d.Op {
		case OpInsert, OpUpdate:
			existing = &models.Vote{ID: 1, Direction: d.Direction}
		case OpDelete:
			existing = nil
		}
		want := 0
		if existing != nil {
			want = existing.Direction.Weight()
		}
		assert.Equal(t, want, score)
	}
}
