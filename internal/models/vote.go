package models

import (
	"fmt"
	"strings"
	"time"
)

// TargetKind discriminates what a vote points at.
type TargetKind string

const (
	TargetQuestion TargetKind = "question"
	TargetAnswer   TargetKind = "answer"
)

func (k TargetKind) Valid() bool {
	return k == TargetQuestion || k == TargetAnswer
}

// Direction is the stance a vote expresses.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func (d Direction) Valid() bool {
	return d == Up || d == Down
}

// Weight is the contribution of a single vote to the target's score.
func (d Direction) Weight() int {
	switch d {
	case Up:
		return 1
	case Down:
		return -1
	default:
		return 0
	}
}

// ParseDirection accepts "up"/"down" in any case, plus the 1/-1 form used by older clients.
func ParseDirection(raw string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "up", "1", "+1":
		return Up, true
	case "down", "-1":
		return Down, true
	default:
		return "", false
	}
}

// Target identifies a question or an answer.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   int        `json:"id"`
}

func QuestionTarget(id int) Target { return Target{Kind: TargetQuestion, ID: id} }
func AnswerTarget(id int) Target   { return Target{Kind: TargetAnswer, ID: id} }

// Key is the map key the client uses to look up its own vote on a target.
func (t Target) Key() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// Vote model - one user's current stance on one question or answer.
// At most one row exists per (user_id, target_kind, target_id).
type Vote struct {
	ID         int        `gorm:"primaryKey" json:"id"`
	UserID     int        `gorm:"not null;uniqueIndex:idx_votes_user_target,priority:1" json:"user_id"`
	TargetKind TargetKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_votes_user_target,priority:2;index:idx_votes_target,priority:1" json:"target_kind"`
	TargetID   int        `gorm:"not null;uniqueIndex:idx_votes_user_target,priority:3;index:idx_votes_target,priority:2" json:"target_id"`
	Direction  Direction  `gorm:"type:varchar(8);not null" json:"direction"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (v Vote) Target() Target {
	return Target{Kind: v.TargetKind, ID: v.TargetID}
}

type VoteRequest struct {
	Direction string `json:"direction" binding:"required"`
}
