package voting

import (
	"context"
	"fmt"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

// LedgerOp is the mutation a vote request turns into.
type LedgerOp string

const (
	OpInsert LedgerOp = "insert"
	OpUpdate LedgerOp = "update"
	OpDelete LedgerOp = "delete"
)

// Decision is the outcome of the vote state machine for one request.
type Decision struct {
	Op LedgerOp
	// VoteID is the existing row for OpUpdate and OpDelete.
	VoteID int
	// Direction is the new direction for OpInsert/OpUpdate and the removed one for OpDelete.
	Direction  models.Direction
	ScoreDelta int
}

// Decide maps the caller's existing vote (nil if none) and requested direction
// to a ledger mutation and the matching change to the cached score.
//
//	none          -> insert, +1/-1
//	same dir      -> delete, reverses the old vote
//	opposite dir  -> update, +2/-2
func Decide(existing *models.Vote, requested models.Direction) Decision {
	switch {
	case existing == nil:
		return Decision{Op: OpInsert, Direction: requested, ScoreDelta: requested.Weight()}
	case existing.Direction == requested:
		return Decision{
			Op:         OpDelete,
			VoteID:     existing.ID,
			Direction:  existing.Direction,
			ScoreDelta: -existing.Direction.Weight(),
		}
	default:
		return Decision{
			Op:         OpUpdate,
			VoteID:     existing.ID,
			Direction:  requested,
			ScoreDelta: requested.Weight() - existing.Direction.Weight(),
		}
	}
}

type Policy struct {
	// ForbidSelfVote rejects votes on the caller's own question or answer.
	ForbidSelfVote bool
}

type VoteOutcome struct {
	Target     models.Target `json:"target"`
	Op         LedgerOp      `json:"op"`
	ScoreDelta int           `json:"score_delta"`
	Votes      int           `json:"votes"`
	// Direction is the caller's stance after the vote; nil once withdrawn.
	Direction *models.Direction `json:"direction"`
}

type Resolver struct {
	store  Store
	policy Policy
}

func NewResolver(store Store, policy Policy) *Resolver {
	return &Resolver{store: store, policy: policy}
}

// Cast applies one vote request as a single transaction. It does not retry;
// on Conflict the caller should call Cast again so the ledger is re-read.
func (r *Resolver) Cast(ctx context.Context, userID int, target models.Target, requested models.Direction) (VoteOutcome, error) {
	const op = "voting.cast"
	if userID <= 0 {
		return VoteOutcome{}, NewError(CodeUnauthorized, op, "authentication required", nil)
	}
	if !target.Kind.Valid() {
		return VoteOutcome{}, NewError(CodeValidation, op, fmt.Sprintf("unknown target kind %q", target.Kind), nil)
	}
	if !requested.Valid() {
		return VoteOutcome{}, NewError(CodeValidation, op, fmt.Sprintf("unknown vote direction %q", requested), nil)
	}
	if target.ID <= 0 {
		return VoteOutcome{}, NewError(CodeNotFound, op, fmt.Sprintf("%s not found", target.Kind), nil)
	}

	var out VoteOutcome
	err := r.store.InTx(ctx, func(tx Tx) error {
		res, err := r.resolve(tx, userID, target, requested)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return VoteOutcome{}, err
	}
	return out, nil
}

func (r *Resolver) resolve(tx Tx, userID int, target models.Target, requested models.Direction) (VoteOutcome, error) {
	const op = "voting.resolve"

	authorID, err := tx.LockTarget(target)
	if err != nil {
		return VoteOutcome{}, err
	}
	if r.policy.ForbidSelfVote && authorID == userID {
		return VoteOutcome{}, NewError(CodeSelfVoteForbidden, op, "cannot vote on your own "+string(target.Kind), nil)
	}

	existing, err := tx.FindVote(userID, target)
	if err != nil {
		return VoteOutcome{}, err
	}

	d := Decide(existing, requested)
	out := VoteOutcome{Target: target, Op: d.Op, ScoreDelta: d.ScoreDelta}

	switch d.Op {
	case OpInsert:
		if _, err := tx.InsertVote(userID, target, d.Direction); err != nil {
			return VoteOutcome{}, err
		}
	case OpUpdate:
		if _, err := tx.UpdateVoteDirection(d.VoteID, d.Direction); err != nil {
			return VoteOutcome{}, err
		}
	case OpDelete:
		if err := tx.DeleteVote(d.VoteID); err != nil {
			return VoteOutcome{}, err
		}
	}
	if d.Op != OpDelete {
		dir := d.Direction
		out.Direction = &dir
	}

	votes, err := tx.AdjustCachedScore(target, d.ScoreDelta)
	if err != nil {
		return VoteOutcome{}, err
	}
	out.Votes = votes
	return out, nil
}
