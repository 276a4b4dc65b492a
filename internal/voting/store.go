package voting

import (
	"context"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

// Tx is the store surface available inside one transaction. Implementations
// return *Error values (NotFound, Conflict, ...) for expected failures.
type Tx interface {
	// LockTarget locks the question or answer row and returns its author.
	LockTarget(target models.Target) (authorID int, err error)
	// FindVote returns nil, nil when the user holds no vote on target.
	FindVote(userID int, target models.Target) (*models.Vote, error)
	InsertVote(userID int, target models.Target, direction models.Direction) (*models.Vote, error)
	UpdateVoteDirection(voteID int, direction models.Direction) (*models.Vote, error)
	DeleteVote(voteID int) error
	// AdjustCachedScore adds delta to the target's cached votes and returns the new value.
	AdjustCachedScore(target models.Target, delta int) (int, error)

	LockQuestion(questionID int) (*models.Question, error)
	GetAnswer(answerID int) (*models.Answer, error)
	// SetAccepted marks answerID accepted (clearing any other accepted answer of
	// the question) or clears it.
	SetAccepted(questionID, answerID int, accepted bool) error

	UpsertUser(user models.User) error
	CreateQuestion(q *models.Question) error
	CreateAnswer(a *models.Answer) error
}

type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetQuestion(ctx context.Context, id int) (*models.Question, error)
	ListQuestions(ctx context.Context) ([]models.Question, error)
	QuestionStats(ctx context.Context, questionIDs []int) (map[int]models.QuestionStats, error)
	ListAnswers(ctx context.Context, questionID int) ([]models.Answer, error)
	IncrementViewCount(ctx context.Context, questionID int) error
	VotesByUser(ctx context.Context, userID int) ([]models.Vote, error)
}
