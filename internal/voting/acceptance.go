package voting

import (
	"context"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

// AcceptanceManager lets a question's author pick at most one accepted answer.
type AcceptanceManager struct {
	store Store
}

func NewAcceptanceManager(store Store) *AcceptanceManager {
	return &AcceptanceManager{store: store}
}

// Accept marks answerID as the accepted answer of questionID, clearing any
// previously accepted answer in the same transaction.
func (m *AcceptanceManager) Accept(ctx context.Context, callerID, questionID, answerID int) (models.AnswerView, error) {
	return m.set(ctx, "voting.accept", callerID, questionID, answerID, true)
}

// Unaccept withdraws acceptance from answerID, leaving the question with none.
func (m *AcceptanceManager) Unaccept(ctx context.Context, callerID, questionID, answerID int) (models.AnswerView, error) {
	return m.set(ctx, "voting.unaccept", callerID, questionID, answerID, false)
}

func (m *AcceptanceManager) set(ctx context.Context, op string, callerID, questionID, answerID int, accepted bool) (models.AnswerView, error) {
	if callerID <= 0 {
		return models.AnswerView{}, NewError(CodeUnauthorized, op, "authentication required", nil)
	}

	var view models.AnswerView
	err := m.store.InTx(ctx, func(tx Tx) error {
		q, err := tx.LockQuestion(questionID)
		if err != nil {
			return err
		}
		if q.AuthorID != callerID {
			return NewError(CodeForbidden, op, "only the question's author can change the accepted answer", nil)
		}

		a, err := tx.GetAnswer(answerID)
		if err != nil {
			return err
		}
		if a.QuestionID != questionID {
			return NewError(CodeNotFound, op, "answer does not belong to this question", nil)
		}

		if err := tx.SetAccepted(questionID, answerID, accepted); err != nil {
			return err
		}
		a.IsAccepted = accepted
		view = ProjectAnswer(*a)
		return nil
	})
	if err != nil {
		return models.AnswerView{}, err
	}
	return view, nil
}
