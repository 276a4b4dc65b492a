package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

type txStore struct {
	db *gorm.DB
}

var _ voting.Tx = (*txStore)(nil)

func targetModel(kind models.TargetKind) (any, error) {
	switch kind {
	case models.TargetQuestion:
		return &models.Question{}, nil
	case models.TargetAnswer:
		return &models.Answer{}, nil
	default:
		return nil, voting.NewError(voting.CodeValidation, "store.target", fmt.Sprintf("unknown target kind %q", kind), nil)
	}
}

func notFound(op string, target models.Target) error {
	return voting.NewError(voting.CodeNotFound, op, fmt.Sprintf("%s %d not found", target.Kind, target.ID), nil)
}

// LockTarget takes a row lock on the voted entity so concurrent casts on the
// same target serialize behind it.
func (t *txStore) LockTarget(target models.Target) (int, error) {
	model, err := targetModel(target.Kind)
	if err != nil {
		return 0, err
	}
	var row struct{ AuthorID int }
	res := t.db.Model(model).
		Select("author_id").
		Where("id = ?", target.ID).
		Clauses(forUpdate()).
		Scan(&row)
	if res.Error != nil {
		return 0, MapError("store.lock_target", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, notFound("store.lock_target", target)
	}
	return row.AuthorID, nil
}

func (t *txStore) FindVote(userID int, target models.Target) (*models.Vote, error) {
	var vote models.Vote
	err := t.db.
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, target.Kind, target.ID).
		Take(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, MapError("store.find_vote", err)
	}
	return &vote, nil
}

func (t *txStore) InsertVote(userID int, target models.Target, direction models.Direction) (*models.Vote, error) {
	vote := models.Vote{
		UserID:     userID,
		TargetKind: target.Kind,
		TargetID:   target.ID,
		Direction:  direction,
	}
	if err := t.db.Create(&vote).Error; err != nil {
		return nil, MapError("store.insert_vote", err)
	}
	return &vote, nil
}

func (t *txStore) UpdateVoteDirection(voteID int, direction models.Direction) (*models.Vote, error) {
	res := t.db.Model(&models.Vote{}).Where("id = ?", voteID).Update("direction", direction)
	if res.Error != nil {
		return nil, MapError("store.update_vote", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, voting.NewError(voting.CodeConflict, "store.update_vote", "vote changed concurrently", nil)
	}
	var vote models.Vote
	if err := t.db.First(&vote, voteID).Error; err != nil {
		return nil, MapError("store.update_vote", err)
	}
	return &vote, nil
}

func (t *txStore) DeleteVote(voteID int) error {
	res := t.db.Delete(&models.Vote{}, voteID)
	if res.Error != nil {
		return MapError("store.delete_vote", res.Error)
	}
	if res.RowsAffected == 0 {
		return voting.NewError(voting.CodeConflict, "store.delete_vote", "vote changed concurrently", nil)
	}
	return nil
}

// AdjustCachedScore applies delta with a relative update and reads the
// resulting score back inside the same transaction.
func (t *txStore) AdjustCachedScore(target models.Target, delta int) (int, error) {
	model, err := targetModel(target.Kind)
	if err != nil {
		return 0, err
	}
	res := t.db.Model(model).Where("id = ?", target.ID).UpdateColumn("votes", gorm.Expr("votes + ?", delta))
	if res.Error != nil {
		return 0, MapError("store.adjust_score", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, notFound("store.adjust_score", target)
	}

	var row struct{ Votes int }
	if err := t.db.Model(model).Select("votes").Where("id = ?", target.ID).Scan(&row).Error; err != nil {
		return 0, MapError("store.adjust_score", err)
	}
	return row.Votes, nil
}

func (t *txStore) LockQuestion(questionID int) (*models.Question, error) {
	var q models.Question
	err := t.db.Clauses(forUpdate()).Where("id = ?", questionID).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("store.lock_question", models.QuestionTarget(questionID))
	}
	if err != nil {
		return nil, MapError("store.lock_question", err)
	}
	return &q, nil
}

func (t *txStore) GetAnswer(answerID int) (*models.Answer, error) {
	var a models.Answer
	err := t.db.Preload("Author").Where("id = ?", answerID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("store.get_answer", models.AnswerTarget(answerID))
	}
	if err != nil {
		return nil, MapError("store.get_answer", err)
	}
	return &a, nil
}

// SetAccepted clears any other accepted answer before flagging answerID so the
// one-accepted-per-question index is never violated mid-transaction.
func (t *txStore) SetAccepted(questionID, answerID int, accepted bool) error {
	if accepted {
		err := t.db.Model(&models.Answer{}).
			Where("question_id = ? AND id <> ? AND is_accepted = ?", questionID, answerID, true).
			Update("is_accepted", false).Error
		if err != nil {
			return MapError("store.set_accepted", err)
		}
	}

	res := t.db.Model(&models.Answer{}).
		Where("id = ? AND question_id = ?", answerID, questionID).
		Update("is_accepted", accepted)
	if res.Error != nil {
		return MapError("store.set_accepted", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("store.set_accepted", models.AnswerTarget(answerID))
	}
	return nil
}

func (t *txStore) UpsertUser(user models.User) error {
	err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
	}).Create(&user).Error
	return MapError("store.upsert_user", err)
}

func (t *txStore) CreateQuestion(q *models.Question) error {
	if err := t.db.Omit("Author").Create(q).Error; err != nil {
		return MapError("store.create_question", err)
	}
	return nil
}

func (t *txStore) CreateAnswer(a *models.Answer) error {
	if err := t.db.Omit("Author").Create(a).Error; err != nil {
		return MapError("store.create_answer", err)
	}
	return nil
}
