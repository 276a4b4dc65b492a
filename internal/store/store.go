package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

// Store is the GORM-backed implementation of voting.Store.
type Store struct {
	db *gorm.DB
}

var _ voting.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InTx runs fn inside one database transaction. Any error returned by fn
// rolls back every write made through the Tx, including score adjustments.
func (s *Store) InTx(ctx context.Context, fn func(tx voting.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&txStore{db: gtx})
	})
	return MapError("store.tx", err)
}

func (s *Store) GetQuestion(ctx context.Context, id int) (*models.Question, error) {
	var q models.Question
	if err := s.db.WithContext(ctx).Preload("Author").First(&q, id).Error; err != nil {
		return nil, MapError("store.get_question", err)
	}
	return &q, nil
}

func (s *Store) ListQuestions(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	err := s.db.WithContext(ctx).Preload("Author").Order("created_at desc, id desc").Find(&questions).Error
	if err != nil {
		return nil, MapError("store.list_questions", err)
	}
	return questions, nil
}

// QuestionStats returns answer count and acceptance per question in one query.
// Questions without answers are absent from the map.
func (s *Store) QuestionStats(ctx context.Context, questionIDs []int) (map[int]models.QuestionStats, error) {
	out := make(map[int]models.QuestionStats, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		QuestionID    int
		AnswerCount   int
		AcceptedCount int
	}
	err := s.db.WithContext(ctx).
		Model(&models.Answer{}).
		Select("question_id, COUNT(*) AS answer_count, SUM(CASE WHEN is_accepted THEN 1 ELSE 0 END) AS accepted_count").
		Where("question_id IN ?", questionIDs).
		Group("question_id").
		Scan(&rows).Error
	if err != nil {
		return nil, MapError("store.question_stats", err)
	}
	for _, r := range rows {
		out[r.QuestionID] = models.QuestionStats{
			QuestionID:        r.QuestionID,
			AnswerCount:       r.AnswerCount,
			HasAcceptedAnswer: r.AcceptedCount > 0,
		}
	}
	return out, nil
}

func (s *Store) ListAnswers(ctx context.Context, questionID int) ([]models.Answer, error) {
	var answers []models.Answer
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("question_id = ?", questionID).
		Order("is_accepted desc, votes desc, created_at asc, id asc").
		Find(&answers).Error
	if err != nil {
		return nil, MapError("store.list_answers", err)
	}
	return answers, nil
}

// IncrementViewCount bumps view_count by one in a single statement so
// concurrent opens never overwrite each other.
func (s *Store) IncrementViewCount(ctx context.Context, questionID int) error {
	res := s.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", questionID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return MapError("store.increment_view_count", res.Error)
	}
	if res.RowsAffected == 0 {
		return voting.NewError(voting.CodeNotFound, "store.increment_view_count", fmt.Sprintf("question %d not found", questionID), nil)
	}
	return nil
}

func (s *Store) VotesByUser(ctx context.Context, userID int) ([]models.Vote, error) {
	var votes []models.Vote
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&votes).Error; err != nil {
		return nil, MapError("store.votes_by_user", err)
	}
	return votes, nil
}

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
