package voting

import (
	"context"
	"fmt"
	"strings"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

const (
	MinTags = 1
	MaxTags = 5
)

// NormalizeTags trims tags, drops blanks and case-insensitive duplicates
// (keeping the first spelling), and enforces the 1..5 bound.
func NormalizeTags(raw []string) ([]string, error) {
	const op = "voting.tags"
	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, t)
	}
	if len(tags) < MinTags || len(tags) > MaxTags {
		return nil, NewError(CodeValidation, op, fmt.Sprintf("a question needs between %d and %d tags, got %d", MinTags, MaxTags, len(tags)), nil)
	}
	return tags, nil
}

// Publisher creates questions and answers on behalf of an authenticated user.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) CreateQuestion(ctx context.Context, author models.User, req models.CreateQuestionRequest) (models.QuestionView, error) {
	const op = "voting.create_question"
	if author.ID <= 0 {
		return models.QuestionView{}, NewError(CodeUnauthorized, op, "authentication required", nil)
	}
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return models.QuestionView{}, NewError(CodeValidation, op, "title and description are required", nil)
	}
	tags, err := NormalizeTags(req.Tags)
	if err != nil {
		return models.QuestionView{}, err
	}

	q := models.Question{
		Title:       title,
		Description: description,
		Tags:        tags,
		AuthorID:    author.ID,
	}
	err = p.store.InTx(ctx, func(tx Tx) error {
		if err := tx.UpsertUser(author); err != nil {
			return err
		}
		return tx.CreateQuestion(&q)
	})
	if err != nil {
		return models.QuestionView{}, err
	}
	q.Author = author
	return ProjectQuestion(q, models.QuestionStats{QuestionID: q.ID}), nil
}

func (p *Publisher) CreateAnswer(ctx context.Context, author models.User, questionID int, req models.CreateAnswerRequest) (models.AnswerView, error) {
	const op = "voting.create_answer"
	if author.ID <= 0 {
		return models.AnswerView{}, NewError(CodeUnauthorized, op, "authentication required", nil)
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return models.AnswerView{}, NewError(CodeValidation, op, "content is required", nil)
	}

	a := models.Answer{
		QuestionID: questionID,
		Content:    content,
		AuthorID:   author.ID,
	}
	err := p.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.LockQuestion(questionID); err != nil {
			return err
		}
		if err := tx.UpsertUser(author); err != nil {
			return err
		}
		return tx.CreateAnswer(&a)
	})
	if err != nil {
		return models.AnswerView{}, err
	}
	a.Author = author
	return ProjectAnswer(a), nil
}
