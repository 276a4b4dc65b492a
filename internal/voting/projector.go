package voting

import (
	"cmp"
	"context"
	"slices"

	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

const unknownAuthor = "Unknown"

// ProjectQuestion builds the display view of q. The score is the cached vote
// count; it is kept in step with the ledger by the Resolver.
func ProjectQuestion(q models.Question, stats models.QuestionStats) models.QuestionView {
	tags := []string(q.Tags)
	if tags == nil {
		tags = []string{}
	}
	return models.QuestionView{
		ID:                q.ID,
		Title:             q.Title,
		Description:       q.Description,
		Author:            authorName(q.Author),
		AuthorID:          q.AuthorID,
		Tags:              tags,
		Votes:             q.Votes,
		AnswerCount:       stats.AnswerCount,
		ViewCount:         q.ViewCount,
		HasAcceptedAnswer: stats.HasAcceptedAnswer,
		CreatedAt:         q.CreatedAt,
	}
}

func ProjectAnswer(a models.Answer) models.AnswerView {
	return models.AnswerView{
		ID:         a.ID,
		QuestionID: a.QuestionID,
		Content:    a.Content,
		Author:     authorName(a.Author),
		AuthorID:   a.AuthorID,
		Votes:      a.Votes,
		IsAccepted: a.IsAccepted,
		CreatedAt:  a.CreatedAt,
	}
}

// StatsFromAnswers derives question aggregates from an already loaded answer list.
func StatsFromAnswers(questionID int, answers []models.Answer) models.QuestionStats {
	stats := models.QuestionStats{QuestionID: questionID, AnswerCount: len(answers)}
	for _, a := range answers {
		if a.IsAccepted {
			stats.HasAcceptedAnswer = true
			break
		}
	}
	return stats
}

// SortAnswers orders answers by relevance: accepted first, then by score
// descending, then oldest first.
func SortAnswers(views []models.AnswerView) {
	slices.SortStableFunc(views, func(a, b models.AnswerView) int {
		if a.IsAccepted != b.IsAccepted {
			if a.IsAccepted {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(b.Votes, a.Votes); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func authorName(u models.User) string {
	if u.Username == "" {
		return unknownAuthor
	}
	return u.Username
}

// Projector serves the read side: question lists, detail pages and the
// caller's own votes.
type Projector struct {
	store Store
	log   *logger.Logger
}

func NewProjector(store Store, log *logger.Logger) *Projector {
	if log == nil {
		log = logger.Nop()
	}
	return &Projector{store: store, log: log}
}

func (p *Projector) Questions(ctx context.Context) ([]models.QuestionView, error) {
	questions, err := p.store.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	stats, err := p.store.QuestionStats(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, ProjectQuestion(q, stats[q.ID]))
	}
	return views, nil
}

func (p *Projector) Answers(ctx context.Context, questionID int) ([]models.AnswerView, error) {
	if _, err := p.store.GetQuestion(ctx, questionID); err != nil {
		return nil, err
	}
	answers, err := p.store.ListAnswers(ctx, questionID)
	if err != nil {
		return nil, err
	}
	return projectAnswers(answers), nil
}

// OpenQuestion records one view of the question and returns its detail page.
// A failed view increment is logged and does not fail the read.
func (p *Projector) OpenQuestion(ctx context.Context, questionID int) (models.QuestionDetail, error) {
	q, err := p.store.GetQuestion(ctx, questionID)
	if err != nil {
		return models.QuestionDetail{}, err
	}

	if err := p.store.IncrementViewCount(ctx, questionID); err != nil {
		p.log.Warn("view count increment failed", "question_id", questionID, "error", err)
	} else {
		q.ViewCount++
	}

	answers, err := p.store.ListAnswers(ctx, questionID)
	if err != nil {
		return models.QuestionDetail{}, err
	}
	return models.QuestionDetail{
		Question: ProjectQuestion(*q, StatsFromAnswers(questionID, answers)),
		Answers:  projectAnswers(answers),
	}, nil
}

// UserVotes returns the caller's current stance keyed by Target.Key().
func (p *Projector) UserVotes(ctx context.Context, userID int) (map[string]models.Direction, error) {
	if userID <= 0 {
		return nil, NewError(CodeUnauthorized, "voting.user_votes", "authentication required", nil)
	}
	votes, err := p.store.VotesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Direction, len(votes))
	for _, v := range votes {
		out[v.Target().Key()] = v.Direction
	}
	return out, nil
}

func projectAnswers(answers []models.Answer) []models.AnswerView {
	views := make([]models.AnswerView, 0, len(answers))
	for _, a := range answers {
		views = append(views, ProjectAnswer(a))
	}
	SortAnswers(views)
	return views
}
