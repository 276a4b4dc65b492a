package voting

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/platform/retry"
)

const tracerName = "github.com/emilythestrangee/qa-forum/backend/internal/voting"

type ServiceDeps struct {
	Store  Store
	Log    *logger.Logger
	Hooks  Hooks
	Policy Policy
	// MaxAttempts bounds how often a Conflict is retried (>= 1).
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Service is the entry point used by the HTTP layer. Write operations that
// lose a race (Conflict) are retried from scratch a bounded number of times.
type Service struct {
	resolver   *Resolver
	acceptance *AcceptanceManager
	projector  *Projector
	publisher  *Publisher

	log    *logger.Logger
	hooks  Hooks
	tracer trace.Tracer
	retry  retry.Policy
}

func NewService(deps ServiceDeps) *Service {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Hooks == nil {
		deps.Hooks = noopHooks{}
	}
	if deps.MaxAttempts < 1 {
		deps.MaxAttempts = 3
	}
	if deps.RetryBackoff <= 0 {
		deps.RetryBackoff = 10 * time.Millisecond
	}
	return &Service{
		resolver:   NewResolver(deps.Store, deps.Policy),
		acceptance: NewAcceptanceManager(deps.Store),
		projector:  NewProjector(deps.Store, deps.Log),
		publisher:  NewPublisher(deps.Store),
		log:        deps.Log,
		hooks:      deps.Hooks,
		tracer:     otel.Tracer(tracerName),
		retry: retry.Policy{
			MaxAttempts:    deps.MaxAttempts,
			InitialBackoff: deps.RetryBackoff,
		},
	}
}

func (s *Service) CastVote(ctx context.Context, userID int, target models.Target, direction models.Direction) (VoteOutcome, error) {
	out, err := runWrite(ctx, s, "voting.cast", func(ctx context.Context) (VoteOutcome, error) {
		return s.resolver.Cast(ctx, userID, target, direction)
	}, attribute.String("target.kind", string(target.Kind)), attribute.Int("target.id", target.ID), attribute.String("direction", string(direction)))
	if err != nil {
		return VoteOutcome{}, err
	}
	s.hooks.VoteApplied(target.Kind, out.Op)
	s.log.Debug("vote applied", "user_id", userID, "target", target.Key(), "op", out.Op, "delta", out.ScoreDelta, "votes", out.Votes)
	return out, nil
}

func (s *Service) AcceptAnswer(ctx context.Context, callerID, questionID, answerID int) (models.AnswerView, error) {
	return runWrite(ctx, s, "voting.accept", func(ctx context.Context) (models.AnswerView, error) {
		return s.acceptance.Accept(ctx, callerID, questionID, answerID)
	}, attribute.Int("question.id", questionID), attribute.Int("answer.id", answerID))
}

func (s *Service) UnacceptAnswer(ctx context.Context, callerID, questionID, answerID int) (models.AnswerView, error) {
	return runWrite(ctx, s, "voting.unaccept", func(ctx context.Context) (models.AnswerView, error) {
		return s.acceptance.Unaccept(ctx, callerID, questionID, answerID)
	}, attribute.Int("question.id", questionID), attribute.Int("answer.id", answerID))
}

func (s *Service) CreateQuestion(ctx context.Context, author models.User, req models.CreateQuestionRequest) (models.QuestionView, error) {
	return runWrite(ctx, s, "voting.create_question", func(ctx context.Context) (models.QuestionView, error) {
		return s.publisher.CreateQuestion(ctx, author, req)
	})
}

func (s *Service) CreateAnswer(ctx context.Context, author models.User, questionID int, req models.CreateAnswerRequest) (models.AnswerView, error) {
	return runWrite(ctx, s, "voting.create_answer", func(ctx context.Context) (models.AnswerView, error) {
		return s.publisher.CreateAnswer(ctx, author, questionID, req)
	}, attribute.Int("question.id", questionID))
}

func (s *Service) Questions(ctx context.Context) ([]models.QuestionView, error) {
	return s.projector.Questions(ctx)
}

func (s *Service) OpenQuestion(ctx context.Context, questionID int) (models.QuestionDetail, error) {
	ctx, span := s.tracer.Start(ctx, "voting.open_question", trace.WithAttributes(attribute.Int("question.id", questionID)))
	defer span.End()
	return s.projector.OpenQuestion(ctx, questionID)
}

func (s *Service) Answers(ctx context.Context, questionID int) ([]models.AnswerView, error) {
	return s.projector.Answers(ctx, questionID)
}

func (s *Service) UserVotes(ctx context.Context, userID int) (map[string]models.Direction, error) {
	return s.projector.UserVotes(ctx, userID)
}

func runWrite[T any](ctx context.Context, s *Service, op string, fn retry.Operation[T], attrs ...attribute.KeyValue) (T, error) {
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attrs...))
	defer span.End()
	start := time.Now()

	p := s.retry
	p.OnRetry = func(attempt int, err error, backoff time.Duration) {
		s.hooks.IncRetry(op)
		s.log.Debug("retrying after conflict", "op", op, "attempt", attempt, "backoff", backoff, "error", err)
	}
	val, err := retry.Do(ctx, p, classify(s, op), fn)
	var perm *retry.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}

	status := "success"
	if err != nil {
		status = string(CodeOf(err))
		if status == "" {
			status = string(CodeInternal)
		}
		span.RecordError(err)
		if status == string(CodeInternal) {
			span.SetStatus(codes.Error, err.Error())
			s.log.Error("voting operation failed", "op", op, "error", err)
		}
	}
	span.SetAttributes(attribute.String("status", status))
	s.hooks.ObserveOperation(op, status, time.Since(start))
	return val, err
}

func classify(s *Service, op string) retry.Classify {
	return func(err error) retry.Action {
		if IsCode(err, CodeConflict) {
			s.hooks.IncConflict(op)
			return retry.Retry
		}
		return retry.Stop
	}
}
