package handlers

import (
	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

// Handler combines all handler types
type Handler struct {
	Question *QuestionHandler
	Answer   *AnswerHandler
	Vote     *VoteHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(svc *voting.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		Question: NewQuestionHandler(svc, log),
		Answer:   NewAnswerHandler(svc, log),
		Vote:     NewVoteHandler(svc, log),
	}
}
