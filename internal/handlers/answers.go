package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

type AnswerHandler struct {
	svc *voting.Service
	log *logger.Logger
}

func NewAnswerHandler(svc *voting.Service, log *logger.Logger) *AnswerHandler {
	return &AnswerHandler{svc: svc, log: log}
}

// GetAnswers returns a question's answers, accepted first then by score
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	questionID, ok := parseID(c, "id", "question")
	if !ok {
		return
	}
	answers, err := h.svc.Answers(c.Request.Context(), questionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	author, ok := currentUser(c)
	if !ok {
		unauthorized(c)
		return
	}
	questionID, ok := parseID(c, "id", "question")
	if !ok {
		return
	}

	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "content is required")
		return
	}

	answer, err := h.svc.CreateAnswer(c.Request.Context(), author, questionID, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, answer)
}

func (h *AnswerHandler) AcceptAnswer(c *gin.Context) {
	h.setAccepted(c, true)
}

func (h *AnswerHandler) UnacceptAnswer(c *gin.Context) {
	h.setAccepted(c, false)
}

func (h *AnswerHandler) setAccepted(c *gin.Context, accepted bool) {
	callerID, ok := extractUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	questionID, ok := parseID(c, "id", "question")
	if !ok {
		return
	}
	answerID, ok := parseID(c, "answerId", "answer")
	if !ok {
		return
	}

	var (
		answer models.AnswerView
		err    error
	)
	if accepted {
		answer, err = h.svc.AcceptAnswer(c.Request.Context(), callerID, questionID, answerID)
	} else {
		answer, err = h.svc.UnacceptAnswer(c.Request.Context(), callerID, questionID, answerID)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}
