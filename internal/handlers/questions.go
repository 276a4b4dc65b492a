package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

type QuestionHandler struct {
	svc *voting.Service
	log *logger.Logger
}

func NewQuestionHandler(svc *voting.Service, log *logger.Logger) *QuestionHandler {
	return &QuestionHandler{svc: svc, log: log}
}

// GetQuestions returns every question, newest first
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	questions, err := h.svc.Questions(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetQuestion returns a question with its ranked answers and counts the view
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := parseID(c, "id", "question")
	if !ok {
		return
	}
	detail, err := h.svc.OpenQuestion(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	author, ok := currentUser(c)
	if !ok {
		unauthorized(c)
		return
	}

	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "title, description and tags are required")
		return
	}

	question, err := h.svc.CreateQuestion(c.Request.Context(), author, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}
