package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

type VoteHandler struct {
	svc *voting.Service
	log *logger.Logger
}

func NewVoteHandler(svc *voting.Service, log *logger.Logger) *VoteHandler {
	return &VoteHandler{svc: svc, log: log}
}

func (h *VoteHandler) VoteQuestion(c *gin.Context) {
	id, ok := parseID(c, "id", "question")
	if !ok {
		return
	}
	h.cast(c, models.QuestionTarget(id))
}

func (h *VoteHandler) VoteAnswer(c *gin.Context) {
	id, ok := parseID(c, "id", "answer")
	if !ok {
		return
	}
	h.cast(c, models.AnswerTarget(id))
}

// cast toggles the caller's vote: a new direction is recorded, repeating the
// current direction withdraws it, the opposite direction flips it.
func (h *VoteHandler) cast(c *gin.Context, target models.Target) {
	userID, ok := extractUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, `direction must be "up" or "down"`)
		return
	}
	direction, ok := models.ParseDirection(input.Direction)
	if !ok {
		badRequest(c, `direction must be "up" or "down"`)
		return
	}

	outcome, err := h.svc.CastVote(c.Request.Context(), userID, target, direction)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// GetMyVotes returns the caller's current votes keyed by "kind:id"
func (h *VoteHandler) GetMyVotes(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	votes, err := h.svc.UserVotes(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"votes": votes})
}
