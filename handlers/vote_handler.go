package handlers

import (
	"net/http"

	"polling-backend/service"

	"github.com/gin-gonic/gin"
)

// VoteHandler exposes vote admission and results over HTTP.
type VoteHandler struct {
	votes service.VoteService
}

func NewVoteHandler(votes service.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// CastVoteInput is the request body for POST /api/polls/:id/vote.
type CastVoteInput struct {
	OptionID uint `json:"option_id"`
	UserID   uint `json:"user_id"`
}

// CastVote handles POST /api/polls/:id/vote.
func (h *VoteHandler) CastVote(c *gin.Context) {
	pollID, ok := idParam(c)
	if !ok {
		return
	}

	var input CastVoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body or data format")
		return
	}
	if input.OptionID == 0 || input.UserID == 0 {
		badRequest(c, "option_id and user_id are required")
		return
	}

	receipt, err := h.votes.CastVote(c.Request.Context(), pollID, input.OptionID, input.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// DeleteVote handles DELETE /api/polls/:id/vote?userId=.
func (h *VoteHandler) DeleteVote(c *gin.Context) {
	pollID, ok := idParam(c)
	if !ok {
		return
	}
	userID, ok := userIDQuery(c)
	if !ok {
		return
	}

	if err := h.votes.DeleteVote(c.Request.Context(), pollID, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote deleted successfully"})
}

// GetResults handles GET /api/polls/:id/results.
func (h *VoteHandler) GetResults(c *gin.Context) {
	pollID, ok := idParam(c)
	if !ok {
		return
	}

	results, err := h.votes.GetResults(c.Request.Context(), pollID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
