package handlers

import (
	"net/http"
	"time"

	"polling-backend/service"

	"github.com/gin-gonic/gin"
)

// PollHandler exposes the poll lifecycle operations over HTTP.
type PollHandler struct {
	polls service.PollService
}

func NewPollHandler(polls service.PollService) *PollHandler {
	return &PollHandler{polls: polls}
}

// CreatePollInput is the request body for POST /api/polls.
type CreatePollInput struct {
	Question   string     `json:"question"`
	UserID     uint       `json:"user_id"`
	Options    []string   `json:"options"`
	ExpiryTime *time.Time `json:"expiry_time,omitempty"`
}

// CreatePoll handles POST /api/polls.
func (h *PollHandler) CreatePoll(c *gin.Context) {
	var input CreatePollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body or data format")
		return
	}

	view, err := h.polls.CreatePoll(c.Request.Context(), service.CreatePollInput{
		Question:   input.Question,
		CreatorID:  input.UserID,
		Options:    input.Options,
		ExpiryTime: input.ExpiryTime,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetPolls handles GET /api/polls.
func (h *PollHandler) GetPolls(c *gin.Context) {
	views, err := h.polls.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetPoll handles GET /api/polls/:id. Supplying ?userId= adds the
// has_voted field to the view.
func (h *PollHandler) GetPoll(c *gin.Context) {
	pollID, ok := idParam(c)
	if !ok {
		return
	}
	callerID, ok := optionalUserIDQuery(c)
	if !ok {
		return
	}

	view, err := h.polls.GetPoll(c.Request.Context(), pollID, callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetMyPolls handles GET /api/polls/my?userId=.
func (h *PollHandler) GetMyPolls(c *gin.Context) {
	userID, ok := userIDQuery(c)
	if !ok {
		return
	}

	summaries, err := h.polls.ListByCreator(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// GetVotedPolls handles GET /api/polls/voted?userId=.
func (h *PollHandler) GetVotedPolls(c *gin.Context) {
	userID, ok := userIDQuery(c)
	if !ok {
		return
	}

	summaries, err := h.polls.ListVotedByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// ClosePoll handles PUT /api/polls/:id/close?userId=.
func (h *PollHandler) ClosePoll(c *gin.Context) {
	pollID, ok := idParam(c)
	if !ok {
		return
	}
	callerID, ok := userIDQuery(c)
	if !ok {
		return
	}

	view, err := h.polls.ClosePoll(c.Request.Context(), pollID, callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateExpiryInput is the request body for PUT /api/polls/:id/expiry.
type UpdateExpiryInput struct {
	ExpiryTime *time.Time `json:"expiry_time"`
}

// UpdateExpiry handles PUT /api/polls/:id/expiry?userId=.
func (h *PollHandler) UpdateExpiry(c *gin.Context) {
	pollID, ok := idParam(c)
	if !ok {
		return
	}
	callerID, ok := userIDQuery(c)
	if !ok {
		return
	}

	var input UpdateExpiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body or data format")
		return
	}

	view, err := h.polls.UpdateExpiry(c.Request.Context(), pollID, callerID, input.ExpiryTime)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeletePoll handles DELETE /api/polls/:id?userId=.
func (h *PollHandler) DeletePoll(c *gin.Context) {
	pollID, ok := idParam(c)
	if !ok {
		return
	}
	callerID, ok := userIDQuery(c)
	if !ok {
		return
	}

	if err := h.polls.DeletePoll(c.Request.Context(), pollID, callerID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Poll deleted successfully"})
}
