package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"polling-backend/models"
	"polling-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVoteEndpoint(t *testing.T) {
	router, db := setupTestEnvironment(t)
	creator := seedUser(t, db, "alice", models.RoleUser)
	voter := seedUser(t, db, "bob", models.RoleUser)
	poll := seedPoll(t, db, creator, "Q?", time.Now().Add(time.Hour), "A", "B")

	w := doJSON(t, router, "POST", fmt.Sprintf("/api/polls/%d/vote", poll.ID), gin.H{
		"option_id": poll.Options[0].ID,
		"user_id":   voter.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var receipt service.VoteReceipt
	decodeBody(t, w, &receipt)
	assert.NotZero(t, receipt.VoteID)
	assert.Equal(t, "Vote cast successfully", receipt.Message)

	// The second cast hits the one-vote rule.
	w = doJSON(t, router, "POST", fmt.Sprintf("/api/polls/%d/vote", poll.ID), gin.H{
		"option_id": poll.Options[1].ID,
		"user_id":   voter.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	decodeBody(t, w, &body)
	assert.Equal(t, "business_rule", body["error"])
	assert.Equal(t, "User has already voted", body["message"])
}

func TestCastVoteEndpoint_Errors(t *testing.T) {
	router, db := setupTestEnvironment(t)
	creator := seedUser(t, db, "alice", models.RoleUser)
	voter := seedUser(t, db, "bob", models.RoleUser)
	poll := seedPoll(t, db, creator, "Q?", time.Now().Add(time.Hour), "A", "B")
	other := seedPoll(t, db, creator, "Other?", time.Now().Add(time.Hour), "X", "Y")
	expired := seedPoll(t, db, creator, "Expired?", time.Now().Add(-time.Minute), "A", "B")

	tests := []struct {
		name     string
		path     string
		body     gin.H
		wantCode int
		wantMsg  string
	}{
		{
			name:     "missing fields",
			path:     fmt.Sprintf("/api/polls/%d/vote", poll.ID),
			body:     gin.H{},
			wantCode: http.StatusBadRequest,
			wantMsg:  "option_id and user_id are required",
		},
		{
			name:     "poll not found",
			path:     "/api/polls/9999/vote",
			body:     gin.H{"option_id": poll.Options[0].ID, "user_id": voter.ID},
			wantCode: http.StatusNotFound,
			wantMsg:  "Poll not found with id 9999",
		},
		{
			name:     "foreign option",
			path:     fmt.Sprintf("/api/polls/%d/vote", poll.ID),
			body:     gin.H{"option_id": other.Options[0].ID, "user_id": voter.ID},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Option does not belong to this poll",
		},
		{
			name:     "expired poll",
			path:     fmt.Sprintf("/api/polls/%d/vote", expired.ID),
			body:     gin.H{"option_id": expired.Options[0].ID, "user_id": voter.ID},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Voting time has expired",
		},
		{
			name:     "unknown user",
			path:     fmt.Sprintf("/api/polls/%d/vote", poll.ID),
			body:     gin.H{"option_id": poll.Options[0].ID, "user_id": 9999},
			wantCode: http.StatusNotFound,
			wantMsg:  "User not found with id 9999",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, "POST", tc.path, tc.body)
			assert.Equal(t, tc.wantCode, w.Code)

			var body map[string]string
			decodeBody(t, w, &body)
			assert.Equal(t, tc.wantMsg, body["message"])
		})
	}
}

func TestDeleteVoteEndpoint(t *testing.T) {
	router, db := setupTestEnvironment(t)
	creator := seedUser(t, db, "alice", models.RoleUser)
	voter := seedUser(t, db, "bob", models.RoleUser)
	poll := seedPoll(t, db, creator, "Q?", time.Now().Add(time.Hour), "A", "B")

	// Nothing to retract yet.
	w := doJSON(t, router, "DELETE", fmt.Sprintf("/api/polls/%d/vote?userId=%d", poll.ID, voter.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	decodeBody(t, w, &body)
	assert.Equal(t, "Vote not found for this user", body["message"])

	w = doJSON(t, router, "POST", fmt.Sprintf("/api/polls/%d/vote", poll.ID), gin.H{
		"option_id": poll.Options[0].ID,
		"user_id":   voter.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "DELETE", fmt.Sprintf("/api/polls/%d/vote?userId=%d", poll.ID, voter.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &body)
	assert.Equal(t, "Vote deleted successfully", body["message"])
}

func TestResultsEndpoint(t *testing.T) {
	router, db := setupTestEnvironment(t)
	creator := seedUser(t, db, "alice", models.RoleUser)
	poll := seedPoll(t, db, creator, "Q?", time.Now().Add(time.Hour), "A", "B", "C")

	for i, optIdx := range []int{0, 0, 0, 1} {
		voter := seedUser(t, db, fmt.Sprintf("voter%d", i), models.RoleUser)
		w := doJSON(t, router, "POST", fmt.Sprintf("/api/polls/%d/vote", poll.ID), gin.H{
			"option_id": poll.Options[optIdx].ID,
			"user_id":   voter.ID,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, router, "GET", fmt.Sprintf("/api/polls/%d/results", poll.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var results service.PollResults
	decodeBody(t, w, &results)
	assert.Equal(t, int64(4), results.TotalVotes)
	require.Len(t, results.Results, 3)
	assert.Equal(t, 75.0, results.Results[0].Percentage)
	assert.Equal(t, 25.0, results.Results[1].Percentage)
	assert.Equal(t, 0.0, results.Results[2].Percentage)
}
