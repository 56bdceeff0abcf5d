package service

import "time"

// CreatePollInput carries everything needed to create a poll.
type CreatePollInput struct {
	Question   string
	CreatorID  uint
	Options    []string
	ExpiryTime *time.Time
}

// OptionView is one option with its current vote count.
type OptionView struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	VoteCount int64  `json:"vote_count"`
}

// PollView is the full read projection of a poll.
type PollView struct {
	ID         uint         `json:"id"`
	Question   string       `json:"question"`
	CreatedBy  string       `json:"created_by"`
	CreatedAt  time.Time    `json:"created_at"`
	ExpiryTime *time.Time   `json:"expiry_time,omitempty"`
	Closed     bool         `json:"closed"`
	Options    []OptionView `json:"options"`
	TotalVotes int64        `json:"total_votes"`
	// HasVoted is set only when the read supplied a caller identity.
	HasVoted *bool `json:"has_voted,omitempty"`
}

// PollSummary is the compact projection used by the per-user listings.
type PollSummary struct {
	ID         uint       `json:"id"`
	Question   string     `json:"question"`
	ExpiryTime *time.Time `json:"expiry_time,omitempty"`
	Closed     bool       `json:"closed"`
	CreatedAt  time.Time  `json:"created_at"`
	VoteCount  int64      `json:"vote_count"`
}

// VoteReceipt confirms a successful cast.
type VoteReceipt struct {
	VoteID  uint   `json:"vote_id"`
	Message string `json:"message"`
}

// OptionResult is one option's aggregated tally.
type OptionResult struct {
	OptionID   uint    `json:"option_id"`
	Text       string  `json:"text"`
	VoteCount  int64   `json:"vote_count"`
	Percentage float64 `json:"percentage"`
}

// PollResults is the aggregated result set for a poll. Percentages are
// rounded per option and not renormalized, so they may not sum to
// exactly 100.
type PollResults struct {
	PollID     uint           `json:"poll_id"`
	Question   string         `json:"question"`
	TotalVotes int64          `json:"total_votes"`
	Results    []OptionResult `json:"results"`
}

// UserView is the public projection of a user account.
type UserView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
