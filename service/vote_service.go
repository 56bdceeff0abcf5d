package service

import (
	"context"
	"errors"
	"math"
	"time"

	"polling-backend/errs"
	"polling-backend/models"
	"polling-backend/repository"
)

// VoteService owns vote admission and results aggregation.
type VoteService interface {
	CastVote(ctx context.Context, pollID, optionID, userID uint) (*VoteReceipt, error)
	DeleteVote(ctx context.Context, pollID, userID uint) error
	GetResults(ctx context.Context, pollID uint) (*PollResults, error)
}

type voteService struct {
	polls repository.PollRepository
	users repository.UserRepository
	now   func() time.Time
}

func NewVoteService(polls repository.PollRepository, users repository.UserRepository) VoteService {
	return &voteService{polls: polls, users: users, now: time.Now}
}

// CastVote validates and records one vote. The checks fail fast in a
// fixed order; the final duplicate check is backed by the storage
// uniqueness constraint, so a concurrent duplicate cast cannot slip
// through between check and insert. The losing writer gets the same
// "already voted" error the sequential path produces.
func (s *voteService) CastVote(ctx context.Context, pollID, optionID, userID uint) (*VoteReceipt, error) {
	poll, err := s.polls.GetPollByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("Poll not found with id %d", pollID)
		}
		return nil, err
	}

	if poll.Closed {
		return nil, errs.Business("Poll is already closed")
	}

	// Expiry is authoritative even when the closed flag has not been
	// flipped yet.
	if poll.ExpiryTime != nil && poll.ExpiryTime.Before(s.now()) {
		return nil, errs.Business("Voting time has expired")
	}

	option, err := s.polls.GetOption(ctx, optionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("Option not found with id %d", optionID)
		}
		return nil, err
	}
	if option.PollID != pollID {
		return nil, errs.Business("Option does not belong to this poll")
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("User not found with id %d", userID)
		}
		return nil, err
	}

	voted, err := s.polls.HasUserVoted(ctx, pollID, userID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, errs.Business("User has already voted")
	}

	vote := &models.Vote{
		PollID:   pollID,
		OptionID: optionID,
		UserID:   userID,
	}
	if err := s.polls.CreateVote(ctx, vote); err != nil {
		if errors.Is(err, repository.ErrDuplicateVote) {
			return nil, errs.Business("User has already voted")
		}
		return nil, err
	}

	return &VoteReceipt{VoteID: vote.ID, Message: "Vote cast successfully"}, nil
}

// DeleteVote retracts the caller's vote. The retraction window closes
// with the poll: a closed or expired poll rejects the retraction.
func (s *voteService) DeleteVote(ctx context.Context, pollID, userID uint) error {
	poll, err := s.polls.GetPollByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.NotFound("Poll not found with id %d", pollID)
		}
		return err
	}

	if poll.Closed || (poll.ExpiryTime != nil && poll.ExpiryTime.Before(s.now())) {
		return errs.Business("Cannot delete vote after poll is closed")
	}

	vote, err := s.polls.FindVote(ctx, pollID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.NotFound("Vote not found for this user")
		}
		return err
	}

	return s.polls.DeleteVote(ctx, vote.ID)
}

// GetResults recomputes the tally from the vote ledger on every call.
// Option order follows creation order; percentages are rounded half-up
// to two decimals and not renormalized.
func (s *voteService) GetResults(ctx context.Context, pollID uint) (*PollResults, error) {
	poll, err := s.polls.GetPollByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("Poll not found with id %d", pollID)
		}
		return nil, err
	}

	counts, err := s.polls.CountVotesByOption(ctx, pollID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, option := range poll.Options {
		total += counts[option.ID]
	}

	results := make([]OptionResult, 0, len(poll.Options))
	for _, option := range poll.Options {
		count := counts[option.ID]
		percentage := 0.0
		if total > 0 {
			percentage = round2(float64(count) * 100.0 / float64(total))
		}
		results = append(results, OptionResult{
			OptionID:   option.ID,
			Text:       option.Text,
			VoteCount:  count,
			Percentage: percentage,
		})
	}

	return &PollResults{
		PollID:     poll.ID,
		Question:   poll.Question,
		TotalVotes: total,
		Results:    results,
	}, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
