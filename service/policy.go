package service

import "polling-backend/models"

// CanMutate is the shared authorization predicate for the mutating poll
// operations (close, expiry update, delete): the creator or an admin.
func CanMutate(poll *models.Poll, caller *models.User) bool {
	return poll.CreatedByID == caller.ID || caller.IsAdmin()
}
