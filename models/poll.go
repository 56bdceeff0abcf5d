package models

import "time"

// Poll represents a question with a fixed option set and a lifecycle
// state. Closed is monotonic: once true it never reverts. ExpiryTime is
// authoritative over Closed; a poll past its expiry is treated as closed
// even before the flag has been persisted.
type Poll struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	Question    string       `gorm:"size:500;not null" json:"question"`
	ExpiryTime  *time.Time   `json:"expiry_time,omitempty"`
	Closed      bool         `gorm:"not null;default:false" json:"closed"`
	CreatedByID uint         `gorm:"not null;index" json:"created_by_id"`
	CreatedBy   *User        `gorm:"foreignKey:CreatedByID" json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
	Options     []PollOption `gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE" json:"options"`
	Votes       []Vote       `gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE" json:"-"`
}

// PollOption is one selectable answer. Options are immutable once created
// and die with their poll.
type PollOption struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	PollID uint   `gorm:"not null;index" json:"poll_id"`
	Text   string `gorm:"not null" json:"text"`
}

// Vote records one ballot. The composite unique index on
// (poll_id, user_id) is the consistency anchor for vote admission:
// concurrent duplicate casts lose at the storage layer, not in
// application code.
type Vote struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	PollID   uint      `gorm:"not null;uniqueIndex:idx_votes_poll_user" json:"poll_id"`
	OptionID uint      `gorm:"not null;index" json:"option_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_votes_poll_user" json:"user_id"`
	VotedAt  time.Time `gorm:"autoCreateTime" json:"voted_at"`
}
