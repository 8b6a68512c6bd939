package model

import "time"

// Relationship represents a directed follow edge between two users.
// FollowerID follows FollowedID; the reverse edge is a separate row.
// The composite unique index makes concurrent duplicate follows collapse
// into a single edge at the store level.
type Relationship struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follower_followed"`
	FollowedID uint      `json:"followed_id" gorm:"not null;index;uniqueIndex:idx_follower_followed"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Follower User `json:"-" gorm:"foreignKey:FollowerID"`
	Followed User `json:"-" gorm:"foreignKey:FollowedID"`
}
