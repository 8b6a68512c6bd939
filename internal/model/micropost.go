package model

import "time"

// MaxContentLength bounds a micropost's content, matching the classic
// short-post limit.
const MaxContentLength = 140

// Micropost represents a short text post owned by exactly one user.
type Micropost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"type:varchar(140);not null"`
	Picture   string    `json:"picture,omitempty" gorm:"size:255"` // Attachment reference, optional
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	// Relations
	Author User `json:"-" gorm:"foreignKey:AuthorID"`
}
