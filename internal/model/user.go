package model

import "time"

// User represents a registered account in the system.
type User struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Name           string     `json:"name" gorm:"size:50;not null"`
	Email          string     `json:"email" gorm:"uniqueIndex;size:255;not null"` // Always stored lower-cased
	PasswordHash   string     `json:"-" gorm:"size:255;not null"`                 // Never expose in JSON
	Admin          bool       `json:"admin" gorm:"default:false"`
	RememberHash   *string    `json:"-" gorm:"size:64"` // SHA-256 digest of the remember token
	ActivationHash *string    `json:"-" gorm:"size:64"`
	Activated      bool       `json:"activated" gorm:"default:false;index"`
	ActivatedAt    *time.Time `json:"activated_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Microposts []Micropost `json:"microposts,omitempty" gorm:"foreignKey:AuthorID"`
}
