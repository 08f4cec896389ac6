// session.go - Defines the persisted session row

package models

import "time"

// Session holds the encoded values of one browser session.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Data      string    `gorm:"type:text;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
