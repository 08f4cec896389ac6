// file.go - Defines the UploadedFile model for account history

package models

import "time"

type UploadedFile struct { // UploadedFile is one entry of a user's upload history
	ID        uint      `gorm:"primaryKey"`         // Unique ID, also the history order
	UserID    uint      `gorm:"not null;index"`     // Foreign key to users table
	FileName  string    `gorm:"size:1024;not null"` // Client-supplied original name
	Location  string    `gorm:"size:1024;not null"` // Durable storage location (path or URL)
	CreatedAt time.Time // When the upload was recorded
}
