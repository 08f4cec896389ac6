// user.go - Defines the User model for the database

package models // Declares the package name

import "time"

type User struct { // User struct represents an account in the database
	ID                   uint           `gorm:"primaryKey"`                                     // Unique user ID (primary key)
	Email                string         `gorm:"uniqueIndex;not null"`                           // User's email (must be unique, cannot be null)
	Password             string         `gorm:"not null"`                                       // bcrypt hash of the password
	IsSeller             bool           `gorm:"not null;default:false"`                         // Offers fabrication services
	Profile              Profile        `gorm:"embedded;embeddedPrefix:profile_"`               // Display name and location
	Printer              Printer        `gorm:"embedded;embeddedPrefix:printer_"`               // Seller printer capabilities
	Multiplier           float64        `gorm:"not null;default:1"`                             // Applied to a base price when quoting
	UploadedFiles        []UploadedFile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"` // Account history, append-only
	ResetPasswordToken   string         `gorm:"index"`                                          // Pending password reset token
	ResetPasswordExpires *time.Time                                                             // Expiry of ResetPasswordToken
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Profile struct {
	Name     string
	Location string
}

// Printer describes what a seller can fabricate.
type Printer struct {
	Model             string
	SupportsABS       bool
	SupportsPLA       bool
	HighestResolution string
	ExamplePrints     string
}
