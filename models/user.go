package models

import "time"

// User represents a registered author. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FirstName    string    `gorm:"size:64;not null" json:"first_name"`
	LastName     string    `gorm:"size:64;not null" json:"last_name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	DOB          time.Time `gorm:"not null" json:"dob"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Avatar       Image     `gorm:"embedded;embeddedPrefix:avatar_" json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
	Posts        []Post    `gorm:"foreignKey:AuthorID" json:"-"`
	Comments     []Comment `gorm:"foreignKey:AuthorID" json:"-"`
}

// FullName joins the user's first and last name for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
