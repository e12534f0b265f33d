package models

import "time"

// Post represents a blog post created by a user. The author never changes
// after creation, and a published post can never return to draft state.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AuthorID    uint       `gorm:"index;not null" json:"author_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Description string     `gorm:"size:1024;not null" json:"description"`
	Photo       Image      `gorm:"embedded;embeddedPrefix:photo_" json:"photo"`
	Published   bool       `gorm:"default:false;index" json:"published"`
	CreatedAt   time.Time  `json:"created_at"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
	Author      User       `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Comments    []Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
