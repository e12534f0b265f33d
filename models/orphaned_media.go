package models

import "time"

// OrphanedMedia records media store objects whose deletion failed after the
// owning record was already removed. A background janitor retries these so an
// operator never has to reconcile the media store by hand.
type OrphanedMedia struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StorageKey string    `gorm:"size:255;uniqueIndex;not null" json:"storage_key"`
	LastError  string    `gorm:"size:1024" json:"last_error"`
	Attempts   int       `gorm:"default:0" json:"attempts"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
