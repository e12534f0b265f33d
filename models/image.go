package models

// Image describes a stored image attached to a user or post. Default images
// are shared placeholders that carry no storage key and are never deleted
// from the media store.
type Image struct {
	IsDefault    bool   `gorm:"default:true" json:"is_default"`
	StorageKey   string `gorm:"size:255" json:"-"`
	OriginalName string `gorm:"size:255" json:"original_name"`
	URL          string `gorm:"size:1024" json:"url"`
}
