package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcSanitizer   = bluemonday.UGCPolicy()
	plainSanitizer = bluemonday.StrictPolicy()
)

// Sanitize cleans rich HTML content, keeping user-generated formatting while
// stripping active markup.
func Sanitize(input string) string {
	return ugcSanitizer.Sanitize(input)
}

// SanitizePlain strips all markup from fields that must be plain text, such
// as titles, names and descriptions.
func SanitizePlain(input string) string {
	return plainSanitizer.Sanitize(input)
}
