package model

import "time"

// Book is a catalog record. Books referenced by loans are deactivated
// rather than deleted so historical loans keep a valid reference.
type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	ISBN        string    `json:"isbn"`
	Publisher   string    `json:"publisher,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Pages       int       `json:"pages,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}
