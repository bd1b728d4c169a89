package model

import "time"

// Category classifies a title (book, film, music). Keyed by slug in the API.
type Category struct {
	ID        int64     `json:"-"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"-"`
}

// Genre is attached to titles many-to-many. Keyed by slug in the API.
type Genre struct {
	ID        int64     `json:"-"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"-"`
}

// Title is a reviewable work. Rating is never stored; it is the mean of
// review scores computed at query time and is nil when no reviews exist.
type Title struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Year        int64     `json:"year"`
	Description string    `json:"description"`
	Rating      *float64  `json:"rating"`
	Category    *Category `json:"category"`
	Genres      []Genre   `json:"genre"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Review is a scored write-up of a title, at most one per (author, title).
type Review struct {
	ID       int64     `json:"id"`
	TitleID  int64     `json:"-"`
	Author   string    `json:"author"`
	AuthorID int64     `json:"-"`
	Text     string    `json:"text"`
	Score    int64     `json:"score"`
	PubDate  time.Time `json:"pub_date"`
}

// Comment belongs to a review.
type Comment struct {
	ID       int64     `json:"id"`
	ReviewID int64     `json:"-"`
	Author   string    `json:"author"`
	AuthorID int64     `json:"-"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}
