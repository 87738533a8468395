package entities

import (
	"strings"
	"time"
)

type Genre string

const (
	GenreFiction    Genre = "Fiction"
	GenreNonFiction Genre = "Non-Fiction"
	GenreScience    Genre = "Science"
	GenreHistory    Genre = "History"
)

// Genres lists every genre the catalog accepts, in display order.
var Genres = []Genre{GenreFiction, GenreNonFiction, GenreScience, GenreHistory}

// ParseGenre maps a raw value onto its canonical spelling, ignoring case and
// surrounding whitespace. The second return value is false for unknown genres.
func ParseGenre(raw string) (Genre, bool) {
	value := strings.TrimSpace(raw)
	for _, g := range Genres {
		if strings.EqualFold(string(g), value) {
			return g, true
		}
	}
	return "", false
}

// MinPublishedYear is the earliest publication year accepted for a book.
const MinPublishedYear = 1800

type Author struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:255;not null" json:"name"`
}

type Book struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Title         string  `gorm:"index;size:255;not null" json:"title"`
	AuthorID      uint    `gorm:"index;not null" json:"author_id"`
	Author        *Author `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Genre         Genre   `gorm:"size:32;not null" json:"genre"`
	PublishedYear int     `gorm:"not null" json:"published_year"`

	// AuthorName is filled from the authors table when a book is read through
	// the join view. It is never written.
	AuthorName string `gorm:"->;-:migration" json:"author_name"`
}

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
