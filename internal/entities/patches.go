package entities

import "time"

// Patches describe partial updates. Nil fields are left untouched; Columns
// returns only the fields that were set, keyed by column name.

type AuthorPatch struct {
	Name *string
}

func (p AuthorPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	return cols
}

type BookPatch struct {
	Title         *string
	AuthorID      *uint
	Genre         *Genre
	PublishedYear *int
}

func (p BookPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.AuthorID != nil {
		cols["author_id"] = *p.AuthorID
	}
	if p.Genre != nil {
		cols["genre"] = *p.Genre
	}
	if p.PublishedYear != nil {
		cols["published_year"] = *p.PublishedYear
	}
	return cols
}

type UserPatch struct {
	Email        *string
	PasswordHash *string
	IsActive     *bool
	LastLogin    *time.Time
}

func (p UserPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.PasswordHash != nil {
		cols["password_hash"] = *p.PasswordHash
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	if p.LastLogin != nil {
		cols["last_login"] = *p.LastLogin
	}
	return cols
}
