package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ReviewAuthorPlaceholder is the attribution used when a review is submitted
// without one.
const ReviewAuthorPlaceholder = "Anonymous"

// Review is a standalone piece of writing that may optionally be attached to
// a book. Deleting the book clears the reference rather than deleting the
// review.
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`

	ID        string    `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    *string   `bun:"book_id" json:"book_id"`
	Book      *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Title     string    `bun:",nullzero" json:"title"`
	Body      string    `bun:",nullzero" json:"body"`
	Author    string    `bun:",nullzero" json:"author"`
	Rating    *int      `json:"rating"`
}
