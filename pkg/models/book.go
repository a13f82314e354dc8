package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID         string     `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Title      string     `bun:",nullzero" json:"title"`
	Author     string     `bun:",nullzero" json:"author"`
	ISBN       *string    `bun:"isbn" json:"isbn"`
	CoverURL   *string    `bun:"cover_url" json:"cover_url"`
	Tags       []string   `bun:"tags" json:"tags"`
	Notes      *string    `json:"notes"`
	Rating     *int       `json:"rating"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`

	Reviews []*Review `bun:"rel:has-many,join:id=book_id" json:"reviews"`
}
