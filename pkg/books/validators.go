package books

import (
	"mime/multipart"
	"time"
)

// CoverFormFileKey is the multipart field name for cover attachments.
const CoverFormFileKey = "cover"

type ListBooksQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

type CreateBookPayload struct {
	Title      string     `json:"title" form:"title" validate:"required,max=300"`
	Author     string     `json:"author" form:"author" validate:"required,max=200"`
	ISBN       *string    `json:"isbn,omitempty" form:"isbn" validate:"omitempty,max=20"`
	Tags       []string   `json:"tags,omitempty" form:"tags" validate:"omitempty,dive,max=50"`
	Notes      *string    `json:"notes,omitempty" form:"notes"`
	Rating     *int       `json:"rating,omitempty" form:"rating" validate:"omitempty,min=1,max=5"`
	StartedAt  *time.Time `json:"started_at,omitempty" form:"-"`
	FinishedAt *time.Time `json:"finished_at,omitempty" form:"-"`

	// Optional first review, created atomically with the book.
	Review *InlineReviewPayload `json:"review,omitempty" form:"-"`

	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}

type InlineReviewPayload struct {
	Title  string  `json:"title" validate:"required,max=300"`
	Body   string  `json:"body" validate:"required"`
	Author *string `json:"author,omitempty" validate:"omitempty,max=200"`
	Rating *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

type UpdateBookPayload struct {
	Title      *string    `json:"title,omitempty" form:"title" validate:"omitempty,max=300"`
	Author     *string    `json:"author,omitempty" form:"author" validate:"omitempty,max=200"`
	ISBN       *string    `json:"isbn,omitempty" form:"isbn" validate:"omitempty,max=20"`
	Tags       []string   `json:"tags,omitempty" form:"tags" validate:"omitempty,dive,max=50"`
	Notes      *string    `json:"notes,omitempty" form:"notes"`
	Rating     *int       `json:"rating,omitempty" form:"rating" validate:"omitempty,min=1,max=5"`
	StartedAt  *time.Time `json:"started_at,omitempty" form:"-"`
	FinishedAt *time.Time `json:"finished_at,omitempty" form:"-"`

	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}

type UploadCoverPayload struct {
	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}
