package reviews

type ListReviewsQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"20" validate:"min=1,max=100"`
	BookID *string `query:"book_id" json:"book_id,omitempty"`
}

type CreateReviewPayload struct {
	BookID *string `json:"book_id,omitempty"`
	Title  string  `json:"title" validate:"required,max=300"`
	Body   string  `json:"body" validate:"required"`
	Author *string `json:"author,omitempty" validate:"omitempty,max=200"`
	Rating *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

type UpdateReviewPayload struct {
	BookID *string `json:"book_id,omitempty"`
	Title  *string `json:"title,omitempty" validate:"omitempty,max=300"`
	Body   *string `json:"body,omitempty"`
	Author *string `json:"author,omitempty" validate:"omitempty,max=200"`
	Rating *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}
