package search

type SearchQuery struct {
	Query string `query:"q" json:"q" validate:"omitempty,max=200"`
}
