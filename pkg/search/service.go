package search

import (
	"context"
	"strings"

	"github.com/shelfpress/shelfpress/pkg/database"
	"github.com/shelfpress/shelfpress/pkg/models"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// SearchBooks returns books whose title, author, or notes contain the query,
// case-insensitively. The pattern is applied through LOWER(...) LIKE so the
// same query runs on Postgres and the SQLite test database.
func (svc *Service) SearchBooks(ctx context.Context, query string) ([]*models.Book, error) {
	books := []*models.Book{}

	pattern := "%" + strings.ToLower(likeEscape(query)) + "%"

	err := svc.db.
		NewSelect().
		Model(&books).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(`LOWER(b.title) LIKE ? ESCAPE '\'`, pattern).
				WhereOr(`LOWER(b.author) LIKE ? ESCAPE '\'`, pattern).
				WhereOr(`LOWER(b.notes) LIKE ? ESCAPE '\'`, pattern)
		}).
		Order("b.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, database.WrapError(err)
	}

	for _, book := range books {
		if book.Reviews == nil {
			book.Reviews = []*models.Review{}
		}
	}

	return books, nil
}

// likeEscape neutralizes LIKE metacharacters so user input matches literally.
func likeEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
