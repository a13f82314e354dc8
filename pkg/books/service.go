package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shelfpress/shelfpress/pkg/database"
	"github.com/shelfpress/shelfpress/pkg/errcodes"
	"github.com/shelfpress/shelfpress/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID   *string
	ISBN *string
}

type ListBooksOptions struct {
	Limit  *int
	Offset *int
}

type UpdateBookOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateBook inserts a book, assigning its id and timestamps. When review is
// non-nil it is created in the same transaction, so either both rows persist
// or neither does.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book, review *models.Review) error {
	if err := validateBook(book); err != nil {
		return err
	}

	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	if book.ID == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return errors.WithStack(err)
		}
		book.ID = id.String()
	}

	if book.Tags == nil {
		book.Tags = []string{}
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(book).
			Exec(ctx)
		if err != nil {
			return err
		}

		if review != nil {
			if review.ID == "" {
				id, err := uuid.NewRandom()
				if err != nil {
					return errors.WithStack(err)
				}
				review.ID = id.String()
			}
			review.BookID = &book.ID
			if review.Author == "" {
				review.Author = models.ReviewAuthorPlaceholder
			}
			review.CreatedAt = book.CreatedAt
			review.UpdatedAt = book.UpdatedAt

			_, err := tx.
				NewInsert().
				Model(review).
				Exec(ctx)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.Conflict("A book with this ISBN already exists.")
		}
		return database.WrapError(err)
	}

	book.Reviews = []*models.Review{}
	if review != nil {
		book.Reviews = append(book.Reviews, review)
	}

	return nil
}

// RetrieveBook loads a single book with its reviews, newest first.
func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Reviews", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("created_at DESC")
		})

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.ISBN != nil {
		q = q.Where("b.isbn = ?", *opts.ISBN)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, database.WrapError(err)
	}

	// A book without reviews serializes with an empty list, not null.
	if book.Reviews == nil {
		book.Reviews = []*models.Review{}
	}

	return book, nil
}

// ListBooks returns books newest first. Each book carries only a lightweight
// projection of its reviews (ids) rather than their full bodies.
func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Reviews", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Column("id", "book_id").Order("created_at DESC")
		}).
		Order("b.created_at DESC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	err := q.Scan(ctx)
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

// UpdateBook persists the given columns and refreshes updated_at.
func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	if err := validateBook(book); err != nil {
		return err
	}

	book.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	res, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.Conflict("A book with this ISBN already exists.")
		}
		return database.WrapError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return errcodes.NotFound("Book")
	}

	return nil
}

// DeleteBook removes a book. Dependent reviews are kept with their book
// reference cleared, matching the schema's ON DELETE SET NULL.
func (svc *Service) DeleteBook(ctx context.Context, id string) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Clear references explicitly rather than leaning on the FK action,
		// which SQLite only honors with foreign_keys enabled.
		_, err := tx.
			NewUpdate().
			Model((*models.Review)(nil)).
			Set("book_id = NULL").
			Where("book_id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}

		res, err := tx.
			NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}
		if affected == 0 {
			return errcodes.NotFound("Book")
		}

		return nil
	})
	if err != nil {
		var e *errcodes.Error
		if errors.As(err, &e) {
			return err
		}
		return database.WrapError(err)
	}

	return nil
}

// validateBook enforces the invariants the store does not: required
// title/author and the rating domain.
func validateBook(book *models.Book) error {
	if book.Title == "" {
		return errcodes.ValidationError(`"title" is required`)
	}
	if book.Author == "" {
		return errcodes.ValidationError(`"author" is required`)
	}
	if book.Rating != nil && (*book.Rating < 1 || *book.Rating > 5) {
		return errcodes.ValidationError(`"rating" must be between 1 and 5`)
	}
	return nil
}
