package reviews

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

// DefaultListLimit caps how many reviews the public list returns.
const DefaultListLimit = 20

type RetrieveReviewOptions struct {
	ID *string
}

type ListReviewsOptions struct {
	Limit  *int
	BookID *string
}

type UpdateReviewOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateReview inserts a review. A non-nil book reference must resolve to an
// existing book at write time.
func (svc *Service) CreateReview(ctx context.Context, review *models.Review) error {
	if err := validateReview(review); err != nil {
		return err
	}

	if review.BookID != nil {
		if err := svc.checkBookExists(ctx, *review.BookID); err != nil {
			return err
		}
	}

	now := time.Now()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	review.UpdatedAt = review.CreatedAt

	if review.ID == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return errors.WithStack(err)
		}
		review.ID = id.String()
	}

	if review.Author == "" {
		review.Author = models.ReviewAuthorPlaceholder
	}

	_, err := svc.db.
		NewInsert().
		Model(review).
		Exec(ctx)
	if err != nil {
		return database.WrapError(err)
	}

	return nil
}

// RetrieveReview loads a single review with its parent book, if any.
func (svc *Service) RetrieveReview(ctx context.Context, opts RetrieveReviewOptions) (*models.Review, error) {
	review := &models.Review{}

	q := svc.db.
		NewSelect().
		Model(review).
		Relation("Book", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Column("id", "title", "author")
		})

	if opts.ID != nil {
		q = q.Where("r.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Review")
		}
		return nil, database.WrapError(err)
	}

	return review, nil
}

// ListReviews returns reviews newest first, each carrying a lightweight
// projection of its parent book.
func (svc *Service) ListReviews(ctx context.Context, opts ListReviewsOptions) ([]*models.Review, error) {
	reviews := []*models.Review{}

	limit := DefaultListLimit
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	q := svc.db.
		NewSelect().
		Model(&reviews).
		Relation("Book", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Column("id", "title", "author")
		}).
		Order("r.created_at DESC").
		Limit(limit)

	if opts.BookID != nil {
		q = q.Where("r.book_id = ?", *opts.BookID)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, database.WrapError(err)
	}

	return reviews, nil
}

// UpdateReview persists the given columns and refreshes updated_at.
func (svc *Service) UpdateReview(ctx context.Context, review *models.Review, opts UpdateReviewOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	if err := validateReview(review); err != nil {
		return err
	}

	if review.BookID != nil {
		if err := svc.checkBookExists(ctx, *review.BookID); err != nil {
			return err
		}
	}

	review.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	res, err := svc.db.
		NewUpdate().
		Model(review).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return database.WrapError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return errcodes.NotFound("Review")
	}

	return nil
}

// DeleteReview removes a review.
func (svc *Service) DeleteReview(ctx context.Context, id string) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Review)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return database.WrapError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return errcodes.NotFound("Review")
	}

	return nil
}

func (svc *Service) checkBookExists(ctx context.Context, bookID string) error {
	exists, err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		Where("id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return database.WrapError(err)
	}
	if !exists {
		return errcodes.ValidationError(`"book_id" must reference an existing book`)
	}
	return nil
}

func validateReview(review *models.Review) error {
	if review.Title == "" {
		return errcodes.ValidationError(`"title" is required`)
	}
	if review.Body == "" {
		return errcodes.ValidationError(`"body" is required`)
	}
	if review.Rating != nil && (*review.Rating < 1 || *review.Rating > 5) {
		return errcodes.ValidationError(`"rating" must be between 1 and 5`)
	}
	return nil
}
