package reviews

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelfpress/shelfpress/pkg/models"
)

type handler struct {
	reviewService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListReviewsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	reviews, err := h.reviewService.ListReviews(ctx, ListReviewsOptions{
		Limit:  &params.Limit,
		BookID: params.BookID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Reviews []*models.Review `json:"reviews"`
	}{reviews}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	review, err := h.reviewService.RetrieveReview(ctx, RetrieveReviewOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, review))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateReviewPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	review := &models.Review{
		BookID: params.BookID,
		Title:  params.Title,
		Body:   params.Body,
		Rating: params.Rating,
	}
	if params.Author != nil {
		review.Author = *params.Author
	}

	if err := h.reviewService.CreateReview(ctx, review); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, review))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	// Bind params.
	params := UpdateReviewPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Fetch the review.
	review, err := h.reviewService.RetrieveReview(ctx, RetrieveReviewOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateReviewOptions{Columns: []string{}}

	if params.BookID != nil {
		review.BookID = params.BookID
		if *params.BookID == "" {
			review.BookID = nil
		}
		opts.Columns = append(opts.Columns, "book_id")
	}
	if params.Title != nil && *params.Title != review.Title {
		review.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.Body != nil && *params.Body != review.Body {
		review.Body = *params.Body
		opts.Columns = append(opts.Columns, "body")
	}
	if params.Author != nil && *params.Author != review.Author {
		review.Author = *params.Author
		opts.Columns = append(opts.Columns, "author")
	}
	if params.Rating != nil {
		review.Rating = params.Rating
		opts.Columns = append(opts.Columns, "rating")
	}

	// Update the model.
	if err := h.reviewService.UpdateReview(ctx, review, opts); err != nil {
		return errors.WithStack(err)
	}

	// Reload the model.
	review, err = h.reviewService.RetrieveReview(ctx, RetrieveReviewOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, review))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := h.reviewService.DeleteReview(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
