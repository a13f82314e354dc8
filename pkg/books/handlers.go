package books

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfpress/shelfpress/pkg/covers"
	"github.com/shelfpress/shelfpress/pkg/errcodes"
	"github.com/shelfpress/shelfpress/pkg/models"
)

type handler struct {
	bookService  *Service
	coverService *covers.Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, err := h.bookService.ListBooks(ctx, ListBooksOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*models.Book `json:"books"`
	}{books}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Store the attachment before touching any rows, so a rejected file
	// never leaves a half-created book behind.
	coverURL, err := h.storeCover(params.FormFiles)
	if err != nil {
		return err
	}

	book := &models.Book{
		Title:      params.Title,
		Author:     params.Author,
		ISBN:       params.ISBN,
		CoverURL:   coverURL,
		Tags:       params.Tags,
		Notes:      params.Notes,
		Rating:     params.Rating,
		StartedAt:  params.StartedAt,
		FinishedAt: params.FinishedAt,
	}

	var review *models.Review
	if params.Review != nil {
		review = &models.Review{
			Title: params.Review.Title,
			Body:  params.Review.Body,
		}
		if params.Review.Author != nil {
			review.Author = *params.Review.Author
		}
		review.Rating = params.Review.Rating
	}

	if err := h.bookService.CreateBook(ctx, book, review); err != nil {
		// The row never landed; reclaim the stored attachment.
		h.removeCover(c, coverURL)
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	// Bind params.
	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Fetch the book.
	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	coverURL, err := h.storeCover(params.FormFiles)
	if err != nil {
		return err
	}

	// Keep track of what's been changed.
	opts := UpdateBookOptions{Columns: []string{}}
	previousCover := book.CoverURL

	if params.Title != nil && *params.Title != book.Title {
		book.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.Author != nil && *params.Author != book.Author {
		book.Author = *params.Author
		opts.Columns = append(opts.Columns, "author")
	}
	if params.ISBN != nil {
		book.ISBN = params.ISBN
		if *params.ISBN == "" {
			book.ISBN = nil
		}
		opts.Columns = append(opts.Columns, "isbn")
	}
	if params.Tags != nil {
		book.Tags = params.Tags
		opts.Columns = append(opts.Columns, "tags")
	}
	if params.Notes != nil {
		book.Notes = params.Notes
		opts.Columns = append(opts.Columns, "notes")
	}
	if params.Rating != nil {
		book.Rating = params.Rating
		opts.Columns = append(opts.Columns, "rating")
	}
	if params.StartedAt != nil {
		book.StartedAt = params.StartedAt
		opts.Columns = append(opts.Columns, "started_at")
	}
	if params.FinishedAt != nil {
		book.FinishedAt = params.FinishedAt
		opts.Columns = append(opts.Columns, "finished_at")
	}
	if coverURL != nil {
		book.CoverURL = coverURL
		opts.Columns = append(opts.Columns, "cover_url")
	}

	// Update the model.
	if err := h.bookService.UpdateBook(ctx, book, opts); err != nil {
		h.removeCover(c, coverURL)
		return errors.WithStack(err)
	}

	// The new cover is durable; the replaced one can go.
	if coverURL != nil && previousCover != nil {
		h.removeCover(c, previousCover)
	}

	// Reload the model.
	book, err = h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.bookService.DeleteBook(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	h.removeCover(c, book.CoverURL)

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) uploadCover(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	params := UploadCoverPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	fh, ok := params.FormFiles[CoverFormFileKey]
	if !ok {
		return errcodes.ValidationError(`"cover" file is required`)
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	coverURL, err := h.coverService.Store(fh)
	if err != nil {
		return err
	}

	previousCover := book.CoverURL
	book.CoverURL = &coverURL

	err = h.bookService.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"cover_url"}})
	if err != nil {
		h.removeCover(c, &coverURL)
		return errors.WithStack(err)
	}

	if previousCover != nil {
		h.removeCover(c, previousCover)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

// storeCover stores a bound cover attachment, if any, and returns its URL.
func (h *handler) storeCover(files map[string]*multipart.FileHeader) (*string, error) {
	fh, ok := files[CoverFormFileKey]
	if !ok {
		return nil, nil
	}

	coverURL, err := h.coverService.Store(fh)
	if err != nil {
		return nil, err
	}

	return &coverURL, nil
}

// removeCover reclaims a stored cover, logging rather than failing the
// request when the file is already gone.
func (h *handler) removeCover(c echo.Context, coverURL *string) {
	if coverURL == nil {
		return
	}
	if err := h.coverService.Remove(*coverURL); err != nil {
		logger.FromContext(c.Request().Context()).Err(err).Warn("failed to remove cover file")
	}
}
