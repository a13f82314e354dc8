package search

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelfpress/shelfpress/pkg/errcodes"
	"github.com/shelfpress/shelfpress/pkg/models"
)

type handler struct {
	searchService *Service
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := SearchQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if strings.TrimSpace(params.Query) == "" {
		return errcodes.MissingParameter("q")
	}

	books, err := h.searchService.SearchBooks(ctx, params.Query)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*models.Book `json:"books"`
	}{books}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
