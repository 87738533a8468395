package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlexTsikhun/book-management-system/internal/services"
)

type AuthorsController struct {
	authors AuthorUseCases
}

func NewAuthorsController(authors AuthorUseCases) *AuthorsController {
	return &AuthorsController{authors: authors}
}

// List handles GET /api/v1/authors?page=&per_page=&sort_by=
func (ac *AuthorsController) List(c *gin.Context) {
	page, ok := parseIntQuery(c, "page")
	if !ok {
		return
	}
	perPage, ok := parseIntQuery(c, "per_page")
	if !ok {
		return
	}

	result, err := ac.authors.ListAuthors(c.Request.Context(), services.PageRequest{
		Page: page, PerPage: perPage, Sort: c.Query("sort_by"),
	})
	if err != nil {
		respondError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get handles GET /api/v1/authors/:id
func (ac *AuthorsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := ac.authors.RetrieveAuthor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "retrieve author")
		return
	}
	c.JSON(http.StatusOK, author)
}
