package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tirudev/bookstack/internal/database/genres"
)

// GenresController handles genre lookups and administration.
type GenresController struct {
	genres *genres.Repository
}

// NewGenresController creates a new genres controller.
func NewGenresController(genresRepo *genres.Repository) *GenresController {
	return &GenresController{genres: genresRepo}
}

// ListGenres returns all genres ordered by name.
func (gc *GenresController) ListGenres(c *gin.Context) {
	list, err := gc.genres.GetAll()
	if err != nil {
		respondInternalError(c, err, "list genres")
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": list, "count": len(list)})
}

type genreRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateGenre adds a new genre.
func (gc *GenresController) CreateGenre(c *gin.Context) {
	var req genreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	genre, err := gc.genres.Create(req.Name)
	if err != nil {
		if errors.Is(err, genres.ErrExists) {
			respondConflict(c, "genre already exists")
		} else {
			respondInternalError(c, err, "create genre")
		}
		return
	}

	respondCreated(c, genre)
}

// RenameGenre changes a genre's name.
func (gc *GenresController) RenameGenre(c *gin.Context) {
	genreID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req genreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	genre, err := gc.genres.Rename(genreID, req.Name)
	if err != nil {
		if errors.Is(err, genres.ErrNotFound) {
			respondNotFound(c, "genre")
		} else {
			respondInternalError(c, err, "rename genre")
		}
		return
	}

	c.JSON(http.StatusOK, genre)
}

// DeleteGenre removes a genre.
func (gc *GenresController) DeleteGenre(c *gin.Context) {
	genreID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := gc.genres.Delete(genreID); err != nil {
		if errors.Is(err, genres.ErrNotFound) {
			respondNotFound(c, "genre")
		} else {
			respondInternalError(c, err, "delete genre")
		}
		return
	}

	respondSuccess(c, "genre deleted")
}
