package handlers

import (
	"net/http"

	"grabyourtickets/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateCinema - POST /api/cinemas
func (h *Handlers) CreateCinema(c *gin.Context) {
	var req models.CreateCinemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cinema, err := h.catalog.CreateCinema(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create cinema")
		return
	}

	c.JSON(http.StatusCreated, cinema)
}

// ListCinemas - GET /api/cinemas
func (h *Handlers) ListCinemas(c *gin.Context) {
	cinemas, err := h.catalog.ListCinemas(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to list cinemas")
		return
	}

	c.JSON(http.StatusOK, cinemas)
}

// GetCinema - GET /api/cinemas/:id
func (h *Handlers) GetCinema(c *gin.Context) {
	cinema, err := h.catalog.GetCinema(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err, "Failed to get cinema")
		return
	}

	c.JSON(http.StatusOK, cinema)
}

// CreateMovie - POST /api/movies
func (h *Handlers) CreateMovie(c *gin.Context) {
	var req models.CreateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	movie, err := h.catalog.CreateMovie(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create movie")
		return
	}

	c.JSON(http.StatusCreated, movie)
}

// ListMovies - GET /api/movies
func (h *Handlers) ListMovies(c *gin.Context) {
	movies, err := h.catalog.ListMovies(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to list movies")
		return
	}

	c.JSON(http.StatusOK, movies)
}

// GetMovie - GET /api/movies/:id
func (h *Handlers) GetMovie(c *gin.Context) {
	movie, err := h.catalog.GetMovie(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err, "Failed to get movie")
		return
	}

	c.JSON(http.StatusOK, movie)
}

// CreateShow - POST /api/shows
func (h *Handlers) CreateShow(c *gin.Context) {
	var req models.CreateShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	show, err := h.catalog.CreateShow(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create show")
		return
	}

	c.JSON(http.StatusCreated, show)
}

// ListShows - GET /api/shows?cinemaId=
func (h *Handlers) ListShows(c *gin.Context) {
	shows, err := h.catalog.ListShows(c.Request.Context(), c.Query("cinemaId"))
	if err != nil {
		h.handleServiceError(c, err, "Failed to list shows")
		return
	}

	c.JSON(http.StatusOK, shows)
}

// GetShow - GET /api/shows/:id
func (h *Handlers) GetShow(c *gin.Context) {
	show, err := h.catalog.GetShow(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err, "Failed to get show")
		return
	}

	c.JSON(http.StatusOK, show)
}
