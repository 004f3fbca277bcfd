package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"grabyourtickets/internal/cache"
	"grabyourtickets/internal/logger"
	"grabyourtickets/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// GenerateSeats - POST /api/seats
func (h *Handlers) GenerateSeats(c *gin.Context) {
	var req models.GenerateSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.seats.GenerateLayout(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to generate seat layout")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListSeats - GET /api/seats?cinemaId=&showId=
func (h *Handlers) ListSeats(c *gin.Context) {
	filter := models.SeatFilter{
		CinemaID: c.Query("cinemaId"),
		ShowID:   c.Query("showId"),
	}

	seats, err := h.seats.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list seats")
		return
	}

	c.JSON(http.StatusOK, models.ListSeatsResponse{Success: true, TotalSeats: len(seats), Seats: seats})
}

// ListHallSeats - GET /api/seats/cinema/:cinemaId?showId=&hallName=
// Served from the seat cache when it is available.
func (h *Handlers) ListHallSeats(c *gin.Context) {
	scope := models.HallScope{
		CinemaID: c.Param("cinemaId"),
		ShowID:   c.Query("showId"),
		HallName: c.Query("hallName"),
	}
	ctx := c.Request.Context()
	log := logger.WithContext(ctx)

	cacheable := h.cache != nil && scope.CinemaID != "" && scope.ShowID != "" && scope.HallName != ""
	var generation int64
	if cacheable {
		raw, gen, err := h.cache.GetHallSeatsRaw(ctx, scope.CinemaID, scope.ShowID, scope.HallName)
		if err == nil {
			log.Debug("Cache hit for hall seats", "show_id", scope.ShowID, "hall_name", scope.HallName)
			c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
			return
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn("Seat cache unavailable", "show_id", scope.ShowID, "error", err)
			cacheable = false
		}
		// Read before loading the seats, so a booking in between voids the fill.
		generation = gen
		log.Debug("Cache miss for hall seats", "show_id", scope.ShowID, "hall_name", scope.HallName, "generation", gen)
	}

	seats, err := h.seats.ListByHall(ctx, scope)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list hall seats")
		return
	}

	resp := models.ListSeatsResponse{Success: true, TotalSeats: len(seats), Seats: seats}
	if cacheable {
		if err := h.cache.SetHallSeats(ctx, generation, scope.CinemaID, scope.ShowID, scope.HallName, resp); err != nil {
			log.Warn("Failed to cache hall seats", "show_id", scope.ShowID, "error", err)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetSeat - GET /api/seats/:seatId
func (h *Handlers) GetSeat(c *gin.Context) {
	seat, err := h.seats.Get(c.Request.Context(), c.Param("seatId"))
	if err != nil {
		h.handleServiceError(c, err, "Failed to get seat")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "seat": seat})
}

// RecommendSeats - GET /api/seats/recommend?cinemaId=&showId=&hallName=&count=&mode=
func (h *Handlers) RecommendSeats(c *gin.Context) {
	scope := models.HallScope{
		CinemaID: c.Query("cinemaId"),
		ShowID:   c.Query("showId"),
		HallName: c.Query("hallName"),
	}

	// An unparsable count falls back to the default group size.
	count, _ := strconv.Atoi(c.Query("count"))

	groups, err := h.seats.Recommend(c.Request.Context(), scope, count, c.Query("mode"))
	if err != nil {
		h.handleServiceError(c, err, "Failed to recommend seats")
		return
	}

	c.JSON(http.StatusOK, models.RecommendResponse{Success: true, RecommendedGroups: groups})
}

// UpdateSeat - PUT /api/seats/edit
func (h *Handlers) UpdateSeat(c *gin.Context) {
	var req models.UpdateSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	seat, err := h.seats.Update(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update seat")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "seat": seat})
}

// DeleteHallSeats - DELETE /api/seats
// The scope is read from a JSON body or from the query string.
func (h *Handlers) DeleteHallSeats(c *gin.Context) {
	var req models.DeleteSeatsRequest
	var err error
	if c.ContentType() == binding.MIMEJSON {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		bindError(c, err)
		return
	}

	deleted, err := h.seats.DeleteByHall(c.Request.Context(), models.HallScope{
		CinemaID: req.CinemaID,
		ShowID:   req.ShowID,
		HallName: req.HallName,
	})
	if err != nil {
		h.handleServiceError(c, err, "Failed to delete seats")
		return
	}

	c.JSON(http.StatusOK, models.DeleteSeatsResponse{
		Success:      true,
		DeletedCount: deleted,
		Message:      strconv.FormatInt(deleted, 10) + " seats deleted",
	})
}
