package handlers

import (
	"net/http"

	"grabyourtickets/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateBooking - POST /api/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.bookings.Create(c.Request.Context(), identity(c), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListMyBookings - GET /api/bookings/my
func (h *Handlers) ListMyBookings(c *gin.Context) {
	bookings, err := h.bookings.ListMine(c.Request.Context(), identity(c))
	if err != nil {
		h.handleServiceError(c, err, "Failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	booking, err := h.bookings.Get(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err, "Failed to get booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

// CancelBooking - DELETE /api/bookings/:id
func (h *Handlers) CancelBooking(c *gin.Context) {
	booking, err := h.bookings.Cancel(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err, "Failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "booking": booking})
}

// ListAllBookings - GET /api/bookings/all
func (h *Handlers) ListAllBookings(c *gin.Context) {
	bookings, err := h.bookings.ListAll(c.Request.Context(), identity(c))
	if err != nil {
		h.handleServiceError(c, err, "Failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// SearchBookings - GET /api/bookings/search?q=&userId=&showId=&status=&size=
func (h *Handlers) SearchBookings(c *gin.Context) {
	var filter models.BookingSearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	bookings, err := h.bookings.Search(c.Request.Context(), identity(c), filter)
	if err != nil {
		h.handleServiceError(c, err, "Failed to search bookings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// DeleteBooking - DELETE /api/bookings/admin/:id
func (h *Handlers) DeleteBooking(c *gin.Context) {
	h.deleteBooking(c, false)
}

// ForceDeleteBooking - DELETE /api/bookings/admin/force/:id
func (h *Handlers) ForceDeleteBooking(c *gin.Context) {
	h.deleteBooking(c, true)
}

func (h *Handlers) deleteBooking(c *gin.Context, force bool) {
	if err := h.bookings.Delete(c.Request.Context(), identity(c), c.Param("id"), force); err != nil {
		h.handleServiceError(c, err, "Failed to delete booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}
