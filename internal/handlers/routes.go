package handlers

import (
	"grabyourtickets/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Routes mounts the API on api. authenticate resolves the caller identity
// and must reject anonymous requests.
func (h *Handlers) Routes(api *gin.RouterGroup, authenticate gin.HandlerFunc) {
	admin := middleware.RequireAdmin()

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	cinemas := api.Group("/cinemas")
	{
		cinemas.GET("", h.ListCinemas)
		cinemas.GET("/:id", h.GetCinema)
		cinemas.POST("", authenticate, admin, h.CreateCinema)
	}

	movies := api.Group("/movies")
	{
		movies.GET("", h.ListMovies)
		movies.GET("/:id", h.GetMovie)
		movies.POST("", authenticate, admin, h.CreateMovie)
	}

	shows := api.Group("/shows")
	{
		shows.GET("", h.ListShows)
		shows.GET("/:id", h.GetShow)
		shows.POST("", authenticate, admin, h.CreateShow)
	}

	seats := api.Group("/seats")
	{
		seats.GET("", h.ListSeats)
		seats.GET("/recommend", h.RecommendSeats)
		seats.GET("/cinema/:cinemaId", h.ListHallSeats)
		seats.GET("/:seatId", h.GetSeat)
		seats.POST("", authenticate, admin, h.GenerateSeats)
		seats.PUT("/edit", authenticate, admin, h.UpdateSeat)
		seats.DELETE("", authenticate, admin, h.DeleteHallSeats)
	}

	bookings := api.Group("/bookings", authenticate)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/my", h.ListMyBookings)
		bookings.GET("/all", admin, h.ListAllBookings)
		bookings.GET("/search", admin, h.SearchBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.DELETE("/:id", h.CancelBooking)
		bookings.DELETE("/admin/:id", admin, h.DeleteBooking)
		bookings.DELETE("/admin/force/:id", admin, h.ForceDeleteBooking)
	}
}
