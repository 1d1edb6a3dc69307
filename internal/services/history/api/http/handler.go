// Package http serves the booking history read surface.
package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hotelio/bookings/internal/services/history/storage"
)

// LivenessMessage is the body of GET /.
const LivenessMessage = "Booking History Service is running!"

// RecordResponse is the JSON shape of one history record.
type RecordResponse struct {
	ID               int64   `json:"id"`
	BookingID        string  `json:"bookingId"`
	UserID           string  `json:"userId"`
	HotelID          string  `json:"hotelId"`
	PromoCode        string  `json:"promoCode"`
	DiscountPercent  float64 `json:"discountPercent"`
	Price            float64 `json:"price"`
	CreatedAt        string  `json:"createdAt"`
	EventProcessedAt string  `json:"eventProcessedAt"`
}

// StatsResponse is the JSON shape of GET /api/bookinghistory/stats.
type StatsResponse struct {
	TotalBookings int64   `json:"totalBookings"`
	TotalRevenue  float64 `json:"totalRevenue"`
	AveragePrice  float64 `json:"averagePrice"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves history queries from a store.
type Handler struct {
	store storage.Store
}

// NewHandler builds a handler over store.
func NewHandler(store storage.Store) *Handler {
	return &Handler{store: store}
}

// NewRouter registers every history route on a release-mode gin engine.
func NewRouter(store storage.Store) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(log.Writer()), gin.Recovery())

	h := NewHandler(store)
	router.GET("/", h.Liveness)
	router.GET("/health", h.Health)
	api := router.Group("/api/bookinghistory")
	{
		api.GET("", h.ListRecords)
		api.GET("/user/:userId", h.ListRecordsByUser)
		api.GET("/stats", h.Stats)
	}
	return router
}

func (h *Handler) Liveness(c *gin.Context) {
	c.String(http.StatusOK, LivenessMessage)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// ListRecords returns every record, newest booking first.
func (h *Handler) ListRecords(c *gin.Context) {
	records, err := h.store.ListRecords(c.Request.Context())
	if err != nil {
		h.fail(c, "list booking history", err)
		return
	}
	c.JSON(http.StatusOK, toRecordResponses(records))
}

// ListRecordsByUser returns one user's records, newest booking first.
func (h *Handler) ListRecordsByUser(c *gin.Context) {
	records, err := h.store.ListRecordsByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, "list booking history by user", err)
		return
	}
	c.JSON(http.StatusOK, toRecordResponses(records))
}

// Stats returns booking count, revenue, and average price.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.store.GetStats(c.Request.Context())
	if err != nil {
		h.fail(c, "booking history stats", err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{
		TotalBookings: stats.TotalBookings,
		TotalRevenue:  stats.TotalRevenue.InexactFloat64(),
		AveragePrice:  stats.AveragePrice.Round(2).InexactFloat64(),
	})
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	log.Printf("%s: %v", op, err)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: op + " failed"})
}

func toRecordResponses(records []storage.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, RecordResponse{
			ID:               r.ID,
			BookingID:        r.BookingID,
			UserID:           r.UserID,
			HotelID:          r.HotelID,
			PromoCode:        r.PromoCode,
			DiscountPercent:  r.Discount.InexactFloat64(),
			Price:            r.Price.InexactFloat64(),
			CreatedAt:        r.CreatedAt.UTC().Format(time.RFC3339),
			EventProcessedAt: r.EventProcessedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}
