package api

import (
	"net/http"

	"github.com/Domenick1991/coursedesk/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router gin.IRouter) {
	router.GET("/slots", h.slots)
	router.POST("", h.submit)
	router.GET("", h.list)
}

func (h *BookingHandler) slots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"slots": h.service.Slots()})
}

func (h *BookingHandler) submit(c *gin.Context) {
	var req booking.SubmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	created, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListMine(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
