package api

import (
	"net/http"

	"github.com/Domenick1991/coursedesk/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	service checkout.CheckoutUseCase
}

type beginCheckoutRequest struct {
	PackageID string `json:"package_id" binding:"required"`
}

func NewCheckoutHandler(service checkout.CheckoutUseCase) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) Register(router gin.IRouter) {
	router.POST("", h.begin)
	router.GET("/:id", h.get)
	router.POST("/:id/retry", h.retry)
	router.POST("/:id/approve", h.approve)
	router.DELETE("/:id", h.abandon)
}

func (h *CheckoutHandler) begin(c *gin.Context) {
	var req beginCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "package_id is required"})
		return
	}

	out, err := h.service.Begin(c.Request.Context(), req.PackageID)
	if err != nil {
		h.fail(c, out, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *CheckoutHandler) get(c *gin.Context) {
	out, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) retry(c *gin.Context) {
	out, err := h.service.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, out, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) approve(c *gin.Context) {
	out, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, out, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) abandon(c *gin.Context) {
	out, err := h.service.Abandon(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, out, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// fail reports err together with the checkout state it left behind, when
// there is one.
func (h *CheckoutHandler) fail(c *gin.Context, out checkout.Checkout, err error) {
	status, body := describeError(err)
	if out.State == "" {
		c.JSON(status, body)
		return
	}
	c.JSON(status, gin.H{"error": body.Error, "kind": body.Kind, "checkout": out})
}
