package api

import (
	"github.com/Domenick1991/coursedesk/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Session  *SessionHandler
	Auth     *AuthHandler
	Packages *PackageHandler
	Checkout *CheckoutHandler
	Bookings *BookingHandler
}

func NewRouter(h Handlers, limits config.RateLimitConfig, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	h.Session.Register(router)
	h.Auth.Register(router.Group("/auth"), RateLimit(limits.AuthPerMinute, limits.Burst, logger))
	h.Packages.Register(router.Group("/packages"))
	h.Checkout.Register(router.Group("/checkout"))
	h.Bookings.Register(router.Group("/bookings"))
	return router
}
