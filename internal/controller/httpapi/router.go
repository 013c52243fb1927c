// Package httpapi REST-интерфейс сервиса обмена слотами на gin.
package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/slotswap/internal/ratelimit"
	"github.com/Freeeeeet/slotswap/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps зависимости HTTP-слоя
type Deps struct {
	Slots   *service.SlotService
	Swaps   *service.SwapService
	Users   *service.UserService
	Auth    *Authenticator
	Limiter ratelimit.Limiter
	Logger  *zap.Logger
}

type handler struct {
	slots  *service.SlotService
	swaps  *service.SwapService
	logger *zap.Logger
}

// NewRouter собирает gin.Engine со всеми маршрутами
func NewRouter(d Deps) *gin.Engine {
	limiter := d.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	r := gin.New()
	r.Use(recovery(d.Logger), accessLog(d.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	h := &handler{slots: d.Slots, swaps: d.Swaps, logger: d.Logger}

	api := r.Group("/api", d.Auth.Middleware(), rateLimit(limiter, d.Logger))

	events := api.Group("/events")
	events.GET("", h.listEvents)
	events.POST("", h.createEvent)
	events.DELETE("/:id", h.deleteEvent)
	events.PATCH("/:id/status", h.toggleEvent)

	swaps := api.Group("/swaps")
	swaps.GET("/swappable-slots", h.swappableSlots)
	swaps.POST("/request", h.createSwapRequest)
	swaps.POST("/response/:id", h.respondSwapRequest)
	swaps.GET("/requests", h.listSwapRequests)
	swaps.GET("/history", h.swapHistory)

	return r
}
