package admin

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"kitchen-admin/internal/common/metrics"
	"kitchen-admin/internal/genai"
	"kitchen-admin/internal/lifecycle"
	"kitchen-admin/internal/objstore"
	"kitchen-admin/internal/repository"
)

type Handlers struct {
	mgr     *lifecycle.Manager
	orders  repository.Orders
	menu    repository.Menu
	images  *objstore.Client
	ai      *genai.Client
	metrics *metrics.ServerMetrics
	log     *slog.Logger
}

func (h *Handlers) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), h.observe())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	r.GET("/orders", h.listOrders)
	r.GET("/orders/history", h.orderHistory)
	r.POST("/orders/:id/status", h.transitionOrder)
	r.GET("/orders/:id/notification", h.orderNotification)

	r.GET("/menu", h.listMenu)
	r.POST("/menu", h.createMenuItem)
	r.PUT("/menu/:id", h.updateMenuItem)
	r.DELETE("/menu/:id", h.deleteMenuItem)
	r.PATCH("/menu/:id/availability", h.setAvailability)
	r.POST("/menu/:id/image", h.uploadMenuImage)

	r.GET("/dashboard/summary", h.dashboardSummary)
	r.GET("/dashboard/sales", h.dashboardSales)
	r.GET("/dashboard/popular", h.dashboardPopular)
	r.GET("/dashboard/recommendations", h.dashboardRecommendations)

	return r
}

func (h *Handlers) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		status := c.Writer.Status()
		h.metrics.Requests.WithLabelValues(handler, statusClass(status)).Inc()
		h.metrics.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
		h.log.Debug("request",
			"method", c.Request.Method, "path", c.Request.URL.Path,
			"status", status, "duration_ms", time.Since(start).Milliseconds())
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}

// problem writes the error body used by every handler: a machine-readable
// type plus a human detail.
func problem(c *gin.Context, code int, typ, detail string) {
	c.JSON(code, gin.H{"type": typ, "detail": detail})
}
