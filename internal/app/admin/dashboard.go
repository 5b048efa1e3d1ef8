package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kitchen-admin/internal/analytics"
	"kitchen-admin/internal/domain"
	"kitchen-admin/internal/genai"
)

const salesWindowDays = 7

// recentOrders is the shared input for the dashboard aggregations: the
// live active set plus the recent completed history.
func (h *Handlers) recentOrders(c *gin.Context) ([]domain.Order, []domain.Order, bool) {
	since := time.Now().UTC().AddDate(0, 0, -salesWindowDays)
	completed, err := h.orders.ListCompleted(c.Request.Context(), since)
	if err != nil {
		problem(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return nil, nil, false
	}
	return h.mgr.ListActive(), completed, true
}

func (h *Handlers) dashboardSummary(c *gin.Context) {
	active, completed, ok := h.recentOrders(c)
	if !ok {
		return
	}
	now := time.Now().UTC()

	revenue, skipped := analytics.RevenueTotal(completed, domain.StatusCompleted, nil)
	if skipped > 0 {
		h.log.Warn("orders with missing totals excluded from revenue", "count", skipped)
	}

	all := append(append([]domain.Order{}, active...), completed...)
	todays := analytics.CountByDay(all, 1, now)

	topItem := ""
	if top := analytics.TopItemsBySales(analytics.LineItems(all), 1); len(top) > 0 {
		topItem = top[0].Name
	}

	c.JSON(http.StatusOK, gin.H{
		"revenue":       revenue.StringFixed(2),
		"window_days":   salesWindowDays,
		"todays_orders": todays[len(todays)-1].Count,
		"top_item":      topItem,
		"badge_count":   h.mgr.ActiveCount(),
	})
}

func (h *Handlers) dashboardSales(c *gin.Context) {
	_, completed, ok := h.recentOrders(c)
	if !ok {
		return
	}
	days := analytics.SalesByDay(completed, salesWindowDays, time.Now().UTC())
	out := make([]gin.H, 0, len(days))
	for _, d := range days {
		out = append(out, gin.H{"date": d.Day.Format("2006-01-02"), "sales": d.Sales.StringFixed(2)})
	}
	c.JSON(http.StatusOK, gin.H{"daily": out})
}

func (h *Handlers) dashboardPopular(c *gin.Context) {
	active, completed, ok := h.recentOrders(c)
	if !ok {
		return
	}
	all := append(append([]domain.Order{}, active...), completed...)
	top := analytics.TopItemsBySales(analytics.LineItems(all), 5)
	out := make([]gin.H, 0, len(top))
	for _, t := range top {
		out = append(out, gin.H{"name": t.Name, "quantity": t.Quantity})
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *Handlers) dashboardRecommendations(c *gin.Context) {
	active, completed, ok := h.recentOrders(c)
	if !ok {
		return
	}
	all := append(append([]domain.Order{}, active...), completed...)
	top := analytics.TopItemsBySales(analytics.LineItems(all), 5)
	sellers := make([]genai.TopSeller, 0, len(top))
	for _, t := range top {
		sellers = append(sellers, genai.TopSeller{Name: t.Name, Quantity: t.Quantity})
	}

	recs, err := h.ai.RecommendItems(c.Request.Context(), sellers)
	if err != nil {
		problem(c, http.StatusBadGateway, "generation_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}
