package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kitchen-admin/internal/domain"
	"kitchen-admin/internal/genai"
)

func (h *Handlers) listOrders(c *gin.Context) {
	var filter []domain.Status
	if q := c.Query("status"); q != "" {
		st, err := domain.ParseStatus(q)
		if err != nil {
			problem(c, http.StatusBadRequest, "bad_status", err.Error())
			return
		}
		filter = append(filter, st)
	}
	orders := h.mgr.ListActive(filter...)
	out := make([]domain.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, domain.ToOrderResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out, "badge_count": h.mgr.ActiveCount()})
}

// orderHistory is the separate read path for completed orders; it queries
// the store directly and never touches the active-order cache.
func (h *Handlers) orderHistory(c *gin.Context) {
	days := 7
	if q := c.Query("days"); q != "" {
		if d, err := strconv.Atoi(q); err == nil && d > 0 {
			days = d
		}
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	orders, err := h.orders.ListCompleted(c.Request.Context(), since)
	if err != nil {
		problem(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	out := make([]domain.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, domain.ToOrderResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out, "since": since})
}

func (h *Handlers) transitionOrder(c *gin.Context) {
	var req domain.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem(c, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.metrics.Transitions.WithLabelValues(req.Status, "invalid").Inc()
		problem(c, http.StatusBadRequest, "bad_status", err.Error())
		return
	}

	order, err := h.mgr.Transition(c.Request.Context(), c.Param("id"), target)
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		h.metrics.Transitions.WithLabelValues(string(target), "invalid").Inc()
		problem(c, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.metrics.Transitions.WithLabelValues(string(target), "not_found").Inc()
		problem(c, http.StatusNotFound, "not_found", "order not found")
	case err != nil:
		h.metrics.Transitions.WithLabelValues(string(target), "store_error").Inc()
		problem(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	default:
		h.metrics.Transitions.WithLabelValues(string(target), "ok").Inc()
		c.JSON(http.StatusOK, domain.ToOrderResponse(order))
	}
}

// orderNotification generates a suggested customer message for an order's
// current status. Generation failures surface to the caller for manual
// retry; nothing is cached.
func (h *Handlers) orderNotification(c *gin.Context) {
	id := c.Param("id")
	order, err := h.orders.Get(c.Request.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		problem(c, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if err != nil {
		problem(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}

	items := make([]string, 0, len(order.Items))
	for _, li := range order.Items {
		items = append(items, formatItem(li))
	}
	msg, err := h.ai.StatusMessage(c.Request.Context(), genai.StatusMessageInput{
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		CurrentStatus: string(order.Status),
		EstimatedTime: c.DefaultQuery("eta", "10-15 minutes"),
		MenuItems:     strings.Join(items, ", "),
	})
	if err != nil {
		problem(c, http.StatusBadGateway, "generation_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": order.ID, "status": order.Status, "message": msg})
}

func formatItem(li domain.LineItem) string {
	return strconv.Itoa(li.Quantity) + "x " + li.Name
}
