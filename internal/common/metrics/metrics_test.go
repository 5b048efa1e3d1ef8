package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerMetricsInstancesAreIndependent(t *testing.T) {
	first := NewServerMetrics("admin_api")
	second := NewServerMetrics("admin_api")

	first.Requests.WithLabelValues("/orders", "2xx").Inc()
	second.Transitions.WithLabelValues("Completed", "ok").Inc()

	w := httptest.NewRecorder()
	second.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "kitchen_admin_api_order_transitions_total")
	assert.False(t, strings.Contains(body, `handler="/orders"`), "counters from another instance must not leak in")
}
