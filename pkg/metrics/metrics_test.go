package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountAttendance(t *testing.T) {
	before := testutil.ToFloat64(attendanceEvents.WithLabelValues("check_in", "ok"))
	CountAttendance("check_in", "ok")
	CountAttendance("check_in", "ok")
	require.Equal(t, before+2, testutil.ToFloat64(attendanceEvents.WithLabelValues("check_in", "ok")))
}

func TestObserveProcess(t *testing.T) {
	ObserveProcess("stats", "overview", time.Now().Add(-5*time.Millisecond))
	require.Equal(t, 1, testutil.CollectAndCount(businessProcess, "gymdesk_bp_dur"))
}

func TestPrometheusMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	p := NewPrometheus(NewPrometheusOptions{Subsystem: Subsystem, Registry: reg})

	r := gin.New()
	r.Use(p.HandlerFunc())
	r.GET("/api/members/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/members/abc", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(1), testutil.ToFloat64(p.reqCnt.WithLabelValues("200", "GET", "/api/members/:id", "")))

	w = httptest.NewRecorder()
	p.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "gymdesk_req_total"))
}

func TestNewPrometheus_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewPrometheus(NewPrometheusOptions{Subsystem: Subsystem, Registry: reg})
	b := NewPrometheus(NewPrometheusOptions{Subsystem: Subsystem, Registry: reg})
	require.Same(t, a.reqCnt, b.reqCnt)
}

func TestNewMetric_BuildsEveryDefinition(t *testing.T) {
	defs := append([]*Metric{MetricsBusinessProcess, MetricsAttendanceEvents}, standardMetrics...)
	for _, m := range defs {
		c := NewMetric(m, Subsystem)
		switch m.Type {
		case "counter_vec":
			require.IsType(t, &prometheus.CounterVec{}, c, m.Name)
		case "histogram_vec":
			require.IsType(t, &prometheus.HistogramVec{}, c, m.Name)
		case "summary_vec":
			require.IsType(t, &prometheus.SummaryVec{}, c, m.Name)
		default:
			t.Fatalf("%s: unexpected type %q", m.Name, m.Type)
		}
	}

	require.Panics(t, func() { NewMetric(&Metric{Name: "x", Type: "gauge"}, Subsystem) })
}
