package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Subsystem prefixes every collector this service registers.
const Subsystem = "gymdesk"

// HistogramBuckets are millisecond bounds sized for single-database requests;
// anything past 5s is an outage, not latency.
var HistogramBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// Metric describes one collector. Type is one of counter_vec, histogram_vec
// or summary_vec.
type Metric struct {
	Name        string
	Description string
	Type        string
	Args        []string
}

// NewMetric builds the collector for m. It panics on an unknown Type since
// metric definitions are package-level constants.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
		}, m.Args)
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
			Buckets:   HistogramBuckets,
		}, m.Args)
	case "summary_vec":
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
		}, m.Args)
	}
	panic("metrics: unknown metric type " + m.Type)
}

var MetricsBusinessProcess = &Metric{
	Name:        "bp_dur",
	Description: "process latency in milliseconds",
	Type:        "histogram_vec",
	Args:        []string{"type", "subtype"},
}

var MetricsAttendanceEvents = &Metric{
	Name:        "attendance_events_total",
	Description: "Check-in and check-out attempts, partitioned by event and result.",
	Type:        "counter_vec",
	Args:        []string{"event", "result"},
}

const (
	RefererKey = "X-Referer"
)

var (
	businessProcess  = NewMetric(MetricsBusinessProcess, Subsystem).(*prometheus.HistogramVec)
	attendanceEvents = NewMetric(MetricsAttendanceEvents, Subsystem).(*prometheus.CounterVec)
)

func init() {
	prometheus.MustRegister(businessProcess, attendanceEvents)
}

// ObserveProcess records how long a named business process took since start.
func ObserveProcess(typ, subtype string, start time.Time) {
	businessProcess.WithLabelValues(typ, subtype).Observe(MillisecondsSince(start))
}

// CountAttendance records the outcome of a check-in or check-out attempt.
// result is "ok" or the rejection reason.
func CountAttendance(event, result string) {
	attendanceEvents.WithLabelValues(event, result).Inc()
}
