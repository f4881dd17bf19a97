package middlewares

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxDurations bounds the sample kept for the average latency gauge.
const maxDurations = 1000

// HTTPMetrics holds only HTTP request metrics
type HTTPMetrics struct {
	mutex            sync.RWMutex
	requestsTotal    map[string]int64
	requestDurations []float64
	activeRequests   int64
}

// HTTPSnapshot is a consistent copy of HTTPMetrics for rendering.
type HTTPSnapshot struct {
	RequestsTotal  map[string]int64
	AvgDuration    float64
	ActiveRequests int64
}

type MetricsMiddleware struct {
	metrics *HTTPMetrics
}

func NewMetricsMiddleware() *MetricsMiddleware {
	return &MetricsMiddleware{
		metrics: &HTTPMetrics{
			requestsTotal:    make(map[string]int64),
			requestDurations: make([]float64, 0),
		},
	}
}

func (m *MetricsMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.metrics.mutex.Lock()
		m.metrics.activeRequests++
		m.metrics.mutex.Unlock()

		c.Next()

		duration := time.Since(start).Seconds()

		// Unmatched requests share one series so arbitrary paths and
		// methods cannot grow the counter map.
		key := "unmatched_" + strconv.Itoa(c.Writer.Status())
		if route := c.FullPath(); route != "" {
			key = c.Request.Method + " " + route + "_" + strconv.Itoa(c.Writer.Status())
		}

		m.metrics.mutex.Lock()
		m.metrics.requestsTotal[key]++
		m.metrics.requestDurations = append(m.metrics.requestDurations, duration)
		m.metrics.activeRequests--

		if len(m.metrics.requestDurations) > maxDurations {
			m.metrics.requestDurations = m.metrics.requestDurations[len(m.metrics.requestDurations)-maxDurations:]
		}
		m.metrics.mutex.Unlock()
	}
}

// Snapshot returns the current HTTP metrics for the metrics handler to expose
func (m *MetricsMiddleware) Snapshot() HTTPSnapshot {
	m.metrics.mutex.RLock()
	defer m.metrics.mutex.RUnlock()

	snap := HTTPSnapshot{
		RequestsTotal:  make(map[string]int64, len(m.metrics.requestsTotal)),
		ActiveRequests: m.metrics.activeRequests,
	}
	for k, v := range m.metrics.requestsTotal {
		snap.RequestsTotal[k] = v
	}

	if n := len(m.metrics.requestDurations); n > 0 {
		sum := 0.0
		for _, d := range m.metrics.requestDurations {
			sum += d
		}
		snap.AvgDuration = sum / float64(n)
	}

	return snap
}

// Keys returns the request counter keys in sorted order.
func (s HTTPSnapshot) Keys() []string {
	keys := make([]string, 0, len(s.RequestsTotal))
	for k := range s.RequestsTotal {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
