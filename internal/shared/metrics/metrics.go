package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	resumesGeneratedTotal        atomic.Uint64
	resumesGenerationFailedTotal atomic.Uint64

	exportsMu sync.Mutex
	exports   = map[string]uint64{}

	apiDuration = newHistogram([]float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 15000})
)

// IncResumeGenerated counts a resume generated through the remote API.
func IncResumeGenerated() {
	resumesGeneratedTotal.Add(1)
}

// IncResumeGenerationFailed counts a generation that failed validation or upstream.
func IncResumeGenerationFailed() {
	resumesGenerationFailedTotal.Add(1)
}

// IncExport counts an export by format ("pdf" or "print").
func IncExport(format string) {
	exportsMu.Lock()
	exports[format]++
	exportsMu.Unlock()
}

// ObserveAPIDurationMs records a remote resume API call duration in milliseconds.
func ObserveAPIDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	apiDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resumes_generated_total", "Total resumes generated", resumesGeneratedTotal.Load())
	writeCounter(&buf, "resumes_generation_failed_total", "Total resume generations that failed", resumesGenerationFailedTotal.Load())
	writeLabeledCounter(&buf, "resume_exports_total", "Total resume exports by format", "format", exportSnapshot())
	writeHistogram(&buf, "resume_api_duration_ms", "Remote resume API call duration in milliseconds", apiDuration.Snapshot())
	return buf.String()
}

func exportSnapshot() map[string]uint64 {
	exportsMu.Lock()
	defer exportsMu.Unlock()
	out := make(map[string]uint64, len(exports))
	for k, v := range exports {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket whose bound covers it; counts are
// made cumulative at render time.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// SinceMillis returns the elapsed time since start in milliseconds.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
