package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	versionsCreatedTotal          atomic.Uint64
	versionConflictRetriedTotal   atomic.Uint64
	versionConflictExhaustedTotal atomic.Uint64
	rollbacksTotal                atomic.Uint64
	generationQueuedTotal         atomic.Uint64
	generationCompletedTotal      atomic.Uint64
	generationFailedTotal         atomic.Uint64
	generationReceivedTotal       atomic.Uint64
	generationDiscardedTotal      atomic.Uint64

	replaceDuration    = newHistogram([]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000})
	generationDuration = newHistogram([]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000})
)

// IncVersionCreated increments the counter of appended versions.
func IncVersionCreated() {
	versionsCreatedTotal.Add(1)
}

// IncVersionConflictRetried increments the counter of retried CAS losses.
func IncVersionConflictRetried() {
	versionConflictRetriedTotal.Add(1)
}

// IncVersionConflictExhausted increments the counter of writes that gave up
// after the bounded retry ceiling.
func IncVersionConflictExhausted() {
	versionConflictExhaustedTotal.Add(1)
}

// IncRollback increments the rollback counter.
func IncRollback() {
	rollbacksTotal.Add(1)
}

// IncGenerationQueued increments the queued-jobs counter.
func IncGenerationQueued() {
	generationQueuedTotal.Add(1)
}

// IncGenerationCompleted increments the completed-jobs counter.
func IncGenerationCompleted() {
	generationCompletedTotal.Add(1)
}

// IncGenerationFailed increments the failed-jobs counter.
func IncGenerationFailed() {
	generationFailedTotal.Add(1)
}

// IncGenerationReceived increments the counter of messages picked up by the worker.
func IncGenerationReceived() {
	generationReceivedTotal.Add(1)
}

// IncGenerationDiscarded increments the counter of unrecoverable messages
// deleted without processing.
func IncGenerationDiscarded() {
	generationDiscardedTotal.Add(1)
}

// ObserveReplaceDurationMs records the duration of a full-update cycle.
func ObserveReplaceDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	replaceDuration.Observe(value)
}

// ObserveGenerationDurationMs records the duration of a generation job.
func ObserveGenerationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
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
	writeCounter(&buf, "resume_versions_created_total", "Total resume versions appended", versionsCreatedTotal.Load())
	writeCounter(&buf, "resume_version_conflicts_retried_total", "Total version conflicts retried", versionConflictRetriedTotal.Load())
	writeCounter(&buf, "resume_version_conflicts_exhausted_total", "Total writes failed after exhausting retries", versionConflictExhaustedTotal.Load())
	writeCounter(&buf, "resume_rollbacks_total", "Total rollbacks performed", rollbacksTotal.Load())
	writeCounter(&buf, "generation_queued_total", "Total generation jobs queued", generationQueuedTotal.Load())
	writeCounter(&buf, "generation_completed_total", "Total generation jobs completed", generationCompletedTotal.Load())
	writeCounter(&buf, "generation_failed_total", "Total generation jobs failed", generationFailedTotal.Load())
	writeCounter(&buf, "generation_received_total", "Total queue messages received by the worker", generationReceivedTotal.Load())
	writeCounter(&buf, "generation_discarded_total", "Total unrecoverable queue messages discarded", generationDiscardedTotal.Load())
	writeHistogram(&buf, "resume_replace_duration_ms", "Full update duration in milliseconds", replaceDuration.Snapshot())
	writeHistogram(&buf, "generation_duration_ms", "Generation job duration in milliseconds", generationDuration.Snapshot())
	return buf.String()
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	// counts are per-bucket; Render accumulates for the le convention.
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
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
