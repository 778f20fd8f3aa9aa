package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	// Create a span for API request tracking using the request context
	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	// Set span tags
	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	// Set span data
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	// Set span status based on response
	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	// Set span description
	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordClipGeneration records clip generation metrics
func (m *SentryMetrics) RecordClipGeneration(ctx context.Context, styleID string, eventCount, chordCount int) {
	if !m.enabled {
		return
	}

	// Add data directly to the transaction span when one exists
	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("engine.style", styleID)
		transaction.SetData("engine.event_count", eventCount)
		transaction.SetData("engine.chord_count", chordCount)
	}

	// Also create a child span for detailed tracking
	span := sentry.StartSpan(ctx, "engine.clip")
	defer span.Finish()

	// Set span tags and data
	span.SetTag("style", styleID)
	span.SetData("event_count", eventCount)
	span.SetData("chord_count", chordCount)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Clip Generation: %s", styleID)
}

// RecordLateDrops records scheduler drop counts from a live playback run
func (m *SentryMetrics) RecordLateDrops(ornamentDrops, coreDrops int) {
	if !m.enabled {
		return
	}

	// Create a span for drop tracking
	ctx := context.Background()
	span := sentry.StartSpan(ctx, "player.drops")
	defer span.Finish()

	// Set span data
	span.SetData("ornament_drops", ornamentDrops)
	span.SetData("core_drops", coreDrops)

	if coreDrops > 0 {
		span.Status = sentry.SpanStatusInternalError
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Description = fmt.Sprintf("Late Drops: %d ornament, %d core", ornamentDrops, coreDrops)
}

// RecordGenerationDuration records generation request duration
func (m *SentryMetrics) RecordGenerationDuration(ctx context.Context, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	// Create a span for generation tracking using the request context
	span := sentry.StartSpan(ctx, "generation.request")
	defer span.Finish()

	// Set span tags
	span.SetTag("success", fmt.Sprintf("%t", success))

	// Set span data
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("success", success)

	// Set span status
	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Generation Request: %t", success)
}

// RecordCustomMetric sends a custom metric with arbitrary data
func (m *SentryMetrics) RecordCustomMetric(metricName string, data map[string]interface{}) {
	if !m.enabled {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("metric_type", "custom")
		scope.SetTag("metric_name", metricName)

		scope.SetContext("custom_metric", data)

		sentry.CaptureMessage("Custom Metric: " + metricName)
	})
}

// RecordPerformanceMetric records performance data
func (m *SentryMetrics) RecordPerformanceMetric(operation string, duration time.Duration, metadata map[string]interface{}) {
	if !m.enabled {
		return
	}

	// Use Sentry's performance monitoring
	ctx := context.Background()
	span := sentry.StartSpan(ctx, operation)
	span.Description = operation
	span.SetData("duration_ms", duration.Milliseconds())

	// Add metadata
	for key, value := range metadata {
		span.SetData(key, value)
	}

	span.Finish()
}
