package opensearchengine

import (
	"context"
	"math"
	"time"

	"github.com/WalkerWang731/opensearch-dsl-go/osdsl"
)

// logRequestWithDuration logs request URLs with execution time at debug level.
// The contextual logger wins when configured, giving trace correlation; the
// plain logger is the fallback.
func (c *Client) logRequestWithDuration(ctx context.Context, requestURL string, action string, duration time.Duration) {
	if c.contextualLogger != nil {
		c.contextualLogger.DebugContext(ctx, logMsgRequestExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrURL, requestURL)
		return
	}

	if c.logger != nil {
		c.logger.Debug(logMsgRequestExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrURL, requestURL)
	}
}

// logOperation logs operational information at info level, preferring the
// contextual logger when configured.
func (c *Client) logOperation(ctx context.Context, action string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if c.logger != nil {
		c.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level, preferring the contextual
// logger when configured.
func (c *Client) logWarn(ctx context.Context, message string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.WarnContext(ctx, message, args...)
		return
	}

	if c.logger != nil {
		c.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level, preferring the
// contextual logger when configured.
func (c *Client) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if c.contextualLogger != nil {
		c.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if c.logger != nil {
		c.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordErrorMetricsContext records error metrics with context if the collector supports it.
func (c *Client) recordErrorMetricsContext(ctx context.Context, operation string, errorType string) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := c.metricsCollector.(osdsl.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricRequestErrors, labels)
	} else {
		c.metricsCollector.IncrementCounter(metricRequestErrors, labels)
	}
}

// recordDurationMetricsContext records duration metrics with context if the collector supports it.
func (c *Client) recordDurationMetricsContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation string,
	status string,
) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          status,
	}

	if contextualCollector, ok := c.metricsCollector.(osdsl.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
	} else {
		c.metricsCollector.RecordDuration(metricName, duration, labels)
	}
}

// startSpan opens a tracing span if the tracing collector is configured.
func (c *Client) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, osdsl.SpanContext) {
	if c.tracingCollector == nil {
		return ctx, nil
	}

	return c.tracingCollector.StartSpan(ctx, name, attrs)
}

// finishSpan closes a tracing span if one was opened.
func (c *Client) finishSpan(span osdsl.SpanContext, status string, attrs map[string]string) {
	if c.tracingCollector == nil || span == nil {
		return
	}

	c.tracingCollector.FinishSpan(span, status, attrs)
}
