package opensearchengine

import (
	"time"

	"github.com/WalkerWang731/opensearch-dsl-go/osdsl"
)

// Logger interface for request logging, warnings, and error reporting.
type Logger = osdsl.Logger

// Option defines a functional option for configuring a Client.
type Option func(*Client) error

// WithBasicAuth sets the credentials sent with every request.
func WithBasicAuth(username string, password string) Option {
	return func(c *Client) error {
		c.username = username
		c.password = password

		return nil
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key string, value string) Option {
	return func(c *Client) error {
		c.headers.Add(key, value)
		return nil
	}
}

// WithRequestTimeout bounds each request with a context deadline.
// Zero disables the bound.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.requestTimeout = timeout
		return nil
	}
}

// WithLogger sets the logger for the Client.
//
// Debug level: request URLs with execution timing (development use)
// Info level: operation outcomes with durations (production-safe)
// Warn level: non-critical issues like body close failures
// Error level: failures that abort the request.
func WithLogger(logger Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger sets the context-aware logger for the Client, enabling
// automatic trace correlation when tracing is configured as well.
func WithContextualLogger(logger osdsl.ContextualLogger) Option {
	return func(c *Client) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Client. The collector
// receives request durations and error counters.
func WithMetrics(collector osdsl.MetricsCollector) Option {
	return func(c *Client) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Client. The collector
// receives one span per executed request.
func WithTracing(collector osdsl.TracingCollector) Option {
	return func(c *Client) error {
		c.tracingCollector = collector
		return nil
	}
}
