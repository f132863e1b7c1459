package opensearchengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/WalkerWang731/opensearch-dsl-go/osdsl"
	"github.com/WalkerWang731/opensearch-dsl-go/osdsl/opensearchengine/internal/adapters"
)

const (
	allIndices            = "_all"
	updateByQueryEndpoint = "_update_by_query"

	headerContentType = "Content-Type"
	headerRequestID   = "X-Request-Id"
	contentTypeJSON   = "application/json"

	logMsgEncodeBodyFailed    = "failed to encode request body"
	logMsgBuildRequestFailed  = "failed to build http request"
	logMsgRequestFailed       = "http request execution failed"
	logMsgReadBodyFailed      = "failed to read response body"
	logMsgDecodeReplyFailed   = "failed to decode response body"
	logMsgRequestExecuted     = "executed request for: "
	logMsgOperation           = "opensearch operation: "
	logAttrError              = "error"
	logAttrURL                = "url"
	logAttrStatus             = "status"
	logAttrIndices            = "indices"
	logAttrDurationMS         = "duration_ms"
	logActionUpdateByQuery    = "update_by_query"
	metricRequestDuration     = "opensearch_request_duration_seconds"
	metricRequestErrors       = "opensearch_request_errors_total"
	spanNameUpdateByQuery     = "opensearch.update_by_query"
	spanAttrOperation         = "operation"
	spanAttrIndices           = "indices"
	spanAttrErrorType         = "error_type"
	statusOK                  = "ok"
	statusError               = "error"
	errorTypeEncoding         = "encoding"
	errorTypeTransport        = "transport"
	errorTypeStatus           = "status"
	errorTypeDecoding         = "decoding"
)

var ErrNilHTTPClient = errors.New("nil http client supplied")
var ErrNoAddressesSupplied = errors.New("no addresses supplied")

// StatusError reports a reply with an HTTP error status. The decoded server
// payload is kept so callers can inspect the store's own failure details;
// the engine adds no interpretation of its own.
type StatusError struct {
	StatusCode int
	Body       map[string]any
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("opensearch returned status %d", e.StatusCode)
}

// Client executes serialized update-by-query requests against one or more
// OpenSearch nodes over HTTP. It implements osdsl.Connection and is safe for
// concurrent use.
//
// Requests rotate round-robin over the configured addresses. The client does
// not retry: transport and status errors propagate unchanged to the caller.
type Client struct {
	http             adapters.HTTPDoer
	addresses        []string
	nextAddress      atomic.Uint64
	username         string
	password         string
	headers          http.Header
	requestTimeout   time.Duration
	logger           Logger
	contextualLogger osdsl.ContextualLogger
	metricsCollector osdsl.MetricsCollector
	tracingCollector osdsl.TracingCollector
}

// NewClientFromHTTP creates a new Client using a net/http client with
// optional configuration.
func NewClientFromHTTP(httpClient *http.Client, addresses []string, options ...Option) (*Client, error) {
	if httpClient == nil {
		return nil, ErrNilHTTPClient
	}

	return newClient(adapters.NewNetHTTPAdapter(httpClient), addresses, options...)
}

// NewClientFromConfig creates a new Client from a loaded ClientConfig with
// optional configuration. Options are applied after the config and win over it.
func NewClientFromConfig(config ClientConfig, options ...Option) (*Client, error) {
	httpClient := &http.Client{Timeout: config.RequestTimeout}

	configured := make([]Option, 0, len(options)+1)
	if config.Username != "" {
		configured = append(configured, WithBasicAuth(config.Username, config.Password))
	}
	configured = append(configured, options...)

	return NewClientFromHTTP(httpClient, config.Addresses, configured...)
}

func newClient(doer adapters.HTTPDoer, addresses []string, options ...Option) (*Client, error) {
	if len(addresses) == 0 {
		return nil, ErrNoAddressesSupplied
	}

	trimmed := make([]string, 0, len(addresses))
	for _, address := range addresses {
		trimmed = append(trimmed, strings.TrimRight(address, "/"))
	}

	client := &Client{
		http:      doer,
		addresses: trimmed,
		headers:   make(http.Header),
	}

	for _, option := range options {
		if err := option(client); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// UpdateByQuery posts body to the _update_by_query endpoint of the given
// indices and returns the decoded reply. Extra params become URL query
// parameters. A reply with an error status is returned as a StatusError
// carrying the decoded server payload.
func (c *Client) UpdateByQuery(
	ctx context.Context,
	indices []string,
	body map[string]any,
	params map[string]any,
) (map[string]any, error) {

	start := time.Now()

	ctx, span := c.startSpan(ctx, spanNameUpdateByQuery, map[string]string{
		spanAttrOperation: logActionUpdateByQuery,
		spanAttrIndices:   indicesPath(indices),
	})

	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	encoded, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(body)
	if err != nil {
		return nil, c.operationFailed(ctx, span, logMsgEncodeBodyFailed, errorTypeEncoding, err)
	}

	requestURL := c.requestURL(indices, params)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, c.operationFailed(ctx, span, logMsgBuildRequestFailed, errorTypeTransport, err)
	}

	request.Header.Set(headerContentType, contentTypeJSON)
	request.Header.Set(headerRequestID, uuid.NewString())
	for key, values := range c.headers {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}

	if c.username != "" {
		request.SetBasicAuth(c.username, c.password)
	}

	reply, err := c.http.Do(request)
	if err != nil {
		return nil, c.operationFailed(ctx, span, logMsgRequestFailed, errorTypeTransport, err)
	}
	defer func() {
		if closeErr := reply.Body.Close(); closeErr != nil {
			c.logWarn(ctx, logMsgReadBodyFailed, logAttrError, closeErr.Error())
		}
	}()

	replyBody, err := io.ReadAll(reply.Body)
	if err != nil {
		return nil, c.operationFailed(ctx, span, logMsgReadBodyFailed, errorTypeTransport, err)
	}

	decoded := make(map[string]any)
	if len(replyBody) > 0 {
		if err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(replyBody, &decoded); err != nil {
			return nil, c.operationFailed(ctx, span, logMsgDecodeReplyFailed, errorTypeDecoding, err)
		}
	}

	if reply.StatusCode >= http.StatusBadRequest {
		statusErr := &StatusError{StatusCode: reply.StatusCode, Body: decoded}

		c.logError(ctx, logMsgRequestFailed, statusErr, logAttrURL, requestURL, logAttrStatus, reply.StatusCode)
		c.recordErrorMetricsContext(ctx, logActionUpdateByQuery, errorTypeStatus)
		c.finishSpan(span, statusError, map[string]string{spanAttrErrorType: errorTypeStatus})

		return nil, statusErr
	}

	duration := time.Since(start)

	c.logRequestWithDuration(ctx, requestURL, logActionUpdateByQuery, duration)
	c.logOperation(
		ctx,
		logActionUpdateByQuery,
		logAttrIndices, indicesPath(indices),
		logAttrStatus, reply.StatusCode,
		logAttrDurationMS, toMilliseconds(duration),
	)
	c.recordDurationMetricsContext(ctx, metricRequestDuration, duration, logActionUpdateByQuery, statusOK)
	c.finishSpan(span, statusOK, nil)

	return decoded, nil
}

// requestURL builds the endpoint URL for the next node in the rotation.
func (c *Client) requestURL(indices []string, params map[string]any) string {
	address := c.addresses[c.nextAddress.Add(1)%uint64(len(c.addresses))]
	endpoint := address + "/" + indicesPath(indices) + "/" + updateByQueryEndpoint

	if len(params) == 0 {
		return endpoint
	}

	values := url.Values{}
	for key, value := range params {
		values.Set(key, fmt.Sprint(value))
	}

	return endpoint + "?" + values.Encode()
}

func indicesPath(indices []string) string {
	if len(indices) == 0 {
		return allIndices
	}

	escaped := make([]string, 0, len(indices))
	for _, index := range indices {
		escaped = append(escaped, url.PathEscape(index))
	}

	return strings.Join(escaped, ",")
}

// operationFailed records observability signals for a failed operation and
// passes the error through unchanged.
func (c *Client) operationFailed(
	ctx context.Context,
	span osdsl.SpanContext,
	message string,
	errorType string,
	err error,
) error {

	c.logError(ctx, message, err)
	c.recordErrorMetricsContext(ctx, logActionUpdateByQuery, errorType)
	c.finishSpan(span, statusError, map[string]string{spanAttrErrorType: errorType})

	return err
}

var _ osdsl.Connection = (*Client)(nil)
