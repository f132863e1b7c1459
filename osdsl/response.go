package osdsl

import (
	jsoniter "github.com/json-iterator/go"
)

// Response is implemented by wrappers around the raw reply of an executed
// request. The DSL layer never inspects a wrapper beyond this interface;
// callers type-assert to their concrete wrapper when they configured one via
// ResponseClass.
type Response interface {
	Raw() map[string]any
}

// ResponseFactory builds a response wrapper from the executed request and the
// raw reply body.
type ResponseFactory func(request *UpdateByQuery, rawReply map[string]any) (Response, error)

// Retries reports how often bulk and search requests were retried while the
// store processed the update.
type Retries struct {
	Bulk   int64 `json:"bulk"`
	Search int64 `json:"search"`
}

// UpdateByQueryResponse is the default wrapper for update-by-query replies,
// exposing the well-known reply fields as typed values while keeping the
// full raw body available.
type UpdateByQueryResponse struct {
	Took             int64   `json:"took"`
	TimedOut         bool    `json:"timed_out"`
	Total            int64   `json:"total"`
	Updated          int64   `json:"updated"`
	Deleted          int64   `json:"deleted"`
	Batches          int64   `json:"batches"`
	VersionConflicts int64   `json:"version_conflicts"`
	Noops            int64   `json:"noops"`
	Retries          Retries `json:"retries"`
	ThrottledMillis  int64   `json:"throttled_millis"`
	Failures         []any   `json:"failures"`

	request *UpdateByQuery
	raw     map[string]any
}

// NewUpdateByQueryResponse is the default ResponseFactory. Fields missing
// from the reply stay at their zero value; unknown fields remain reachable
// through Raw.
func NewUpdateByQueryResponse(request *UpdateByQuery, rawReply map[string]any) (Response, error) {
	encoded, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(rawReply)
	if err != nil {
		return nil, err
	}

	response := &UpdateByQueryResponse{request: request, raw: rawReply}
	if err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(encoded, response); err != nil {
		return nil, err
	}

	return response, nil
}

// Raw returns the unmodified reply body.
func (r *UpdateByQueryResponse) Raw() map[string]any {
	return r.raw
}

// Request returns the request this reply belongs to.
func (r *UpdateByQueryResponse) Request() *UpdateByQuery {
	return r.request
}

// Success reports whether the update ran to completion without timing out
// and without per-document failures.
func (r *UpdateByQueryResponse) Success() bool {
	return !r.TimedOut && len(r.Failures) == 0
}
