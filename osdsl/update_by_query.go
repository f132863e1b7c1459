package osdsl

import (
	"context"
	"maps"
	"slices"

	jsoniter "github.com/json-iterator/go"
)

// Script describes the update action applied to every matched document.
// Zero-value fields are omitted from the wire mapping; a zero Script clears
// the action entirely.
type Script struct {
	Source string
	ID     string
	Lang   string
	Params map[string]any
}

func (s Script) toDict() map[string]any {
	mapping := make(map[string]any, 4)

	if s.Source != "" {
		mapping["source"] = s.Source
	}

	if s.ID != "" {
		mapping["id"] = s.ID
	}

	if s.Lang != "" {
		mapping["lang"] = s.Lang
	}

	if len(s.Params) > 0 {
		mapping["params"] = maps.Clone(s.Params)
	}

	return mapping
}

// UpdateByQuery builds an update-by-query request body and executes it
// against a named connection.
//
// Every state-modifying method performs a shallow clone and returns the
// clone, leaving the receiver untouched, so partially built requests can be
// shared and branched safely:
//
//	base := osdsl.New().Index("books").Filter(osdsl.Term("published", true))
//	archived := base.Filter(osdsl.Term("archived", true))
//	// base is unchanged
//
// The only stateful transition is Execute, which caches the wrapped reply on
// the executed instance for later reads via Response.
type UpdateByQuery struct {
	using           string
	indices         []string
	params          map[string]any
	script          map[string]any
	extra           map[string]any
	queryProxy      *queryProxy
	responseFactory ResponseFactory
	response        Response
}

// New creates an empty update-by-query request bound to the default
// connection, with the default response wrapper.
func New() *UpdateByQuery {
	ubq := &UpdateByQuery{
		using:           DefaultConnectionName,
		responseFactory: NewUpdateByQueryResponse,
	}
	ubq.queryProxy = newQueryProxy(ubq)

	return ubq
}

// FromDict constructs an UpdateByQuery from a raw wire mapping, for example
// when migrating from hand-written request bodies:
//
//	ubq, err := osdsl.FromDict(map[string]any{
//		"query":  map[string]any{"match_all": map[string]any{}},
//		"script": map[string]any{"source": "ctx._source.likes++"},
//	})
//
// Keys other than "query" and "script" are kept as opaque passthrough and
// re-emitted verbatim by ToDict.
func FromDict(mapping map[string]any) (*UpdateByQuery, error) {
	ubq := New()
	if err := ubq.updateFromDict(mapping); err != nil {
		return nil, err
	}

	return ubq, nil
}

// FromJSON is FromDict for a JSON-encoded wire body.
func FromJSON(body []byte) (*UpdateByQuery, error) {
	var mapping map[string]any
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &mapping); err != nil {
		return nil, err
	}

	return FromDict(mapping)
}

// updateFromDict applies a serialized body to a freshly created instance.
// The input mapping is not retained and not modified.
func (ubq *UpdateByQuery) updateFromDict(mapping map[string]any) error {
	remainder := maps.Clone(mapping)

	if rawQuery, found := remainder["query"]; found {
		queryMapping, ok := rawQuery.(map[string]any)
		if !ok {
			return ErrInvalidQueryBody
		}

		parsed, err := ParseQuery(queryMapping)
		if err != nil {
			return err
		}

		ubq.queryProxy.set(parsed)
		delete(remainder, "query")
	}

	if rawScript, found := remainder["script"]; found {
		// Stored verbatim, no validation of the script sub-keys here.
		if scriptMapping, ok := rawScript.(map[string]any); ok {
			ubq.script = maps.Clone(scriptMapping)
			delete(remainder, "script")
		}
	}

	if len(remainder) > 0 {
		ubq.extra = remainder
	}

	return nil
}

// clone performs a shallow copy of the request state and rebinds the query
// proxy to the copy. The cached response is never carried over.
func (ubq *UpdateByQuery) clone() *UpdateByQuery {
	copied := &UpdateByQuery{
		using:           ubq.using,
		indices:         slices.Clone(ubq.indices),
		params:          maps.Clone(ubq.params),
		script:          maps.Clone(ubq.script),
		extra:           maps.Clone(ubq.extra),
		responseFactory: ubq.responseFactory,
	}
	copied.queryProxy = ubq.queryProxy.rebind(copied)

	return copied
}

// GetQuery returns the query currently attached to the request, or the empty
// marker when none was set.
func (ubq *UpdateByQuery) GetQuery() Query {
	return ubq.queryProxy.get()
}

// SetQuery returns a new request with the query replaced outright.
func (ubq *UpdateByQuery) SetQuery(query Query) *UpdateByQuery {
	copied := ubq.clone()
	copied.queryProxy.set(query)

	return copied
}

// CombineQuery returns a new request with query AND-combined into the
// current one.
func (ubq *UpdateByQuery) CombineQuery(query Query) *UpdateByQuery {
	copied := ubq.clone()
	copied.queryProxy.combineInto(query)

	return copied
}

// Filter returns a new request with query added as a filter clause:
//
//	osdsl.New().Filter(osdsl.Term("published", true))
func (ubq *UpdateByQuery) Filter(query Query) *UpdateByQuery {
	return ubq.CombineQuery(Bool(BoolClauses{Filter: []Query{query}}))
}

// Exclude returns a new request with the negation of query added as a filter
// clause, removing matching documents from the selection.
func (ubq *UpdateByQuery) Exclude(query Query) *UpdateByQuery {
	return ubq.CombineQuery(Bool(BoolClauses{Filter: []Query{query.Negate()}}))
}

// Script returns a new request with the update action replaced by script.
// The target store accepts a single script per request, so repeated calls
// overwrite, never merge.
func (ubq *UpdateByQuery) Script(script Script) *UpdateByQuery {
	copied := ubq.clone()
	copied.script = script.toDict()

	return copied
}

// ResponseClass returns a new request that wraps execution replies with the
// given factory instead of the default UpdateByQueryResponse.
func (ubq *UpdateByQuery) ResponseClass(factory ResponseFactory) *UpdateByQuery {
	copied := ubq.clone()
	copied.responseFactory = factory

	return copied
}

// Using returns a new request bound to the named connection. The connection
// is resolved from the registry at Execute time, not here.
func (ubq *UpdateByQuery) Using(connectionName string) *UpdateByQuery {
	copied := ubq.clone()
	copied.using = connectionName

	return copied
}

// Index returns a new request limited to the given indices. Calling it with
// no arguments clears the limitation.
func (ubq *UpdateByQuery) Index(indices ...string) *UpdateByQuery {
	copied := ubq.clone()
	copied.indices = slices.Clone(indices)

	return copied
}

// Params returns a new request with the given per-call parameters merged in.
// These are handed to the connection at Execute time and are not part of the
// wire body.
func (ubq *UpdateByQuery) Params(params map[string]any) *UpdateByQuery {
	copied := ubq.clone()

	if copied.params == nil {
		copied.params = make(map[string]any, len(params))
	}
	maps.Copy(copied.params, params)

	return copied
}

// Extra returns a new request with the given fields merged into the opaque
// body passthrough. ToDict emits them at the top level verbatim.
func (ubq *UpdateByQuery) Extra(fields map[string]any) *UpdateByQuery {
	copied := ubq.clone()

	if copied.extra == nil {
		copied.extra = make(map[string]any, len(fields))
	}
	maps.Copy(copied.extra, fields)

	return copied
}

// ToDict serializes the request into the wire body. The query and script
// keys are emitted only when non-empty, followed by the opaque passthrough
// fields and finally any caller-supplied mappings, which win on collision.
// Nested Query and UpdateByQuery values are serialized recursively.
func (ubq *UpdateByQuery) ToDict(extraFields ...map[string]any) map[string]any {
	body := make(map[string]any)

	if query := ubq.queryProxy.get(); !query.IsEmpty() {
		body["query"] = query.ToDict()
	}

	if len(ubq.script) > 0 {
		body["script"] = recursiveToDict(ubq.script)
	}

	for key, value := range ubq.extra {
		body[key] = recursiveToDict(value)
	}

	for _, fields := range extraFields {
		for key, value := range fields {
			body[key] = recursiveToDict(value)
		}
	}

	return body
}

// ToJSON is ToDict encoded as JSON.
func (ubq *UpdateByQuery) ToJSON(extraFields ...map[string]any) ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(ubq.ToDict(extraFields...))
}

// Execute serializes the request, hands it to the configured connection and
// wraps the raw reply with the configured response factory. The wrapped reply
// is cached on this instance and can be re-read via Response without another
// round trip. Transport errors propagate unchanged.
func (ubq *UpdateByQuery) Execute(ctx context.Context) (Response, error) {
	connection, err := GetConnection(ubq.using)
	if err != nil {
		return nil, err
	}

	rawReply, err := connection.UpdateByQuery(ctx, ubq.indices, ubq.ToDict(), ubq.params)
	if err != nil {
		return nil, err
	}

	response, err := ubq.responseFactory(ubq, rawReply)
	if err != nil {
		return nil, err
	}

	ubq.response = response

	return response, nil
}

// Response returns the reply cached by the last Execute call, or nil when
// the request was never executed.
func (ubq *UpdateByQuery) Response() Response {
	return ubq.response
}

// recursiveToDict serializes nested builder-like values found inside
// passthrough mappings, copying containers along the way.
func recursiveToDict(value any) any {
	switch typed := value.(type) {
	case Query:
		return typed.ToDict()

	case *UpdateByQuery:
		return typed.ToDict()

	case map[string]any:
		copied := make(map[string]any, len(typed))
		for key, nested := range typed {
			copied[key] = recursiveToDict(nested)
		}

		return copied

	case []any:
		copied := make([]any, 0, len(typed))
		for _, nested := range typed {
			copied = append(copied, recursiveToDict(nested))
		}

		return copied

	default:
		return value
	}
}
