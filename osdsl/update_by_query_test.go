package osdsl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WalkerWang731/opensearch-dsl-go/osdsl"
	"github.com/WalkerWang731/opensearch-dsl-go/testutil"
)

func Test_UpdateByQuery_Filter_SerializesAsFilterClause(t *testing.T) {
	ubq := osdsl.New().Filter(osdsl.Term("published", true))

	expected := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"published": true}},
				},
			},
		},
	}
	assert.Equal(t, expected, ubq.ToDict())
}

func Test_UpdateByQuery_Exclude_SerializesAsNegatedFilterClause(t *testing.T) {
	ubq := osdsl.New().Exclude(osdsl.Term("archived", true))

	expected := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{
						"bool": map[string]any{
							"must_not": []any{
								map[string]any{"term": map[string]any{"archived": true}},
							},
						},
					},
				},
			},
		},
	}
	assert.Equal(t, expected, ubq.ToDict())
}

func Test_UpdateByQuery_RepeatedFilters_MergeIntoOneBool(t *testing.T) {
	ubq := osdsl.New().
		Filter(osdsl.Term("published", true)).
		Filter(osdsl.Term("category", "go"))

	expected := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"published": true}},
					map[string]any{"term": map[string]any{"category": "go"}},
				},
			},
		},
	}
	assert.Equal(t, expected, ubq.ToDict())
}

func Test_UpdateByQuery_EmptyRequest_SerializesToEmptyBody(t *testing.T) {
	assert.Empty(t, osdsl.New().ToDict())
}

func Test_UpdateByQuery_Script_LastCallWinsEntirely(t *testing.T) {
	ubq := osdsl.New().
		Script(osdsl.Script{Source: "ctx._source.likes++"}).
		Script(osdsl.Script{Source: "ctx._source.likes += params.f", Lang: "expression", Params: map[string]any{"f": 3}})

	expected := map[string]any{
		"script": map[string]any{
			"source": "ctx._source.likes += params.f",
			"lang":   "expression",
			"params": map[string]any{"f": 3},
		},
	}
	assert.Equal(t, expected, ubq.ToDict())
}

func Test_UpdateByQuery_Script_ZeroValueClearsAction(t *testing.T) {
	ubq := osdsl.New().
		Script(osdsl.Script{Source: "ctx._source.likes++"}).
		Script(osdsl.Script{})

	assert.Empty(t, ubq.ToDict())
}

func Test_UpdateByQuery_Mutators_NeverModifyTheReceiver(t *testing.T) {
	base := osdsl.New().
		Filter(osdsl.Term("published", true)).
		Script(osdsl.Script{Source: "ctx._source.likes++"}).
		Extra(map[string]any{"conflicts": "proceed"})

	tests := []struct {
		name   string
		mutate func(ubq *osdsl.UpdateByQuery) *osdsl.UpdateByQuery
	}{
		{
			name:   "filter",
			mutate: func(ubq *osdsl.UpdateByQuery) *osdsl.UpdateByQuery { return ubq.Filter(osdsl.Term("a", 1)) },
		},
		{
			name:   "exclude",
			mutate: func(ubq *osdsl.UpdateByQuery) *osdsl.UpdateByQuery { return ubq.Exclude(osdsl.Term("a", 1)) },
		},
		{
			name:   "combine_query",
			mutate: func(ubq *osdsl.UpdateByQuery) *osdsl.UpdateByQuery { return ubq.CombineQuery(osdsl.Term("a", 1)) },
		},
		{
			name:   "set_query",
			mutate: func(ubq *osdsl.UpdateByQuery) *osdsl.UpdateByQuery { return ubq.SetQuery(osdsl.MatchAll()) },
		},
		{
			name:   "script",
			mutate: func(ubq *osdsl.UpdateByQuery) *osdsl.UpdateByQuery { return ubq.Script(osdsl.Script{ID: "x"}) },
		},
		{
			name:   "extra",
			mutate: func(ubq *osdsl.UpdateByQuery) *osdsl.UpdateByQuery { return ubq.Extra(map[string]any{"max_docs": 10}) },
		},
		{
			name:   "params",
			mutate: func(ubq *osdsl.UpdateByQuery) *osdsl.UpdateByQuery { return ubq.Params(map[string]any{"refresh": true}) },
		},
		{
			name:   "using",
			mutate: func(ubq *osdsl.UpdateByQuery) *osdsl.UpdateByQuery { return ubq.Using("other") },
		},
		{
			name:   "index",
			mutate: func(ubq *osdsl.UpdateByQuery) *osdsl.UpdateByQuery { return ubq.Index("blogs") },
		},
		{
			name: "response_class",
			mutate: func(ubq *osdsl.UpdateByQuery) *osdsl.UpdateByQuery {
				return ubq.ResponseClass(osdsl.NewUpdateByQueryResponse)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := base.ToDict()

			mutated := tc.mutate(base)

			assert.NotSame(t, base, mutated)
			assert.Equal(t, before, base.ToDict())
		})
	}
}

func Test_UpdateByQuery_CloneQueryIsIndependentOfParent(t *testing.T) {
	parent := osdsl.New().Filter(osdsl.Term("published", true))

	child := parent.Filter(osdsl.Term("archived", false))

	assert.False(t, parent.GetQuery().EqualTo(child.GetQuery()))
	assert.Len(t, parent.ToDict()["query"].(map[string]any)["bool"].(map[string]any)["filter"], 1)
}

func Test_UpdateByQuery_FromDict_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		mapping map[string]any
	}{
		{
			name: "query_and_script",
			mapping: map[string]any{
				"query":  map[string]any{"match_all": map[string]any{}},
				"script": map[string]any{"source": "x"},
			},
		},
		{
			name: "unknown_keys_pass_through",
			mapping: map[string]any{
				"query":     map[string]any{"term": map[string]any{"published": true}},
				"conflicts": "proceed",
				"max_docs":  float64(100),
			},
		},
		{
			name:    "empty_body",
			mapping: map[string]any{},
		},
		{
			name: "script_only",
			mapping: map[string]any{
				"script": map[string]any{"source": "ctx._source.likes++", "lang": "painless"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ubq, err := osdsl.FromDict(tc.mapping)
			require.NoError(t, err)

			assert.Equal(t, tc.mapping, ubq.ToDict())
		})
	}
}

func Test_UpdateByQuery_BuilderRoundTrip(t *testing.T) {
	built := osdsl.New().
		Filter(osdsl.Term("published", true)).
		Exclude(osdsl.Term("archived", true)).
		Script(osdsl.Script{Source: "ctx._source.likes++", Lang: "painless"}).
		Extra(map[string]any{"conflicts": "proceed"})

	reconstructed, err := osdsl.FromDict(built.ToDict())
	require.NoError(t, err)

	assert.Equal(t, built.ToDict(), reconstructed.ToDict())
	assert.True(t, built.GetQuery().EqualTo(reconstructed.GetQuery()))
}

func Test_UpdateByQuery_FromDict_MalformedQueryFailsFast(t *testing.T) {
	_, err := osdsl.FromDict(map[string]any{"query": "nope"})
	assert.ErrorIs(t, err, osdsl.ErrInvalidQueryBody)

	_, err = osdsl.FromDict(map[string]any{"query": map[string]any{}})
	assert.ErrorIs(t, err, osdsl.ErrInvalidQueryMapping)
}

func Test_UpdateByQuery_FromDict_DoesNotModifyTheInput(t *testing.T) {
	mapping := map[string]any{
		"query":     map[string]any{"match_all": map[string]any{}},
		"script":    map[string]any{"source": "x"},
		"conflicts": "proceed",
	}

	_, err := osdsl.FromDict(mapping)
	require.NoError(t, err)

	assert.Len(t, mapping, 3)
}

func Test_UpdateByQuery_JSONRoundTrip(t *testing.T) {
	built := osdsl.New().
		Filter(osdsl.Term("published", true)).
		Script(osdsl.Script{Source: "ctx._source.likes++"})

	encoded, err := built.ToJSON()
	require.NoError(t, err)

	reconstructed, err := osdsl.FromJSON(encoded)
	require.NoError(t, err)

	assert.Equal(t, built.ToDict(), reconstructed.ToDict())
}

func Test_UpdateByQuery_ToDict_CallerSuppliedFieldsWin(t *testing.T) {
	ubq := osdsl.New().Extra(map[string]any{"conflicts": "abort", "max_docs": 10})

	body := ubq.ToDict(map[string]any{"conflicts": "proceed"})

	assert.Equal(t, "proceed", body["conflicts"])
	assert.Equal(t, 10, body["max_docs"])
}

func Test_UpdateByQuery_ToDict_UnwrapsNestedBuilderValues(t *testing.T) {
	nested := osdsl.New().Filter(osdsl.Term("published", true))

	body := osdsl.New().ToDict(map[string]any{
		"wrapped": map[string]any{"request": nested},
		"queries": []any{osdsl.Term("a", 1)},
	})

	expected := map[string]any{
		"wrapped": map[string]any{"request": nested.ToDict()},
		"queries": []any{map[string]any{"term": map[string]any{"a": 1}}},
	}
	assert.Equal(t, expected, body)
}

func Test_UpdateByQuery_Execute_DelegatesToTheNamedConnection(t *testing.T) {
	connection := &testutil.FakeConnection{Reply: map[string]any{"took": float64(12), "updated": float64(3)}}
	require.NoError(t, osdsl.AddConnection("execute-test", connection))
	defer func() { _ = osdsl.RemoveConnection("execute-test") }()

	ubq := osdsl.New().
		Using("execute-test").
		Index("blogs", "posts").
		Filter(osdsl.Term("published", true)).
		Params(map[string]any{"refresh": true})

	response, err := ubq.Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, connection.Calls, 1)
	call := connection.Calls[0]
	assert.Equal(t, []string{"blogs", "posts"}, call.Indices)
	assert.Equal(t, ubq.ToDict(), call.Body)
	assert.Equal(t, map[string]any{"refresh": true}, call.Params)

	typed, ok := response.(*osdsl.UpdateByQueryResponse)
	require.True(t, ok)
	assert.Equal(t, int64(12), typed.Took)
	assert.Equal(t, int64(3), typed.Updated)
	assert.Same(t, response, ubq.Response())
}

func Test_UpdateByQuery_Execute_ReadingTheCacheDoesNotReExecute(t *testing.T) {
	connection := &testutil.FakeConnection{Reply: map[string]any{"took": float64(1)}}
	require.NoError(t, osdsl.AddConnection("cache-test", connection))
	defer func() { _ = osdsl.RemoveConnection("cache-test") }()

	ubq := osdsl.New().Using("cache-test")

	_, err := ubq.Execute(context.Background())
	require.NoError(t, err)

	_ = ubq.Response()
	_ = ubq.Response()

	assert.Len(t, connection.Calls, 1)
}

func Test_UpdateByQuery_Execute_TransportErrorPropagatesUnchanged(t *testing.T) {
	transportErr := errors.New("connection refused")
	connection := &testutil.FakeConnection{Err: transportErr}
	require.NoError(t, osdsl.AddConnection("error-test", connection))
	defer func() { _ = osdsl.RemoveConnection("error-test") }()

	ubq := osdsl.New().Using("error-test")

	_, err := ubq.Execute(context.Background())
	assert.ErrorIs(t, err, transportErr)
	assert.Nil(t, ubq.Response())
}

func Test_UpdateByQuery_Execute_UnknownConnectionName(t *testing.T) {
	_, err := osdsl.New().Using("never-registered").Execute(context.Background())
	assert.ErrorIs(t, err, osdsl.ErrConnectionNotConfigured)
}

func Test_UpdateByQuery_Execute_ResolvesTheConnectionLate(t *testing.T) {
	ubq := osdsl.New().Using("late-test")

	// Bound after the builder was created: Execute must still find it.
	connection := &testutil.FakeConnection{Reply: map[string]any{}}
	require.NoError(t, osdsl.AddConnection("late-test", connection))
	defer func() { _ = osdsl.RemoveConnection("late-test") }()

	_, err := ubq.Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, connection.Calls, 1)
}

func Test_UpdateByQuery_ResponseClass_OverridesTheWrapper(t *testing.T) {
	connection := &testutil.FakeConnection{Reply: map[string]any{"took": float64(5)}}
	require.NoError(t, osdsl.AddConnection("wrapper-test", connection))
	defer func() { _ = osdsl.RemoveConnection("wrapper-test") }()

	type customResponse struct {
		osdsl.UpdateByQueryResponse
		wrapped bool
	}

	factory := func(request *osdsl.UpdateByQuery, rawReply map[string]any) (osdsl.Response, error) {
		inner, err := osdsl.NewUpdateByQueryResponse(request, rawReply)
		if err != nil {
			return nil, err
		}

		return &customResponse{UpdateByQueryResponse: *inner.(*osdsl.UpdateByQueryResponse), wrapped: true}, nil
	}

	response, err := osdsl.New().Using("wrapper-test").ResponseClass(factory).Execute(context.Background())
	require.NoError(t, err)

	typed, ok := response.(*customResponse)
	require.True(t, ok)
	assert.True(t, typed.wrapped)
	assert.Equal(t, int64(5), typed.Took)
}
