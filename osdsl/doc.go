// Package osdsl provides a fluent, immutable request DSL for the OpenSearch
// update-by-query API.
//
// Requests are built by chaining methods; every state-modifying method
// returns a new independent request, so builders can be branched and shared
// without aliasing surprises. Queries are immutable expression trees
// supporting AND-combination and negation that normalize into compact bool
// queries.
//
// Key types:
//   - Query: boolean query expression tree (empty marker / leaf / bool compound)
//   - UpdateByQuery: the request builder, serialized with ToDict / FromDict
//   - Connection: the transport contract, resolved by name from a registry
//
// Common usage pattern:
//
//	client, _ := opensearchengine.NewClientFromHTTP(http.DefaultClient,
//		[]string{"http://localhost:9200"})
//	_ = osdsl.AddConnection("default", client)
//
//	ubq := osdsl.New().
//		Index("blogs").
//		Filter(osdsl.Term("published", true)).
//		Exclude(osdsl.Term("archived", true)).
//		Script(osdsl.Script{Source: "ctx._source.likes++"})
//
//	response, err := ubq.Execute(ctx)
//	if err != nil {
//		// handle error
//	}
//
// Serialization is symmetric: FromDict(ubq.ToDict()) reconstructs a request
// with the same query, script and passthrough fields, and unknown top-level
// keys survive the round trip untouched.
package osdsl
