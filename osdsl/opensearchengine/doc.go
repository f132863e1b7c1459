// Package opensearchengine implements the osdsl.Connection contract over the
// OpenSearch REST API.
//
// A Client posts serialized update-by-query bodies to one or more nodes,
// rotating round-robin, and returns decoded replies. Failures are never
// retried or reinterpreted here: transport errors and error-status replies
// propagate unchanged to the caller, since their semantics (partial updates,
// version conflicts) belong to the store.
//
// Common usage pattern:
//
//	config, err := opensearchengine.LoadClientConfig("opensearch.yaml")
//	if err != nil {
//		// handle error
//	}
//
//	client, err := opensearchengine.NewClientFromConfig(config,
//		opensearchengine.WithLogger(logger))
//	if err != nil {
//		// handle error
//	}
//
//	_ = osdsl.AddConnection("default", client)
package opensearchengine
