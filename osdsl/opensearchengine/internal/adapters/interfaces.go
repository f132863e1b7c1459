package adapters

import "net/http"

// HTTPDoer defines the single operation the engine needs from a transport:
// send one request, return one response.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
