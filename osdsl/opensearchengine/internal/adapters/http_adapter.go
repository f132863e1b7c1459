package adapters

import "net/http"

// NetHTTPAdapter wraps a net/http client as an HTTPDoer.
type NetHTTPAdapter struct {
	client *http.Client
}

// NewNetHTTPAdapter creates an adapter around the given client.
func NewNetHTTPAdapter(client *http.Client) NetHTTPAdapter {
	return NetHTTPAdapter{client: client}
}

func (a NetHTTPAdapter) Do(req *http.Request) (*http.Response, error) {
	return a.client.Do(req)
}

var _ HTTPDoer = NetHTTPAdapter{}
