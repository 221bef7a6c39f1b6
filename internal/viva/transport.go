package viva

import "net/http"

// HTTPClient sends one request and returns one response. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
