package elastic

import (
	"io"
	"net/http"
	"strings"
)

// roundTripperFunc adapts a function to http.RoundTripper for tests.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// NewStoreForTest builds a Store whose HTTP layer is served by fn.
func NewStoreForTest(fn func(*http.Request) (*http.Response, error)) (*Store, error) {
	return NewStore(Config{
		Addresses: []string{"http://test:9200"},
		Transport: roundTripperFunc(fn),
	})
}

// TestResponse builds a canned engine response. The product header is
// required by the official client's product check.
func TestResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"X-Elastic-Product": []string{"Elasticsearch"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
