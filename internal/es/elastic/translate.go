package elastic

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/esbind-io/esbind/internal/es"
)

// errorBody mirrors the error envelope the engine returns.
type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// classify turns an error response into an es.Error wrapping the right
// sentinel, with the server fault kept as cause.
func classify(op string, res *esapi.Response) error {
	srv := &es.ServerError{StatusCode: res.StatusCode}

	raw, err := io.ReadAll(res.Body)
	if err == nil && len(raw) > 0 {
		var body errorBody
		if json.Unmarshal(raw, &body) == nil {
			srv.Type = body.Error.Type
			srv.Reason = body.Error.Reason
		}
	}

	return &es.Error{Op: op, Err: sentinelFor(srv)}
}

func sentinelFor(srv *es.ServerError) error {
	switch srv.Type {
	case "index_not_found_exception":
		return join(es.ErrIndexNotFound, srv)
	case "resource_already_exists_exception":
		return join(es.ErrIndexExists, srv)
	case "version_conflict_engine_exception":
		return join(es.ErrConflict, srv)
	}
	switch srv.StatusCode {
	case http.StatusNotFound:
		return join(es.ErrDocNotFound, srv)
	case http.StatusConflict:
		return join(es.ErrConflict, srv)
	case http.StatusBadRequest:
		return join(es.ErrBadRequest, srv)
	}
	return srv
}

// join pairs a sentinel with the server fault so both match via errors.Is/As.
func join(sentinel error, srv *es.ServerError) error {
	return &classified{sentinel: sentinel, srv: srv}
}

type classified struct {
	sentinel error
	srv      *es.ServerError
}

func (c *classified) Error() string {
	return c.sentinel.Error() + ": " + c.srv.Error()
}

func (c *classified) Unwrap() []error {
	return []error{c.sentinel, c.srv}
}
