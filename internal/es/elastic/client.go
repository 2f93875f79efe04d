package elastic

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/esbind-io/esbind/internal/es"
)

// Compile-time check: Store implements es.Store.
var _ es.Store = (*Store)(nil)

// Config holds connection parameters for the cluster.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	APIKey    string
	// TLSSkipVerify disables certificate verification (dev only).
	TLSSkipVerify bool
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Store implements es.Store via the official client.
type Store struct {
	client *elasticsearch.Client
}

// NewStore creates a Store backed by the official client.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("addresses is required")
	}

	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
		Transport: cfg.Transport,
	}
	if cfg.TLSSkipVerify && cfg.Transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit dev opt-in
		esCfg.Transport = t
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping checks cluster connectivity.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return &es.Error{Op: es.OpPing, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return classify(es.OpPing, res)
	}
	return nil
}

// Info returns cluster identity and version.
func (s *Store) Info(ctx context.Context) (es.ClusterInfo, error) {
	res, err := s.client.Info(s.client.Info.WithContext(ctx))
	if err != nil {
		return es.ClusterInfo{}, &es.Error{Op: es.OpInfo, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return es.ClusterInfo{}, classify(es.OpInfo, res)
	}

	var body struct {
		Name        string `json:"name"`
		ClusterName string `json:"cluster_name"`
		Version     struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return es.ClusterInfo{}, fmt.Errorf("decode info: %w", err)
	}
	return es.ClusterInfo{
		Name:        body.Name,
		ClusterName: body.ClusterName,
		Version:     body.Version.Number,
	}, nil
}

// Close releases resources. The official client owns no connections beyond
// the HTTP transport pool, so there is nothing to shut down.
func (s *Store) Close() {}

// WaitForReady polls Ping until the cluster responds or the timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for cluster: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
