package esbind

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/esbind-io/esbind/internal/domain"
	"github.com/esbind-io/esbind/internal/es/elastic"
	kvredis "github.com/esbind-io/esbind/internal/kv/redis"
	"github.com/esbind-io/esbind/internal/metrics"
	"github.com/esbind-io/esbind/internal/registry"
	"github.com/esbind-io/esbind/internal/repository/embcache"
	documentrepo "github.com/esbind-io/esbind/internal/repository/document"
	indexrepo "github.com/esbind-io/esbind/internal/repository/index"
	searchrepo "github.com/esbind-io/esbind/internal/repository/search"
	documentuc "github.com/esbind-io/esbind/internal/usecase/document"
	indexuc "github.com/esbind-io/esbind/internal/usecase/index"
	searchuc "github.com/esbind-io/esbind/internal/usecase/search"
)

// Client binds schemas to an Elasticsearch cluster. Construct once with New
// and share; all methods are safe for concurrent use.
type Client struct {
	store      *elastic.Store
	cache      *kvredis.Store
	catalog    *registry.Registry
	indices    *indexuc.Service
	documents  *documentuc.Service
	search     *searchuc.Service
	logger     *zap.Logger
	vectorDims int
}

// New creates a Client connected to the configured cluster.
func New(opts ...Option) (*Client, error) {
	o := &options{
		shards:   1,
		replicas: 0,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	store, err := elastic.NewStore(elastic.Config{
		Addresses:     o.addresses,
		Username:      o.username,
		Password:      o.password,
		APIKey:        o.apiKey,
		TLSSkipVerify: o.tlsSkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("create engine client: %w", err)
	}

	c := &Client{
		store:      store,
		catalog:    registry.New(),
		logger:     o.logger,
		vectorDims: o.vectorDims,
	}

	var embedder domain.Embedder
	if o.embedder != nil {
		embedder = embedderAdapter{inner: o.embedder}
		if len(o.cacheAddrs) > 0 {
			cache, err := kvredis.NewStore(kvredis.Config{
				Addrs:    o.cacheAddrs,
				Username: o.cacheUsername,
				Password: o.cachePassword,
				DB:       o.cacheDB,
			})
			if err != nil {
				return nil, fmt.Errorf("create embedding cache: %w", err)
			}
			c.cache = cache
			embedder = embcache.New(embedder, cache, metrics.EmbeddingCacheTotal, o.logger).
				WithTTL(o.cacheTTL)
		}
	}

	idxRepo := indexrepo.New(store).WithSettings(indexrepo.Settings{
		Shards:   o.shards,
		Replicas: o.replicas,
	})
	docRepo := documentrepo.New(store).WithRefresh(o.refreshOnWrite)
	srchRepo := searchrepo.New(store)

	c.indices = indexuc.New(idxRepo, c.catalog)
	c.documents = documentuc.New(docRepo, c.catalog, embedder)
	c.search = searchuc.New(srchRepo, c.catalog, embedder)
	return c, nil
}

// Ping checks cluster connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// WaitForReady polls the cluster until it responds or the timeout elapses.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return c.store.WaitForReady(ctx, timeout)
}

// Close releases client resources.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
	c.store.Close()
}
