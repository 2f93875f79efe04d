package esbind

import (
	"time"

	"go.uber.org/zap"
)

// Option customizes a Client.
type Option func(*options)

type options struct {
	addresses     []string
	username      string
	password      string
	apiKey        string
	tlsSkipVerify bool

	embedder   Embedder
	vectorDims int

	cacheAddrs    []string
	cacheUsername string
	cachePassword string
	cacheDB       int
	cacheTTL      time.Duration

	logger *zap.Logger

	shards         int
	replicas       int
	refreshOnWrite bool
}

// WithAddresses sets the engine node addresses. Required.
func WithAddresses(addrs ...string) Option {
	return func(o *options) { o.addresses = addrs }
}

// WithBasicAuth sets username/password authentication.
func WithBasicAuth(username, password string) Option {
	return func(o *options) {
		o.username = username
		o.password = password
	}
}

// WithAPIKey sets API key authentication.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithTLSSkipVerify disables TLS certificate verification.
func WithTLSSkipVerify() Option {
	return func(o *options) { o.tlsSkipVerify = true }
}

// WithEmbedder plugs in an embedding provider and declares the dimension
// of its vectors. Enables knn and hybrid search on content-tagged fields.
func WithEmbedder(e Embedder, dims int) Option {
	return func(o *options) {
		o.embedder = e
		o.vectorDims = dims
	}
}

// WithEmbedCache caches embeddings in Redis, keyed by text hash. Only
// effective together with WithEmbedder.
func WithEmbedCache(addrs ...string) Option {
	return func(o *options) { o.cacheAddrs = addrs }
}

// WithEmbedCacheAuth sets credentials for the embedding cache.
func WithEmbedCacheAuth(username, password string, db int) Option {
	return func(o *options) {
		o.cacheUsername = username
		o.cachePassword = password
		o.cacheDB = db
	}
}

// WithEmbedCacheTTL bounds the lifetime of cached embeddings. Zero keeps
// them indefinitely.
func WithEmbedCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.cacheTTL = ttl }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIndexSettings sets shard and replica counts for created indices.
func WithIndexSettings(shards, replicas int) Option {
	return func(o *options) {
		o.shards = shards
		o.replicas = replicas
	}
}

// WithRefreshOnWrite forces an index refresh after every document write so
// changes are immediately searchable. Meant for tests and small deployments.
func WithRefreshOnWrite() Option {
	return func(o *options) { o.refreshOnWrite = true }
}
