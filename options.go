package quill

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs       []string
	username    string
	password    string
	db          int
	keyPrefix   string
	concurrency int
}

// WithRedis attaches a redis-backed persistent store. Indexes and
// documents survive restarts and are rebuilt on New.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
	}
}

// WithRedisAuth sets redis credentials.
func WithRedisAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithRedisDB selects a redis logical database.
func WithRedisDB(db int) Option {
	return func(c *clientConfig) {
		c.db = db
	}
}

// WithKeyPrefix sets the redis key namespace. Default is "quill:".
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithConcurrency sets the multi-search worker pool size.
func WithConcurrency(n int) Option {
	return func(c *clientConfig) {
		c.concurrency = n
	}
}

// IndexOption configures index creation.
type IndexOption func(*indexConfig)

type indexConfig struct {
	primaryKey string
	searchable []string
}

// WithPrimaryKey sets the document identifier attribute. Default is "id".
func WithPrimaryKey(key string) IndexOption {
	return func(c *indexConfig) {
		c.primaryKey = key
	}
}

// WithSearchableAttributes restricts and orders the attributes the engine
// matches query terms against. Earlier attributes rank higher.
func WithSearchableAttributes(attrs ...string) IndexOption {
	return func(c *indexConfig) {
		c.searchable = attrs
	}
}
