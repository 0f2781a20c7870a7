// Package redis provides a title catalog backed by Redis.
//
// Each partition is a list (insertion order) paired with a set (membership),
// both under a configurable key prefix:
//
//	<prefix>:<catalog>        LIST of titles
//	<prefix>:<catalog>:index  SET of titles
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.CatalogWriter = (*Catalog)(nil)

// addTitleScript pushes ARGV[1] onto the list only when it was new to the
// set, so both keys change together or not at all.
var addTitleScript = goredis.NewScript(`
if redis.call("SADD", KEYS[1], ARGV[1]) == 1 then
	redis.call("RPUSH", KEYS[2], ARGV[1])
	return 1
end
return 0
`)

// Catalog is a Redis-backed title catalog.
type Catalog struct {
	client *goredis.Client
	prefix string
	owned  bool
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Connect opens a client and verifies it with PING.
func Connect(ctx context.Context, opts Options) (*Catalog, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}

	c := NewCatalog(client, opts.Prefix)
	c.owned = true
	return c, nil
}

// NewCatalog wraps an existing client.
func NewCatalog(client *goredis.Client, prefix string) *Catalog {
	if prefix == "" {
		prefix = "dpln:catalog"
	}
	return &Catalog{client: client, prefix: prefix}
}

func (c *Catalog) listKey(p domain.Partition) string {
	return c.prefix + ":" + p.Catalog()
}

func (c *Catalog) indexKey(p domain.Partition) string {
	return c.listKey(p) + ":index"
}

// ListTitles returns the partition's titles in insertion order.
func (c *Catalog) ListTitles(ctx context.Context, partition domain.Partition) ([]string, error) {
	if !partition.IsValid() {
		return nil, fmt.Errorf("redis: list titles %q: %w", partition, domain.ErrUnknownPartition)
	}
	titles, err := c.client.LRange(ctx, c.listKey(partition), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list titles %s: %w", partition, err)
	}
	return titles, nil
}

// AddTitles appends titles not already present.
func (c *Catalog) AddTitles(ctx context.Context, partition domain.Partition, titles ...string) error {
	if !partition.IsValid() {
		return fmt.Errorf("redis: add titles %q: %w", partition, domain.ErrUnknownPartition)
	}

	for _, title := range titles {
		if title == "" {
			continue
		}
		keys := []string{c.indexKey(partition), c.listKey(partition)}
		if err := addTitleScript.Run(ctx, c.client, keys, title).Err(); err != nil {
			return fmt.Errorf("redis: add title %q: %w", title, err)
		}
	}
	return nil
}

// Close closes the client when the catalog opened it.
func (c *Catalog) Close() error {
	if !c.owned {
		return nil
	}
	return c.client.Close()
}
