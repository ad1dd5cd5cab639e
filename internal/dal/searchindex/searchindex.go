package searchindex

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ordent/fulfillment/internal/apperror"
	"github.com/spf13/viper"
)

// Index is the free-text search boundary. Given a query derived from the
// name/description search terms it returns candidate order ids; the order
// repository then constrains those by the exact date match. An unavailable
// index is an error, distinguishable from a query that matched nothing
// (empty slice, nil error). Keeping the index in sync with the orders table
// is an external concern.
type Index interface {
	Search(ctx context.Context, query string) ([]int64, error)
}

// RedisIndex implements Index over per-token Redis sets. Each token of an
// indexed order lives in orders_index:token:<token> as a set of order ids.
type RedisIndex struct {
	rdb *redis.Client
}

// MustNewRedisIndex creates a Redis-backed search index client.
func MustNewRedisIndex() *RedisIndex {
	rdb := redis.NewClient(&redis.Options{
		Addr: viper.GetString("redis.addr"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		panic("failed to connect to redis: " + err.Error())
	}

	return &RedisIndex{rdb: rdb}
}

// Close closes the underlying Redis connection for graceful shutdown.
func (i *RedisIndex) Close() error {
	return i.rdb.Close()
}

// Search returns the union of order ids indexed under the query's tokens.
func (i *RedisIndex) Search(ctx context.Context, query string) ([]int64, error) {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return []int64{}, nil
	}

	keys := make([]string, 0, len(tokens))
	for _, token := range tokens {
		keys = append(keys, "orders_index:token:"+token)
	}

	members, err := i.rdb.SUnion(ctx, keys...).Result()
	if err != nil {
		return nil, apperror.NewPersistence("search index unavailable", err)
	}

	ids := make([]int64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			// Foreign entries in the index are skipped rather than failing
			// the whole search.
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}
