package storage

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/example/ec-shop-assistant/internal/config"
	"github.com/example/ec-shop-assistant/internal/domain/order"
	"github.com/example/ec-shop-assistant/internal/infrastructure/cache"
	"github.com/example/ec-shop-assistant/internal/infrastructure/kafka"
	"github.com/example/ec-shop-assistant/internal/infrastructure/postgres"
	"github.com/example/ec-shop-assistant/internal/infrastructure/store/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// stubSeams swaps the package connectors for the duration of a test.
func stubSeams(t *testing.T) {
	t.Helper()
	origPG, origPrep, origDynamo, origRedis := connectPostgres, preparePostgres, newDynamoMirror, newRedisCache
	t.Cleanup(func() {
		connectPostgres, preparePostgres, newDynamoMirror, newRedisCache = origPG, origPrep, origDynamo, origRedis
	})
}

type fakeCache struct {
	pingErr error
	closed  bool
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (c *fakeCache) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (c *fakeCache) GenerateKey(operation, key string) string { return operation + ":" + key }
func (c *fakeCache) Ping(ctx context.Context) error { return c.pingErr }
func (c *fakeCache) Close() error {
	c.closed = true
	return nil
}

func TestOpen_Memory(t *testing.T) {
	p := Open(context.Background(), config.Config{StoreBackend: config.BackendMemory}, quietLogger())
	defer p.Close()

	assert.NotNil(t, p.Carts)
	assert.NotNil(t, p.Orders)
	assert.NotNil(t, p.Contexts)
	assert.Nil(t, p.Catalog)
	assert.Nil(t, p.Mirror)
}

func TestOpen_PostgresUnavailableFallsBack(t *testing.T) {
	stubSeams(t)
	connectPostgres = func(ctx context.Context, url string) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	}

	p := Open(context.Background(), config.Config{StoreBackend: config.BackendPostgres, RedisAddr: "redis:6379"}, quietLogger())

	assert.Nil(t, p.Catalog)
	assert.Nil(t, p.Mirror)
	assert.NoError(t, p.Close())
}

func TestOpen_Postgres(t *testing.T) {
	stubSeams(t)
	db, err := sql.Open("postgres", "postgres://unused")
	require.NoError(t, err)
	connectPostgres = func(ctx context.Context, url string) (*sql.DB, error) { return db, nil }
	preparePostgres = func(ctx context.Context, db *sql.DB) error { return nil }
	fc := &fakeCache{}
	newRedisCache = func(addr string) pingCache { return fc }

	p := Open(context.Background(), config.Config{StoreBackend: config.BackendPostgres, RedisAddr: "redis:6379"}, quietLogger())

	assert.IsType(t, &cache.CachedCatalog{}, p.Catalog)
	assert.IsType(t, &postgres.OrderMirror{}, p.Mirror)
	require.NoError(t, p.Close())
	assert.True(t, fc.closed)
}

func TestOpen_PostgresWithoutRedis(t *testing.T) {
	stubSeams(t)
	db, err := sql.Open("postgres", "postgres://unused")
	require.NoError(t, err)
	connectPostgres = func(ctx context.Context, url string) (*sql.DB, error) { return db, nil }
	preparePostgres = func(ctx context.Context, db *sql.DB) error { return nil }
	fc := &fakeCache{pingErr: errors.New("no route")}
	newRedisCache = func(addr string) pingCache { return fc }

	p := Open(context.Background(), config.Config{StoreBackend: config.BackendPostgres, RedisAddr: "redis:6379"}, quietLogger())
	defer p.Close()

	assert.IsType(t, &postgres.Catalog{}, p.Catalog)
	assert.True(t, fc.closed)
}

func TestOpen_DynamoAndKafka(t *testing.T) {
	stubSeams(t)
	dynamoMirror := &mocks.MockOrderMirror{}
	newDynamoMirror = func(ctx context.Context, table string) (order.Mirror, error) {
		assert.Equal(t, "orders-table", table)
		return dynamoMirror, nil
	}

	p := Open(context.Background(), config.Config{
		StoreBackend:        config.BackendDynamoDB,
		DynamoDBOrdersTable: "orders-table",
		KafkaBrokers:        []string{"localhost:9092"},
		KafkaTopic:          "shop-orders",
	}, quietLogger())
	defer p.Close()

	assert.Nil(t, p.Catalog)
	mirrors, ok := p.Mirror.(order.Mirrors)
	require.True(t, ok)
	require.Len(t, mirrors, 2)
	assert.Same(t, dynamoMirror, mirrors[0])
	assert.IsType(t, &kafka.Producer{}, mirrors[1])
}

func TestOpen_DynamoUnavailable(t *testing.T) {
	stubSeams(t)
	newDynamoMirror = func(ctx context.Context, table string) (order.Mirror, error) {
		return nil, errors.New("no credentials")
	}

	p := Open(context.Background(), config.Config{StoreBackend: config.BackendDynamoDB}, quietLogger())

	assert.Nil(t, p.Mirror)
}
