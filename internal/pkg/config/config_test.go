package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "order-srv", cfg.Server.Name)
	assert.Equal(t, 50063, cfg.Server.Port)
	assert.Equal(t, "goods-srv", cfg.App.GoodsSrvName)
	assert.Equal(t, 3*time.Second, cfg.App.RPCTimeout())
	assert.Equal(t, 10*time.Second, cfg.App.ReserveTimeout())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  name: order-srv-test
  port: 9999
mysql:
  host: db.internal
  dbname: orders
app:
  rpcTimeoutMs: 500
  discoverTag: metadata["env"] == "prod"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "order-srv-test", cfg.Server.Name)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "db.internal:3306", cfg.Mysql.Addr())
	assert.Equal(t, "orders", cfg.Mysql.DBName)
	assert.Equal(t, 500*time.Millisecond, cfg.App.RPCTimeout())
	assert.Equal(t, `metadata["env"] == "prod"`, cfg.App.DiscoverTag)
	// 文件没写的字段保留默认值
	assert.Equal(t, "root", cfg.Mysql.User)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "cache.internal:6379")
	t.Setenv("MYSQL_PASSWORD", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Mysql.Password)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
