// internal/pkg/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是整个服务的不可变配置。
// 在 main 中构造一次，之后只读，按引用传给需要的组件。
type Config struct {
	Server ServerConfig `yaml:"server"`
	Mysql  MysqlConfig  `yaml:"mysql"`
	Redis  RedisConfig  `yaml:"redis"`
	Kafka  KafkaConfig  `yaml:"kafka"`
	Nacos  NacosConfig  `yaml:"nacos"`
	Jaeger JaegerConfig `yaml:"jaeger"`
	App    AppConfig    `yaml:"app"`
}

type ServerConfig struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type MysqlConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

func (m MysqlConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"groupId"`
}

type NacosConfig struct {
	Addrs     string `yaml:"addrs"` // "ip1:port1,ip2:port2"
	Namespace string `yaml:"namespace"`
	Group     string `yaml:"group"`
}

type JaegerConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// AppConfig 汇总业务层的超时与服务名配置。
// 超时统一用毫秒表示，避免 YAML 解析 Duration 的歧义。
type AppConfig struct {
	GoodsSrvName     string `yaml:"goodsSrvName"`
	InventorySrvName string `yaml:"inventorySrvName"`
	RPCTimeoutMs     int    `yaml:"rpcTimeoutMs"`
	ReserveTimeoutMs int    `yaml:"reserveTimeoutMs"`
	DiscoverTag      string `yaml:"discoverTag"` // 可选的实例筛选表达式
}

func (a AppConfig) RPCTimeout() time.Duration {
	return time.Duration(a.RPCTimeoutMs) * time.Millisecond
}

func (a AppConfig) ReserveTimeout() time.Duration {
	return time.Duration(a.ReserveTimeoutMs) * time.Millisecond
}

// Load 从 YAML 文件加载配置，环境变量优先于文件内容。
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.App.RPCTimeoutMs <= 0 {
		cfg.App.RPCTimeoutMs = 3000
	}
	if cfg.App.ReserveTimeoutMs <= 0 {
		cfg.App.ReserveTimeoutMs = 10000
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Name: "order-srv", Host: "0.0.0.0", Port: 50063},
		Mysql:  MysqlConfig{Host: "127.0.0.1", Port: 3306, User: "root", DBName: "mall_order"},
		Redis:  RedisConfig{Addr: "127.0.0.1:6379"},
		Kafka:  KafkaConfig{Brokers: []string{"localhost:9092"}, GroupID: "mall-order"},
		Nacos:  NacosConfig{Addrs: "localhost:8848", Group: "DEFAULT_GROUP"},
		Jaeger: JaegerConfig{Endpoint: "http://localhost:14268/api/traces"},
		App: AppConfig{
			GoodsSrvName:     "goods-srv",
			InventorySrvName: "inventory-srv",
			RPCTimeoutMs:     3000,
			ReserveTimeoutMs: 10000,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("NACOS_SERVER_ADDRS"); ok {
		cfg.Nacos.Addrs = v
	}
	if v, ok := os.LookupEnv("NACOS_NAMESPACE"); ok {
		cfg.Nacos.Namespace = v
	}
	if v, ok := os.LookupEnv("NACOS_GROUP"); ok {
		cfg.Nacos.Group = v
	}
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("JAEGER_ENDPOINT"); ok {
		cfg.Jaeger.Endpoint = v
	}
	if v, ok := os.LookupEnv("MYSQL_PASSWORD"); ok {
		cfg.Mysql.Password = v
	}
}
