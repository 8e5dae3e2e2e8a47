package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Kafka    KafkaConfig    `json:"kafka"`
	Log      LogConfig      `json:"log"`
	Auth     AuthConfig     `json:"auth"`
	Dispatch DispatchConfig `json:"dispatch"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name     string `json:"name"`      // 服务名称
	Host     string `json:"host"`      // 服务地址
	Port     int    `json:"port"`      // 服务端口
	GRPCPort int    `json:"grpc_port"` // gRPC端口
	HTTPPort int    `json:"http_port"` // HTTP端口
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `json:"driver"`   // 数据库驱动
	Host     string `json:"host"`     // 数据库地址
	Port     int    `json:"port"`     // 数据库端口
	User     string `json:"user"`     // 用户名
	Password string `json:"password"` // 密码
	Database string `json:"database"` // 数据库名
	MaxIdle  int    `json:"max_idle"` // 最大空闲连接
	MaxOpen  int    `json:"max_open"` // 最大打开连接
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// ConsulConfig Consul配置
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig Jaeger配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 采样率 0.0-1.0
}

// KafkaConfig Kafka配置（通知投递的异步通道，当前核心内未消费）
type KafkaConfig struct {
	Brokers []string `json:"brokers"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // 日志文件路径
}

// AuthConfig JWT 鉴权配置
type AuthConfig struct {
	Enabled       bool                `json:"enabled"`        // 是否启用鉴权
	JWTSecret     string              `json:"jwt_secret"`     // HS256 密钥
	Issuer        string              `json:"issuer"`         // 可选：校验 iss
	Audience      string              `json:"audience"`       // 可选：校验 aud
	PublicMethods []string            `json:"public_methods"` // 免鉴权的 gRPC 方法全名
	RBAC          map[string][]string `json:"rbac"`           // method -> 允许的角色列表
}

// DispatchConfig 调度核心配置
type DispatchConfig struct {
	RequestNumberPrefix string `json:"request_number_prefix"` // 请求单号前缀，默认 TOW
	PingBucketCapacity  int64  `json:"ping_bucket_capacity"`  // 单司机定位上报令牌桶容量
	PingRefillRate      int64  `json:"ping_refill_rate"`      // 每秒补充令牌数
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig 加载配置
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = &Config{}
		// 如果配置文件不存在，使用默认配置
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			err = nil
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}

		applyDispatchDefaults(globalConfig)
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// applyDispatchDefaults 补齐调度配置的零值字段。
func applyDispatchDefaults(c *Config) {
	if c.Dispatch.RequestNumberPrefix == "" {
		c.Dispatch.RequestNumberPrefix = "TOW"
	}
	if c.Dispatch.PingBucketCapacity <= 0 {
		c.Dispatch.PingBucketCapacity = 30
	}
	if c.Dispatch.PingRefillRate <= 0 {
		c.Dispatch.PingRefillRate = 2
	}
}

// defaultConfig 默认配置（开发环境）
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "dispatch-service",
			Host:     "0.0.0.0",
			Port:     8080,
			GRPCPort: 50051,
			HTTPPort: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "towlinkdrive",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
			PoolSize: 10,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "http://localhost:14268/api/traces",
			Sampler:  1.0,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
		Auth: AuthConfig{
			Enabled: false,
		},
		Dispatch: DispatchConfig{
			RequestNumberPrefix: "TOW",
			PingBucketCapacity:  30,
			PingRefillRate:      2,
		},
	}
}
