package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         int    `yaml:"port"`
	Host         string `yaml:"host"`
	Mode         string `yaml:"mode"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"`
}

type Logger struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`
}

// MySQLConfig 数据库配置
type MySQLConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	DBName       string `yaml:"dbname"`
	MaxOpenConns int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// JWTConfig JWT认证配置
type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours" mapstructure:"expire_hours"`
}

type Database struct {
	Mysql MySQLConfig `yaml:"mysql"`
	Redis RedisConfig `yaml:"redis"`
}

// RateLimitRule 单个限流规则
type RateLimitRule struct {
	RPS   int `yaml:"rps" mapstructure:"rps"`     // 每秒生成令牌数
	Burst int `yaml:"burst" mapstructure:"burst"` // 令牌桶容量
}

// RateLimitsConfig 多路由限流配置
type RateLimitsConfig struct {
	Global   RateLimitRule `yaml:"global" mapstructure:"global"`
	Checkout RateLimitRule `yaml:"checkout" mapstructure:"checkout"`
}

// CheckoutConfig 下单相关配置
type CheckoutConfig struct {
	// 每个用户下单互斥锁的持有秒数
	LockTTLSeconds int `yaml:"lock_ttl_seconds" mapstructure:"lock_ttl_seconds"`
	// 商品详情缓存秒数
	ProductCacheSeconds int `yaml:"product_cache_seconds" mapstructure:"product_cache_seconds"`
}

// Config 总配置结构体，嵌套所有子配置
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   Database         `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Logger     Logger           `yaml:"log" mapstructure:"log"`
	RateLimits RateLimitsConfig `yaml:"rate_limits" mapstructure:"rate_limits"`
	Checkout   CheckoutConfig   `yaml:"checkout" mapstructure:"checkout"`
}

func InitConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 读取内容
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败:%v", err)
	}

	var globalConfig Config
	if err := viper.Unmarshal(&globalConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败:%v", err)
	}

	applyDefaults(&globalConfig)

	return &globalConfig, nil
}

// LoadConfig 加载配置文件并返回配置对象
// 这个函数简化了配置加载过程，默认加载config.yaml
func LoadConfig() (*Config, error) {
	cfg, err := InitConfig("config/config.yaml")
	if err != nil {
		// 尝试当前目录
		cfg, err = InitConfig("../../config/config.yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %v", err)
		}
	}

	return cfg, nil
}

// applyDefaults 补充默认配置避免零值导致意外无限制或过度阻塞
func applyDefaults(cfg *Config) {
	if cfg.RateLimits.Global.RPS == 0 {
		cfg.RateLimits.Global.RPS = 1000
	}
	if cfg.RateLimits.Global.Burst == 0 {
		cfg.RateLimits.Global.Burst = 2000
	}
	if cfg.RateLimits.Checkout.RPS == 0 {
		cfg.RateLimits.Checkout.RPS = 200
	}
	if cfg.RateLimits.Checkout.Burst == 0 {
		cfg.RateLimits.Checkout.Burst = 400
	}
	if cfg.Checkout.LockTTLSeconds <= 0 {
		cfg.Checkout.LockTTLSeconds = 10
	}
	if cfg.Checkout.ProductCacheSeconds <= 0 {
		cfg.Checkout.ProductCacheSeconds = 30
	}
	if cfg.Database.Mysql.MaxOpenConns <= 0 {
		cfg.Database.Mysql.MaxOpenConns = 100
	}
	if cfg.Database.Mysql.MaxIdleConns <= 0 {
		cfg.Database.Mysql.MaxIdleConns = 10
	}
}
