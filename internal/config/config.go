package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	AI         AIConfig         `mapstructure:"ai"`
	Log        LogConfig        `mapstructure:"log"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Typewriter TypewriterConfig `mapstructure:"typewriter"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig AI 服务配置
type AIConfig struct {
	Provider string          `mapstructure:"provider"`
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	Collection  string `mapstructure:"collection"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// AdminConfig 管理后台配置
type AdminConfig struct {
	SecretCode      string        `mapstructure:"secret_code"`      // 初始管理码，仅在数据库首次创建时使用
	MaxAttempts     int           `mapstructure:"max_attempts"`     // 锁定前允许的失败次数
	LockoutDuration time.Duration `mapstructure:"lockout_duration"` // 锁定时长
	JWTSecret       string        `mapstructure:"jwt_secret"`       // 管理会话签名密钥
	TokenExpiry     time.Duration `mapstructure:"token_expiry"`     // 管理会话过期时间
	AvatarMaxBytes  int64         `mapstructure:"avatar_max_bytes"` // 头像文件大小上限
	LoginRate       float64       `mapstructure:"login_rate"`       // 登录接口每秒请求数（按客户端IP）
	LoginBurst      int           `mapstructure:"login_burst"`
}

// StorageConfig 持久化存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // memory, local, redis, mongo
	Local *LocalConfig `mapstructure:"local,omitempty"`
}

// LocalConfig 本地文件存储配置 (bbolt)
type LocalConfig struct {
	Path   string `mapstructure:"path"`   // 数据文件路径
	Bucket string `mapstructure:"bucket"` // bucket 名称
}

// TypewriterConfig 打字机效果配置
type TypewriterConfig struct {
	MinDelay time.Duration `mapstructure:"min_delay"`
	MaxDelay time.Duration `mapstructure:"max_delay"`
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	return c.ValidateCore()
}

// ValidateCore 校验与传输层无关的配置（chat 命令也会用到）
func (c *Config) ValidateCore() error {
	validStorage := map[string]bool{"": true, "memory": true, "local": true, "redis": true, "mongo": true}
	if !validStorage[c.Storage.Type] {
		return errors.New("invalid storage type, must be memory/local/redis/mongo")
	}

	if c.Admin.MaxAttempts < 0 {
		return errors.New("admin.max_attempts must not be negative")
	}
	if c.Admin.LockoutDuration < 0 {
		return errors.New("admin.lockout_duration must not be negative")
	}

	if c.Typewriter.MinDelay < 0 || c.Typewriter.MaxDelay < c.Typewriter.MinDelay {
		return errors.New("invalid typewriter delay range")
	}

	return nil
}
