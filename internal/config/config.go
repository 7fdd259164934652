package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`  // 服务器配置
	Store   StoreConfig   `mapstructure:"store"`   // 文档库配置
	Session SessionConfig `mapstructure:"session"` // 会话配置
	Admin   AdminConfig   `mapstructure:"admin"`   // 管理员配置
	Log     LogConfig     `mapstructure:"log"`     // 日志配置
	Import  ImportConfig  `mapstructure:"import"`  // 表格导入配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int      `mapstructure:"port"`         // 服务端口
	Mode        string   `mapstructure:"mode"`         // Gin运行模式：debug/release/test
	CORSOrigins []string `mapstructure:"cors_origins"` // 允许跨域的前端地址
	Pprof       bool     `mapstructure:"pprof"`        // 是否注册 pprof
}

// StoreConfig 文档库配置
type StoreConfig struct {
	Driver    string          `mapstructure:"driver"` // firestore/postgres/memory/none
	AppID     string          `mapstructure:"app_id"` // artifacts/{app_id}/public/data/...
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Firestore FirestoreConfig `mapstructure:"firestore"`
}

// PostgresConfig PostgreSQL 后端配置
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL 形式）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogSQL          bool          `mapstructure:"log_sql"`           // 是否打印SQL
}

// FirestoreConfig Firestore 后端配置
type FirestoreConfig struct {
	ProjectID       string `mapstructure:"project_id"`       // GCP 项目ID
	CredentialsFile string `mapstructure:"credentials_file"` // 服务账号 JSON 路径
	CredentialsJSON string `mapstructure:"credentials_json"` // 服务账号 JSON 内容（优先）
}

// SessionConfig 会话配置
type SessionConfig struct {
	Secret      string        `mapstructure:"secret"`       // cookie 签名密钥
	CookieName  string        `mapstructure:"cookie_name"`  // cookie 名称
	IdleTimeout time.Duration `mapstructure:"idle_timeout"` // 空闲多久后丢弃会话缓存
}

// AdminConfig 管理员配置
type AdminConfig struct {
	DefaultPassword string `mapstructure:"default_password"` // 文档库不可用时的后备密码
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`        // debug/info/warn/error
	Format     string `mapstructure:"format"`       // text/json
	File       string `mapstructure:"file"`         // 日志文件，空则输出到 stdout
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // 单个文件大小上限
	MaxBackups int    `mapstructure:"max_backups"`  // 保留旧文件个数
	MaxAgeDays int    `mapstructure:"max_age_days"` // 保留天数
}

// ImportConfig 从 URL 导入表格时的 HTTP 配置
type ImportConfig struct {
	Timeout int    `mapstructure:"timeout"` // 请求超时（秒）
	Proxy   string `mapstructure:"proxy"`   // 代理地址
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.app_id", "squash-management-v1")
	v.SetDefault("store.postgres.max_open_conns", 10)
	v.SetDefault("store.postgres.max_idle_conns", 5)
	v.SetDefault("store.postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("session.cookie_name", "squash_session")
	v.SetDefault("session.idle_timeout", 2*time.Hour)
	v.SetDefault("admin.default_password", "8888")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("import.timeout", 20)
}

// LoadConfig 加载配置文件（默认 config/config.yaml），敏感项从 .env / 环境变量覆盖（不提交 git）。
// path 为空时在 ./config 下查找；配置文件不存在时使用默认值
func LoadConfig(path string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("SQUASH_SESSION_SECRET"); v != "" {
		cfg.Session.Secret = v
	}
	if v := os.Getenv("SQUASH_PG_DSN"); v != "" {
		cfg.Store.Postgres.DSN = v
	}
	if v := os.Getenv("SQUASH_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("SQUASH_FIRESTORE_PROJECT"); v != "" {
		cfg.Store.Firestore.ProjectID = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" && cfg.Store.Firestore.CredentialsFile == "" {
		cfg.Store.Firestore.CredentialsFile = v
	}
	if v := os.Getenv("SQUASH_FIRESTORE_CREDENTIALS_JSON"); v != "" {
		cfg.Store.Firestore.CredentialsJSON = v
	}
	if v := os.Getenv("SQUASH_ADMIN_DEFAULT_PASSWORD"); v != "" {
		cfg.Admin.DefaultPassword = v
	}
}
