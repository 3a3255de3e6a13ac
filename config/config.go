package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "config/config.yaml"

// Config 应用配置结构体
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	JWT          JWTConfig          `yaml:"jwt"`
	Session      SessionConfig      `yaml:"session"`
	Verification VerificationConfig `yaml:"verification"`
	Comment      CommentConfig      `yaml:"comment"`
	Log          LogConfig          `yaml:"log"`
	Redis        RedisConfig        `yaml:"redis"`
	RateLimit    RateLimitConfig    `yaml:"rateLimit"`
	WebSocket    WebSocketConfig    `yaml:"websocket"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	CookieSecure bool          `yaml:"cookieSecure"` // session cookie 是否仅限 HTTPS
}

// DatabaseConfig 数据库配置
// Driver 支持 mysql 与 sqlite；sqlite 时 DSN 为文件路径
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"` // 非空时直接使用，忽略 Host/Port 等字段
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`
	MaxIdle  int    `yaml:"maxIdle"`
	MaxOpen  int    `yaml:"maxOpen"`
	LogSQL   bool   `yaml:"logSQL"` // 是否打印SQL
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// SessionConfig 登录会话配置
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"`           // 会话有效期
	SweepInterval time.Duration `yaml:"sweepInterval"` // 过期会话清理间隔
	CookieName    string        `yaml:"cookieName"`
}

// VerificationConfig 验证码配置
type VerificationConfig struct {
	CodeTTL    time.Duration `yaml:"codeTTL"`
	CodeLength int           `yaml:"codeLength"`
}

// CommentConfig 评论配置
type CommentConfig struct {
	MaxLength int `yaml:"maxLength"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"maxSize"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"maxBackups"` // 最大备份文件数
	MaxAge     int    `yaml:"maxAge"`     // 最大保存天数
	Compress   bool   `yaml:"compress"`
	Console    bool   `yaml:"console"` // 同时输出到控制台
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	ReadTTL  time.Duration `yaml:"readTTL"` // 阅读去重标记的过期时间
}

// RateLimitConfig 限流配置，格式同 ulule/limiter，例如 "10-M"
type RateLimitConfig struct {
	Login   string `yaml:"login"`
	Comment string `yaml:"comment"`
	Code    string `yaml:"code"`
}

// WebSocketConfig WebSocket 心跳配置
type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"pingInterval"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
}

// LoadConfig 加载配置（YAML文件 + .env + 环境变量）
func LoadConfig() *Config {
	return Load(DefaultConfigPath)
}

// Load 从指定路径加载配置
func Load(path string) *Config {
	cfg := loadFromYAML(path)

	// .env 不存在时忽略
	_ = godotenv.Load()

	overrideWithEnvVars(cfg)
	return cfg
}

// loadFromYAML 从YAML文件加载配置，缺省字段使用默认值
func loadFromYAML(filePath string) *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig()
	}
	return cfg
}

// overrideWithEnvVars 用环境变量覆盖配置
func overrideWithEnvVars(config *Config) {
	// 服务器配置
	if port := getEnv("SERVER_PORT", ""); port != "" {
		config.Server.Port = port
	}
	if timeout := getEnvDuration("SERVER_READ_TIMEOUT", 0); timeout > 0 {
		config.Server.ReadTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_WRITE_TIMEOUT", 0); timeout > 0 {
		config.Server.WriteTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_IDLE_TIMEOUT", 0); timeout > 0 {
		config.Server.IdleTimeout = timeout
	}
	config.Server.CookieSecure = getEnvBool("SERVER_COOKIE_SECURE", config.Server.CookieSecure)

	// 数据库配置
	if driver := getEnv("DB_DRIVER", ""); driver != "" {
		config.Database.Driver = driver
	}
	if dsn := getEnv("DB_DSN", ""); dsn != "" {
		config.Database.DSN = dsn
	}
	if host := getEnv("DB_HOST", ""); host != "" {
		config.Database.Host = host
	}
	if port := getEnvInt("DB_PORT", 0); port > 0 {
		config.Database.Port = port
	}
	if username := getEnv("DB_USERNAME", ""); username != "" {
		config.Database.Username = username
	}
	if password := getEnv("DB_PASSWORD", ""); password != "" {
		config.Database.Password = password
	}
	if database := getEnv("DB_DATABASE", ""); database != "" {
		config.Database.Database = database
	}
	if maxIdle := getEnvInt("DB_MAX_IDLE", 0); maxIdle > 0 {
		config.Database.MaxIdle = maxIdle
	}
	if maxOpen := getEnvInt("DB_MAX_OPEN", 0); maxOpen > 0 {
		config.Database.MaxOpen = maxOpen
	}
	config.Database.LogSQL = getEnvBool("DB_LOG_SQL", config.Database.LogSQL)

	// JWT配置
	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		config.JWT.Secret = secret
	}
	if issuer := getEnv("JWT_ISSUER", ""); issuer != "" {
		config.JWT.Issuer = issuer
	}

	// 会话与验证码
	if ttl := getEnvDuration("SESSION_TTL", 0); ttl > 0 {
		config.Session.TTL = ttl
	}
	if d := getEnvDuration("SESSION_SWEEP_INTERVAL", 0); d > 0 {
		config.Session.SweepInterval = d
	}
	if ttl := getEnvDuration("CODE_TTL", 0); ttl > 0 {
		config.Verification.CodeTTL = ttl
	}
	if n := getEnvInt("COMMENT_MAX_LENGTH", 0); n > 0 {
		config.Comment.MaxLength = n
	}

	// 日志配置
	if level := getEnv("LOG_LEVEL", ""); level != "" {
		config.Log.Level = level
	}
	if filename := getEnv("LOG_FILENAME", ""); filename != "" {
		config.Log.Filename = filename
	}
	if maxSize := getEnvInt("LOG_MAX_SIZE", 0); maxSize > 0 {
		config.Log.MaxSize = maxSize
	}
	config.Log.Console = getEnvBool("LOG_CONSOLE", config.Log.Console)

	// Redis配置
	config.Redis.Enabled = getEnvBool("REDIS_ENABLED", config.Redis.Enabled)
	if host := getEnv("REDIS_HOST", ""); host != "" {
		config.Redis.Host = host
	}
	if port := getEnvInt("REDIS_PORT", 0); port > 0 {
		config.Redis.Port = port
	}
	if password := getEnv("REDIS_PASSWORD", ""); password != "" {
		config.Redis.Password = password
	}
	if db := getEnvInt("REDIS_DB", -1); db >= 0 {
		config.Redis.DB = db
	}

	// 限流
	if rate := getEnv("RATE_LOGIN", ""); rate != "" {
		config.RateLimit.Login = rate
	}
	if rate := getEnv("RATE_COMMENT", ""); rate != "" {
		config.RateLimit.Comment = rate
	}
	if rate := getEnv("RATE_CODE", ""); rate != "" {
		config.RateLimit.Code = rate
	}

	// WebSocket配置
	if d := getEnvDuration("WS_PING_INTERVAL", 0); d > 0 {
		config.WebSocket.PingInterval = d
	}
	if d := getEnvDuration("WS_READ_TIMEOUT", 0); d > 0 {
		config.WebSocket.ReadTimeout = d
	}
}

// DefaultConfig 获取默认配置
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			Username: "news_user",
			Database: "news_cms",
			Charset:  "utf8mb4",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		JWT: JWTConfig{
			Secret: "change-me-in-production",
			Issuer: "news-cms",
		},
		Session: SessionConfig{
			TTL:           7 * 24 * time.Hour,
			SweepInterval: 5 * time.Minute,
			CookieName:    "session",
		},
		Verification: VerificationConfig{
			CodeTTL:    15 * time.Minute,
			CodeLength: 6,
		},
		Comment: CommentConfig{
			MaxLength: 1000,
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		Redis: RedisConfig{
			Host:    "localhost",
			Port:    6379,
			ReadTTL: 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Login:   "10-M",
			Comment: "20-M",
			Code:    "5-M",
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  90 * time.Second,
		},
	}
}

// 辅助函数：获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// 辅助函数：获取整数环境变量
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// 辅助函数：获取布尔环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// 辅助函数：获取时间环境变量
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
