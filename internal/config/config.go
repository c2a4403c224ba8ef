package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Tracing     TracingConfig     `mapstructure:"tracing"`
	CORS        CORSConfig        `mapstructure:"cors"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Progression ProgressionConfig `mapstructure:"progression"`
	Log         LogConfig         `mapstructure:"log"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	MigrateOnly bool `mapstructure:"-"`
	SeedOnly    bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"`
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	// SQLite 数据库文件路径
	Path string `mapstructure:"path"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
	CookieName string        `mapstructure:"cookie_name"`
	Secure     bool          `mapstructure:"secure_cookie"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

// ProgressionConfig 积分/等级引擎的运行参数，支持热更新
type ProgressionConfig struct {
	ApplyStreakBonus        bool `mapstructure:"apply_streak_bonus"`
	SeedDefaultsOnStart     bool `mapstructure:"seed_defaults_on_start"`
	LeaderboardDefaultLimit int  `mapstructure:"leaderboard_default_limit"`
	LeaderboardMaxLimit     int  `mapstructure:"leaderboard_max_limit"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LEARNING_POINTS")
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("jwt.cookie_name", "access_token")
	v.SetDefault("rate_limit.max_requests", 1000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("progression.seed_defaults_on_start", true)
	v.SetDefault("progression.leaderboard_default_limit", 10)
	v.SetDefault("progression.leaderboard_max_limit", 100)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")
	v.BindEnv("database.path", "DATABASE_PATH")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Progression
	v.BindEnv("progression.apply_streak_bonus", "PROGRESSION_APPLY_STREAK_BONUS")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Progression.LeaderboardDefaultLimit <= 0 {
		cfg.Progression.LeaderboardDefaultLimit = 10
	}
	if cfg.Progression.LeaderboardMaxLimit < cfg.Progression.LeaderboardDefaultLimit {
		cfg.Progression.LeaderboardMaxLimit = cfg.Progression.LeaderboardDefaultLimit
	}

	return &cfg, nil
}
