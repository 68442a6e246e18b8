package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string            `mapstructure:"port"`
	SessionSecret string            `mapstructure:"session_secret"`
	SiteURL       string            `mapstructure:"site_url"`
	CORS          CORSConfig        `mapstructure:"cors"`
	Database      DatabaseConfig    `mapstructure:"database"`
	Redis         RedisConfig       `mapstructure:"redis"`
	RabbitMQ      RabbitMQConfig    `mapstructure:"rabbitmq"`
	Engine        EngineConfig      `mapstructure:"engine"`
	Views         ViewsConfig       `mapstructure:"views"`
	Moderation    ModerationConfig  `mapstructure:"moderation"`
	Calibration   CalibrationConfig `mapstructure:"calibration"`
	Mail          MailConfig        `mapstructure:"mail"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

// DatabaseConfig Driver 取值 postgres 或 sqlite
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"`
}

// RedisConfig Addr 为空时点赞排行榜降级为 no-op
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RabbitMQConfig URL 为空时不发布互动事件
type RabbitMQConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

type EngineConfig struct {
	GatewayTimeout  time.Duration `mapstructure:"gateway_timeout"`
	RetryRefresh    bool          `mapstructure:"retry_refresh"`
	FallbackOnEmpty bool          `mapstructure:"fallback_on_empty"`
}

type ViewsConfig struct {
	QueueSize     int           `mapstructure:"queue_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// ModerationConfig WordsFile 每行一个敏感词，与 BlockedWords 合并
type ModerationConfig struct {
	BlockedWords []string `mapstructure:"blocked_words"`
	WordsFile    string   `mapstructure:"words_file"`
}

// MailConfig 任一项为空时不发送通知邮件
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type CalibrationConfig struct {
	Cron string `mapstructure:"cron"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("session_secret", "secret_key_change_me")
	v.SetDefault("site_url", "http://localhost:8080")
	v.SetDefault("cors.origins", []string{})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=inkwell port=5432 sslmode=disable TimeZone=Asia/Shanghai")
	v.SetDefault("database.log_level", "warning")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.queue", "inkwell.interactions")

	v.SetDefault("engine.gateway_timeout", 5*time.Second)
	v.SetDefault("engine.retry_refresh", true)
	v.SetDefault("engine.fallback_on_empty", false)

	v.SetDefault("views.queue_size", 1000)
	v.SetDefault("views.flush_interval", 500*time.Millisecond)

	v.SetDefault("moderation.blocked_words", []string{})
	v.SetDefault("moderation.words_file", "")
	v.SetDefault("calibration.cron", "0 3 * * *")

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", "587")
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
}

// Load 读取 .env、可选的 YAML 配置文件（CONFIG_FILE）以及环境变量。
// 环境变量名为配置键的大写形式，"." 替换为 "_"，例如 DATABASE_DSN。
func Load() (*Config, error) {
	// .env 不存在时直接使用系统环境变量
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		// 允许 YAML 中使用 ${VAR}
		for _, key := range v.AllKeys() {
			if val, ok := v.Get(key).(string); ok && strings.Contains(val, "${") {
				v.Set(key, os.ExpandEnv(val))
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
