package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Email    EmailConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Enabled: без Redis одноразовые коды и лимиты хранятся в памяти процесса
	Enabled bool `mapstructure:"enabled"`

	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	// Используется, если Mode="single" и Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expiration_hrs"`
}

// AuthConfig содержит настройки одноразовых кодов и лимита их отправки
type AuthConfig struct {
	OTPTTL       time.Duration `mapstructure:"otp_ttl"`
	OTPRetention time.Duration `mapstructure:"otp_retention"`
	SendOTPLimit RateLimit     `mapstructure:"send_otp_limit"`
}

// RateLimit - не больше Requests запросов за Window с одного IP
type RateLimit struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// EmailConfig содержит настройки отправки писем через Resend
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// Configured сообщает, задан ли почтовый транспорт
func (e EmailConfig) Configured() bool {
	return e.ResendAPIKey != "" && e.From != ""
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 30)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("jwt.expiration_hrs", 24)
	vip.SetDefault("auth.otp_ttl", 2*time.Minute)
	vip.SetDefault("auth.otp_retention", time.Hour)
	vip.SetDefault("auth.send_otp_limit.requests", 5)
	vip.SetDefault("auth.send_otp_limit.window", time.Minute)
}

// Load загружает конфигурацию и проверяет обязательные параметры сервера
func Load(configPath string) (*Config, error) {
	cfg, err := Read(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read загружает конфигурацию из файла и переменных окружения без проверки.
// Используется утилитами, которым нужна только часть настроек.
func Read(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	setDefaults(vip)

	// Привязываем переменные окружения ЯВНО
	bindings := map[string]string{
		"server.port":            "SERVER_PORT",
		"server.allowed_origins": "SERVER_ALLOWED_ORIGINS",

		"database.host":     "DATABASE_HOST",
		"database.port":     "DATABASE_PORT",
		"database.user":     "DATABASE_USER",
		"database.password": "DATABASE_PASSWORD",
		"database.dbname":   "DATABASE_DBNAME",
		"database.sslmode":  "DATABASE_SSLMODE",

		"redis.enabled":     "REDIS_ENABLED",
		"redis.mode":        "REDIS_MODE",
		"redis.addrs":       "REDIS_ADDRS",
		"redis.addr":        "REDIS_ADDR",
		"redis.password":    "REDIS_PASSWORD",
		"redis.db":          "REDIS_DB",
		"redis.master_name": "REDIS_MASTER_NAME",

		"jwt.secret":         "JWT_SECRET",
		"jwt.expiration_hrs": "JWT_EXPIRATION_HRS",

		"auth.otp_ttl":       "AUTH_OTP_TTL",
		"auth.otp_retention": "AUTH_OTP_RETENTION",

		"email.resend_api_key": "RESEND_API_KEY",
		"email.from":           "EMAIL_FROM",
	}
	for key, env := range bindings {
		if err := vip.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файл не обязателен: значения могут прийти из окружения
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Списки из env приходят одной строкой через запятую
	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins)
	cfg.Redis.Addrs = splitList(cfg.Redis.Addrs)

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Enabled: %t (mode: %s)", cfg.Redis.Enabled, cfg.Redis.Mode)
		log.Printf("JWT Expiration Hours: %d", cfg.JWT.ExpirationHrs)
		log.Printf("Email Configured: %t", cfg.Email.Configured())
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	return &cfg, nil
}

// Validate проверяет обязательные параметры.
// Отсутствие настроек почты не фатально: отправка кода вернет ошибку конфигурации.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.Redis.Enabled && len(c.Redis.Addrs) == 0 && c.Redis.Addr == "" {
		return fmt.Errorf("redis is enabled but no address is configured (check REDIS_ADDR or REDIS_ADDRS env vars)")
	}
	if c.Auth.SendOTPLimit.Requests <= 0 || c.Auth.SendOTPLimit.Window <= 0 {
		return fmt.Errorf("auth.send_otp_limit must have positive requests and window")
	}
	return nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
