package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	DBDSN         string `mapstructure:"DB_DSN"`
	Environment   string `mapstructure:"ENV"`

	// AdminID Telegram ID единственного администратора
	AdminID int64 `mapstructure:"ADMIN_ID"`

	WebAppURL          string        `mapstructure:"WEBAPP_URL"`
	HTTPAddr           string        `mapstructure:"HTTP_ADDR"`
	VideosDir          string        `mapstructure:"VIDEOS_DIR"`
	DeliveryMobileOnly bool          `mapstructure:"DELIVERY_MOBILE_ONLY"`
	TokenTTL           time.Duration `mapstructure:"TOKEN_EXPIRY_HOURS"`
	TokenPurgeInterval time.Duration `mapstructure:"TOKEN_PURGE_INTERVAL_HOURS"` // 0 отключает очистку

	// Redis для диалогов. Пустой адрес = хранение в памяти процесса
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL_HOURS"`
}

// Load читает .env (если есть) и переменные окружения.
// Проверяет только то, что нужно всем командам; токен бота проверяет RequireBot
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из функции чтения переменных, удобно в тестах
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBDSN:         getenv("DB_DSN"),
		TelegramToken: getenv("TELEGRAM_TOKEN"),
		Environment:   stringOr(getenv("ENV"), "development"),
		WebAppURL:     stringOr(getenv("WEBAPP_URL"), "http://localhost:5000"),
		HTTPAddr:      stringOr(getenv("HTTP_ADDR"), ":5000"),
		VideosDir:     stringOr(getenv("VIDEOS_DIR"), "videos"),
		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
	}

	var err error
	if cfg.AdminID, err = parseInt64(getenv, "ADMIN_ID", 0); err != nil {
		return nil, err
	}
	if cfg.DeliveryMobileOnly, err = parseBool(getenv, "DELIVERY_MOBILE_ONLY", true); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = parseHours(getenv, "TOKEN_EXPIRY_HOURS", 24); err != nil {
		return nil, err
	}
	if cfg.TokenPurgeInterval, err = parseHours(getenv, "TOKEN_PURGE_INTERVAL_HOURS", 24); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = parseHours(getenv, "SESSION_TTL_HOURS", 24); err != nil {
		return nil, err
	}
	redisDB, err := parseInt64(getenv, "REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.RedisDB = int(redisDB)

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_EXPIRY_HOURS must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if cfg.TokenPurgeInterval < 0 {
		return nil, fmt.Errorf("TOKEN_PURGE_INTERVAL_HOURS must not be negative")
	}

	return cfg, nil
}

// RequireBot проверяет параметры, без которых бот не запускается
func (c *Config) RequireBot() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if c.AdminID <= 0 {
		return fmt.Errorf("ADMIN_ID is required but not set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseInt64(getenv func(string) string, key string, def int64) (int64, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

// maxHours наибольшее число часов, которое помещается в time.Duration
const maxHours = math.MaxInt64 / int64(time.Hour)

func parseHours(getenv func(string) string, key string, def int64) (time.Duration, error) {
	h, err := parseInt64(getenv, key, def)
	if err != nil {
		return 0, err
	}
	if h > maxHours || h < -maxHours {
		return 0, fmt.Errorf("parse %s: %d hours is out of range", key, h)
	}
	return time.Duration(h) * time.Hour, nil
}
