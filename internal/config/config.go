// Package config предоставляет структуры и функции для загрузки конфигурации
// из YAML-файла с переопределением через переменные окружения.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
	RegKey                  string `yaml:"reg_key" env:"REG_KEY"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RateLimit               `yaml:"rate_limit"`
	ObjectStorage           `yaml:"object_storage"`
	Upload                  `yaml:"upload"`
	Reaper                  `yaml:"reaper"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP     string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP     time.Duration `yaml:"timeouthttp" env-default:"2m"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"168h"`
}

// RateLimit — ограничение числа запросов с одного IP на входе и регистрации.
type RateLimit struct {
	WindowMinutes int  `yaml:"window_minutes" env-default:"15"`
	Max           int  `yaml:"max" env-default:"100"` // На все процессы вместе
	TrustProxy    bool `yaml:"trust_proxy" env:"TRUST_PROXY" env-default:"false"`
}

// Window возвращает окно лимита.
func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

// ObjectStorage — подключение к S3-совместимому хранилищу.
type ObjectStorage struct {
	Endpoint     string `yaml:"endpoint" env:"S3_ENDPOINT"`
	Region       string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	Bucket       string `yaml:"bucket" env:"S3_BUCKET" env-required:"true"`
	AccessKey    string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey    string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Folder       string `yaml:"folder" env:"S3_FOLDER" env-default:"staffdesk/"`
	UsePathStyle bool   `yaml:"use_path_style" env-default:"false"`
	PublicURL    string `yaml:"public_url" env:"S3_PUBLIC_URL"`
}

// Upload — обработка загружаемых файлов.
type Upload struct {
	ScratchDir   string        `yaml:"scratch_dir" env-default:"/tmp/staffdesk"`
	Ghostscript  string        `yaml:"ghostscript" env:"GHOSTSCRIPT_BINARY" env-default:"gs"`
	PDFTimeout   time.Duration `yaml:"pdf_timeout" env-default:"60s"`
	Concurrency  int           `yaml:"concurrency" env-default:"4"`
	ImageQuality int           `yaml:"image_quality" env-default:"80"`
}

// Reaper — очистка неиспользуемых загрузок по расписанию.
type Reaper struct {
	Schedule  string        `yaml:"schedule" env-default:"0 59 23 * * *"`
	Timezone  string        `yaml:"timezone" env:"TZ_REAPER" env-default:"Asia/Tashkent"`
	Retention time.Duration `yaml:"retention" env-default:"24h"`
	Timeout   time.Duration `yaml:"timeout" env-default:"10m"`
}

// Location возвращает часовой пояс расписания.
func (r Reaper) Location() (*time.Location, error) {
	return time.LoadLocation(r.Timezone)
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	// .env необязателен: в контейнере переменные приходят из окружения.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла path и проверяет его.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.RateLimit.WindowMinutes < 1 {
		errs = append(errs, errors.New("rate_limit.window_minutes must be positive"))
	}
	if c.RateLimit.Max < 1 {
		errs = append(errs, errors.New("rate_limit.max must be positive"))
	}
	if _, err := c.Reaper.Location(); err != nil {
		errs = append(errs, fmt.Errorf("reaper.timezone: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"RateLimit:\n"+
			"  Window: %s\n"+
			"  Max: %d\n"+
			"  TrustProxy: %t\n"+
			"ObjectStorage:\n"+
			"  Endpoint: %s\n"+
			"  Bucket: %s\n"+
			"  Folder: %s\n"+
			"Reaper:\n"+
			"  Schedule: %s\n"+
			"  Timezone: %s\n"+
			"  Retention: %s\n",
		c.Env,
		c.MigrationsPath,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.RateLimit.Window(),
		c.RateLimit.Max,
		c.TrustProxy,
		c.Endpoint,
		c.Bucket,
		c.Folder,
		c.Schedule,
		c.Timezone,
		c.Retention,
	)
}
