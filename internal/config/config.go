// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек всех сервисов трекера.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Telegram                `yaml:"telegram"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ структура для настройки подключения к брокеру напоминаний.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
	SchedulerInterval  time.Duration `yaml:"scheduler_interval" env-default:"24h"`
}

// SMTP структура для настройки почтового транспорта напоминаний.
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"pass" env:"SMTP_PASS"`
}

// Telegram структура для настройки бота-моста.
type Telegram struct {
	BotToken   string        `yaml:"bot_token" env:"BOT_TOKEN"`
	APIBaseURL string        `yaml:"api_base_url" env:"API_BASE_URL" env-default:"http://localhost:8080"`
	APITimeout time.Duration `yaml:"api_timeout" env-default:"30s"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
