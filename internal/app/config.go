package app

import (
	"os"
	"strings"
)

// Config описывает настройки запуска сервиса. Все значения читаются из
// окружения; пустой DatabaseDSN переключает сервис на in-memory хранилище
// (режим разработки и демо).
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	DatabaseDSN  string
	KafkaBrokers []string

	SMTPHost string
	SMTPPort string
	SMTPFrom string

	WhatsAppAPIURL string
	WhatsAppToken  string

	SeedDemoData bool
}

// DefaultConfig возвращает базовые адреса API и метрик.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
	}
}

// ConfigFromEnv собирает конфигурацию из переменных окружения.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if addr := os.Getenv("FOG_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if addr := os.Getenv("FOG_METRICS_ADDR"); addr != "" {
		cfg.MetricsAddr = addr
	}
	cfg.DatabaseDSN = os.Getenv("FOG_DB_DSN")
	if brokers := os.Getenv("FOG_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	cfg.SMTPHost = os.Getenv("FOG_SMTP_HOST")
	cfg.SMTPPort = os.Getenv("FOG_SMTP_PORT")
	cfg.SMTPFrom = os.Getenv("FOG_SMTP_FROM")

	cfg.WhatsAppAPIURL = os.Getenv("FOG_WHATSAPP_API_URL")
	cfg.WhatsAppToken = os.Getenv("FOG_WHATSAPP_TOKEN")

	cfg.SeedDemoData = os.Getenv("FOG_SEED_DEMO") == "1"

	return cfg
}
