package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      App      `yaml:"app"`
	Database Database `yaml:"database"`
	WhatsApp WhatsApp `yaml:"whatsapp"`
	Allows   Allows   `yaml:"allows"`
}

type App struct {
	Name string `yaml:"name"`
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

type Database struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	Name string `yaml:"name"`
}

// WhatsApp holds the webhook processing configuration: which phone numbers
// belong to the business (used to tell outgoing from incoming traffic),
// how many messages of one payload are processed concurrently, and the
// retry budget for status events.
type WhatsApp struct {
	BusinessNumbers       []string `yaml:"business_numbers"`
	BatchSize             int      `yaml:"batch_size"`
	StatusRetryAttempts   int      `yaml:"status_retry_attempts"`
	StatusRetryIntervalMs int      `yaml:"status_retry_interval_ms"`
	PreviewMaxLength      int      `yaml:"preview_max_length"`
	ImportDir             string   `yaml:"import_dir"`
}

type Allows struct {
	Methods []string `yaml:"methods"`
	Origins []string `yaml:"origins"`
	Headers []string `yaml:"headers"`
}

func InitConfig() *Config {
	var configs Config
	file_name, _ := filepath.Abs("./config.yaml")
	yaml_file, _ := os.ReadFile(file_name)
	yaml.Unmarshal(yaml_file, &configs)

	// Override with environment variables if they exist (for Docker)
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		configs.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		configs.Database.Port = dbPort
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		configs.Database.User = dbUser
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		configs.Database.Pass = dbPassword
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		configs.Database.Name = dbName
	}

	// Override app configuration with environment variables
	if appHost := os.Getenv("APP_HOST"); appHost != "" {
		configs.App.Host = appHost
	}
	if appPort := os.Getenv("APP_PORT"); appPort != "" {
		configs.App.Port = appPort
	}
	if appName := os.Getenv("APP_NAME"); appName != "" {
		configs.App.Name = appName
	}

	// Override webhook processing configuration with environment variables
	if numbers := os.Getenv("BUSINESS_NUMBERS"); numbers != "" {
		configs.WhatsApp.BusinessNumbers = strings.Split(numbers, ",")
	}
	if batchSize := os.Getenv("WEBHOOK_BATCH_SIZE"); batchSize != "" {
		if n, err := strconv.Atoi(batchSize); err == nil && n > 0 {
			configs.WhatsApp.BatchSize = n
		}
	}
	if importDir := os.Getenv("WEBHOOK_IMPORT_DIR"); importDir != "" {
		configs.WhatsApp.ImportDir = importDir
	}

	configs.WhatsApp.ApplyDefaults()

	return &configs
}

// ApplyDefaults fills unset processing knobs with their defaults.
func (w *WhatsApp) ApplyDefaults() {
	if w.BatchSize <= 0 {
		w.BatchSize = 10
	}
	if w.StatusRetryAttempts <= 0 {
		w.StatusRetryAttempts = 3
	}
	if w.StatusRetryIntervalMs <= 0 {
		w.StatusRetryIntervalMs = 200
	}
	if w.PreviewMaxLength <= 0 {
		w.PreviewMaxLength = 1000
	}
}
