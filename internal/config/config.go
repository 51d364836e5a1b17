package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppEnv string `yaml:"app_env"`

	TelegramToken    string  `yaml:"telegram_token"`
	NotifyRatePerSec float64 `yaml:"notify_rate_per_sec"`

	SpreadsheetID            string `yaml:"spreadsheet_id"`
	SheetTitle               string `yaml:"sheet_title"`
	GoogleServiceAccountJSON string `yaml:"google_service_account_json"`

	StoreDriver     string `yaml:"store_driver"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
	DatabaseURL     string `yaml:"database_url"`

	PushgatewayURL string `yaml:"pushgateway_url"`

	Messages Messages `yaml:"messages"`
}

// Messages are the notification templates; {username} is substituted.
type Messages struct {
	Approved string `yaml:"approved"`
	Rejected string `yaml:"rejected"`
}

func FromEnv() (Config, error) {
	return Load("")
}

// Load reads the optional YAML file at path, applies environment
// overrides and defaults, then validates.
func Load(path string) (Config, error) {
	var c Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse config file: %w", err)
		}
	}

	c.overrideWithEnv()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) overrideWithEnv() {
	setString(&c.AppEnv, "APP_ENV")
	setString(&c.TelegramToken, "TELEGRAM_BOT_TOKEN", "BOT_TOKEN")
	setString(&c.SpreadsheetID, "GOOGLE_SHEET_ID", "GOOGLE_SPREADSHEET_ID")
	setString(&c.SheetTitle, "SHEET_TITLE")
	setString(&c.GoogleServiceAccountJSON, "GOOGLE_SERVICE_ACCOUNT_JSON")
	setString(&c.StoreDriver, "STORE_DRIVER")
	setString(&c.MongoURI, "MONGO_URI")
	setString(&c.MongoDatabase, "MONGO_DATABASE")
	setString(&c.MongoCollection, "MONGO_COLLECTION")
	setString(&c.DatabaseURL, "DATABASE_URL")
	c.PushgatewayURL = strings.TrimRight(c.PushgatewayURL, "/")
	if v := strings.TrimSpace(os.Getenv("PUSHGATEWAY_URL")); v != "" {
		c.PushgatewayURL = strings.TrimRight(v, "/")
	}

	if v := strings.TrimSpace(os.Getenv("NOTIFY_RATE_PER_SEC")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.NotifyRatePerSec = f
		}
	}
}

// setString assigns the last non-empty variable among keys.
func setString(dst *string, keys ...string) {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			*dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.AppEnv == "" {
		c.AppEnv = "development"
	}
	if c.SheetTitle == "" {
		c.SheetTitle = "Yap Circle Korea"
	}
	if c.GoogleServiceAccountJSON == "" {
		c.GoogleServiceAccountJSON = "google-credentials.json"
	}
	if c.StoreDriver == "" {
		c.StoreDriver = DriverMongo
	}
	c.StoreDriver = strings.ToLower(c.StoreDriver)
	if c.MongoCollection == "" {
		c.MongoCollection = "joinrequestskorea"
	}
	if c.NotifyRatePerSec <= 0 {
		c.NotifyRatePerSec = 25
	}
	if c.Messages.Approved == "" {
		c.Messages.Approved = "🎉 Welcome, @{username}! Your request to join has been approved."
	}
	if c.Messages.Rejected == "" {
		c.Messages.Rejected = "😔 Hi, @{username}. Unfortunately, your request to join has been rejected at this time."
	}
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("BOT_TOKEN is empty")
	}
	if c.SpreadsheetID == "" {
		return fmt.Errorf("GOOGLE_SPREADSHEET_ID is empty")
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is empty")
		}
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is empty")
		}
	default:
		return fmt.Errorf("unknown store driver: %s", c.StoreDriver)
	}
	return nil
}
