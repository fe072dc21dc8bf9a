package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// File sources
	OrdersFile    string
	OrdersSheet   string
	DataDirectory string

	// Database
	SQLiteDBPath      string
	SnapshotRetention int

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Dashboard
	ReportTitle    string
	ReportCurrency string

	// Metrics cache
	MetricsCacheSize int
	MetricsCacheTTL  time.Duration

	// Periodic full reload of the dataset, 0 disables it
	ReloadInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// ValidBackends lists the accepted DATA_BACKEND values.
var ValidBackends = []string{"xlsx", "csv", "sheets", "sqlite", "memory"}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8081"),
		DataBackend: getEnv("DATA_BACKEND", "xlsx"),

		OrdersFile:    getEnv("ORDERS_FILE", "orders.xlsx"),
		OrdersSheet:   getEnv("ORDERS_SHEET", "Orders"),
		DataDirectory: getEnv("DATA_DIR", "data"),

		SQLiteDBPath:      getEnv("SQLITE_DB_PATH", "./data/orderdash.db"),
		SnapshotRetention: getEnvInt("SNAPSHOT_RETENTION", 5),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "orderdash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "dataset_imported"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Orders"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		ReportTitle:    getEnv("REPORT_TITLE", "Ecommerce Orders Analysis"),
		ReportCurrency: getEnv("REPORT_CURRENCY", "Rs"),

		MetricsCacheSize: getEnvInt("METRICS_CACHE_SIZE", 100),
		MetricsCacheTTL:  getEnvDuration("METRICS_CACHE_TTL", 10*time.Minute),

		ReloadInterval: getEnvDuration("RELOAD_INTERVAL", 0),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	isValidBackend := false
	for _, backend := range ValidBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, ValidBackends))
	}

	switch c.DataBackend {
	case "xlsx", "csv":
		if strings.TrimSpace(c.OrdersFile) == "" {
			errors = append(errors, fmt.Sprintf("orders file cannot be empty when using %s backend", c.DataBackend))
		}
		if c.DataBackend == "xlsx" && strings.TrimSpace(c.OrdersSheet) == "" {
			errors = append(errors, "orders sheet name cannot be empty when using xlsx backend")
		}

	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}

	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets backend")
		}
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasJSON && !hasFile && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets backend")
		}
		if hasFile && !hasJSON {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.SnapshotRetention < 0 {
		errors = append(errors, fmt.Sprintf("invalid snapshot retention %d: must be zero (keep all) or positive", c.SnapshotRetention))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate metrics cache
	if c.MetricsCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid metrics cache size %d: must be at least 1", c.MetricsCacheSize))
	} else if c.MetricsCacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid metrics cache size %d: must be at most 10000", c.MetricsCacheSize))
	}
	if c.MetricsCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid metrics cache TTL %v: must be at least 1 second", c.MetricsCacheTTL))
	}
	if c.ReloadInterval != 0 && c.ReloadInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid reload interval %v: must be zero (disabled) or at least 1 second", c.ReloadInterval))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AMQPEnabled reports whether dataset events should be published or consumed.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
