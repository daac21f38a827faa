package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the POS backend.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Billing  BillingConfig  `yaml:"billing"`
	Printer  PrinterConfig  `yaml:"printer"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration.
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// BillingConfig holds invoice computation settings.
type BillingConfig struct {
	ServiceChargePercent float64 `yaml:"service_charge_percent"`
	RoundTotals          bool    `yaml:"round_totals"`
}

// PrinterConfig holds print-agent settings.
type PrinterConfig struct {
	PollIntervalSeconds    int `yaml:"poll_interval_seconds"`
	RefreshIntervalSeconds int `yaml:"refresh_interval_seconds"`
	MaxAttempts            int `yaml:"max_attempts"`
}

// Load reads configuration from a YAML file. A .env file, if present, is
// loaded first and environment variables override file values.
func Load(filename string) (*Config, error) {
	_ = godotenv.Load()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	config := defaults()
	scanner := bufio.NewScanner(file)

	var currentSection string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Check for section headers
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			currentSection = strings.TrimSuffix(line, ":")
			continue
		}

		// Parse key-value pairs
		if strings.Contains(line, ":") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if err := config.setValue(currentSection, key, value); err != nil {
				return nil, fmt.Errorf("failed to set config value %s.%s: %w", currentSection, key, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config.applyEnvOverrides()

	return config, nil
}

func defaults() *Config {
	return &Config{
		Billing: BillingConfig{
			ServiceChargePercent: 5.0,
			RoundTotals:          true,
		},
		Printer: PrinterConfig{
			PollIntervalSeconds:    2,
			RefreshIntervalSeconds: 60,
			MaxAttempts:            3,
		},
	}
}

// setValue sets a configuration value based on section and key.
func (c *Config) setValue(section, key, value string) error {
	switch section {
	case "database":
		return c.setDatabaseValue(key, value)
	case "rabbitmq":
		return c.setRabbitMQValue(key, value)
	case "billing":
		return c.setBillingValue(key, value)
	case "printer":
		return c.setPrinterValue(key, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func (c *Config) setDatabaseValue(key, value string) error {
	switch key {
	case "host":
		c.Database.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port value: %w", err)
		}
		c.Database.Port = port
	case "user":
		c.Database.User = value
	case "password":
		c.Database.Password = value
	case "database":
		c.Database.Database = value
	default:
		return fmt.Errorf("unknown database key: %s", key)
	}
	return nil
}

func (c *Config) setRabbitMQValue(key, value string) error {
	switch key {
	case "host":
		c.RabbitMQ.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port value: %w", err)
		}
		c.RabbitMQ.Port = port
	case "user":
		c.RabbitMQ.User = value
	case "password":
		c.RabbitMQ.Password = value
	default:
		return fmt.Errorf("unknown rabbitmq key: %s", key)
	}
	return nil
}

func (c *Config) setBillingValue(key, value string) error {
	switch key {
	case "service_charge_percent":
		pct, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid service_charge_percent value: %w", err)
		}
		c.Billing.ServiceChargePercent = pct
	case "round_totals":
		round, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid round_totals value: %w", err)
		}
		c.Billing.RoundTotals = round
	default:
		return fmt.Errorf("unknown billing key: %s", key)
	}
	return nil
}

func (c *Config) setPrinterValue(key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s value: %w", key, err)
	}
	switch key {
	case "poll_interval_seconds":
		c.Printer.PollIntervalSeconds = n
	case "refresh_interval_seconds":
		c.Printer.RefreshIntervalSeconds = n
	case "max_attempts":
		c.Printer.MaxAttempts = n
	default:
		return fmt.Errorf("unknown printer key: %s", key)
	}
	return nil
}

// applyEnvOverrides lets deployment environments override file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("POS_DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("POS_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("POS_RABBITMQ_HOST"); v != "" {
		c.RabbitMQ.Host = v
	}
	if v := os.Getenv("POS_RABBITMQ_PASSWORD"); v != "" {
		c.RabbitMQ.Password = v
	}
}

// DatabaseURL returns a PostgreSQL connection URL.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL.
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
