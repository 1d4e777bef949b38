package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. Loaded once at startup,
// immutable during a run.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	ETL      ETLConfig      `yaml:"etl"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// ETLConfig contains pipeline settings
type ETLConfig struct {
	DataPath        string `yaml:"data_path"`
	FieldConfigPath string `yaml:"field_config_path"`
	BatchSize       int    `yaml:"batch_size"`
	DailyRunEnabled bool   `yaml:"daily_run_enabled"`
	DailyRunTime    string `yaml:"daily_run_time"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type: "mysql",
			MySQL: MySQLConfig{
				Host:     "127.0.0.1",
				Port:     3306,
				User:     "db_user",
				Password: "6equj5_db_user",
				Database: "home_db",
			},
			Postgres: PostgresConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "db_user",
				Password: "6equj5_db_user",
				Database: "home_db",
				SSLMode:  "disable",
			},
		},
		ETL: ETLConfig{
			DataPath:        "data/property_data.json",
			FieldConfigPath: "",
			BatchSize:       1000,
			DailyRunEnabled: false,
			DailyRunTime:    "02:00",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file, falling back to
// defaults when the file does not exist, then applies environment-variable
// overrides.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	if filepath != "" {
		if _, err := os.Stat(filepath); err == nil {
			data, err := os.ReadFile(filepath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	config.applyEnv()
	return config, nil
}

// applyEnv merges environment-variable overrides over file/default values.
func (c *Config) applyEnv() {
	c.Database.Type = getEnv("DB_TYPE", c.Database.Type)

	c.Database.MySQL.Host = getEnv("DB_HOST", c.Database.MySQL.Host)
	c.Database.MySQL.Port = getEnvInt("DB_PORT", c.Database.MySQL.Port)
	c.Database.MySQL.User = getEnv("DB_USER", c.Database.MySQL.User)
	c.Database.MySQL.Password = getEnv("DB_PASSWORD", c.Database.MySQL.Password)
	c.Database.MySQL.Database = getEnv("DB_NAME", c.Database.MySQL.Database)

	c.Database.Postgres.Host = getEnv("DB_HOST", c.Database.Postgres.Host)
	c.Database.Postgres.Port = getEnvInt("PG_PORT", c.Database.Postgres.Port)
	c.Database.Postgres.User = getEnv("DB_USER", c.Database.Postgres.User)
	c.Database.Postgres.Password = getEnv("DB_PASSWORD", c.Database.Postgres.Password)
	c.Database.Postgres.Database = getEnv("DB_NAME", c.Database.Postgres.Database)
	c.Database.Postgres.SSLMode = getEnv("DB_SSLMODE", c.Database.Postgres.SSLMode)

	c.ETL.DataPath = getEnv("ETL_DATA_PATH", c.ETL.DataPath)
	c.ETL.FieldConfigPath = getEnv("ETL_FIELD_CONFIG", c.ETL.FieldConfigPath)
	c.ETL.BatchSize = getEnvInt("ETL_BATCH_SIZE", c.ETL.BatchSize)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
