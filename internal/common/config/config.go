// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Auth         AuthConfig              `mapstructure:"auth"`
	AgencyAPI    AgencyAPIConfig         `mapstructure:"agency_api"`
	Accounting   AccountingConfig        `mapstructure:"accounting"`
	Documents    DocumentsConfig         `mapstructure:"documents"`
	Integrations IntegrationConfig       `mapstructure:"integrations"`
	Logging      LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HTTPAddress string `mapstructure:"http_address"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	StudentIndex string   `mapstructure:"student_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// AuthConfig holds the Keycloak client used to obtain agency API tokens.
type AuthConfig struct {
	Keycloak struct {
		URL          string `mapstructure:"url"`
		Realm        string `mapstructure:"realm"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"keycloak"`
}

// AgencyAPIConfig points at the remote REST backend.
type AgencyAPIConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	StaticToken string `mapstructure:"static_token"`
	Timeout     int    `mapstructure:"timeout"`    // milliseconds
	PageLimit   int    `mapstructure:"page_limit"` // ceiling for "fetch everything" list calls
	CacheTTL    int    `mapstructure:"cache_ttl"`  // seconds, reference data
}

type AccountingConfig struct {
	URL          string `mapstructure:"url"`
	CompanyToken string `mapstructure:"company_token"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
}

// DocumentsConfig drives PDF and XLSX output.
type DocumentsConfig struct {
	OutputDir        string `mapstructure:"output_dir"`
	LogoPath         string `mapstructure:"logo_path"`
	CurrencySymbol   string `mapstructure:"currency_symbol"`
	ApplicationSlots int    `mapstructure:"application_slots"`
	Issuer           struct {
		CompanyName string `mapstructure:"company_name"`
		Email       string `mapstructure:"email"`
		Address     string `mapstructure:"address"`
		City        string `mapstructure:"city"`
		State       string `mapstructure:"state"`
		PostalCode  string `mapstructure:"postal_code"`
		Country     string `mapstructure:"country"`
		VATNumber   string `mapstructure:"vat_number"`
	} `mapstructure:"issuer"`
}

// IntegrationConfig holds AWS settings for email and event delivery.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// GetDuration converts a millisecond setting into a time.Duration.
func GetDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// GetWorkerConfig returns the worker settings, filling in the global Camunda
// defaults for anything left at zero.
func (c *Config) GetWorkerConfig(taskType string) WorkerConfig {
	wc := c.Workers[taskType]
	if wc.MaxJobsActive == 0 {
		wc.MaxJobsActive = c.Camunda.MaxJobsActive
	}
	if wc.Timeout == 0 {
		wc.Timeout = c.Camunda.Timeout
	}
	return wc
}

func (c *Config) IsWorkerEnabled(taskType string) bool {
	return c.Workers[taskType].Enabled
}
