package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/donorsync/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	CRM        CRMConfig        `mapstructure:"crm" validate:"required"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Events     EventsConfig     `mapstructure:"events"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required,oneof=local api aws_lambda_api"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// CRMConfig selects and configures the donor store
type CRMConfig struct {
	Provider   types.CRMProvider `mapstructure:"provider" validate:"required,oneof=salesforce postgres"`
	Salesforce SalesforceConfig  `mapstructure:"salesforce"`
	// Name prefixes for created records, rendered as "<prefix> (<deal date>) - <full name>"
	RecurringNamePrefix string `mapstructure:"recurring_name_prefix" validate:"required"`
	DonationNamePrefix  string `mapstructure:"donation_name_prefix" validate:"required"`
}

type SalesforceConfig struct {
	LoginURL     string        `mapstructure:"login_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	APIVersion   string        `mapstructure:"api_version"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// GatewayConfig holds the payment gateway integration settings
type GatewayConfig struct {
	// Secret is compared against the Secret field of recurring status webhooks
	Secret string `mapstructure:"secret"`
	// FieldMappingTTL caches the custom field mapping; zero fetches it per webhook
	FieldMappingTTL time.Duration `mapstructure:"field_mapping_ttl"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// EventsConfig controls publication of reconciliation outcome events
type EventsConfig struct {
	Enabled bool             `mapstructure:"enabled"`
	Topic   string           `mapstructure:"topic"`
	PubSub  types.PubSubType `mapstructure:"pubsub"`
}

type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	ClientID      string   `mapstructure:"client_id"`
	TLS           bool     `mapstructure:"tls"`
	UseSASL       bool     `mapstructure:"use_sasl"`
	SASLMechanism string   `mapstructure:"sasl_mechanism"`
	SASLUser      string   `mapstructure:"sasl_user"`
	SASLPassword  string   `mapstructure:"sasl_password"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/donorsync")

	v.SetEnvPrefix("DONORSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.CRM.Provider == types.CRMProviderSalesforce {
		sf := c.CRM.Salesforce
		required := salesforceRequired{
			LoginURL:     sf.LoginURL,
			ClientID:     sf.ClientID,
			ClientSecret: sf.ClientSecret,
			Username:     sf.Username,
			Password:     sf.Password,
			APIVersion:   sf.APIVersion,
		}
		if err := validate.Struct(required); err != nil {
			return err
		}
	}
	if c.Events.Enabled && c.Events.PubSub == types.KafkaPubSub && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required when events.pubsub is kafka")
	}
	return nil
}

type salesforceRequired struct {
	LoginURL     string `validate:"required,url"`
	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
	Username     string `validate:"required"`
	Password     string `validate:"required"`
	APIVersion   string `validate:"required"`
}

// GetDefaultConfig returns a default configuration for local development
// and tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		CRM: CRMConfig{
			Provider:            types.CRMProviderPostgres,
			RecurringNamePrefix: "Recurring Donation",
			DonationNamePrefix:  "Donation",
		},
		Events: EventsConfig{
			Topic:  "donation_events",
			PubSub: types.MemoryPubSub,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
