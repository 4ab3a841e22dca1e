package config

import (
	"testing"

	"github.com/flexprice/donorsync/internal/types"
	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfig(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestValidate() {
	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr bool
	}{
		{
			name:   "defaults",
			mutate: func(c *Configuration) {},
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Configuration) { c.CRM.Provider = "hubspot" },
			wantErr: true,
		},
		{
			name:    "salesforce without credentials",
			mutate:  func(c *Configuration) { c.CRM.Provider = types.CRMProviderSalesforce },
			wantErr: true,
		},
		{
			name: "salesforce with credentials",
			mutate: func(c *Configuration) {
				c.CRM.Provider = types.CRMProviderSalesforce
				c.CRM.Salesforce = SalesforceConfig{
					LoginURL:     "https://login.salesforce.com",
					ClientID:     "client",
					ClientSecret: "secret",
					Username:     "integration@example.org",
					Password:     "pw",
					APIVersion:   "v59.0",
				}
			},
		},
		{
			name: "kafka without brokers",
			mutate: func(c *Configuration) {
				c.Events.Enabled = true
				c.Events.PubSub = types.KafkaPubSub
			},
			wantErr: true,
		},
		{
			name:    "missing record name prefix",
			mutate:  func(c *Configuration) { c.CRM.DonationNamePrefix = "" },
			wantErr: true,
		},
		{
			name:    "unknown deployment mode",
			mutate:  func(c *Configuration) { c.Deployment.Mode = "consumer" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				s.Error(err)
				return
			}
			s.NoError(err)
		})
	}
}

func (s *ConfigSuite) TestPostgresDSN() {
	cfg := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "donorsync",
		Password: "pw",
		DBName:   "crm",
		SSLMode:  "disable",
	}

	s.Equal("user=donorsync password=pw dbname=crm host=localhost port=5432 sslmode=disable", cfg.GetDSN())
}
