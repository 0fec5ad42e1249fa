package config

import "time"

// AppConfig is the persisted CLI configuration stored in ~/.gapy/config.yaml.
// Exactly one credential source should be configured: a service-account key
// or an installed-application client secrets file.
type AppConfig struct {
	// Service-account credentials
	AccountName    string `yaml:"account_name,omitempty"`
	PrivateKeyPath string `yaml:"private_key_path,omitempty"`

	// Installed-application credentials
	ClientSecretsPath string `yaml:"client_secrets_path,omitempty"`

	// Where stored/refreshed OAuth tokens live. Empty means
	// ~/.gapy/token.json.
	TokenPath string `yaml:"token_path,omitempty"`

	// Request the read-only Analytics scope
	ReadOnly bool `yaml:"read_only,omitempty"`

	// Profile ids used when a query gives no --ids
	DefaultIDs []string `yaml:"default_ids,omitempty"`

	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// HasCredentials reports whether any credential source is configured.
func (c *AppConfig) HasCredentials() bool {
	return c.ClientSecretsPath != "" || c.PrivateKeyPath != ""
}
