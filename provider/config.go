package provider

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// APIKeyCredential names the credential required by the registry backend.
const APIKeyCredential = "ENGINE_API_KEY"

// Config is the provider's view of the project configuration. It is read,
// never modified, by providers.
type Config struct {
	Engine *EngineConfig `yaml:"engine,omitempty" mapstructure:"engine"`
	Client ClientConfig  `yaml:"client" mapstructure:"client"`
}

type EngineConfig struct {
	EngineAPIKey string `yaml:"engineApiKey,omitempty" mapstructure:"engineApiKey"`
	Endpoint     string `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
}

// ClientConfig holds the service the client is built against. Service is
// usually a "<id>[@<tag>]" string; other shapes are rejected when the schema
// is resolved.
type ClientConfig struct {
	Service any `yaml:"service" mapstructure:"service"`
}

// Credentials are what a registry client is created from.
type Credentials struct {
	APIKey   string
	Endpoint string
}

// LoadConfig reads a YAML project configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
