package config

import (
	"fmt"
	"time"

	"github.com/platform-mesh/graphql-schema-provider/provider"
)

// Config holds the command line configuration. Flags are bound through
// golang-commons, environment variables use the upper-cased flag name with
// dashes replaced by underscores (engine-api-key reads ENGINE_API_KEY).
type Config struct {
	ConfigFile string `mapstructure:"project-config" description:"path to a YAML project configuration file"`
	Service    string `mapstructure:"service" description:"service to resolve, as <id>[@<tag>]"`

	Engine struct {
		APIKey   string `mapstructure:"engine-api-key" description:"schema registry API key"`
		Endpoint string `mapstructure:"engine-endpoint" description:"schema registry GraphQL endpoint"`
	} `mapstructure:",squash"`

	RequestTimeout time.Duration `mapstructure:"request-timeout" default:"30s" description:"timeout of a single schema resolution"`

	Fetch struct {
		Output string `mapstructure:"output" default:"yaml" description:"summary format, yaml or json"`
	} `mapstructure:",squash"`

	Serve struct {
		Port           string        `mapstructure:"serve-port" default:"8080"`
		ReloadDebounce time.Duration `mapstructure:"serve-reload-debounce" default:"500ms"`

		HandlerCfg struct {
			Pretty     bool `mapstructure:"serve-handler-pretty" default:"true"`
			Playground bool `mapstructure:"serve-handler-playground" default:"true"`
			GraphiQL   bool `mapstructure:"serve-handler-graphiql" default:"false"`
		} `mapstructure:",squash"`

		Cors struct {
			Enabled        bool   `mapstructure:"serve-cors-enabled" default:"false"`
			AllowedOrigins string `mapstructure:"serve-cors-allowed-origins" default:"*"`
			AllowedHeaders string `mapstructure:"serve-cors-allowed-headers" default:"*"`
		} `mapstructure:",squash"`
	} `mapstructure:",squash"`
}

// ProviderConfig builds the provider configuration. Values from the
// configuration file are overridden by non-empty command line values.
func (c Config) ProviderConfig() (provider.Config, error) {
	var cfg provider.Config
	if c.ConfigFile != "" {
		var err error
		cfg, err = provider.LoadConfig(c.ConfigFile)
		if err != nil {
			return provider.Config{}, err
		}
	}

	if c.Engine.APIKey != "" || c.Engine.Endpoint != "" {
		engine := provider.EngineConfig{}
		if cfg.Engine != nil {
			engine = *cfg.Engine
		}
		if c.Engine.APIKey != "" {
			engine.EngineAPIKey = c.Engine.APIKey
		}
		if c.Engine.Endpoint != "" {
			engine.Endpoint = c.Engine.Endpoint
		}
		cfg.Engine = &engine
	}

	if c.Service != "" {
		cfg.Client.Service = c.Service
	}

	return cfg, nil
}

// Validate checks values that are used before any schema is resolved.
func (c Config) Validate() error {
	switch c.Fetch.Output {
	case "yaml", "json":
	default:
		return fmt.Errorf("unsupported output format %q", c.Fetch.Output)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	return nil
}
