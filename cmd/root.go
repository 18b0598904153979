package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pmconfig "github.com/platform-mesh/golang-commons/config"
	"github.com/platform-mesh/golang-commons/logger"

	"github.com/platform-mesh/graphql-schema-provider/common/config"
	"github.com/platform-mesh/graphql-schema-provider/provider"
)

var (
	appCfg     config.Config
	defaultCfg *pmconfig.CommonServiceConfig
	v          *viper.Viper
	log        *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "graphql-schema-provider",
	Short: "Resolve GraphQL schemas from a schema registry",
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(serveCmd)

	var err error
	v, defaultCfg, err = pmconfig.NewDefaultConfig(rootCmd)
	if err != nil {
		panic(err)
	}

	cobra.OnInitialize(func() {
		var err error
		log, err = setupLogger(defaultCfg.Log.Level)
		if err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
	})

	err = pmconfig.BindConfigToFlags(v, fetchCmd, &appCfg)
	if err != nil {
		panic(err)
	}

	err = pmconfig.BindConfigToFlags(v, serveCmd, &appCfg)
	if err != nil {
		panic(err)
	}
}

// setupLogger initializes the logger with the given log level
func setupLogger(logLevel string) (*logger.Logger, error) {
	loggerCfg := logger.DefaultConfig()
	loggerCfg.Name = "graphqlSchemaProvider"
	loggerCfg.Level = logLevel
	return logger.New(loggerCfg)
}

// newProvider builds a provider from the current flags and config file.
func newProvider() (provider.SchemaProvider, error) {
	cfg, err := appCfg.ProviderConfig()
	if err != nil {
		return nil, err
	}
	return provider.NewEngineProvider(log.ComponentLogger("provider"), cfg), nil
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
