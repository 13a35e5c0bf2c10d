package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"csvingest/internal/config"
)

// envPrefix prefixes every environment override, e.g. INGEST_PASSWORD or
// INGEST_METRICS_BACKEND.
const envPrefix = "INGEST"

// newRootCmd builds the ingest command. run is called with the validated
// configuration once flags, environment and the optional config file are
// merged.
func newRootCmd(run func(cmd *cobra.Command, cfg config.Config) error) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load every CSV file in ingestion_files into a database table",
		Long: `ingest reads each file in the input directory in chunks of 100,000 rows.
The table is named after the file without its extension. The first chunk
drops and recreates the table; later chunks are appended.

Every flag can also be set through the environment as INGEST_<FLAG>, with
dashes replaced by underscores (INGEST_PASSWORD, INGEST_METRICS_BACKEND).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path := v.GetString("config"); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config %s: %w", path, err)
				}
			}
			cfg := loadConfig(v)
			if err := checkConfig(cmd, cfg); err != nil {
				return err
			}
			if v.GetBool("validate") {
				fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
				return nil
			}
			return run(cmd, cfg)
		},
	}

	def := config.Default()
	f := cmd.Flags()
	f.String("user", "", "database user")
	f.String("password", "", "database password")
	f.String("host", "", "database host")
	f.String("port", "", "database port")
	f.String("db", "", "database name (file path for sqlite)")
	f.String("datetime_columns", "", "comma-separated columns to parse as timestamps")

	f.String("storage", def.Storage, "storage backend: postgres, mssql or sqlite")
	f.String("timezone", "", "IANA zone for datetime values without an offset (default UTC)")

	f.String("metrics-backend", def.Metrics.Backend, "metrics backend: none, pushgateway or datadog")
	f.String("pushgateway-url", "", "Pushgateway base URL")
	f.String("statsd-addr", def.Metrics.StatsdAddr, "DogStatsD address")
	f.String("metrics-job", def.Metrics.Job, "Pushgateway job and DogStatsD namespace")

	f.String("config", "", "optional YAML/JSON/TOML file with the same keys as the flags")
	f.Bool("validate", false, "validate the configuration and exit")
	f.BoolP("verbose", "v", false, "enable debug logs")

	bindFlags(v, f)
	return cmd
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// BindPFlags only fails on a nil flag set.
	_ = v.BindPFlags(fs)
}

// loadConfig resolves every setting: flag, then environment, then config
// file, then the flag default. The input directory and batch size are fixed
// and keep their config.Default values.
func loadConfig(v *viper.Viper) config.Config {
	cfg := config.Default()
	cfg.Storage = v.GetString("storage")
	cfg.User = v.GetString("user")
	cfg.Password = v.GetString("password")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetString("port")
	cfg.DB = v.GetString("db")
	cfg.DatetimeColumns = config.ParseColumnList(v.GetString("datetime_columns"))
	cfg.Timezone = v.GetString("timezone")
	cfg.Verbose = v.GetBool("verbose")

	cfg.Metrics.Backend = v.GetString("metrics-backend")
	cfg.Metrics.PushgatewayURL = v.GetString("pushgateway-url")
	cfg.Metrics.StatsdAddr = v.GetString("statsd-addr")
	cfg.Metrics.Job = v.GetString("metrics-job")
	return cfg
}

// checkConfig prints every validation issue and fails on errors.
func checkConfig(cmd *cobra.Command, cfg config.Config) error {
	issues := cfg.Validate()
	for _, iss := range issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid")
	}
	return nil
}
