package main

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/modelgov/modelgov/internal"
	"github.com/modelgov/modelgov/internal/config"
)

var v *viper.Viper

// viperKeyDelimiter marks nested values in the configuration. ".." is used
// rather than "." so configuration keys may themselves contain dots without
// viper treating them as nested objects.
const viperKeyDelimiter = ".."

//nolint:gochecknoinit
func init() {
	// The version of rootCmd is set in init() rather than when `rootCmd` is
	// initialized, because link-time variable assignments are not applied
	// when package-scoped variables are initialized.
	rootCmd.Version = internal.Version
	registerConfig()
}

type configKey []string

func (c configKey) EnvName() string {
	return "MODELGOV_" + strings.ReplaceAll(strings.ToUpper(c.FlagName()), "-", "_")
}

func (c configKey) AccessPath() string {
	return strings.ReplaceAll(strings.Join(c, viperKeyDelimiter), "-", "_")
}

func (c configKey) FlagName() string {
	return strings.Join(c, "-")
}

func registerString(flags *pflag.FlagSet, name configKey, value string, usage string) {
	flags.String(name.FlagName(), value, usage)
	_ = v.BindEnv(name.AccessPath(), name.EnvName())
	_ = v.BindPFlag(name.AccessPath(), flags.Lookup(name.FlagName()))
	v.SetDefault(name.AccessPath(), value)
}

func registerBool(flags *pflag.FlagSet, name configKey, value bool, usage string) {
	flags.Bool(name.FlagName(), value, usage)
	_ = v.BindEnv(name.AccessPath(), name.EnvName())
	_ = v.BindPFlag(name.AccessPath(), flags.Lookup(name.FlagName()))
	v.SetDefault(name.AccessPath(), value)
}

func registerInt(flags *pflag.FlagSet, name configKey, value int, usage string) {
	flags.Int(name.FlagName(), value, usage)
	_ = v.BindEnv(name.AccessPath(), name.EnvName())
	_ = v.BindPFlag(name.AccessPath(), flags.Lookup(name.FlagName()))
	v.SetDefault(name.AccessPath(), value)
}

func registerConfig() {
	v = viper.NewWithOptions(viper.KeyDelimiter(viperKeyDelimiter))
	v.SetTypeByDefaultValue(true)

	defaults := config.DefaultConfig()

	flags := rootCmd.Flags()
	name := func(components ...string) configKey { return components }

	registerString(flags, name("config-file"),
		defaults.ConfigFile, "location of config file")

	registerString(flags, name("log", "level"),
		defaults.Log.Level, "choose logging level from [trace, debug, info, warn, error, fatal]")
	registerBool(flags, name("log", "color"),
		defaults.Log.Color, "output logs in color")

	registerInt(flags, name("port"),
		defaults.Port, "server port")

	registerString(flags, name("db", "user"),
		defaults.DB.User, "database username")
	registerString(flags, name("db", "password"),
		defaults.DB.Password, "database password")
	registerString(flags, name("db", "secret-arn"),
		defaults.DB.SecretARN, "secret holding database credentials")
	registerString(flags, name("db", "host"),
		defaults.DB.Host, "database host")
	registerString(flags, name("db", "port"),
		defaults.DB.Port, "database port")
	registerString(flags, name("db", "name"),
		defaults.DB.Name, "database name")
	registerString(flags, name("db", "ssl-mode"),
		defaults.DB.SSLMode, "database ssl mode (disable, verify-ca, ...)")

	registerString(flags, name("registry", "source"),
		defaults.Registry.Source, "model data source (postgres or static)")

	registerString(flags, name("storage", "bucket"),
		defaults.Storage.Bucket, "artifact storage bucket")
	registerString(flags, name("storage", "region"),
		defaults.Storage.Region, "artifact storage region")

	registerString(flags, name("identity", "region"),
		defaults.Identity.Region, "identity backend region")
	registerString(flags, name("identity", "client-id"),
		defaults.Identity.ClientID, "identity backend app client id")

	registerString(flags, name("tracking", "tracking-uri"),
		defaults.Tracking.TrackingURI, "experiment tracking server URI")

	registerString(flags, name("cors", "allowed-origin"),
		defaults.CORS.AllowedOrigin, "allowed CORS origin")
}
