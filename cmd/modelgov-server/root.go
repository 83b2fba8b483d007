package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/modelgov/modelgov/internal"
	"github.com/modelgov/modelgov/internal/config"
	"github.com/modelgov/modelgov/internal/db"
	"github.com/modelgov/modelgov/internal/identity"
	"github.com/modelgov/modelgov/internal/registry"
	"github.com/modelgov/modelgov/internal/storage"
	"github.com/modelgov/modelgov/internal/tracking"
	"github.com/modelgov/modelgov/pkg/check"
	"github.com/modelgov/modelgov/pkg/logger"
)

const defaultConfigPath = "/etc/modelgov/server.yaml"

var rootCmd = &cobra.Command{
	Use: "modelgov-server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRoot(); err != nil {
			log.Error(fmt.Sprintf("%+v", err))
			os.Exit(1)
		}
	},
}

func runRoot() error {
	conf, err := initializeConfig()
	if err != nil {
		return err
	}

	printableConfig, err := conf.Printable()
	if err != nil {
		return err
	}
	log.Infof("server configuration: %s", printableConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := session.NewSession(aws.NewConfig().WithRegion(awsRegion(conf)))
	if err != nil {
		return errors.Wrap(err, "error creating AWS session")
	}

	store, closeStore, err := newStore(ctx, conf, sess)
	if err != nil {
		return err
	}
	defer closeStore()

	var idSvc *identity.Service
	if conf.Identity.ClientID != "" {
		idSvc = identity.New(cognitoidentityprovider.New(sess), conf.Identity.ClientID)
	}

	var artifacts *storage.Bucket
	if conf.Storage.Bucket != "" {
		artifacts = storage.New(sess, conf.Storage.Bucket)
	}

	var trackingClient *tracking.Client
	if conf.Tracking.TrackingURI != "" {
		trackingClient = tracking.New(conf.Tracking.TrackingURI)
	}

	srv := internal.NewServer(conf, store, idSvc, artifacts, trackingClient)
	return srv.Run(ctx)
}

// newStore builds the configured data source: the live database or the
// static demo set.
func newStore(
	ctx context.Context, conf *config.Config, sess *session.Session,
) (registry.Store, func(), error) {
	switch conf.Registry.Source {
	case "static":
		log.Warn("serving the static demo model set, no database is used")
		return registry.NewSeededStaticStore(), func() {}, nil
	default:
		pg, err := db.Connect(ctx, &conf.DB, secretsmanager.New(sess))
		if err != nil {
			return nil, nil, err
		}
		return pg, func() {
			if err := pg.Close(); err != nil {
				log.WithError(err).Error("error closing database")
			}
		}, nil
	}
}

func awsRegion(conf *config.Config) string {
	if conf.Storage.Region != "" {
		return conf.Storage.Region
	}
	if conf.Identity.Region != "" {
		return conf.Identity.Region
	}
	return "us-east-1"
}

// initializeConfig returns the validated configuration populated from the
// config file, environment variables, and command line flags, and
// initializes global logging state based on those options.
func initializeConfig() (*config.Config, error) {
	// Fetch an initial config to get the config file path and read its
	// settings into viper.
	initialConfig, err := getConfig(v.AllSettings())
	if err != nil {
		return nil, err
	}

	bs, err := readConfigFile(initialConfig.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err = mergeConfigBytesIntoViper(bs); err != nil {
		return nil, err
	}

	conf, err := getConfig(v.AllSettings())
	if err != nil {
		return nil, err
	}

	if err := check.Validate(conf); err != nil {
		return nil, err
	}

	logger.SetLogrus(logger.Config{Level: conf.Log.Level, Color: conf.Log.Color})
	return conf, nil
}

func readConfigFile(configPath string) ([]byte, error) {
	isDefault := configPath == ""
	if isDefault {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err != nil {
		if isDefault && os.IsNotExist(err) {
			log.Warnf("no configuration file at %s, skipping", configPath)
			return nil, nil
		}
		return nil, errors.Wrap(err, "error finding configuration file")
	}
	bs, err := os.ReadFile(configPath) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "error reading configuration file")
	}
	return bs, nil
}

func mergeConfigBytesIntoViper(bs []byte) error {
	var configMap map[string]interface{}
	if err := yaml.Unmarshal(bs, &configMap); err != nil {
		return errors.Wrap(err, "error unmarshal yaml configuration file")
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return errors.Wrap(err, "error merge configuration to viper")
	}
	return nil
}

func getConfig(configMap map[string]interface{}) (*config.Config, error) {
	conf := config.DefaultConfig()
	bs, err := json.Marshal(configMap)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal configuration map into json bytes")
	}
	if err = yaml.Unmarshal(bs, &conf, yaml.DisallowUnknownFields); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal configuration")
	}
	return conf, nil
}
