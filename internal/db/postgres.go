// Package db is the persistence gateway for the models table. Every
// operation executes exactly one parameterized statement; database failures
// propagate to the caller without retry.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	_ "github.com/jackc/pgx/v4/stdlib" // Import Postgres driver.
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/modelgov/modelgov/internal/config"
)

const maxOpenConns = 48

const cnxTpl = "postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=modelgov-server"

// PgDB represents a Postgres database connection.
type PgDB struct {
	bun *bun.DB
}

// Connect connects to the database described by opts. When a secret ARN is
// configured, credentials are fetched from Secrets Manager once, before the
// first connection attempt.
func Connect(
	ctx context.Context, opts *config.DBConfig, secrets secretsmanageriface.SecretsManagerAPI,
) (*PgDB, error) {
	user, password := opts.User, opts.Password
	if opts.SecretARN != "" {
		var err error
		if user, password, err = credentialsFromSecret(ctx, secrets, opts.SecretARN); err != nil {
			return nil, err
		}
	}

	dsn := fmt.Sprintf(cnxTpl, user, password, opts.Host, opts.Port, opts.Name, opts.SSLMode)
	log.Infof("connecting to database %s:%s", opts.Host, opts.Port)

	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening database %s:%s", opts.Host, opts.Port)
	}
	sqldb.SetMaxOpenConns(maxOpenConns)

	numTries := 0
	for {
		err = sqldb.PingContext(ctx)
		if err == nil {
			break
		}
		numTries++
		if numTries >= 15 {
			return nil, errors.Wrapf(err, "could not connect to database after %v tries", numTries)
		}
		toWait := 4 * time.Second
		log.WithError(err).Warnf("failed to connect to postgres, trying again in %s", toWait)
		time.Sleep(toWait)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	bunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(log.GetLevel() >= log.DebugLevel),
	))
	return &PgDB{bun: bunDB}, nil
}

// Close closes the underlying connection pool.
func (db *PgDB) Close() error {
	return db.bun.Close()
}

func credentialsFromSecret(
	ctx context.Context, secrets secretsmanageriface.SecretsManagerAPI, arn string,
) (string, string, error) {
	if secrets == nil {
		return "", "", errors.New("db secret configured but no secrets client available")
	}
	out, err := secrets.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return "", "", errors.Wrap(err, "error fetching database credential secret")
	}

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal([]byte(aws.StringValue(out.SecretString)), &creds); err != nil {
		return "", "", errors.Wrap(err, "error decoding database credential secret")
	}
	return creds.Username, creds.Password, nil
}
