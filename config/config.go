// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath = pflag.String("config", ".", "Directory containing config.toml")
	runCleanup = pflag.Bool("cleanup-now", false, "Deletes expired files once at startup")

	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "r2", "local"}
	validDBDrivers    = []string{"sqlite", "postgres"}
)

// CleanupOnStart reports whether the --cleanup-now flag was passed
func CleanupOnStart() bool {
	return *runCleanup
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.AutomaticEnv()

	bindEnvs()
	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: config.toml file is missing, running with defaults and environment variables")
	}

	if err := validate(); err != nil {
		return err
	}

	if !v.GetBool("cloudflare.turnstile.enabled") {
		fmt.Println("[WARNING]: Cloudflare's turnstile is disabled. Uploads won't be guarded against bots")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}

func bindEnvs() {
	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.public_url", "host_public_url")
	v.BindEnv("host.cors", "host_cors")

	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.local_path", "storage_local_path")
	v.BindEnv("storage.timeout", "storage_timeout")

	v.BindEnv("aws.bucket", "aws_bucket")
	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.access_key", "aws_access_key")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.endpoint", "aws_endpoint")

	v.BindEnv("cloudflare.account_id", "cloudflare_account_id")
	v.BindEnv("cloudflare.access_key_id", "cloudflare_access_key_id")
	v.BindEnv("cloudflare.secret_access_key", "cloudflare_secret_access_key")
	v.BindEnv("cloudflare.bucket", "cloudflare_bucket")

	v.BindEnv("cloudflare.turnstile.enabled", "cloudflare_turnstile_enabled")
	v.BindEnv("cloudflare.turnstile.secret_token", "cloudflare_turnstile_secret_token")

	v.BindEnv("upload.max_size", "upload_max_size")

	v.BindEnv("files.expiry", "files_expiry")
	v.BindEnv("files.code_attempts", "files_code_attempts")

	v.BindEnv("cleanup.schedule", "cleanup_schedule")
	v.BindEnv("cleanup.timeout", "cleanup_timeout")
}

func setDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.public_url", "http://localhost:8080")
	v.SetDefault("host.cors", []string{"*"})

	v.SetDefault("security.rate_limit", 10)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "data")
	v.SetDefault("storage.timeout", time.Minute)

	v.SetDefault("upload.max_size", 10)

	v.SetDefault("files.expiry", 24*time.Hour)
	v.SetDefault("files.code_attempts", 5)

	v.SetDefault("cleanup.schedule", "@daily")
	v.SetDefault("cleanup.timeout", 10*time.Minute)

	v.SetDefault("cloudflare.turnstile.enabled", false)
}

// validate checks the values currently held by viper. upload.max_size
// is still expected in megabytes here
func validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetString("host.public_url") == "" {
		return errors.New("host.public_url can't be empty")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetDuration("files.expiry") <= 0 {
		return errors.New("files.expiry must be a positive duration")
	}

	if v.GetInt("files.code_attempts") <= 0 {
		return errors.New("files.code_attempts must be bigger than 0")
	}

	if v.GetDuration("storage.timeout") <= 0 {
		return errors.New("storage.timeout must be a positive duration")
	}

	if v.GetDuration("cleanup.timeout") <= 0 {
		return errors.New("cleanup.timeout must be a positive duration")
	}

	if _, err := cron.ParseStandard(v.GetString("cleanup.schedule")); err != nil {
		return fmt.Errorf("invalid cleanup.schedule, %w", err)
	}

	switch v.GetString("storage.type") {
	case "s3":
		{
			if v.GetString("aws.bucket") == "" {
				return errors.New("bucket can't be empty")
			}
			if v.GetString("aws.region") == "" {
				return errors.New("region can't be empty")
			}
		}
	case "r2":
		{
			if v.GetString("cloudflare.account_id") == "" {
				return errors.New("account id can't be empty")
			}
			if v.GetString("cloudflare.access_key_id") == "" {
				return errors.New("account access id can't be empty")
			}
			if v.GetString("cloudflare.secret_access_key") == "" {
				return errors.New("secret access key can't be empty")
			}
			if v.GetString("cloudflare.bucket") == "" {
				return errors.New("bucket can't be empty")
			}
		}
	case "local":
		{
			if v.GetString("storage.local_path") == "" {
				return errors.New("storage.local_path can't be empty")
			}
		}
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetBool("cloudflare.turnstile.enabled") && v.GetString("cloudflare.turnstile.secret_token") == "" {
		return errors.New("turnstile secret token is missing")
	}

	if v.GetString("aws.access_key") == "" && v.GetString("storage.type") == "s3" {
		zap.L().Warn("No aws.access_key specified, falling back to the default AWS credential chain")
	}

	return nil
}
