package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"

	BlobDriverLocal  = "local"
	BlobDriverS3     = "s3"
	BlobDriverMemory = "memory"
)

const configFileENV = "CONFIG_FILE"

type Config struct {
	ServerHost string `koanf:"server_host" default:"0.0.0.0"`
	ServerPort int    `koanf:"server_port" default:"3000"`

	DatabaseDriver            string        `koanf:"database_driver" default:"sqlite" validate:"oneof=sqlite postgres"`
	DatabaseDSN               string        `koanf:"database_dsn" validate:"required"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries" default:"5"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`

	JWTSecret   string        `koanf:"jwt_secret" validate:"required"`
	TokenExpiry time.Duration `koanf:"token_expiry" default:"1h"`

	BlobDriver          string        `koanf:"blob_driver" default:"local" validate:"oneof=local s3 memory"`
	BlobLocalDir        string        `koanf:"blob_local_dir" default:"./tmp/blobs"`
	BlobPublicURL       string        `koanf:"blob_public_url" default:"http://localhost:3000"`
	BlobRetryMaxElapsed time.Duration `koanf:"blob_retry_max_elapsed" default:"3s"`
	BlobCleanupSchedule string        `koanf:"blob_cleanup_schedule" default:"*/10 * * * *"`
	SignedURLTTL        time.Duration `koanf:"signed_url_ttl" default:"1h"`
	S3Bucket            string        `koanf:"s3_bucket"`
	S3Region            string        `koanf:"s3_region" default:"us-east-1"`
	S3Endpoint          string        `koanf:"s3_endpoint"`
	S3AccessKey         string        `koanf:"s3_access_key"`
	S3SecretKey         string        `koanf:"s3_secret_key"`

	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     int    `koanf:"smtp_port" default:"587"`
	SMTPUsername string `koanf:"smtp_username"`
	SMTPPassword string `koanf:"smtp_password"`
	MailFrom     string `koanf:"mail_from" default:"no-reply@ml-be.local"`

	MetricsEnabled bool `koanf:"metrics_enabled" default:"true"`
}

// New loads the configuration from defaults, an optional YAML file (path in
// CONFIG_FILE, default ./config.yaml) and the environment, in that order of
// increasing precedence.
func New() (*Config, error) {
	// .env files only fill in variables that aren't already set.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a configuration backed by an in-memory database and an
// in-memory blob store.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseDSN = "file::memory:?cache=shared"
	cfg.JWTSecret = "test-secret"
	cfg.BlobDriver = BlobDriverMemory
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	cfg.MetricsEnabled = false
	return cfg
}

// SMTPEnabled reports whether outbound mail should go through SMTP.
func (cfg *Config) SMTPEnabled() bool {
	return cfg.SMTPHost != ""
}

func validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("koanf")
	})
	err := v.Struct(cfg)
	if err == nil {
		if cfg.BlobDriver == BlobDriverS3 && cfg.S3Bucket == "" {
			return missing("s3_bucket")
		}
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return errors.WithStack(err)
	}
	fe := errs[0]
	if fe.Tag() == "required" {
		return missing(fe.Field())
	}
	return errors.Errorf("invalid config: %s (%s) must be one of %s", strings.ToUpper(fe.Field()), fe.Field(), fe.Param())
}

func missing(key string) error {
	return errors.Errorf("missing required config: %s (%s)", strings.ToUpper(key), key)
}
