package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// ConfigFileEnv names the optional YAML file read before environment variables.
const ConfigFileEnv = "RBAUDIT_CONFIG"

type Config struct {
	ListenAddr     string `yaml:"listen_addr" env:"LISTEN_ADDR" env-default:":8080"`
	DBPath         string `yaml:"db_path" env:"DB_PATH" env-default:"/data/rbaudit.db"`
	LogLevel       string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFile        string `yaml:"log_file" env:"LOG_FILE" env-default:""`
	ExportFilename string `yaml:"export_filename" env:"EXPORT_FILENAME" env-default:"Cockburn_Condition_Audit_Data.xlsx"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"52428800"`

	Photo PhotoConfig `yaml:"photo"`
}

// PhotoConfig selects where captured photos are kept. "db" stores them next
// to the collections as photo:<name> keys.
type PhotoConfig struct {
	Backend   string `yaml:"backend" env:"PHOTO_BACKEND" env-default:"db"`
	LocalPath string `yaml:"local_path" env:"PHOTO_LOCAL_PATH" env-default:"/data/photos"`
	Bucket    string `yaml:"s3_bucket" env:"PHOTO_S3_BUCKET" env-default:""`
	Region    string `yaml:"s3_region" env:"PHOTO_S3_REGION" env-default:"us-east-1"`
	Endpoint  string `yaml:"s3_endpoint" env:"PHOTO_S3_ENDPOINT" env-default:""`
	PathStyle bool   `yaml:"s3_path_style" env:"PHOTO_S3_PATH_STYLE" env-default:"false"`
	Prefix    string `yaml:"s3_prefix" env:"PHOTO_S3_PREFIX" env-default:""`

	// Static credentials; the default AWS chain is used when unset.
	AccessKeyID     string `yaml:"s3_access_key_id" env:"PHOTO_S3_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `yaml:"s3_secret_access_key" env:"PHOTO_S3_SECRET_ACCESS_KEY" env-default:""`
}

// Load reads the YAML file named by RBAUDIT_CONFIG, if set, then applies
// environment overrides and defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	if path, ok := os.LookupEnv(ConfigFileEnv); ok && path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Photo.Backend {
	case "db", "local":
	case "s3":
		if c.Photo.Bucket == "" {
			return fmt.Errorf("PHOTO_S3_BUCKET is required when PHOTO_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown PHOTO_BACKEND %q", c.Photo.Backend)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}
