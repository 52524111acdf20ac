package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	EnvVarPrefix = "OSFS"
	AppName      = "osfs"

	StoreKindDir = "dir"
	StoreKindS3  = "s3"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

type Config struct {
	Image      string `envconfig:"IMAGE"       yaml:"image"`
	BlockCount uint64 `envconfig:"BLOCK_COUNT" yaml:"blockCount"`
	InodeCount uint64 `envconfig:"INODE_COUNT" yaml:"inodeCount"`
	Label      string `envconfig:"LABEL"       yaml:"label"`
	LogLevel   string `envconfig:"LOG_LEVEL"   yaml:"logLevel"`
	LogFormat  string `envconfig:"LOG_FORMAT"  yaml:"logFormat"`
	Store      Store  `envconfig:"STORE"       yaml:"store"`
}

// Store selects where `push` and `pull` keep images.
type Store struct {
	Kind     string `envconfig:"KIND"     yaml:"kind"`
	Dir      string `envconfig:"DIR"      yaml:"dir"`
	Bucket   string `envconfig:"BUCKET"   yaml:"bucket"`
	Prefix   string `envconfig:"PREFIX"   yaml:"prefix"`
	Region   string `envconfig:"REGION"   yaml:"region"`
	Compress bool   `envconfig:"COMPRESS" yaml:"compress"`
}

func Default() Config {
	return Config{
		Image:      AppName + ".img",
		BlockCount: 4096,
		InodeCount: 1024,
		LogLevel:   logrus.InfoLevel.String(),
		LogFormat:  LogFormatText,
		Store: Store{
			Kind:     StoreKindDir,
			Dir:      "images",
			Bucket:   AppName,
			Compress: true,
		},
	}
}

// DefaultPath is `$OSFS_CONFIG_FILE` if set, otherwise `osfs.yaml` in the
// user's config directory.
func DefaultPath() string {
	if path := os.Getenv(EnvVarPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName+".yaml")
}

// Load layers the YAML file at `path` and then `OSFS_*` environment variables
// over `Default()`. An empty `path` means `DefaultPath()`, which may be
// missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshaling config file `%s`: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	return &c, nil
}

func (c *Config) Validate() error {
	if y, e := func() (string, string) {
		if c.Image == "" {
			return "image", "IMAGE"
		}
		if c.BlockCount < 1 {
			return "blockCount", "BLOCK_COUNT"
		}
		if c.InodeCount < 2 {
			return "inodeCount", "INODE_COUNT"
		}
		if len(c.Label) > 32 {
			return "label", "LABEL"
		}
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return "logLevel", "LOG_LEVEL"
		}
		if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
			return "logFormat", "LOG_FORMAT"
		}
		switch c.Store.Kind {
		case StoreKindDir:
			if c.Store.Dir == "" {
				return "store.dir", "STORE_DIR"
			}
		case StoreKindS3:
		default:
			return "store.kind", "STORE_KIND"
		}
		if c.Store.Bucket == "" {
			return "store.bucket", "STORE_BUCKET"
		}
		return "", ""
	}(); y != "" {
		return fmt.Errorf(
			"missing or invalid configuration: %s / %s_%s",
			y,
			EnvVarPrefix,
			e,
		)
	}
	return nil
}

// Logger builds a logger with the configured level and format.
func (c *Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	log := logrus.New()
	log.SetLevel(level)
	if c.LogFormat == LogFormatJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	log.SetOutput(os.Stderr)
	return log, nil
}
