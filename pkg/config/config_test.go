package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "osfs.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile(): unexpected err: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
image: /var/lib/osfs/scratch.img
blockCount: 128
label: scratch
store:
  kind: s3
  bucket: images
  region: us-east-2
`)
	t.Setenv("OSFS_INODE_COUNT", "64")
	t.Setenv("OSFS_STORE_PREFIX", "hosts/a")

	found, err := Load(path)
	if err != nil {
		t.Fatalf("Load(): unexpected err: %v", err)
	}

	wanted := Default()
	wanted.Image = "/var/lib/osfs/scratch.img"
	wanted.BlockCount = 128
	wanted.InodeCount = 64
	wanted.Label = "scratch"
	wanted.Store.Kind = StoreKindS3
	wanted.Store.Bucket = "images"
	wanted.Store.Region = "us-east-2"
	wanted.Store.Prefix = "hosts/a"
	if diff := cmp.Diff(&wanted, found); diff != "" {
		t.Fatalf("Load(): mismatch (-wanted +found):\n%s", diff)
	}
	if err := found.Validate(); err != nil {
		t.Fatalf("Validate(): unexpected err: %v", err)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "label: from-file\n")
	t.Setenv("OSFS_LABEL", "from-env")
	found, err := Load(path)
	if err != nil {
		t.Fatalf("Load(): unexpected err: %v", err)
	}
	if found.Label != "from-env" {
		t.Fatalf("Load(): wanted label `from-env`; found `%s`", found.Label)
	}
}

func TestLoadUnknownField(t *testing.T) {
	path := writeConfig(t, "blockSize: 512\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load(): wanted err for unknown field; found `nil`")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Load(): wanted err `%v`; found `%v`", fs.ErrNotExist, err)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("OSFS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	found, err := Load("")
	if err != nil {
		t.Fatalf("Load(): unexpected err: %v", err)
	}
	if diff := cmp.Diff(Default(), *found); diff != "" {
		t.Fatalf("Load(): mismatch (-wanted +found):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	for _, testCase := range []struct {
		name   string
		modify func(c *Config)
		wanted string
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{
			name:   "no-image",
			modify: func(c *Config) { c.Image = "" },
			wanted: "OSFS_IMAGE",
		},
		{
			name:   "no-blocks",
			modify: func(c *Config) { c.BlockCount = 0 },
			wanted: "OSFS_BLOCK_COUNT",
		},
		{
			name:   "one-inode",
			modify: func(c *Config) { c.InodeCount = 1 },
			wanted: "OSFS_INODE_COUNT",
		},
		{
			name:   "long-label",
			modify: func(c *Config) { c.Label = strings.Repeat("x", 33) },
			wanted: "OSFS_LABEL",
		},
		{
			name:   "bad-log-level",
			modify: func(c *Config) { c.LogLevel = "loud" },
			wanted: "OSFS_LOG_LEVEL",
		},
		{
			name:   "bad-log-format",
			modify: func(c *Config) { c.LogFormat = "xml" },
			wanted: "OSFS_LOG_FORMAT",
		},
		{
			name:   "bad-store-kind",
			modify: func(c *Config) { c.Store.Kind = "ftp" },
			wanted: "OSFS_STORE_KIND",
		},
		{
			name:   "no-store-dir",
			modify: func(c *Config) { c.Store.Dir = "" },
			wanted: "OSFS_STORE_DIR",
		},
		{
			name: "s3-without-dir",
			modify: func(c *Config) {
				c.Store.Kind = StoreKindS3
				c.Store.Dir = ""
			},
		},
		{
			name: "s3-no-bucket",
			modify: func(c *Config) {
				c.Store.Kind = StoreKindS3
				c.Store.Bucket = ""
			},
			wanted: "OSFS_STORE_BUCKET",
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			c := Default()
			testCase.modify(&c)
			err := c.Validate()
			if testCase.wanted == "" {
				if err != nil {
					t.Fatalf("Validate(): unexpected err: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), testCase.wanted) {
				t.Fatalf(
					"Validate(): wanted err mentioning `%s`; found `%v`",
					testCase.wanted,
					err,
				)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	c := Default()
	c.LogLevel = "debug"
	c.LogFormat = LogFormatJSON
	log, err := c.Logger()
	if err != nil {
		t.Fatalf("Logger(): unexpected err: %v", err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf(
			"Logger(): wanted level `%v`; found `%v`",
			logrus.DebugLevel,
			log.GetLevel(),
		)
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("Logger(): wanted JSON formatter; found `%T`", log.Formatter)
	}
}
