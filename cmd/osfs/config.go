package main

import (
	"fmt"
	stdio "io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/weberc2/osfs/pkg/config"
	"github.com/weberc2/osfs/pkg/io"
	"github.com/weberc2/osfs/pkg/objectstore"
	. "github.com/weberc2/osfs/pkg/types"
	"github.com/weberc2/osfs/pkg/volume"
)

type Config struct {
	config.Config
	log *logrus.Logger
}

func withConfig(f func(*Config, *cli.Context) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		loaded, err := config.Load(ctx.String("config"))
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if image := ctx.String("image"); image != "" {
			loaded.Image = image
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		log, err := loaded.Logger()
		if err != nil {
			return err
		}
		return f(&Config{Config: *loaded, log: log}, ctx)
	}
}

// withVolume mounts the configured image for `f`. When `mutates` is set the
// volume is flushed after `f` succeeds.
func withVolume(
	mutates bool,
	f func(*volume.Volume, *cli.Context) error,
) cli.ActionFunc {
	return withConfig(func(c *Config, ctx *cli.Context) error {
		device, err := io.OpenFileVolume(c.Image)
		if err != nil {
			return err
		}
		defer closeDevice(c, device)

		v, err := volume.Mount(device, c.log)
		if err != nil {
			return err
		}
		if err := f(v, ctx); err != nil {
			return err
		}
		if mutates {
			return v.Flush()
		}
		return nil
	})
}

func closeDevice(c *Config, device *io.FileVolume) {
	if err := device.Close(); err != nil {
		c.log.WithError(err).WithField("image", device.Name()).
			Error("closing image")
	}
}

func (c *Config) objectStore() (ObjectStore, error) {
	var store ObjectStore
	switch c.Store.Kind {
	case config.StoreKindS3:
		s3Store, err := objectstore.NewS3ObjectStore(c.Store.Region)
		if err != nil {
			return nil, err
		}
		store = s3Store
	default:
		store = objectstore.DirObjectStore(c.Store.Dir)
	}
	if c.Store.Compress {
		store = &objectstore.GzipObjectStore{ObjectStore: store}
	}
	return store, nil
}

// readLocal reads the local file at `path`, or all of `stdin` for `-`.
func readLocal(stdin stdio.Reader, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = stdio.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading local file `%s`: %w", path, err)
	}
	return data, nil
}
