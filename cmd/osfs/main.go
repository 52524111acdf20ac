package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"github.com/weberc2/osfs/pkg/filesystem"
	"github.com/weberc2/osfs/pkg/io"
	"github.com/weberc2/osfs/pkg/objectstore"
	. "github.com/weberc2/osfs/pkg/types"
	"github.com/weberc2/osfs/pkg/volume"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "osfs",
		Usage:       "create and edit osfs volume images",
		Description: "a command line interface to osfs volume images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the YAML config file",
			},
			&cli.StringFlag{
				Name:  "image",
				Usage: "path to the volume image; overrides the config",
			},
		},
		Commands: []*cli.Command{{
			Name:        "mkfs",
			Aliases:     []string{"format"},
			Description: "create a new, empty volume image",
			Flags: []cli.Flag{
				&cli.Uint64Flag{
					Name:  "blocks",
					Usage: "number of data blocks; defaults to the config",
				},
				&cli.Uint64Flag{
					Name:  "inodes",
					Usage: "number of inodes; defaults to the config",
				},
				&cli.StringFlag{
					Name:  "label",
					Usage: "volume label; defaults to the config",
				},
			},
			Action: withConfig(mkfs),
		}, {
			Name:        "ls",
			Aliases:     []string{"list"},
			Description: "list the entries of a directory",
			ArgsUsage:   "[PATH]",
			Action: withVolume(false, func(v *volume.Volume, ctx *cli.Context) error {
				path := ctx.Args().First()
				if path == "" {
					path = "/"
				}
				entries, err := filesystem.ReadDir(&v.FileSystem, path)
				if err != nil {
					return err
				}
				for _, entry := range entries {
					if _, err := fmt.Fprintf(
						ctx.App.Writer,
						"%d\t%s\t%s\n",
						entry.Ino,
						entry.FileType,
						entry.Name,
					); err != nil {
						return fmt.Errorf("writing to stdout: %w", err)
					}
				}
				return nil
			}),
		}, {
			Name:        "mkdir",
			Description: "create a directory",
			ArgsUsage:   "PATH",
			Action: withVolume(true, func(v *volume.Volume, ctx *cli.Context) error {
				path, err := arg(ctx, 0)
				if err != nil {
					return err
				}
				_, err = filesystem.MakeDir(&v.FileSystem, path, PermDefaultDir)
				return err
			}),
		}, {
			Name:        "put",
			Aliases:     []string{"write"},
			Description: "copy a local file (or `-` for stdin) into the volume",
			ArgsUsage:   "SRC DEST",
			Action: withVolume(true, func(v *volume.Volume, ctx *cli.Context) error {
				src, err := arg(ctx, 0)
				if err != nil {
					return err
				}
				dst, err := arg(ctx, 1)
				if err != nil {
					return err
				}
				data, err := readLocal(ctx.App.Reader, src)
				if err != nil {
					return err
				}
				_, err = filesystem.WriteFile(&v.FileSystem, dst, data)
				return err
			}),
		}, {
			Name:        "cat",
			Aliases:     []string{"read"},
			Description: "write a file's contents to stdout",
			ArgsUsage:   "PATH",
			Action: withVolume(false, func(v *volume.Volume, ctx *cli.Context) error {
				path, err := arg(ctx, 0)
				if err != nil {
					return err
				}
				data, err := filesystem.ReadFile(&v.FileSystem, path)
				if err != nil {
					return err
				}
				if _, err := ctx.App.Writer.Write(data); err != nil {
					return fmt.Errorf("writing to stdout: %w", err)
				}
				return nil
			}),
		}, {
			Name:        "stat",
			Description: "print an inode as JSON",
			ArgsUsage:   "PATH",
			Action: withVolume(false, func(v *volume.Volume, ctx *cli.Context) error {
				path, err := arg(ctx, 0)
				if err != nil {
					return err
				}
				inode, err := filesystem.Stat(&v.FileSystem, path)
				if err != nil {
					return err
				}
				return printJSON(ctx, inode)
			}),
		}, {
			Name:        "df",
			Description: "print the superblock and free counters as JSON",
			Action: withVolume(false, func(v *volume.Volume, ctx *cli.Context) error {
				return printJSON(ctx, v.Superblock())
			}),
		}, {
			Name:        "push",
			Aliases:     []string{"upload"},
			Description: "upload the image to the configured image store",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "key",
					Usage: "object key; defaults to the slugged volume label",
				},
			},
			Action: withConfig(push),
		}, {
			Name:        "pull",
			Aliases:     []string{"download"},
			Description: "download an image from the configured image store",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "key",
					Usage: "object key; defaults to the slugged configured label",
				},
				&cli.BoolFlag{
					Name:  "force",
					Usage: "overwrite an existing image",
				},
			},
			Action: withConfig(pull),
		}, {
			Name:        "images",
			Description: "list the images in the configured image store",
			Action: withConfig(func(c *Config, ctx *cli.Context) error {
				store, err := c.objectStore()
				if err != nil {
					return err
				}
				keys, err := store.ListObjects(c.Store.Bucket, c.Store.Prefix)
				if err != nil {
					return err
				}
				for _, key := range keys {
					if _, err := fmt.Fprintln(ctx.App.Writer, key); err != nil {
						return fmt.Errorf("writing to stdout: %w", err)
					}
				}
				return nil
			}),
		}},
	}
}

func mkfs(c *Config, ctx *cli.Context) error {
	params := volume.Params{
		BlockCount: Block(c.BlockCount),
		InodeCount: Ino(c.InodeCount),
		Label:      c.Label,
	}
	if ctx.IsSet("blocks") {
		params.BlockCount = Block(ctx.Uint64("blocks"))
	}
	if ctx.IsSet("inodes") {
		params.InodeCount = Ino(ctx.Uint64("inodes"))
	}
	if ctx.IsSet("label") {
		params.Label = ctx.String("label")
	}
	if err := params.Validate(); err != nil {
		return err
	}

	device, err := io.CreateFileVolume(
		c.Image,
		volume.Size(params.BlockCount, params.InodeCount),
	)
	if err != nil {
		return err
	}
	defer closeDevice(c, device)

	if _, err := volume.Format(device, params, c.log); err != nil {
		return err
	}
	return nil
}

func push(c *Config, ctx *cli.Context) error {
	store, err := c.objectStore()
	if err != nil {
		return err
	}
	device, err := io.OpenFileVolume(c.Image)
	if err != nil {
		return err
	}
	defer closeDevice(c, device)

	v, err := volume.Mount(device, c.log)
	if err != nil {
		return err
	}
	sb := v.Superblock()
	key := ctx.String("key")
	if key == "" {
		key = objectstore.Key(c.Store.Prefix, sb.Label, sb.UUID)
	}

	if err := objectstore.Push(
		store,
		c.Store.Bucket,
		key,
		device,
		volume.Size(sb.BlockCount, sb.InodeCount),
	); err != nil {
		return err
	}
	c.log.WithField("bucket", c.Store.Bucket).WithField("key", key).
		Info("pushed image")
	return nil
}

// pull downloads into a temporary file next to the image and only replaces
// the image once the download mounts cleanly, so a failed pull leaves any
// existing image untouched.
func pull(c *Config, ctx *cli.Context) error {
	store, err := c.objectStore()
	if err != nil {
		return err
	}
	key := ctx.String("key")
	if key == "" {
		if c.Label == "" {
			return fmt.Errorf("pulling image: `--key` or a label is required")
		}
		key = objectstore.Key(c.Store.Prefix, c.Label, uuid.Nil)
	}
	if _, err := os.Stat(c.Image); err == nil && !ctx.Bool("force") {
		return fmt.Errorf(
			"pulling image: `%s` exists; use `--force` to overwrite",
			c.Image,
		)
	}

	device, err := io.CreateTempFileVolume(
		filepath.Dir(c.Image),
		"."+filepath.Base(c.Image)+".pull-*",
	)
	if err != nil {
		return fmt.Errorf("pulling image: %w", err)
	}
	tmp := device.Name()

	v, err := fetchImage(c, store, key, device)
	if closeErr := device.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("pulling image: closing `%s`: %w", tmp, closeErr)
	}
	if err == nil {
		if renameErr := os.Rename(tmp, c.Image); renameErr != nil {
			err = fmt.Errorf(
				"pulling image: replacing `%s`: %w",
				c.Image,
				renameErr,
			)
		}
	}
	if err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			c.log.WithError(removeErr).WithField("path", tmp).
				Error("removing partial image")
		}
		return err
	}

	c.log.WithField("key", key).WithField("uuid", v.Superblock().UUID).
		Info("pulled image")
	return nil
}

// fetchImage downloads `key` into `device` and mounts it to check that it is
// a complete volume.
func fetchImage(
	c *Config,
	store ObjectStore,
	key string,
	device *io.FileVolume,
) (*volume.Volume, error) {
	if _, err := objectstore.Pull(store, c.Store.Bucket, key, device); err != nil {
		return nil, fmt.Errorf("pulling image: %w", err)
	}
	v, err := volume.Mount(device, c.log)
	if err != nil {
		return nil, fmt.Errorf("pulling image: verifying `%s`: %w", key, err)
	}
	if err := device.Sync(); err != nil {
		return nil, fmt.Errorf("pulling image: syncing `%s`: %w", key, err)
	}
	return v, nil
}

func arg(ctx *cli.Context, i int) (string, error) {
	if ctx.NArg() <= i {
		return "", fmt.Errorf(
			"`%s`: missing argument `%d` (usage: %s)",
			ctx.Command.Name,
			i+1,
			ctx.Command.ArgsUsage,
		)
	}
	return ctx.Args().Get(i), nil
}

func printJSON(ctx *cli.Context, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling to JSON: %w", err)
	}
	if _, err := fmt.Fprintf(ctx.App.Writer, "%s\n", data); err != nil {
		return fmt.Errorf("writing JSON to stdout: %w", err)
	}
	return nil
}
