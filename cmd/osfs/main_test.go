package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	stdio "io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/weberc2/osfs/pkg/encode"
	"github.com/weberc2/osfs/pkg/objectstore"
	. "github.com/weberc2/osfs/pkg/types"
)

type workspace struct {
	dir string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	ws := workspace{dir: t.TempDir()}
	config := fmt.Sprintf(
		"image: %s\n"+
			"blockCount: 32\n"+
			"inodeCount: 8\n"+
			"label: scratch\n"+
			"logLevel: panic\n"+
			"store:\n"+
			"  kind: dir\n"+
			"  dir: %s\n"+
			"  bucket: osfs\n"+
			"  compress: false\n",
		ws.image(),
		ws.path("images"),
	)
	if err := os.WriteFile(ws.path("osfs.yaml"), []byte(config), 0o644); err != nil {
		t.Fatalf("writing config: unexpected err: %v", err)
	}
	return ws
}

func (ws workspace) path(name string) string { return filepath.Join(ws.dir, name) }

func (ws workspace) image() string { return ws.path("osfs.img") }

func (ws workspace) store() objectstore.DirObjectStore {
	return objectstore.DirObjectStore(ws.path("images"))
}

// run invokes the CLI with the workspace config and returns what it wrote to
// stdout.
func (ws workspace) run(stdin string, args ...string) (string, error) {
	var stdout bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = stdio.Discard
	err := app.Run(append(
		[]string{"osfs", "--config", ws.path("osfs.yaml")},
		args...,
	))
	return stdout.String(), err
}

func (ws workspace) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := ws.run("", args...)
	if err != nil {
		t.Fatalf("osfs %s: unexpected err: %v", strings.Join(args, " "), err)
	}
	return out
}

func (ws workspace) readImage(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(ws.image())
	if err != nil {
		t.Fatalf("reading image: unexpected err: %v", err)
	}
	return data
}

// leftovers lists the files in the workspace other than the config, the
// image and the image store.
func (ws workspace) leftovers(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(ws.dir)
	if err != nil {
		t.Fatalf("reading workspace: unexpected err: %v", err)
	}
	var found []string
	for _, entry := range entries {
		switch entry.Name() {
		case "osfs.yaml", "osfs.img", "images":
		default:
			found = append(found, entry.Name())
		}
	}
	return found
}

func df(t *testing.T, ws workspace, args ...string) Superblock {
	t.Helper()
	var sb Superblock
	out := ws.mustRun(t, append(args, "df")...)
	if err := json.Unmarshal([]byte(out), &sb); err != nil {
		t.Fatalf("df: unmarshaling `%s`: unexpected err: %v", out, err)
	}
	return sb
}

func TestMkfs(t *testing.T) {
	for _, testCase := range []struct {
		name   string
		flags  []string
		blocks Block
		inodes Ino
		label  string
	}{
		{
			name:   "config",
			blocks: 32,
			inodes: 8,
			label:  "scratch",
		},
		{
			name:   "flags-override-config",
			flags:  []string{"--blocks", "16", "--label", "flagged"},
			blocks: 16,
			inodes: 8,
			label:  "flagged",
		},
		{
			name:   "all-flags",
			flags:  []string{"--blocks", "8", "--inodes", "4", "--label", ""},
			blocks: 8,
			inodes: 4,
			label:  "",
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			ws := newWorkspace(t)
			ws.mustRun(t, append([]string{"mkfs"}, testCase.flags...)...)

			sb := df(t, ws)
			found := []interface{}{sb.BlockCount, sb.InodeCount, sb.Label}
			wanted := []interface{}{
				testCase.blocks,
				testCase.inodes,
				testCase.label,
			}
			if diff := cmp.Diff(wanted, found); diff != "" {
				t.Fatalf("df: unexpected geometry (-wanted +found):\n%s", diff)
			}
		})
	}
}

func TestImageFlagOverridesConfig(t *testing.T) {
	ws := newWorkspace(t)
	other := ws.path("other.img")
	ws.mustRun(t, "--image", other, "mkfs")

	if _, err := os.Stat(other); err != nil {
		t.Fatalf("Stat(`%s`): unexpected err: %v", other, err)
	}
	if _, err := os.Stat(ws.image()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Stat(`%s`): wanted `%v`; found `%v`", ws.image(), os.ErrNotExist, err)
	}
	if sb := df(t, ws, "--image", other); sb.Label != "scratch" {
		t.Fatalf("df: wanted label `scratch`; found `%s`", sb.Label)
	}
}

func TestWithVolumeFlushesOnlyMutations(t *testing.T) {
	ws := newWorkspace(t)
	ws.mustRun(t, "mkfs")
	before := ws.readImage(t)

	for _, args := range [][]string{{"ls", "/"}, {"df"}, {"stat", "/"}} {
		ws.mustRun(t, args...)
		if !bytes.Equal(before, ws.readImage(t)) {
			t.Fatalf("osfs %s: image changed", strings.Join(args, " "))
		}
	}

	if _, err := ws.run("", "mkdir", "/missing/d"); !errors.Is(err, EntryNotFoundErr) {
		t.Fatalf("mkdir: wanted err `%v`; found `%v`", EntryNotFoundErr, err)
	}
	if !bytes.Equal(before, ws.readImage(t)) {
		t.Fatal("mkdir: failed command changed the image")
	}

	ws.mustRun(t, "mkdir", "/d")
	if bytes.Equal(before, ws.readImage(t)) {
		t.Fatal("mkdir: image unchanged after a successful mutation")
	}
	if out := ws.mustRun(t, "ls", "/"); !strings.HasSuffix(out, "\td\n") {
		t.Fatalf("ls: wanted entry `d`; found `%s`", out)
	}
}

func TestPutCat(t *testing.T) {
	ws := newWorkspace(t)
	ws.mustRun(t, "mkfs")
	ws.mustRun(t, "mkdir", "/etc")

	contents := strings.Repeat("hello, world\n", 1000)
	if _, err := ws.run(contents, "put", "-", "/etc/motd"); err != nil {
		t.Fatalf("put: unexpected err: %v", err)
	}
	if found := ws.mustRun(t, "cat", "/etc/motd"); found != contents {
		t.Fatalf("cat: wanted `%d` bytes; found `%d`", len(contents), len(found))
	}

	if _, err := ws.run("", "cat", "/etc"); !errors.Is(err, IsADirErr) {
		t.Fatalf("cat: wanted err `%v`; found `%v`", IsADirErr, err)
	}
}

func TestPushImages(t *testing.T) {
	ws := newWorkspace(t)
	ws.mustRun(t, "mkfs")
	ws.mustRun(t, "push")
	ws.mustRun(t, "push", "--key", "backup.img")

	if diff := cmp.Diff(
		"backup.img\nscratch.img\n",
		ws.mustRun(t, "images"),
	); diff != "" {
		t.Fatalf("images: mismatch (-wanted +found):\n%s", diff)
	}
}

func TestPull(t *testing.T) {
	stale := []byte("not a volume, but precious")
	for _, testCase := range []struct {
		name      string
		existing  []byte
		args      []string
		wantedErr error
		// wantedImage is compared with the image after the pull; `nil`
		// means the pulled volume must have replaced it.
		wantedImage []byte
	}{
		{
			name:        "missing-key-keeps-image",
			existing:    stale,
			args:        []string{"--key", "does-not-exist.img", "--force"},
			wantedErr:   NotFoundErr,
			wantedImage: stale,
		},
		{
			name:        "corrupt-object-keeps-image",
			existing:    stale,
			args:        []string{"--key", "corrupt.img", "--force"},
			wantedErr:   encode.InvalidSuperblockErr,
			wantedImage: stale,
		},
		{
			name:      "missing-key-creates-nothing",
			args:      []string{"--key", "does-not-exist.img"},
			wantedErr: NotFoundErr,
		},
		{
			name:        "existing-image-without-force",
			existing:    stale,
			args:        []string{"--key", "good.img"},
			wantedImage: stale,
		},
		{
			name:     "force-replaces-image",
			existing: stale,
			args:     []string{"--key", "good.img", "--force"},
		},
		{
			name: "creates-image",
			args: []string{"--key", "good.img"},
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			ws := newWorkspace(t)

			// publish a valid volume holding `/etc` and a corrupt object
			ws.mustRun(t, "mkfs")
			ws.mustRun(t, "mkdir", "/etc")
			ws.mustRun(t, "push", "--key", "good.img")
			if err := ws.store().PutObject(
				"osfs",
				"corrupt.img",
				bytes.NewReader(bytes.Repeat([]byte{0xff}, int(BlockSize))),
			); err != nil {
				t.Fatalf("PutObject(): unexpected err: %v", err)
			}
			if err := os.Remove(ws.image()); err != nil {
				t.Fatalf("removing image: unexpected err: %v", err)
			}
			if testCase.existing != nil {
				if err := os.WriteFile(ws.image(), testCase.existing, 0o644); err != nil {
					t.Fatalf("writing image: unexpected err: %v", err)
				}
			}

			_, err := ws.run("", append([]string{"pull"}, testCase.args...)...)
			switch {
			case testCase.wantedErr != nil:
				if !errors.Is(err, testCase.wantedErr) {
					t.Fatalf(
						"pull: wanted err `%v`; found `%v`",
						testCase.wantedErr,
						err,
					)
				}
			case testCase.wantedImage != nil:
				if err == nil {
					t.Fatal("pull: wanted an error; found `nil`")
				}
			default:
				if err != nil {
					t.Fatalf("pull: unexpected err: %v", err)
				}
			}

			if leftovers := ws.leftovers(t); len(leftovers) > 0 {
				t.Fatalf("pull: left files behind: %v", leftovers)
			}

			switch {
			case testCase.wantedImage != nil:
				if found := ws.readImage(t); !bytes.Equal(testCase.wantedImage, found) {
					t.Fatalf(
						"pull: wanted image `%s`; found `%d` bytes",
						testCase.wantedImage,
						len(found),
					)
				}
			case err != nil:
				if _, statErr := os.Stat(ws.image()); !errors.Is(
					statErr,
					os.ErrNotExist,
				) {
					t.Fatalf(
						"Stat(image): wanted `%v`; found `%v`",
						os.ErrNotExist,
						statErr,
					)
				}
			default:
				out := ws.mustRun(t, "ls", "/")
				if !strings.HasSuffix(out, "\tetc\n") {
					t.Fatalf("ls: wanted entry `etc`; found `%s`", out)
				}
			}
		})
	}
}
