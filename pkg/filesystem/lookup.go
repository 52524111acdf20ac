package filesystem

import (
	"fmt"
	"strings"

	"github.com/weberc2/osfs/pkg/directory"
	. "github.com/weberc2/osfs/pkg/types"
)

type FileSystem = directory.FileSystem
type FileInfo = directory.FileInfo

// Lookup resolves the absolute `path` one component at a time starting from
// the root directory. Repeated and trailing slashes are ignored, so `/` names
// the root itself. `.` and `..` are resolved against the path walked so far;
// the root is its own parent.
func Lookup(fs *FileSystem, path string, out *FileInfo) error {
	chunks, err := split(path)
	if err != nil {
		return fmt.Errorf("looking up path `%s`: %w", path, err)
	}
	walked, err := walk(fs, chunks)
	if err != nil {
		return fmt.Errorf("looking up path `%s`: %w", path, err)
	}
	*out = walked[len(walked)-1]
	return nil
}

// lookupParent resolves every component of `path` but the last and returns
// the parent's ino along with the final component.
func lookupParent(fs *FileSystem, path string) (Ino, string, error) {
	chunks, err := split(path)
	if err != nil {
		return 0, "", err
	}
	if len(chunks) < 1 {
		return 0, "", InvalidNameErr
	}
	walked, err := walk(fs, chunks[:len(chunks)-1])
	if err != nil {
		return 0, "", err
	}
	return walked[len(walked)-1].Ino, chunks[len(chunks)-1], nil
}

// walk returns the root followed by every entry still on the path after
// resolving `chunks`. The result is never empty.
func walk(fs *FileSystem, chunks []string) ([]FileInfo, error) {
	walked := []FileInfo{{Ino: InoRoot, FileType: FileTypeDir, Name: "/"}}
	for _, chunk := range chunks {
		current := walked[len(walked)-1]
		if chunk == "." || chunk == ".." {
			if current.FileType != FileTypeDir {
				return nil, fmt.Errorf(
					"resolving `%s` in `%s`: %w",
					chunk,
					current.Name,
					NotADirErr,
				)
			}
			if chunk == ".." && len(walked) > 1 {
				walked = walked[:len(walked)-1]
			}
			continue
		}

		var next FileInfo
		if err := directory.Lookup(fs, current.Ino, chunk, &next); err != nil {
			return nil, err
		}
		walked = append(walked, next)
	}
	return walked, nil
}

func split(path string) ([]string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, NotAbsolutePathErr
	}
	var chunks []string
	for _, chunk := range strings.Split(path, "/") {
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

var (
	NotAbsolutePathErr = &Error{Kind: InvalidArgumentErr, Message: "not an absolute path"}
)
