package directory

import (
	"strings"

	. "github.com/weberc2/osfs/pkg/types"
)

type FileInfo struct {
	Ino      Ino
	FileType FileType
	Name     string
}

// ValidateName rejects names that cannot be stored in a slot or that would
// be ambiguous in a path.
func ValidateName(name string) error {
	if Byte(len(name)) > MaxNameLen {
		return NameTooLongErr
	}
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, "/\x00") {
		return InvalidNameErr
	}
	return nil
}
