package types

const (
	MaxNameLen         Byte = 255
	DirEntryNameSize   Byte = MaxNameLen + 1
	DirEntrySize       Byte = DirEntryNameSize + Size64
	DirEntriesPerBlock Byte = BlockSize / DirEntrySize
)

// DirEntry is one fixed-size directory slot. A slot whose `Ino` is `InoNil`
// is empty.
type DirEntry struct {
	Name string
	Ino  Ino
}

func (entry *DirEntry) Empty() bool { return entry.Ino == InoNil }
