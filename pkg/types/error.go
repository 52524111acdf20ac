package types

type ConstError string

func (err ConstError) Error() string { return string(err) }

// Error kinds. Every error returned by the engine wraps exactly one of these.
const (
	ResourceExhaustedErr ConstError = "resource exhausted"
	InvalidArgumentErr   ConstError = "invalid argument"
	NotFoundErr          ConstError = "not found"
	AllocationFailureErr ConstError = "allocation failure"
)

// Error is a specific engine error. It unwraps to its `Kind` so callers can
// match either the specific error or its category with `errors.Is`.
type Error struct {
	Kind    ConstError
	Message string
}

func (err *Error) Error() string { return err.Message }

func (err *Error) Unwrap() error { return err.Kind }

var (
	OutOfBlocksErr = &Error{Kind: ResourceExhaustedErr, Message: "out of blocks"}
	OutOfInodesErr = &Error{Kind: ResourceExhaustedErr, Message: "out of inodes"}

	UnsupportedModeErr = &Error{Kind: InvalidArgumentErr, Message: "unsupported mode"}
	NameTooLongErr     = &Error{Kind: InvalidArgumentErr, Message: "name too long"}
	InvalidNameErr     = &Error{Kind: InvalidArgumentErr, Message: "invalid name"}
	NotADirErr         = &Error{Kind: InvalidArgumentErr, Message: "not a directory"}
	IsADirErr          = &Error{Kind: InvalidArgumentErr, Message: "is a directory"}
	InvalidRangeErr    = &Error{Kind: InvalidArgumentErr, Message: "invalid range"}
	EntryExistsErr     = &Error{Kind: InvalidArgumentErr, Message: "entry exists"}

	InoOutOfRangeErr     = &Error{Kind: NotFoundErr, Message: "ino out of range"}
	InodeNotAllocatedErr = &Error{Kind: NotFoundErr, Message: "inode not allocated"}
	EntryNotFoundErr     = &Error{Kind: NotFoundErr, Message: "entry not found"}

	ExtentTableFullErr = &Error{Kind: AllocationFailureErr, Message: "extent table full"}
)
