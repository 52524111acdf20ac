package objectstore

import (
	"errors"
	"fmt"
	stdio "io"
	"path"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/weberc2/osfs/pkg/io"
	. "github.com/weberc2/osfs/pkg/types"
)

const ImageExtension = ".img"

// Key names the image of a volume under `prefix`. The slugged label is used
// when it yields anything; otherwise the volume UUID.
func Key(prefix string, label string, id uuid.UUID) string {
	name := slug.Make(label)
	if name == "" {
		name = id.String()
	}
	return path.Join(prefix, name+ImageExtension)
}

// Push uploads the first `size` bytes of `device` as `bucket/key`.
func Push(
	store ObjectStore,
	bucket string,
	key string,
	device io.ReadAt,
	size Byte,
) error {
	if err := store.PutObject(bucket, key, io.Section(device, size)); err != nil {
		return fmt.Errorf("pushing image `%s/%s`: %w", bucket, key, err)
	}
	return nil
}

const pullChunk = 64 * BlockSize

// Pull downloads `bucket/key` into `device` starting at offset zero and
// returns the number of bytes written.
func Pull(
	store ObjectStore,
	bucket string,
	key string,
	device io.WriteAt,
) (Byte, error) {
	body, err := store.GetObject(bucket, key)
	if err != nil {
		return 0, fmt.Errorf("pulling image `%s/%s`: %w", bucket, key, err)
	}
	defer body.Close()

	buf := make([]byte, pullChunk)
	var offset Byte
	for {
		n, err := stdio.ReadFull(body, buf)
		if n > 0 {
			if err := device.WriteAt(offset, buf[:n]); err != nil {
				return offset, fmt.Errorf(
					"pulling image `%s/%s`: %w",
					bucket,
					key,
					err,
				)
			}
			offset += Byte(n)
		}
		if errors.Is(err, stdio.EOF) || errors.Is(err, stdio.ErrUnexpectedEOF) {
			return offset, nil
		}
		if err != nil {
			return offset, fmt.Errorf("pulling image `%s/%s`: %w", bucket, key, err)
		}
	}
}
