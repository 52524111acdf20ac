package objectstore

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	. "github.com/weberc2/osfs/pkg/types"
)

// GzipObjectStore compresses images on their way into the wrapped store and
// decompresses them on the way out. Images are mostly zeroes, so they
// compress well.
type GzipObjectStore struct {
	ObjectStore
}

// PutObject spools the compressed image to a temporary file so arbitrarily
// large images never sit in memory.
func (store *GzipObjectStore) PutObject(
	bucket string,
	key string,
	data io.ReadSeeker,
) error {
	tmp, err := os.CreateTemp("", "osfs-image-*.gz")
	if err != nil {
		return fmt.Errorf("compressing image `%s`: %w", key, err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	w, err := gzip.NewWriterLevel(tmp, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("compressing image `%s`: %w", key, err)
	}
	if _, err := io.Copy(w, data); err != nil {
		return fmt.Errorf("compressing image `%s`: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("compressing image `%s`: %w", key, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("compressing image `%s`: %w", key, err)
	}
	return store.ObjectStore.PutObject(bucket, key, tmp)
}

type gzipReadCloser struct {
	*gzip.Reader
	body io.ReadCloser
}

func (grc *gzipReadCloser) Close() error {
	if err := grc.Reader.Close(); err != nil {
		grc.body.Close()
		return err
	}
	return grc.body.Close()
}

func (store *GzipObjectStore) GetObject(
	bucket string,
	key string,
) (io.ReadCloser, error) {
	body, err := store.ObjectStore.GetObject(bucket, key)
	if err != nil {
		return nil, err
	}
	r, err := gzip.NewReader(body)
	if err != nil {
		body.Close()
		return nil, fmt.Errorf("decompressing image `%s`: %w", key, err)
	}
	return &gzipReadCloser{Reader: r, body: body}, nil
}
