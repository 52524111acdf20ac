package objectstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	. "github.com/weberc2/osfs/pkg/types"
)

var _ ObjectStore = DirObjectStore("")

// DirObjectStore keeps each bucket as a subdirectory of a local directory.
// Keys may contain slashes; they become nested paths within the bucket.
type DirObjectStore string

func (root DirObjectStore) path(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." ||
		bucket == ".." {
		return "", fmt.Errorf("invalid bucket `%s`: %w", bucket, InvalidArgumentErr)
	}
	clean := filepath.Clean("/" + key)
	if key == "" || clean == "/" {
		return "", fmt.Errorf("invalid key `%s`: %w", key, InvalidArgumentErr)
	}
	return filepath.Join(string(root), bucket, filepath.FromSlash(clean)), nil
}

// PutObject writes to a temporary file beside the destination and renames it
// into place, so readers never see a partial image.
func (root DirObjectStore) PutObject(
	bucket string,
	key string,
	data io.ReadSeeker,
) error {
	path, err := root.path(bucket, key)
	if err != nil {
		return fmt.Errorf("putting image: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("putting image `%s/%s`: %w", bucket, key, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("putting image `%s/%s`: %w", bucket, key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("putting image `%s/%s`: %w", bucket, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("putting image `%s/%s`: %w", bucket, key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("putting image `%s/%s`: %w", bucket, key, err)
	}
	return nil
}

func (root DirObjectStore) GetObject(
	bucket string,
	key string,
) (io.ReadCloser, error) {
	path, err := root.path(bucket, key)
	if err != nil {
		return nil, fmt.Errorf("getting image: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ObjectNotFoundErr{Bucket: bucket, Key: key}
		}
		return nil, fmt.Errorf("getting image `%s/%s`: %w", bucket, key, err)
	}
	return f, nil
}

// ListObjects returns the keys in `bucket` that start with `prefix`, sorted.
// A missing bucket has no keys.
func (root DirObjectStore) ListObjects(
	bucket string,
	prefix string,
) ([]string, error) {
	dir := filepath.Join(string(root), bucket)
	var keys []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if key := filepath.ToSlash(rel); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(
			"listing images in bucket `%s` with prefix `%s`: %w",
			bucket,
			prefix,
			err,
		)
	}
	sort.Strings(keys)
	return keys, nil
}

func (root DirObjectStore) DeleteObject(bucket, key string) error {
	path, err := root.path(bucket, key)
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ObjectNotFoundErr{Bucket: bucket, Key: key}
		}
		return fmt.Errorf("deleting image `%s/%s`: %w", bucket, key, err)
	}
	return nil
}
