package testsupport

import (
	"bytes"
	"io"
	"sort"
	"strings"
	"sync"

	. "github.com/weberc2/osfs/pkg/types"
)

var _ ObjectStore = (*ObjectStoreFake)(nil)

// ObjectStoreFake is an in-memory `ObjectStore` safe for concurrent use.
type ObjectStoreFake struct {
	mutex   sync.Mutex
	objects map[[2]string][]byte
}

func (osf *ObjectStoreFake) PutObject(
	bucket string,
	key string,
	data io.ReadSeeker,
) error {
	var b bytes.Buffer
	if _, err := io.Copy(&b, data); err != nil {
		return err
	}
	osf.mutex.Lock()
	defer osf.mutex.Unlock()
	if osf.objects == nil {
		osf.objects = map[[2]string][]byte{}
	}
	osf.objects[[2]string{bucket, key}] = b.Bytes()
	return nil
}

func (osf *ObjectStoreFake) GetObject(
	bucket string,
	key string,
) (io.ReadCloser, error) {
	osf.mutex.Lock()
	defer osf.mutex.Unlock()
	data, found := osf.objects[[2]string{bucket, key}]
	if !found {
		return nil, &ObjectNotFoundErr{Bucket: bucket, Key: key}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Object returns the raw stored bytes of `bucket/key`.
func (osf *ObjectStoreFake) Object(bucket, key string) ([]byte, bool) {
	osf.mutex.Lock()
	defer osf.mutex.Unlock()
	data, found := osf.objects[[2]string{bucket, key}]
	return data, found
}

func (osf *ObjectStoreFake) ListObjects(
	bucket string,
	prefix string,
) ([]string, error) {
	osf.mutex.Lock()
	defer osf.mutex.Unlock()
	var out []string
	for key := range osf.objects {
		if key[0] == bucket && strings.HasPrefix(key[1], prefix) {
			out = append(out, key[1])
		}
	}
	sort.Strings(out)
	return out, nil
}

func (osf *ObjectStoreFake) DeleteObject(bucket, key string) error {
	osf.mutex.Lock()
	defer osf.mutex.Unlock()
	k := [2]string{bucket, key}
	if _, found := osf.objects[k]; !found {
		return &ObjectNotFoundErr{Bucket: bucket, Key: key}
	}
	delete(osf.objects, k)
	return nil
}
