package kvstore

import (
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sentrywaf/engine/pkg/types"
)

// FilesystemBackend is the reference backend: every key is a
// directory under baseDir, and every write to that key is a new file
// named <expiration>-<created-sec>-<created-usec>.<type>.<suffix>,
// never overwritten or renamed. Get enumerates the directory, drops
// and removes expired entries, and returns one Value per surviving
// file. Keys containing path-unsafe bytes are percent-encoded before
// becoming a directory name.
type FilesystemBackend struct {
	baseDir string
}

// NewFilesystemBackend returns a backend rooted at baseDir. Connect
// must be called before use.
func NewFilesystemBackend(baseDir string) *FilesystemBackend {
	return &FilesystemBackend{baseDir: baseDir}
}

func (b *FilesystemBackend) Connect() error {
	return os.MkdirAll(b.baseDir, 0o700)
}

func (b *FilesystemBackend) Disconnect() error {
	return nil
}

func (b *FilesystemBackend) keyDir(key string) string {
	return filepath.Join(b.baseDir, url.PathEscape(key))
}

// Set writes v as a new file under key's directory. The filename
// encodes v's expiration and creation time so Get can recover them
// without a separate index; the backend never rewrites an existing
// file.
func (b *FilesystemBackend) Set(key string, v *Value) error {
	dir := b.keyDir(key)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return types.NewError(types.Other, "kvstore: mkdir %s: %v", dir, err)
	}

	created := v.Created
	if created.IsZero() {
		created = time.Now()
	}
	var expSeconds int64
	if !v.Expiration.IsZero() {
		expSeconds = v.Expiration.Unix()
	}

	name := fmt.Sprintf("%012d-%012d-%06d.%s",
		expSeconds, created.Unix(), created.Nanosecond()/1000, v.Type)

	for attempt := 0; attempt < 10; attempt++ {
		path := filepath.Join(dir, name+"."+randSuffix())
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return types.NewError(types.Other, "kvstore: create %s: %v", path, err)
		}
		_, werr := f.Write(v.Data)
		cerr := f.Close()
		if werr != nil {
			return types.NewError(types.Other, "kvstore: write %s: %v", path, werr)
		}
		if cerr != nil {
			return types.NewError(types.Other, "kvstore: close %s: %v", path, cerr)
		}
		return nil
	}
	return types.NewError(types.Other, "kvstore: could not allocate unique file name under %s", dir)
}

// Get enumerates key's directory, dropping (and best-effort removing)
// any entry whose encoded expiration has passed, and returns the rest
// as Values ordered newest-first by Created. os.ReadDir sorts entries
// ascending by filename, and the zero-padded created-time fields make
// that oldest-first; callers such as DefaultMergePolicy rely on
// newest-first, so the order is reversed here. An empty or absent
// directory is not an error: it yields a zero-length slice, which
// Store.Get turns into NotFound.
func (b *FilesystemBackend) Get(key string) ([]*Value, error) {
	dir := b.keyDir(key)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, types.NewError(types.Other, "kvstore: readdir %s: %v", dir, err)
	}

	now := time.Now()
	values := make([]*Value, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		v, expired, err := loadValue(path, now)
		if err != nil {
			continue
		}
		if expired {
			_ = os.Remove(path)
			_ = os.Remove(dir)
			continue
		}
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Created.After(values[j].Created) })
	return values, nil
}

// Remove deletes every file under key's directory, then the
// directory itself. Directory removal failure (e.g. a concurrent
// writer) is not an error.
func (b *FilesystemBackend) Remove(key string) error {
	dir := b.keyDir(key)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return types.NewError(types.Other, "kvstore: readdir %s: %v", dir, err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		_ = os.Remove(filepath.Join(dir, e.Name()))
	}
	_ = os.Remove(dir)
	return nil
}

func loadValue(path string, now time.Time) (v *Value, expired bool, err error) {
	base := filepath.Base(path)

	firstDash := strings.IndexByte(base, '-')
	if firstDash < 0 {
		return nil, false, types.NewError(types.Invalid, "kvstore: malformed entry %q", base)
	}
	rest := base[firstDash+1:]
	secondDash := strings.IndexByte(rest, '-')
	if secondDash < 0 {
		return nil, false, types.NewError(types.Invalid, "kvstore: malformed entry %q", base)
	}
	dot := strings.IndexByte(rest[secondDash+1:], '.')
	if dot < 0 {
		return nil, false, types.NewError(types.Invalid, "kvstore: malformed entry %q", base)
	}
	dot += secondDash + 1

	expSeconds, err := strconv.ParseInt(base[:firstDash], 10, 64)
	if err != nil {
		return nil, false, types.NewError(types.Invalid, "kvstore: bad expiration in %q", base)
	}
	createdSeconds, err := strconv.ParseInt(rest[:secondDash], 10, 64)
	if err != nil {
		return nil, false, types.NewError(types.Invalid, "kvstore: bad creation time in %q", base)
	}
	createdMicros, err := strconv.ParseInt(rest[secondDash+1:dot], 10, 64)
	if err != nil {
		return nil, false, types.NewError(types.Invalid, "kvstore: bad creation micros in %q", base)
	}

	if expSeconds != 0 && expSeconds < now.Unix() {
		return nil, true, nil
	}

	// Type runs from after the first dot to the final ".XXXXXX" suffix
	// added at write time.
	typeStart := dot + 1
	suffixDot := strings.LastIndexByte(base, '.')
	if suffixDot <= typeStart {
		return nil, false, types.NewError(types.Invalid, "kvstore: missing type in %q", base)
	}
	typ := base[typeStart:suffixDot]

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, types.NewError(types.Other, "kvstore: read %s: %v", path, err)
	}

	v = &Value{
		Type:    typ,
		Data:    data,
		Created: time.Unix(createdSeconds, createdMicros*1000),
	}
	if expSeconds != 0 {
		v.Expiration = time.Unix(expSeconds, 0)
	}
	return v, false, nil
}

const suffixChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ012345"

func randSuffix() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = suffixChars[rand.Intn(len(suffixChars))]
	}
	return string(b)
}
