package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// localStorage implements Storage on the local filesystem. Objects are
// plain files directly under the upload directory; keys never contain
// path separators.
type localStorage struct {
	dir string
}

// NewLocal creates the upload directory if needed and returns a
// filesystem-backed Storage.
func NewLocal(dir string) (Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &localStorage{dir: dir}, nil
}

// path resolves a key to a file path, stripping any directory component
// so a crafted key cannot escape the upload directory.
func (l *localStorage) path(key string) string {
	return filepath.Join(l.dir, filepath.Base(key))
}

func (l *localStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	dst := l.path(key)
	f, err := os.Create(dst)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create object file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return ObjectInfo{}, fmt.Errorf("write object file: %w", err)
	}
	st, err := os.Stat(dst)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         n,
		ContentType:  opt.ContentType,
		LastModified: st.ModTime(),
	}, nil
}

func (l *localStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	f, err := os.Open(l.path(key))
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}
	info := ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(key)),
		LastModified: st.ModTime(),
	}
	return f, info, nil
}

func (l *localStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(l.path(key))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
