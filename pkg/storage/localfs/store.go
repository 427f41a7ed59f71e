// Package localfs implements a Store backed by a local file system,
// mediated through afero.
package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/raybest4u/statemon/pkg/storage"
	"github.com/raybest4u/statemon/pkg/storage/status"

	"github.com/spf13/afero"
)

// New creates a new local file system backed storage store.
//
// When fs is nil, objects are stored under .statemon/objects in the
// current directory.
func New(fs afero.Fs) storage.Store {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), filepath.Join(".statemon", "objects"))
	}
	return &localFS{
		fs: fs,
	}
}

type localFS struct {
	fs afero.Fs
}

func (l *localFS) String() string {
	const localfsScheme = "localfs"
	if b, ok := l.fs.(*afero.BasePathFs); ok {
		if root, err := b.RealPath("."); err == nil {
			return localfsScheme + "@" + root
		}
	}
	return localfsScheme
}

func (l *localFS) Has(_ context.Context, key string) (bool, error) {
	fi, err := l.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !fi.IsDir(), nil
}

type localReader struct {
	objectReader io.ReadCloser
}

func (r localReader) WriteTo(writer io.Writer) (n int64, err error) {
	return storage.PipeIO(writer, r.objectReader)
}

func (r localReader) Close() error {
	return r.objectReader.Close()
}

func (r localReader) Read(p []byte) (n int, err error) {
	return r.objectReader.Read(p)
}

func (l *localFS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	has, err := l.Has(ctx, key)
	if err != nil {
		return nil, status.ErrStorageAPI.Wrap(err)
	}
	if !has {
		return nil, status.ErrNotExists
	}
	t, err := l.fs.Open(key)
	if err != nil {
		return nil, status.ErrStorageAPI.Wrap(err)
	}
	return localReader{objectReader: t}, nil
}

func (l *localFS) Put(ctx context.Context, key string, source io.Reader, exclusive bool) error {
	dir := filepath.Dir(key)
	if dir != "" && dir != "." {
		if err := l.fs.MkdirAll(dir, 0700); err != nil {
			return status.ErrStorageAPI.Wrap(err)
		}
	}
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if exclusive {
		has, err := l.Has(ctx, key)
		if err != nil {
			return status.ErrStorageAPI.Wrap(err)
		}
		if has {
			return status.ErrExists
		}
		flag |= os.O_EXCL
	}
	target, err := l.fs.OpenFile(key, flag, 0600)
	if err != nil {
		return status.ErrStorageAPI.Wrap(err)
	}
	if _, err = storage.PipeIO(target, source); err != nil {
		_ = target.Close()
		return status.ErrStorageAPI.Wrap(err)
	}
	if err = target.Close(); err != nil {
		return status.ErrStorageAPI.Wrap(err)
	}
	return nil
}

func (l *localFS) Delete(_ context.Context, key string) error {
	if err := l.fs.Remove(key); err != nil {
		if os.IsNotExist(err) {
			return status.ErrNotExists
		}
		return status.ErrStorageAPI.Wrap(err)
	}
	return nil
}

func (l *localFS) Keys(_ context.Context) ([]string, error) {
	const root = "."
	keys := make([]string, 0, 1024)
	err := afero.Walk(l.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				// nothing stored yet, or the store was cleared
				return nil
			}
			return err
		}
		if path == root || info == nil || info.IsDir() {
			return nil
		}
		keys = append(keys, filepath.ToSlash(path))
		return nil
	})
	if err != nil {
		return nil, status.ErrStorageAPI.Wrap(err)
	}
	sort.Strings(keys)
	return keys, nil
}

// KeysPrefix returns a page of keys matching some prefix.
//
// The delimiter is honored the way object stores do: with delimiter "/",
// keys are grouped at the first "/" past the prefix.
func (l *localFS) KeysPrefix(ctx context.Context, pageToken, prefix, delimiter string, count int) ([]string, string, error) {
	all, err := l.Keys(ctx)
	if err != nil {
		return nil, "", err
	}
	matched := make([]string, 0, len(all))
	seen := make(map[string]struct{})
	for _, key := range all {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if delimiter != "" {
			rest := strings.TrimPrefix(key, prefix)
			if i := strings.Index(rest, delimiter); i >= 0 {
				key = prefix + rest[:i+len(delimiter)]
			}
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		matched = append(matched, key)
	}

	start := 0
	if pageToken != "" {
		start = sort.SearchStrings(matched, pageToken)
	}
	if count <= 0 {
		count = len(matched)
	}
	end := start + count
	if end >= len(matched) {
		return matched[start:], "", nil
	}
	return matched[start:end], matched[end], nil
}

func (l *localFS) Clear(_ context.Context) error {
	if err := l.fs.RemoveAll("/"); err != nil {
		return status.ErrStorageAPI.Wrap(err)
	}
	return nil
}
