// Package kv implements a Store backed by an embedded badger database.
//
// Objects are stored as an envelope value carrying the blob and its
// CRC32-C, so write-time integrity checks come for free on this backend.
package kv

import (
	"bytes"
	"context"
	"hash/crc32"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/raybest4u/statemon/pkg/errors"
	"github.com/raybest4u/statemon/pkg/storage"
	"github.com/raybest4u/statemon/pkg/storage/status"

	"github.com/dgraph-io/badger/v3"
	jsoniter "github.com/json-iterator/go"
)

// envelope is the value format for every object in the database
type envelope struct {
	CRC  uint32 `json:"crc"`
	Body []byte `json:"body"`
	_    struct{}
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// New creates a badger backed storage store at the given directory.
//
// The database is opened lazily on first use and closed with Close.
func New(baseDir string) *KV {
	return &KV{baseDir: baseDir}
}

// KV is a badger backed Store
type KV struct {
	baseDir string
	db      *badger.DB
	init    sync.Once
	initErr error
}

var (
	_ storage.Store    = &KV{}
	_ storage.StoreCRC = &KV{}
)

func (k *KV) String() string {
	return "kv@" + k.baseDir
}

func (k *KV) database() (*badger.DB, error) {
	k.init.Do(func() {
		opts := badger.DefaultOptions(k.baseDir).WithLogger(nil)
		k.db, k.initErr = badger.Open(opts)
	})
	if k.initErr != nil {
		return nil, status.ErrStorageAPI.Wrap(k.initErr)
	}
	return k.db, nil
}

// Close releases the underlying database
func (k *KV) Close() error {
	if k.db == nil {
		return nil
	}
	return k.db.Close()
}

func badgerRewriteError(err error) error {
	switch err {
	case nil:
		return nil
	case badger.ErrKeyNotFound:
		return status.ErrNotExists
	case badger.ErrEmptyKey:
		return status.ErrInvalidResource
	default:
		return status.ErrStorageAPI.Wrap(err)
	}
}

func (k *KV) Has(_ context.Context, key string) (bool, error) {
	db, err := k.database()
	if err != nil {
		return false, err
	}
	err = db.View(func(txn *badger.Txn) error {
		_, e := txn.Get([]byte(key))
		return e
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, badgerRewriteError(err)
	}
	return true, nil
}

func (k *KV) get(key string) (envelope, error) {
	var env envelope
	db, err := k.database()
	if err != nil {
		return env, err
	}
	err = db.View(func(txn *badger.Txn) error {
		item, e := txn.Get([]byte(key))
		if e != nil {
			return e
		}
		return item.Value(func(val []byte) error {
			return jsoniter.Unmarshal(val, &env)
		})
	})
	return env, badgerRewriteError(err)
}

func (k *KV) Get(_ context.Context, key string) (io.ReadCloser, error) {
	env, err := k.get(key)
	if err != nil {
		return nil, err
	}
	if crc32.Checksum(env.Body, castagnoli) != env.CRC {
		return nil, status.ErrCRC
	}
	return io.NopCloser(bytes.NewReader(env.Body)), nil
}

func (k *KV) Put(ctx context.Context, key string, source io.Reader, exclusive bool) error {
	body, err := io.ReadAll(source)
	if err != nil {
		return status.ErrStorageAPI.Wrap(err)
	}
	return k.put(ctx, key, body, exclusive, crc32.Checksum(body, castagnoli))
}

// PutCRC writes an object with a caller-provided CRC32-C
func (k *KV) PutCRC(ctx context.Context, key string, source io.Reader, exclusive bool, crc uint32) error {
	body, err := io.ReadAll(source)
	if err != nil {
		return status.ErrStorageAPI.Wrap(err)
	}
	if crc32.Checksum(body, castagnoli) != crc {
		return status.ErrCRC
	}
	return k.put(ctx, key, body, exclusive, crc)
}

func (k *KV) put(_ context.Context, key string, body []byte, exclusive bool, crc uint32) error {
	db, err := k.database()
	if err != nil {
		return err
	}
	value, err := jsoniter.Marshal(envelope{CRC: crc, Body: body})
	if err != nil {
		return status.ErrStorageAPI.Wrap(err)
	}
	err = db.Update(func(txn *badger.Txn) error {
		if exclusive {
			_, e := txn.Get([]byte(key))
			if e == nil {
				return status.ErrExists
			}
			if e != badger.ErrKeyNotFound {
				return e
			}
		}
		return txn.Set([]byte(key), value)
	})
	if errors.Is(err, status.ErrExists) {
		return status.ErrExists
	}
	return badgerRewriteError(err)
}

func (k *KV) Delete(_ context.Context, key string) error {
	db, err := k.database()
	if err != nil {
		return err
	}
	err = db.Update(func(txn *badger.Txn) error {
		if _, e := txn.Get([]byte(key)); e != nil {
			return e
		}
		return txn.Delete([]byte(key))
	})
	return badgerRewriteError(err)
}

func (k *KV) Keys(ctx context.Context) ([]string, error) {
	keys, _, err := k.KeysPrefix(ctx, "", "", "", 0)
	return keys, err
}

func (k *KV) KeysPrefix(_ context.Context, pageToken, prefix, delimiter string, count int) ([]string, string, error) {
	db, err := k.database()
	if err != nil {
		return nil, "", err
	}
	keys := make([]string, 0, 1024)
	seen := make(map[string]struct{})
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		start := []byte(prefix)
		if pageToken != "" {
			start = []byte(pageToken)
		}
		for it.Seek(start); it.ValidForPrefix([]byte(prefix)); it.Next() {
			key := string(it.Item().Key())
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
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, "", badgerRewriteError(err)
	}
	sort.Strings(keys)
	if count <= 0 || count >= len(keys) {
		return keys, "", nil
	}
	return keys[:count], keys[count], nil
}

func (k *KV) Clear(_ context.Context) error {
	db, err := k.database()
	if err != nil {
		return err
	}
	return badgerRewriteError(db.DropAll())
}
