// Package mockstorage provides a configurable Store fake for tests.
//
// Every method is backed by an overridable function field. Methods with
// a nil field return the storage "not supported" sentinel, so tests
// only wire what they exercise.
package mockstorage

import (
	"context"
	"io"

	"github.com/raybest4u/statemon/pkg/storage"
	"github.com/raybest4u/statemon/pkg/storage/status"
)

var _ storage.Store = &StoreMock{}

// StoreMock implements storage.Store with function fields
type StoreMock struct {
	StringFunc     func() string
	HasFunc        func(context.Context, string) (bool, error)
	GetFunc        func(context.Context, string) (io.ReadCloser, error)
	PutFunc        func(context.Context, string, io.Reader, bool) error
	DeleteFunc     func(context.Context, string) error
	KeysFunc       func(context.Context) ([]string, error)
	KeysPrefixFunc func(context.Context, string, string, string, int) ([]string, string, error)
	ClearFunc      func(context.Context) error
	_              struct{}
}

func (s *StoreMock) String() string {
	if s.StringFunc != nil {
		return s.StringFunc()
	}
	return "mock"
}

func (s *StoreMock) Has(ctx context.Context, key string) (bool, error) {
	if s.HasFunc != nil {
		return s.HasFunc(ctx, key)
	}
	return false, status.ErrNotSupported
}

func (s *StoreMock) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.GetFunc != nil {
		return s.GetFunc(ctx, key)
	}
	return nil, status.ErrNotSupported
}

func (s *StoreMock) Put(ctx context.Context, key string, source io.Reader, exclusive bool) error {
	if s.PutFunc != nil {
		return s.PutFunc(ctx, key, source, exclusive)
	}
	return status.ErrNotSupported
}

func (s *StoreMock) Delete(ctx context.Context, key string) error {
	if s.DeleteFunc != nil {
		return s.DeleteFunc(ctx, key)
	}
	return status.ErrNotSupported
}

func (s *StoreMock) Keys(ctx context.Context) ([]string, error) {
	if s.KeysFunc != nil {
		return s.KeysFunc(ctx)
	}
	return nil, status.ErrNotSupported
}

func (s *StoreMock) KeysPrefix(ctx context.Context, pageToken, prefix, delimiter string, count int) ([]string, string, error) {
	if s.KeysPrefixFunc != nil {
		return s.KeysPrefixFunc(ctx, pageToken, prefix, delimiter, count)
	}
	return nil, "", status.ErrNotSupported
}

func (s *StoreMock) Clear(ctx context.Context) error {
	if s.ClearFunc != nil {
		return s.ClearFunc(ctx)
	}
	return status.ErrNotSupported
}
