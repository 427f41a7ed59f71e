package storage

import (
	"context"
	"io"
)

const (
	// OverWrite tells Put to replace an existing object
	OverWrite = false

	// NoOverWrite tells Put to fail on an existing object
	NoOverWrite = true
)

// Store implementations know how to write entries to a K/V store.
//
// Typically this is something file system-like. Examples are a local FS
// directory, an embedded K/V database, or an object store bucket.
// Implementations of this interface are assumed to be fairly simple.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, source io.Reader, exclusive bool) error
	Delete(context.Context, string) error
	Keys(context.Context) ([]string, error)
	KeysPrefix(ctx context.Context, pageToken, prefix, delimiter string, count int) ([]string, string, error)
	Clear(context.Context) error
}

// StoreCRC is implemented by stores that can check a CRC32-C checksum
// on writes. Callers probe for it with a type assertion and fall back
// to a plain Put.
type StoreCRC interface {
	PutCRC(ctx context.Context, key string, source io.Reader, exclusive bool, crc uint32) error
}

// PipeIO copies the reader out to the writer, with a fixed-size intermediate buffer
func PipeIO(writer io.Writer, reader io.Reader) (n int64, err error) {
	pr, pw := io.Pipe()
	errC := make(chan error, 1)
	go func() {
		defer pw.Close()
		_, err := io.Copy(pw, reader)
		errC <- err
	}()
	written, err := io.Copy(writer, pr)
	if err != nil {
		return written, err
	}
	if err = <-errC; err != nil {
		return written, err
	}
	return written, nil
}
