// Package fingerprint computes the integrity digest of a state document.
//
// Documents are reduced to their canonical byte encoding, then hashed
// with a two-level blake2b tree: leaves hash fixed-size chunks,
// the root hashes the concatenated leaf digests.
package fingerprint

import (
	"bytes"
	"io"
	"runtime"
	"sync"

	"github.com/raybest4u/statemon/pkg/document"

	units "github.com/docker/go-units"
	blake2b "github.com/minio/blake2b-simd"
)

type chunkInput struct {
	part       int
	partBuffer []byte
	lastChunk  bool
	leafSize   uint32
}

type chunkOutput struct {
	digest []byte
	part   int
	err    error
}

// Option configures a fingerprint Maker
type Option func(*Maker)

// LeafSize sets the chunk size hashed by each tree leaf
func LeafSize(sz int64) Option {
	return func(m *Maker) {
		m.leafSize = uint32(sz)
	}
}

// NumberOfWorkers sets the hashing concurrency
func NumberOfWorkers(no int) Option {
	return func(m *Maker) {
		m.numberOfWorkers = no
	}
}

// Size sets the digest size in bytes
func Size(sz uint8) Option {
	return func(m *Maker) {
		m.size = sz
	}
}

// New builds a fingerprint Maker with some options
func New(opts ...Option) *Maker {
	m := &Maker{
		leafSize:        uint32(64 * units.KB),
		numberOfWorkers: runtime.NumCPU(),
		size:            32,
	}
	for _, apply := range opts {
		apply(m)
	}
	return m
}

// Maker computes document digests
type Maker struct {
	size            uint8
	leafSize        uint32
	numberOfWorkers int
}

// Process computes the digest of a document
func (m *Maker) Process(doc interface{}) (digest []byte, err error) {
	b, err := document.CanonicalBytes(doc)
	if err != nil {
		return nil, err
	}
	return m.processBytes(b)
}

func (m *Maker) processBytes(b []byte) ([]byte, error) {
	var wg sync.WaitGroup
	chunks := make(chan chunkInput)
	results := make(chan chunkOutput)

	for i := 0; i < m.numberOfWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.processChunk(chunks, results)
		}()
	}

	go func() {
		defer close(chunks)
		leaf := int(m.leafSize)
		// an empty document still hashes one empty leaf
		for part, offset := 0, 0; ; part++ {
			end := offset + leaf
			if end > len(b) {
				end = len(b)
			}
			last := end == len(b)
			chunks <- chunkInput{part: part, partBuffer: b[offset:end], lastChunk: last, leafSize: m.leafSize}
			if last {
				return
			}
			offset = end
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	leafDigests := make(map[int][]byte)
	var workerErr error
	for r := range results {
		if r.err != nil {
			workerErr = r.err
			continue
		}
		leafDigests[r.part] = r.digest
	}
	if workerErr != nil {
		return nil, workerErr
	}

	sz := int(m.size)
	concat := make([]byte, len(leafDigests)*sz)
	for index, val := range leafDigests {
		copy(concat[sz*index:sz*(index+1)], val)
	}

	rootBlake, err := blake2b.New(&blake2b.Config{
		Size: m.size,
		Tree: &blake2b.Tree{
			Fanout:        0,
			MaxDepth:      2,
			LeafSize:      m.leafSize,
			NodeOffset:    0,
			NodeDepth:     1,
			InnerHashSize: m.size,
			IsLastNode:    true,
		},
	})
	if err != nil {
		return nil, err
	}
	if _, err = io.Copy(rootBlake, bytes.NewReader(concat)); err != nil {
		return nil, err
	}
	return rootBlake.Sum(nil), nil
}

// worker routine computing the digest of single chunks
func (m *Maker) processChunk(rx <-chan chunkInput, tx chan<- chunkOutput) {
	for c := range rx {
		blake, err := blake2b.New(&blake2b.Config{
			Size: m.size,
			Tree: &blake2b.Tree{
				Fanout:        0,
				MaxDepth:      2,
				LeafSize:      c.leafSize,
				NodeOffset:    uint64(c.part),
				NodeDepth:     0,
				InnerHashSize: m.size,
				IsLastNode:    c.lastChunk,
			},
		})
		if err != nil {
			tx <- chunkOutput{part: c.part, err: err}
			continue
		}
		if _, err = io.Copy(blake, bytes.NewReader(c.partBuffer)); err != nil {
			tx <- chunkOutput{part: c.part, err: err}
			continue
		}
		tx <- chunkOutput{digest: blake.Sum(nil), part: c.part}
	}
}
