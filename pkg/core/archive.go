package core

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"io"
	"sync"
	"time"

	context2 "github.com/raybest4u/statemon/pkg/context"
	"github.com/raybest4u/statemon/pkg/core/status"
	"github.com/raybest4u/statemon/pkg/errors"
	"github.com/raybest4u/statemon/pkg/model"
	"github.com/raybest4u/statemon/pkg/storage"
	storagestatus "github.com/raybest4u/statemon/pkg/storage/status"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	yaml "gopkg.in/yaml.v2"
)

const (
	encodingPlain = "plain"
	encodingGzip  = "gzip"

	defaultArchiveConcurrency = 8
	archiveListBatchSize      = 1024
)

// payloadRecord is the blob format for archived snapshot documents
type payloadRecord struct {
	Version  uint64 `json:"version"`
	Encoding string `json:"encoding"`
	Body     []byte `json:"body"`
	_        struct{}
}

// ArchiveOption sets options for Archive and Restore
type ArchiveOption func(*archiveSettings)

type archiveSettings struct {
	concurrency int
}

// ArchiveConcurrency sets the number of parallel payload transfers.
// The default is 8.
func ArchiveConcurrency(n int) ArchiveOption {
	return func(s *archiveSettings) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func defaultArchiveSettings(opts []ArchiveOption) archiveSettings {
	s := archiveSettings{concurrency: defaultArchiveConcurrency}
	for _, apply := range opts {
		apply(&s)
	}
	return s
}

// Archive exports the full engine state to the context stores.
//
// Descriptors are written as YAML to the metadata store; snapshot
// documents as JSON blobs to the payload store, compressed above the
// configured threshold. Payload uploads run in parallel. Writes are
// CRC-stamped when the backend supports it.
func (e *Engine) Archive(ctx context.Context, stores context2.Stores, opts ...ArchiveOption) (err error) {
	defer func(t0 time.Time) {
		if e.MetricsEnabled() {
			e.m.Usage.UsedAll(t0, "Archive")(err)
		}
	}(time.Now())

	settings := defaultArchiveSettings(opts)

	e.mtx.RLock()
	state := model.EngineState{
		VersionCounter: e.versionCounter,
		CurrentBranch:  e.currentBranch,
		Exported:       e.clock(),
	}
	versions := make([]model.VersionDescriptor, 0, len(e.versions))
	payloads := make(map[uint64]interface{}, len(e.payloads))
	for v, desc := range e.versions {
		versions = append(versions, desc)
		payloads[v] = e.payloads[v]
	}
	branches := make([]model.BranchDescriptor, 0, len(e.branches))
	for _, b := range e.branches {
		branches = append(branches, copyBranch(b))
	}
	tags := make([]model.TagDescriptor, 0, len(e.tags))
	for _, t := range e.tags {
		tags = append(tags, t)
	}
	e.mtx.RUnlock()

	for _, desc := range versions {
		if err = putDescriptor(ctx, stores.Metadata(), model.GetArchivePathToVersion(desc.Version), desc); err != nil {
			return err
		}
	}
	for _, branch := range branches {
		if err = putDescriptor(ctx, stores.Metadata(), model.GetArchivePathToBranch(branch.Name), branch); err != nil {
			return err
		}
	}
	for _, tag := range tags {
		if err = putDescriptor(ctx, stores.Metadata(), model.GetArchivePathToTag(tag.Name), tag); err != nil {
			return err
		}
	}
	if err = putDescriptor(ctx, stores.Metadata(), model.GetArchivePathToEngineState(), state); err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(settings.concurrency)
	for version, doc := range payloads {
		version, doc := version, doc
		group.Go(func() error {
			return e.putPayload(groupCtx, stores.Payloads(), version, doc)
		})
	}
	if err = group.Wait(); err != nil {
		if ctx.Err() != nil {
			err = status.ErrInterrupted.Wrap(err)
		}
		return err
	}

	e.l.Info("archived engine state",
		zap.Int("versions", len(versions)),
		zap.Int("branches", len(branches)),
		zap.Int("tags", len(tags)),
		zap.Stringer("metadata", stores.Metadata()),
		zap.Stringer("payloads", stores.Payloads()),
	)
	return nil
}

// putDescriptor persists one YAML descriptor, with a CRC-stamped write
// when the store supports it
func putDescriptor(ctx context.Context, store storage.Store, path string, descriptor interface{}) error {
	buffer, err := yaml.Marshal(descriptor)
	if err != nil {
		return errors.New("marshal descriptor").Wrap(err)
	}
	if crcStore, ok := store.(storage.StoreCRC); ok {
		crc := crc32.Checksum(buffer, crc32.MakeTable(crc32.Castagnoli))
		return crcStore.PutCRC(ctx, path, bytes.NewReader(buffer), storage.OverWrite, crc)
	}
	return store.Put(ctx, path, bytes.NewReader(buffer), storage.OverWrite)
}

func (e *Engine) putPayload(ctx context.Context, store storage.Store, version uint64, doc interface{}) error {
	body, err := jsoniter.Marshal(doc)
	if err != nil {
		return errors.New("marshal payload").Wrap(err)
	}

	record := payloadRecord{Version: version, Encoding: encodingPlain, Body: body}
	if int64(len(body)) > e.compressionThreshold {
		var compressed bytes.Buffer
		zw := gzip.NewWriter(&compressed)
		if _, err = zw.Write(body); err != nil {
			return errors.New("compress payload").Wrap(err)
		}
		if err = zw.Close(); err != nil {
			return errors.New("compress payload").Wrap(err)
		}
		record.Encoding = encodingGzip
		record.Body = compressed.Bytes()
	}

	blob, err := jsoniter.Marshal(record)
	if err != nil {
		return errors.New("marshal payload record").Wrap(err)
	}
	return store.Put(ctx, model.GetArchivePathToPayload(version), bytes.NewReader(blob), storage.OverWrite)
}

// Restore builds an engine from a previously archived state.
//
// Every payload checksum is re-verified against its descriptor during
// the load: a tampered blob fails the restore with ErrIntegrityFailure.
func Restore(ctx context.Context, stores context2.Stores, engineOpts []EngineOption, opts ...ArchiveOption) (*Engine, error) {
	settings := defaultArchiveSettings(opts)

	e := New(engineOpts...)
	ok := false
	defer func() {
		if !ok {
			e.Close()
		}
	}()

	var state model.EngineState
	if err := getDescriptor(ctx, stores.Metadata(), model.GetArchivePathToEngineState(), &state); err != nil {
		return nil, status.ErrNotFound.Wrap(err)
	}

	versionPaths, err := listArchive(ctx, stores.Metadata(), model.GetArchivePathPrefixToVersions())
	if err != nil {
		return nil, err
	}
	versions := make(map[uint64]model.VersionDescriptor, len(versionPaths))
	for _, path := range versionPaths {
		var desc model.VersionDescriptor
		if err = getDescriptor(ctx, stores.Metadata(), path, &desc); err != nil {
			return nil, err
		}
		versions[desc.Version] = desc
	}

	payloads := make(map[uint64]interface{}, len(versions))
	var payloadMtx sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(settings.concurrency)
	for _, desc := range versions {
		desc := desc
		group.Go(func() error {
			doc, errLoad := e.getPayload(groupCtx, stores.Payloads(), desc)
			if errLoad != nil {
				return errLoad
			}
			payloadMtx.Lock()
			payloads[desc.Version] = doc
			payloadMtx.Unlock()
			return nil
		})
	}
	if err = group.Wait(); err != nil {
		if ctx.Err() != nil {
			err = status.ErrInterrupted.Wrap(err)
		}
		return nil, err
	}

	branchPaths, err := listArchive(ctx, stores.Metadata(), model.GetArchivePathPrefixToBranches())
	if err != nil {
		return nil, err
	}
	branches := make(map[string]*model.BranchDescriptor, len(branchPaths))
	for _, path := range branchPaths {
		var desc model.BranchDescriptor
		if err = getDescriptor(ctx, stores.Metadata(), path, &desc); err != nil {
			return nil, err
		}
		branch := desc
		branches[branch.Name] = &branch
	}

	tagPaths, err := listArchive(ctx, stores.Metadata(), model.GetArchivePathPrefixToTags())
	if err != nil {
		return nil, err
	}
	tags := make(map[string]model.TagDescriptor, len(tagPaths))
	for _, path := range tagPaths {
		var desc model.TagDescriptor
		if err = getDescriptor(ctx, stores.Metadata(), path, &desc); err != nil {
			return nil, err
		}
		tags[desc.Name] = desc
	}

	e.mtx.Lock()
	e.versions = versions
	e.payloads = payloads
	e.branches = branches
	e.tags = tags
	e.versionCounter = state.VersionCounter
	if _, okBranch := branches[state.CurrentBranch]; okBranch {
		e.currentBranch = state.CurrentBranch
	} else {
		// archived active branch is gone: fall back to the default
		if _, okDefault := branches[e.defaultBranch]; !okDefault {
			branches[e.defaultBranch] = model.NewBranchDescriptor(e.defaultBranch, 0,
				model.BranchProtected(e.branchProtection),
				model.BranchTimestamp(e.clock()),
			)
			branches[e.defaultBranch].Versions = nil
		}
		e.currentBranch = e.defaultBranch
	}
	e.mtx.Unlock()

	e.l.Info("restored engine state",
		zap.Int("versions", len(versions)),
		zap.Int("branches", len(branches)),
		zap.Int("tags", len(tags)),
		zap.Uint64("version_counter", state.VersionCounter),
	)
	ok = true
	return e, nil
}

func getDescriptor(ctx context.Context, store storage.Store, path string, target interface{}) error {
	rdr, err := store.Get(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		_ = rdr.Close()
	}()
	buffer, err := io.ReadAll(rdr)
	if err != nil {
		return errors.New("read descriptor").Wrap(err)
	}
	if err = yaml.Unmarshal(buffer, target); err != nil {
		return errors.New("unmarshal descriptor").Wrap(err)
	}
	return nil
}

func (e *Engine) getPayload(ctx context.Context, store storage.Store, desc model.VersionDescriptor) (interface{}, error) {
	rdr, err := store.Get(ctx, model.GetArchivePathToPayload(desc.Version))
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return nil, status.ErrNotFound.Wrap(fmt.Errorf("payload for version %d", desc.Version))
		}
		return nil, err
	}
	defer func() {
		_ = rdr.Close()
	}()
	blob, err := io.ReadAll(rdr)
	if err != nil {
		return nil, errors.New("read payload").Wrap(err)
	}

	var record payloadRecord
	if err = jsoniter.Unmarshal(blob, &record); err != nil {
		return nil, errors.New("unmarshal payload record").Wrap(err)
	}

	body := record.Body
	if record.Encoding == encodingGzip {
		zr, errZip := gzip.NewReader(bytes.NewReader(record.Body))
		if errZip != nil {
			return nil, status.ErrIntegrityFailure.Wrap(errZip)
		}
		body, err = io.ReadAll(zr)
		if err != nil {
			return nil, status.ErrIntegrityFailure.Wrap(err)
		}
		if err = zr.Close(); err != nil {
			return nil, status.ErrIntegrityFailure.Wrap(err)
		}
	}

	var doc interface{}
	if err = jsoniter.Unmarshal(body, &doc); err != nil {
		return nil, status.ErrIntegrityFailure.Wrap(err)
	}

	digest, err := e.maker.Process(doc)
	if err != nil {
		return nil, status.ErrIntegrityFailure.Wrap(err)
	}
	if hex.EncodeToString(digest) != desc.Checksum {
		e.l.Error("archived payload fails integrity check",
			zap.Uint64("version", desc.Version),
			zap.String("expected", desc.Checksum),
		)
		return nil, status.ErrIntegrityFailure
	}
	return doc, nil
}

// listArchive pages through all keys under a metadata prefix
func listArchive(ctx context.Context, store storage.Store, prefix string) ([]string, error) {
	out := make([]string, 0, archiveListBatchSize)
	token := ""
	for {
		keys, next, err := store.KeysPrefix(ctx, token, prefix, "", archiveListBatchSize)
		if err != nil {
			return nil, err
		}
		out = append(out, keys...)
		if next == "" {
			break
		}
		token = next
	}
	return out, nil
}
