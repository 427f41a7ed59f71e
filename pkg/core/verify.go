package core

import (
	"context"
	"encoding/hex"
	"sort"
	"strconv"
	"time"

	"github.com/raybest4u/statemon/pkg/core/status"

	"go.uber.org/zap"
)

// Verify runs an integrity sweep over every stored version.
//
// Each payload is re-hashed and compared to its recorded checksum.
// All mismatches are reported: the sweep does not stop at the first
// corrupt entry. A non-nil error wraps ErrIntegrityFailure.
func (e *Engine) Verify(ctx context.Context) (err error) {
	defer func(t0 time.Time) {
		if e.MetricsEnabled() {
			e.m.Usage.UsedAll(t0, "Verify")(err)
		}
	}(time.Now())

	e.mtx.RLock()
	versions := make([]uint64, 0, len(e.versions))
	for v := range e.versions {
		versions = append(versions, v)
	}
	e.mtx.RUnlock()
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })

	var corrupt []uint64
	for _, version := range versions {
		select {
		case <-ctx.Done():
			return status.ErrInterrupted.Wrap(ctx.Err())
		default:
		}

		e.mtx.RLock()
		desc, ok := e.versions[version]
		payload, okPayload := e.payloads[version]
		e.mtx.RUnlock()
		if !ok || !okPayload {
			// pruned since the sweep started
			continue
		}

		digest, errDigest := e.maker.Process(payload)
		if errDigest != nil {
			e.l.Error("verify: cannot hash stored payload",
				zap.Uint64("version", version),
				zap.Error(errDigest),
			)
			corrupt = append(corrupt, version)
			continue
		}
		if hex.EncodeToString(digest) != desc.Checksum {
			e.l.Error("verify: checksum mismatch",
				zap.Uint64("version", version),
				zap.String("expected", desc.Checksum),
				zap.String("actual", hex.EncodeToString(digest)),
			)
			corrupt = append(corrupt, version)
		}
	}

	if len(corrupt) > 0 {
		return status.ErrIntegrityFailure.Wrap(
			&corruptVersionsError{versions: corrupt},
		)
	}
	return nil
}

type corruptVersionsError struct {
	versions []uint64
}

func (c *corruptVersionsError) Error() string {
	msg := "corrupt versions:"
	for _, v := range c.versions {
		msg += " " + strconv.FormatUint(v, 10)
	}
	return msg
}
