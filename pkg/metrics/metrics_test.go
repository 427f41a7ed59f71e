package metrics

import (
	"errors"
	"testing"
	"time"

	mocks "github.com/raybest4u/statemon/pkg/metrics/exporters/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exampleMetrics struct {
	Volume struct {
		Snapshots SnapshotMetrics `group:"snapshots" description:"snapshot volumetry"`
	} `group:"volumetry"`
	Usage UsageMetrics `group:"telemetry" description:"usage stats"`
}

func fixtureRequires(t testing.TB, m *exampleMetrics) {
	require.NotNil(t, m.Usage.Count)
	require.NotNil(t, m.Usage.Failures)
	require.NotNil(t, m.Usage.Timing)
	require.NotNil(t, m.Volume.Snapshots.SnapshotCount)
	require.NotNil(t, m.Volume.Snapshots.SnapshotSize)
	require.NotNil(t, m.Volume.Snapshots.PrunedCount)
}

func testSettings(opts ...Option) *settings {
	s := defaultSettings()
	for _, apply := range opts {
		apply(s)
	}
	return s
}

func TestEnsureMetrics(t *testing.T) {
	s := testSettings(
		WithBasePath("root"),
		WithExporter(mocks.NewExporter()),
	)
	testMetrics := &exampleMetrics{}
	x := s.ensureMetrics("example", testMetrics)

	fixtureRequires(t, testMetrics)
	require.Len(t, s.modules, 1)

	// one default view per measure, plus the sum extraviews on snapshots
	assert.Len(t, s.allViews, 9)

	// retry registration yields the first registered module
	y := s.ensureMetrics("example", testMetrics)
	require.Equal(t, x, y)
}

func TestMetricsAPI(t *testing.T) {
	s := testSettings(
		WithBasePath("api"),
		WithExporter(mocks.NewExporter()),
	)
	testMetrics := s.ensureMetrics("engine", &exampleMetrics{}).(*exampleMetrics)
	fixtureRequires(t, testMetrics)

	saved := mp
	defer func() { mp = saved }()
	mp = s

	t0 := time.Now()
	testMetrics.Usage.Inc("Commit")
	testMetrics.Usage.Failed("Commit")
	testMetrics.Usage.UsedAll(t0, "Checkout")(nil)
	testMetrics.Usage.UsedAll(t0, "Merge")(errors.New("aborted"))

	testMetrics.Volume.Snapshots.Inc("commit")
	testMetrics.Volume.Snapshots.Size(1024, "commit")
	testMetrics.Volume.Snapshots.Pruned(3, "cleanup")
	testMetrics.Volume.Snapshots.Pruned(0, "cleanup")

	Flush()
}

func TestEnsureMetricsPanics(t *testing.T) {
	s := testSettings(WithExporter(mocks.NewExporter()))

	require.Panics(t, func() {
		s.ensureMetrics("notastruct", 42)
	})

	_ = s.ensureMetrics("registered", &exampleMetrics{})
	require.Panics(t, func() {
		s.ensureMetrics("registered", &struct{ Usage UsageMetrics }{})
	})
}
