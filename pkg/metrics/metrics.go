// Package metrics collects engine usage metrics with opencensus.
//
// Metrics are declared as struct-tagged measure fields and lazily
// registered with EnsureMetrics. Collection is disabled until a
// consumer opts in with Init and an exporter.
package metrics

import (
	"context"
	"path"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/raybest4u/statemon/pkg/metrics/exporters/influxdb"

	units "github.com/docker/go-units"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

const (
	// KB stands for kilo bytes (1024 bytes)
	KB = units.KiB

	// MB stands for mega bytes (1024 kilo bytes)
	MB = units.MiB

	unitCount = "count"
	unitMs    = "milliseconds"
	unitBytes = "bytes"
)

var (
	// global settings for metrics
	mp       *settings
	initOnce sync.Once
)

func init() {
	// metrics remain collectable before any call to Init
	mp = defaultSettings()
}

type settings struct {
	basePath  string
	contexter func() context.Context
	exporter  view.Exporter

	allViews []*view.View

	// a map of all registered modules
	modules   map[string]interface{}
	exclusive sync.Mutex

	d time.Duration
}

func defaultSettings() *settings {
	return &settings{
		modules:   make(map[string]interface{}),
		contexter: context.Background,
	}
}

// DefaultExporter returns a metrics exporter for an influxdb backend,
// with db "statemon" and time series "metrics"
func DefaultExporter(opts ...influxdb.Option) view.Exporter {
	sink, _ := influxdb.NewStore(
		influxdb.WithDatabase("statemon"),
		influxdb.WithNameAsTag("metrics"),
	)
	return influxdb.NewExporter(
		append([]influxdb.Option{
			influxdb.WithStore(sink),
			influxdb.WithTags(map[string]string{"service": "statemon"}),
		}, opts...)...,
	)
}

// Init global settings for metrics collection, such as global tags and exporter setup.
//
// Init may be called multiple times: only the first time matters.
// Metrics and views may be registered at init time or later on.
func Init(opts ...Option) {
	initOnce.Do(func() {
		s := defaultSettings()
		for _, apply := range opts {
			apply(s)
		}
		if s.exporter == nil {
			s.exporter = DefaultExporter()
		}
		view.RegisterExporter(s.exporter)
		if s.d >= time.Second {
			view.SetReportingPeriod(s.d)
		}
		s.modules = mp.modules
		s.allViews = mp.allViews
		mp = s
	})
}

// Flush collects all remaining data for registered views and exports them
func Flush() {
	if mp.exporter == nil {
		return
	}
	for _, v := range mp.allViews {
		rows, err := view.RetrieveData(v.Name)
		if err != nil {
			continue // ignore errors when pushing metrics
		}
		mp.exporter.ExportView(&view.Data{
			View:  v,
			Start: time.Now(),
			End:   time.Now(),
			Rows:  rows,
		})
	}
}

// EnsureMetrics allows for lazy registration of metrics definitions.
//
// It may safely be called several times, and only the first registration
// for a given unique location will be retained. Subsequent calls on the
// same location must specify the same metrics type, otherwise it panics.
//
// NOTE: EnsureMetrics panics if not called with a pointer to a struct.
func EnsureMetrics(location string, m interface{}) interface{} {
	return mp.ensureMetrics(location, m)
}

func (s *settings) ensureMetrics(location string, m interface{}) interface{} {
	s.exclusive.Lock()
	defer s.exclusive.Unlock()
	location = path.Join(s.basePath, location)

	if existing, ok := s.modules[location]; ok {
		if reflect.TypeOf(existing) != reflect.TypeOf(m) {
			panic("trying to re-register existing metrics module with a different type")
		}
		return existing
	}
	s.scanStruct(location, m)
	s.modules[location] = m
	return m
}

// scanStruct walks a pointed-to struct and materializes the measures
// declared by `metric` struct tags. Nested structs compose the metric
// path through their `group` tag.
func (s *settings) scanStruct(parent string, m interface{}) {
	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		panic("EnsureMetrics requires a pointer to a struct")
	}
	elem := rv.Elem()
	t := elem.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		pointed := elem.Field(i)
		if !pointed.CanInterface() {
			continue
		}

		metric := field.Tag.Get("metric")
		if metric == "" {
			if pointed.Kind() == reflect.Struct {
				s.scanStruct(path.Join(parent, field.Tag.Get("group")), pointed.Addr().Interface())
			}
			continue
		}
		if pointed.Kind() != reflect.Ptr || !pointed.IsNil() {
			continue
		}
		measure := s.addMetric(pointed.Interface(), path.Join(parent, metric), field.Tag)
		if measure != nil {
			pointed.Set(reflect.ValueOf(measure))
		}
	}
}

// addMetric creates a measure with a default view matching its unit:
// counters get a count view, timings and bytes get a distribution view.
// Extra views may be listed in an `extraviews` tag (sum, lastvalue, count).
func (s *settings) addMetric(m interface{}, name string, tags reflect.StructTag) interface{} {
	description := tags.Get("description")
	unit := tags.Get("unit")

	var (
		u    string
		dist *view.Aggregation
	)
	switch unit {
	case unitMs:
		u = stats.UnitMilliseconds
		dist = durationDistribution()
	case unitBytes:
		u = stats.UnitBytes
		dist = bytesDistribution()
	default:
		u = stats.UnitDimensionless
		dist = view.Count()
	}

	var measure stats.Measure
	switch m.(type) {
	case *stats.Int64Measure:
		measure = stats.Int64(name, description, u)
	case *stats.Float64Measure:
		measure = stats.Float64(name, description, u)
	default:
		return nil
	}

	keys := make([]tag.Key, 0, 4)
	for _, g := range strings.Split(tags.Get("tags"), ",") {
		if g != "" {
			keys = append(keys, tag.MustNewKey(g))
		}
	}

	s.registerView(&view.View{
		Name:        name,
		Description: description,
		Measure:     measure,
		Aggregation: dist,
		TagKeys:     keys,
	})

	for _, extra := range strings.Split(tags.Get("extraviews"), ",") {
		var agg *view.Aggregation
		switch extra {
		case unitCount:
			agg = view.Count()
		case "sum":
			agg = view.Sum()
		case "lastvalue":
			agg = view.LastValue()
		default:
			continue
		}
		s.registerView(&view.View{
			Name:        name + "_" + extra,
			Description: description,
			Measure:     measure,
			Aggregation: agg,
			TagKeys:     keys,
		})
	}
	return measure
}

func (s *settings) registerView(v *view.View) {
	s.allViews = append(s.allViews, v)
	_ = view.Register(v)
}

func durationDistribution() *view.Aggregation {
	// buckets in milliseconds
	return view.Distribution(
		1, 5, 10, 50,
		100, 300, 500, 700, 900,
		1000, 3000, 5000, 10000, 30000,
	)
}

func bytesDistribution() *view.Aggregation {
	// buckets in bytes
	return view.Distribution(
		500,
		1*KB, 5*KB, 10*KB, 50*KB,
		100*KB, 500*KB, 1*MB,
		5*MB, 10*MB, 50*MB, 100*MB,
	)
}
