package influxdb

import (
	"context"

	"go.opencensus.io/stats/view"
)

var _ view.Exporter = &Exporter{}

const (
	// tags to represent opencensus information as influxdb tags
	descriptionTag = "description" // view description
	unitTag        = "unit"        // measurement unit
	aggregationTag = "aggregation" // view aggregation type (count, sum, last, distribution)

	// opencensus information represented as influxdb fields
	startField       = "start"             // start of the view aggregation period
	observationField = "observationPeriod" // duration of the view aggregation period
	valueField       = "value"
	minField         = "min" // statistics on distribution aggregations
	maxField         = "max"
	meanField        = "mean"
	countField       = "count"
)

func defaultExporter() *Exporter {
	sink, _ := NewStore()
	return &Exporter{
		errorHandler: func(_ error) {},
		store:        sink,
	}
}

// NewExporter creates a new influxdb exporter.
//
// Use options to configure:
//   - an influxdb.Store instance, configured with the desired settings
//   - an error handler. If set to nil, a no-op handler is set by default
//   - a map of custom tags for written records (may be nil)
func NewExporter(opts ...Option) *Exporter {
	e := defaultExporter()
	for _, apply := range opts {
		apply.applyToExporter(e)
	}
	return e
}

// Exporter is an opencensus exporter for influxdb
type Exporter struct {
	store        Store
	errorHandler func(error)
	customTags   map[string]string
}

// ExportView sends collected metrics to the backend sink
func (e *Exporter) ExportView(viewData *view.Data) {
	points := make([]MetricPoint, 0, len(viewData.Rows))
	for _, row := range viewData.Rows {
		fields := make(map[string]interface{}, 8)
		tags := make(map[string]string, len(e.customTags)+len(row.Tags)+3)

		// view metadata
		fields[startField] = viewData.Start.String()
		fields[observationField] = viewData.End.Sub(viewData.Start).String()
		if viewData.View.Description != "" {
			tags[descriptionTag] = viewData.View.Description
		}
		tags[unitTag] = viewData.View.Measure.Unit()

		for _, rowTag := range row.Tags {
			tags[rowTag.Key.Name()] = rowTag.Value
		}
		for k, v := range e.customTags {
			tags[k] = v
		}

		switch data := row.Data.(type) {
		case *view.CountData:
			tags[aggregationTag] = "count"
			fields[valueField] = data.Value
		case *view.SumData:
			tags[aggregationTag] = "sum"
			fields[valueField] = data.Value
		case *view.LastValueData:
			tags[aggregationTag] = "last"
			fields[valueField] = data.Value
		case *view.DistributionData:
			tags[aggregationTag] = "distribution"
			fields[minField] = data.Min
			fields[maxField] = data.Max
			fields[meanField] = data.Mean
			fields[countField] = data.Count
		default:
			continue
		}

		points = append(points, MetricPoint{
			Measurement: viewData.View.Name,
			Tags:        tags,
			Fields:      fields,
			Timestamp:   viewData.End,
		})
	}
	if len(points) == 0 {
		return
	}
	if err := e.store.WriteBatch(context.Background(), points); err != nil {
		e.errorHandler(err)
	}
}
