package influxdb

// Option configures either the exporter or its backend store.
//
// A single option type keeps the construction of an exporter with a
// customized store in one option list.
type Option struct {
	applyToStore    func(*influxDB)
	applyToExporter func(*Exporter)
}

func storeOption(apply func(*influxDB)) Option {
	return Option{applyToStore: apply, applyToExporter: func(*Exporter) {}}
}

func exporterOption(apply func(*Exporter)) Option {
	return Option{applyToStore: func(*influxDB) {}, applyToExporter: apply}
}

// WithDatabase sets the influxdb database metrics are written to
func WithDatabase(db string) Option {
	return storeOption(func(s *influxDB) {
		if db != "" {
			s.database = db
		}
	})
}

// WithAddr sets the influxdb server address. The default is http://localhost:8086
func WithAddr(addr string) Option {
	return storeOption(func(s *influxDB) {
		if addr != "" {
			s.config.Addr = addr
		}
	})
}

// WithCredentials sets the influxdb connection credentials
func WithCredentials(user, password string) Option {
	return storeOption(func(s *influxDB) {
		s.config.Username = user
		s.config.Password = password
	})
}

// WithNameAsTag writes all points under a single measurement name,
// carrying the original metric name as a tag instead
func WithNameAsTag(timeSeries string) Option {
	return storeOption(func(s *influxDB) {
		if timeSeries == "" {
			return
		}
		s.mapper = func(name string, tags map[string]string) (string, map[string]string) {
			if tags == nil {
				tags = make(map[string]string, 1)
			}
			tags["metric"] = name
			return timeSeries, tags
		}
	})
}

// WithStore sets a preconfigured backend store on the exporter
func WithStore(store Store) Option {
	return exporterOption(func(e *Exporter) {
		if store != nil {
			e.store = store
		}
	})
}

// WithTags sets custom tags added to every written record
func WithTags(tags map[string]string) Option {
	return exporterOption(func(e *Exporter) {
		e.customTags = tags
	})
}

// WithErrorHandler sets a handler called on failed writes
func WithErrorHandler(handler func(error)) Option {
	return exporterOption(func(e *Exporter) {
		if handler != nil {
			e.errorHandler = handler
		}
	})
}
