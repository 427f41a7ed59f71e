package cmd

import (
	"github.com/raybest4u/statemon/pkg/errors"
	"github.com/raybest4u/statemon/pkg/metrics/exporters/influxdb"

	"github.com/spf13/viper"
)

const (
	backendLocalFS = "localfs"
	backendKV      = "kv"
)

// Config for the statemon CLI, read from .statemon.yaml or environment
type Config struct {
	// Archive is the path to the session archive (a directory for the
	// localfs backend, a badger database directory for the kv backend)
	Archive string `json:"archive" yaml:"archive"`

	// Backend selects the archive storage: "localfs" or "kv"
	Backend string `json:"backend" yaml:"backend"`

	// LogLevel for engine and CLI logging
	LogLevel string `json:"loglevel" yaml:"loglevel"`

	// Concurrency bounds parallel payload transfers on restore
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Metrics reporting backend
	Influx struct {
		Addr     string `json:"addr" yaml:"addr"`
		User     string `json:"user" yaml:"user"`
		Password string `json:"password" yaml:"password"`
	} `json:"influx" yaml:"influx"`
	_ struct{}
}

func newConfig() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// overrideWithFlags applies command line overrides on the file config
func (c *Config) overrideWithFlags(f *flagsT) {
	if f.root.archive != "" {
		c.Archive = f.root.archive
	}
	if f.root.backend != "" {
		c.Backend = f.root.backend
	}
	if f.root.logLevel != "" {
		c.LogLevel = f.root.logLevel
	}
}

func (c *Config) validate() error {
	if c.Archive == "" {
		return errors.New("an archive location is required: use --archive or set it in the config file")
	}
	switch c.Backend {
	case backendLocalFS, backendKV:
		return nil
	default:
		return errors.New("unsupported backend").Wrap(errors.New(c.Backend))
	}
}

func (c *Config) influxOptions() []influxdb.Option {
	opts := make([]influxdb.Option, 0, 2)
	if c.Influx.Addr != "" {
		opts = append(opts, influxdb.WithAddr(c.Influx.Addr))
	}
	if c.Influx.User != "" {
		opts = append(opts, influxdb.WithCredentials(c.Influx.User, c.Influx.Password))
	}
	return opts
}
