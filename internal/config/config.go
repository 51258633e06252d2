// Package config loads ls-solpos settings from a YAML file.
//
// Example:
//
//	location:
//	  latitude: 39.75
//	  longitude: -105.0
//	  altitude: 1829
//	  tz: America/Denver
//	method: ephemeris
//	atmosphere:
//	  pressure: 83000
//	  temperature: 10
//	output:
//	  format: table
//	  step: 1h
//	watch: "*/10 * * * *"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	cerrors "cloudeng.io/errors"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-solpos/internal/logging"
	"github.com/litescript/ls-solpos/internal/solpos"
)

// Output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// Atmosphere is the scalar ambient condition applied to every instant.
type Atmosphere struct {
	Pressure    float64 `yaml:"pressure"`    // Pa
	Temperature float64 `yaml:"temperature"` // degrees C
}

// Output controls what is computed and how it is printed.
type Output struct {
	Format string        `yaml:"format"`
	Step   time.Duration `yaml:"step"`
}

// Horizons configures the JPL Horizons oracle.
type Horizons struct {
	URL string `yaml:"url"`
}

// Config is the complete file configuration.
type Config struct {
	Location   solpos.Location `yaml:"location"`
	Method     solpos.Method   `yaml:"method"`
	Atmosphere Atmosphere      `yaml:"atmosphere"`
	Output     Output          `yaml:"output"`
	Horizons   Horizons        `yaml:"horizons"`
	LogLevel   string          `yaml:"log_level"`
	Watch      string          `yaml:"watch"`
}

// Default returns the built-in configuration: Greenwich at sea level, the
// native method, the standard atmosphere and an hourly table.
func Default() Config {
	return Config{
		Location: solpos.Location{Latitude: 51.4769, Longitude: 0},
		Method:   solpos.MethodEphemeris,
		Atmosphere: Atmosphere{
			Pressure:    solpos.DefaultPressure,
			Temperature: solpos.DefaultTemperature,
		},
		Output:   Output{Format: FormatTable, Step: time.Hour},
		LogLevel: "info",
	}
}

// Open reads the file at path over the defaults. A missing file is an
// error; callers that treat the file as optional should check
// errors.Is(err, fs.ErrNotExist).
func Open(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	cfg, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes YAML over the defaults. Unknown fields are rejected.
func Read(r io.Reader) (Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if len(bytes.TrimSpace(buf)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	errs := &cerrors.M{}
	errs.Append(c.Location.Validate())
	errs.Append(solpos.ScalarAtmosphere(c.Atmosphere.Pressure, c.Atmosphere.Temperature).Validate(1))
	switch c.Output.Format {
	case FormatTable, FormatCSV, FormatJSON:
	default:
		errs.Append(fmt.Errorf("output.format: unknown format %q", c.Output.Format))
	}
	if c.Output.Step <= 0 {
		errs.Append(fmt.Errorf("output.step: must be positive, got %v", c.Output.Step))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs.Append(fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	if c.Watch != "" {
		if _, err := cron.ParseStandard(c.Watch); err != nil {
			errs.Append(fmt.Errorf("watch: %w", err))
		}
	}
	return errs.Err()
}

// Level returns the configured log level.
func (c Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// Atmos returns the configured atmosphere in the form calculators take.
func (c Config) Atmos() solpos.Atmosphere {
	return solpos.ScalarAtmosphere(c.Atmosphere.Pressure, c.Atmosphere.Temperature)
}
