// Command ls-solpos computes solar positions for a site and prints them as a
// table, CSV or JSON, on a cron schedule, or in a live terminal tracker.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"
	"golang.org/x/term"

	"github.com/litescript/ls-solpos/internal/backend"
	"github.com/litescript/ls-solpos/internal/calctime"
	"github.com/litescript/ls-solpos/internal/config"
	"github.com/litescript/ls-solpos/internal/daylight"
	"github.com/litescript/ls-solpos/internal/logging"
	"github.com/litescript/ls-solpos/internal/report"
	"github.com/litescript/ls-solpos/internal/solpos"
	"github.com/litescript/ls-solpos/internal/state"
	"github.com/litescript/ls-solpos/internal/timeutil"
	"github.com/litescript/ls-solpos/internal/ui"
	"github.com/litescript/ls-solpos/internal/version"
)

// CLI flags
var (
	configPath  string
	latitude    float64
	longitude   float64
	altitude    float64
	tzName      string
	methodName  string
	pressure    float64
	temperature float64
	format      string
	step        time.Duration
	startFlag   string
	endFlag     string
	timesFlag   string
	solveFlag   string
	dayMode     bool
	watchSpec   string
	tuiMode     bool
	refresh     time.Duration
	logLevel    string
	horizonsURL string
	showVersion bool
)

const (
	defaultRefresh = 10 * time.Second
	minRefresh     = 1 * time.Second
	maxRefresh     = 5 * time.Minute

	// trackStep is the sampling interval of the sun path shown in the
	// tracker.
	trackStep = 10 * time.Minute
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitInput      = 2
	exitDependency = 3
)

func main() {
	flag.StringVar(&configPath, "config", "", "YAML configuration file")
	flag.Float64Var(&latitude, "lat", 0, "Latitude in degrees, north positive")
	flag.Float64Var(&longitude, "lon", 0, "Longitude in degrees, east positive")
	flag.Float64Var(&altitude, "alt", 0, "Altitude in meters")
	flag.StringVar(&tzName, "tz", "", "IANA time zone for naive timestamps and output (default UTC)")
	flag.StringVar(&methodName, "method", "", "Algorithm: ephemeris, almanac, meeus or horizons")
	flag.Float64Var(&pressure, "pressure", solpos.DefaultPressure, "Air pressure in Pa")
	flag.Float64Var(&temperature, "temp", solpos.DefaultTemperature, "Air temperature in degrees C")
	flag.StringVar(&format, "format", "", "Output format: table, csv or json")
	flag.DurationVar(&step, "step", 0, "Interval between -start and -end (e.g., 10m, 1h)")
	flag.StringVar(&startFlag, "start", "", "First timestamp (default now)")
	flag.StringVar(&endFlag, "end", "", "Last timestamp (default -start)")
	flag.StringVar(&timesFlag, "times", "", "Comma separated timestamps, overrides -start/-end")
	flag.StringVar(&solveFlag, "solve", "", "Find when attribute=value between -start and -end (e.g., elevation=30)")
	flag.BoolVar(&dayMode, "day", false, "Include sunrise, solar noon and sunset")
	flag.StringVar(&watchSpec, "watch", "", "Recompute on a cron schedule (e.g., \"*/5 * * * *\")")
	flag.BoolVar(&tuiMode, "tui", false, "Run the live tracker")
	flag.DurationVar(&refresh, "refresh", defaultRefresh, "Tracker refresh interval")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&horizonsURL, "horizons-url", "", "Override the JPL Horizons API endpoint")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("ls-solpos %s\n", version.Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitInput)
	}

	if refresh < minRefresh {
		refresh = minRefresh
	} else if refresh > maxRefresh {
		refresh = maxRefresh
	}

	logger := logging.New(cfg.Level())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	calc, err := backend.Select(ctx, cfg.Method, backend.Options{
		Logger:      logger.Named("backend"),
		HorizonsURL: cfg.Horizons.URL,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}

	switch {
	case tuiMode && term.IsTerminal(int(os.Stdout.Fd())):
		err = runTUI(ctx, cfg, calc, logger)
	case tuiMode:
		logger.Warn("stdout is not a terminal, printing once instead of starting the tracker")
		err = runOnce(ctx, cfg, calc, logger)
	case cfg.Watch != "":
		err = runWatch(ctx, cfg, calc, logger)
	default:
		err = runOnce(ctx, cfg, calc, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// loadConfig reads -config when given and applies explicitly set flags
// on top.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Open(configPath); err != nil {
			return cfg, err
		}
	}

	var ferr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			cfg.Location.Latitude = latitude
		case "lon":
			cfg.Location.Longitude = longitude
		case "alt":
			cfg.Location.Altitude = altitude
		case "tz":
			cfg.Location.TZ = tzName
		case "method":
			m, err := solpos.ParseMethod(methodName)
			if err != nil {
				ferr = err
			}
			cfg.Method = m
		case "pressure":
			cfg.Atmosphere.Pressure = pressure
		case "temp":
			cfg.Atmosphere.Temperature = temperature
		case "format":
			cfg.Output.Format = format
		case "step":
			cfg.Output.Step = step
		case "watch":
			cfg.Watch = watchSpec
		case "log-level":
			cfg.LogLevel = logLevel
		case "horizons-url":
			cfg.Horizons.URL = horizonsURL
		}
	})
	if ferr != nil {
		return cfg, ferr
	}
	return cfg, cfg.Validate()
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, solpos.ErrDependencyUnavailable):
		return exitDependency
	case errors.Is(err, solpos.ErrInput):
		return exitInput
	}
	var perr *timeutil.ParseError
	if errors.As(err, &perr) {
		return exitInput
	}
	return exitError
}

// instants resolves -times, or -start/-end/-step, or now.
func instants(cfg config.Config, now time.Time) ([]time.Time, error) {
	zone, err := cfg.Location.Zone()
	if err != nil {
		return nil, err
	}
	if timesFlag != "" {
		return timeutil.ParseAll(splitList(timesFlag), zone)
	}
	if startFlag == "" {
		return []time.Time{now.In(zone)}, nil
	}
	start, end, err := bounds(zone)
	if err != nil {
		return nil, err
	}
	return timeutil.Range(start, end, cfg.Output.Step)
}

// bounds parses -start and -end. A missing -end equals -start.
func bounds(zone *time.Location) (time.Time, time.Time, error) {
	start, err := timeutil.Parse(startFlag, zone)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("-start: %w", err)
	}
	if endFlag == "" {
		return start, start, nil
	}
	end, err := timeutil.Parse(endFlag, zone)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("-end: %w", err)
	}
	return start, end, nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseSolve parses "attribute=value".
func parseSolve(s string) (solpos.Attribute, float64, error) {
	name, val, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, &solpos.InputError{Index: -1, Field: "solve", Reason: fmt.Sprintf("%q is not attribute=value", s)}
	}
	attr := solpos.Attribute(strings.ToLower(strings.TrimSpace(name)))
	if _, err := (solpos.Position{}).Value(attr); err != nil {
		return "", 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return "", 0, &solpos.InputError{Index: -1, Field: "solve", Reason: fmt.Sprintf("bad value %q", val)}
	}
	return attr, v, nil
}

// runSolve prints the instant at which the -solve target is met. Without
// -start and -end the local calendar day of now is searched.
func runSolve(ctx context.Context, cfg config.Config, calc solpos.Calculator, logger *logging.Logger) error {
	attr, value, err := parseSolve(solveFlag)
	if err != nil {
		return err
	}
	zone, err := cfg.Location.Zone()
	if err != nil {
		return err
	}

	var lower, upper time.Time
	if startFlag == "" {
		now := time.Now().In(zone)
		lower = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, zone)
		upper = lower.AddDate(0, 0, 1)
	} else if lower, upper, err = bounds(zone); err != nil {
		return err
	}

	logger.Debug("solving %s=%g on [%s, %s]", attr, value, lower.Format(time.RFC3339), upper.Format(time.RFC3339))
	t, err := calctime.CalcTime(ctx, calc, lower, upper, cfg.Location, attr, value, cfg.Atmos(), calctime.DefaultXTol)
	if err != nil {
		return err
	}
	fmt.Println(t.Format(time.RFC3339Nano))
	return nil
}

// compute builds a report for the given instants.
func compute(ctx context.Context, cfg config.Config, calc solpos.Calculator, ts []time.Time, withDay bool, logger *logging.Logger) (*report.Report, error) {
	atm := cfg.Atmos()
	res, err := calc.SolarPosition(ctx, ts, cfg.Location, atm)
	if err != nil {
		return nil, err
	}
	rep := &report.Report{Result: res, Atmosphere: atm, ComputedAt: time.Now()}

	if src := backend.Distance(calc); src != nil {
		d, err := src.EarthSunDistance(ctx, ts)
		if err != nil {
			logger.Warn("earth-sun distance unavailable: %v", err)
		} else {
			rep.Distance = d
		}
	}

	if withDay && len(ts) > 0 {
		day, err := daylight.ForDate(ctx, calc, ts[0], cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("daily events: %w", err)
		}
		rep.Day = &day
	}
	return rep, nil
}

func runOnce(ctx context.Context, cfg config.Config, calc solpos.Calculator, logger *logging.Logger) error {
	if solveFlag != "" {
		return runSolve(ctx, cfg, calc, logger)
	}
	ts, err := instants(cfg, time.Now())
	if err != nil {
		return err
	}
	start := time.Now()
	rep, err := compute(ctx, cfg, calc, ts, dayMode, logger)
	if err != nil {
		return err
	}
	logger.Debug("computed %d positions with %s in %v", len(ts), calc.Method(), time.Since(start))
	return rep.Write(os.Stdout, cfg.Output.Format)
}

// runWatch prints the current position on every tick of the cron schedule
// until ctx is canceled.
func runWatch(ctx context.Context, cfg config.Config, calc solpos.Calculator, logger *logging.Logger) error {
	outputOnce := func() {
		rep, err := compute(ctx, cfg, calc, []time.Time{time.Now()}, dayMode, logger)
		if err != nil {
			logger.Error("compute failed: %v", err)
			return
		}
		if err := rep.Write(os.Stdout, cfg.Output.Format); err != nil {
			logger.Error("write failed: %v", err)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Watch, outputOnce); err != nil {
		return &solpos.InputError{Index: -1, Field: "watch", Reason: err.Error()}
	}
	logger.Info("watching on schedule %q", cfg.Watch)

	outputOnce()
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func runTUI(ctx context.Context, cfg config.Config, calc solpos.Calculator, logger *logging.Logger) error {
	// The tracker owns the terminal; errors reach it as ErrorMsg.
	logger.SetOutput(io.Discard)

	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = refresh
	stateMgr := state.NewManager(stateCfg)

	p := tea.NewProgram(ui.New(stateMgr), tea.WithAltScreen(), tea.WithContext(ctx))

	go runComputeLoop(ctx, cfg, calc, stateMgr, p, logger)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running tracker: %w", err)
	}
	return nil
}

func runComputeLoop(ctx context.Context, cfg config.Config, calc solpos.Calculator, stateMgr *state.Manager, p *tea.Program, logger *logging.Logger) {
	zone, err := cfg.Location.Zone()
	if err != nil {
		logger.Error("Time zone unavailable: %v", err)
		p.Send(ui.ErrorMsg{Error: err})
		return
	}

	var today string
	tick := func() {
		now := time.Now()
		if d := dayKey(now, zone); d != today {
			if err := refreshDay(ctx, cfg, calc, stateMgr, now, zone); err != nil {
				logger.Error("daily events failed: %v", err)
			} else {
				today = d
			}
		}
		doCompute(ctx, cfg, calc, stateMgr, p, now, logger)
	}

	tick()

	ticker := time.NewTicker(stateMgr.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Compute loop shutting down")
			return
		case <-ticker.C:
			tick()
		}
	}
}

// refreshDay stores the day's events and the sampled sun path.
func refreshDay(ctx context.Context, cfg config.Config, calc solpos.Calculator, stateMgr *state.Manager, now time.Time, zone *time.Location) error {
	day, err := daylight.ForDate(ctx, calc, now, cfg.Location)
	if err != nil {
		return err
	}
	ts, err := trackTimes(now, zone)
	if err != nil {
		return err
	}
	res, err := calc.SolarPosition(ctx, ts, cfg.Location, cfg.Atmos())
	if err != nil {
		return err
	}
	stateMgr.SetDay(&day, res.Positions)
	return nil
}

// dayKey names the calendar day of now in zone.
func dayKey(now time.Time, zone *time.Location) string {
	return now.In(zone).Format(time.DateOnly)
}

// trackTimes samples the local day containing now every trackStep. DST
// days yield 23 or 25 hours of samples.
func trackTimes(now time.Time, zone *time.Location) ([]time.Time, error) {
	local := now.In(zone)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, zone)
	return timeutil.Range(midnight, midnight.AddDate(0, 0, 1).Add(-trackStep), trackStep)
}

func doCompute(ctx context.Context, cfg config.Config, calc solpos.Calculator, stateMgr *state.Manager, p *tea.Program, now time.Time, logger *logging.Logger) {
	start := time.Now()
	res, err := calc.SolarPosition(ctx, []time.Time{now}, cfg.Location, cfg.Atmos())
	dur := time.Since(start)

	if err != nil {
		logger.Error("Compute failed: %v", err)
		stateMgr.Update(nil, dur, err)
		p.Send(ui.ErrorMsg{Error: err})
		return
	}

	stateMgr.Update(res, dur, nil)
	p.Send(ui.DataUpdateMsg{Snapshot: stateMgr.Snapshot()})
}
