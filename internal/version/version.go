// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.4.0"

// Milestones:
// 0.4.0 - Live tracker with sky view, cron watch mode, YAML config
// 0.3.0 - JPL Horizons backend, Earth-Sun distance column, daylight events
// 0.2.0 - calc_time root finding, almanac and Meeus backends
// 0.1.0 - Initial release: native ephemeris, table/CSV/JSON output
