// Package config provides configuration structures and utilities for
// guardscan. It defines the options for directory scans, the optional
// .guardscan YAML file with per-root overrides, and report output
// preferences.
package config
