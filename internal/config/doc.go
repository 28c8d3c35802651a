// Package config loads, normalizes, and validates mapassist configuration data.
//
// It supplies repository defaults (including the map script parameters and
// reslist exclusions), expands user paths, reads TOML files, and honours the
// MAPASSIST_RELEASE_ROOT and MAPASSIST_INSTALL_ROOT environment fallbacks.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, lowercase extensions, and clear validation errors.
package config
