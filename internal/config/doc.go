// Package config loads and validates application configuration.
//
// Values come from defaults, an optional config.yaml and ECOREWARDS_-prefixed
// environment variables, in increasing order of precedence.
package config
