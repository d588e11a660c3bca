// Package config provides configuration structures and utilities for taanscrape.
// It defines the scrape settings (worker count, timeouts, retry policy, output
// format) and the optional YAML configuration file loader.
package config
