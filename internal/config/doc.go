// Package config provides configuration structures and utilities for the
// crawler. It defines the search limits, the wiki source settings, storage
// and report preferences, and loads named wiki profiles from the
// .wikicrawler YAML file.
package config
