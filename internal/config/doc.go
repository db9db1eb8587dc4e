// Package config loads and validates the YAML configuration shared by the
// fetcher, reporter, and watcher binaries. Values like ${DUNE_API_KEY} are
// expanded from the environment before parsing.
package config
